package structure

import (
	"math"
	"strconv"
)

// Value 统计值。空样本为 NaN，JSON 输出为 null。
type Value float64

// NaN 空统计值
func NaN() Value {
	return Value(math.NaN())
}

// Valid 是否为有限数
func (v Value) Valid() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON 非有限数输出 null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(v), 'f', -1, 64), nil
}

// UnmarshalJSON null 读为 NaN
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = NaN()
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// AllState 全部路径统计行的标签
const AllState = "all"

// Stats 一类路径的描述性统计（终值为路径最后一个价格）
type Stats struct {
	State        string `json:"state"`
	Count        int    `json:"count"`
	Probability  Value  `json:"probability"`
	MaxLast      Value  `json:"max_last"`
	MinLast      Value  `json:"min_last"`
	MeanLast     Value  `json:"mean_last"`
	VarianceLast Value  `json:"variance_last"`
	MeanDuration Value  `json:"mean_duration"`
}

// Summary 全部路径及各终态的统计
type Summary struct {
	Total   int     `json:"total"`
	All     Stats   `json:"all"`
	Buckets []Stats `json:"buckets"`
}

// Bucket 按终态取统计行
func (s Summary) Bucket(c Classification) Stats {
	for _, b := range s.Buckets {
		if b.State == string(c) {
			return b
		}
	}
	return Stats{State: string(c), Probability: NaN(), MaxLast: NaN(), MinLast: NaN(), MeanLast: NaN(), VarianceLast: NaN(), MeanDuration: NaN()}
}

// Aggregate 对模拟路径逐条推导敲出表、判定终态并汇总
func (s *Session) Aggregate(paths []Path) Summary {
	evals := make([]Evaluation, 0, len(paths))
	cache := map[int]Schedule{}
	for _, p := range paths {
		horizon := p.LastDay()
		sched, ok := cache[horizon]
		if !ok {
			sched = s.SimulatedSchedule(horizon)
			cache[horizon] = sched
		}
		evals = append(evals, s.Evaluate(p, sched))
	}
	return Summarize(evals)
}

// Summarize 按终态分桶统计
func Summarize(evals []Evaluation) Summary {
	total := len(evals)
	out := Summary{Total: total}

	byClass := make(map[Classification][]Evaluation, len(Classifications))
	for _, ev := range evals {
		byClass[ev.Class] = append(byClass[ev.Class], ev)
	}

	out.All = bucketStats(AllState, evals, total)
	for _, c := range Classifications {
		out.Buckets = append(out.Buckets, bucketStats(string(c), byClass[c], total))
	}
	return out
}

func bucketStats(state string, evals []Evaluation, total int) Stats {
	n := len(evals)
	st := Stats{
		State:        state,
		Count:        n,
		Probability:  NaN(),
		MaxLast:      NaN(),
		MinLast:      NaN(),
		MeanLast:     NaN(),
		VarianceLast: NaN(),
		MeanDuration: NaN(),
	}
	if total > 0 {
		st.Probability = Value(float64(n) / float64(total))
	}
	if n == 0 {
		return st
	}

	last := make([]float64, 0, n)
	durations := 0.0
	for _, ev := range evals {
		last = append(last, ev.Path.Terminal())
		durations += float64(ev.Duration)
	}

	mean := computeMean(last)
	st.MaxLast = Value(computeMax(last))
	st.MinLast = Value(computeMin(last))
	st.MeanLast = Value(mean)
	st.VarianceLast = Value(computeVariance(last, mean))
	st.MeanDuration = Value(durations / float64(n))
	return st
}

func computeMean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// computeVariance 总体方差（除以 n）
func computeVariance(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

func computeMax(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func computeMin(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
