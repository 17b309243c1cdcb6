package structure

import "github.com/shopspring/decimal"

// DistributionPoint 单个观察日的敲出数量
type DistributionPoint struct {
	Period  int             `json:"period"`
	Day     int             `json:"day"`
	Barrier decimal.Decimal `json:"barrier"`
	Count   int             `json:"count"`
}

// BarrierGroup 相邻且敲出线相同的观察日合并后的敲出数量
type BarrierGroup struct {
	Barrier decimal.Decimal `json:"barrier"`
	Count   int             `json:"count"`
}

// Distribution 敲出分布
type Distribution struct {
	Points []DistributionPoint `json:"points"`
	Groups []BarrierGroup      `json:"groups"`
}

// Distribution 对同一敲出表下的路径统计敲出分布
func (s *Session) Distribution(paths []Path, sched Schedule) Distribution {
	evals := make([]Evaluation, 0, len(paths))
	for _, p := range paths {
		evals = append(evals, s.Evaluate(p, sched))
	}
	return Distribute(sched, evals)
}

// Distribute 统计每个观察日的敲出路径数
func Distribute(sched Schedule, evals []Evaluation) Distribution {
	var out Distribution
	pos := make(map[int]int, len(sched.Entries))
	for i, e := range sched.Entries {
		pos[e.Day] = i
		out.Points = append(out.Points, DistributionPoint{Period: e.Period, Day: e.Day, Barrier: e.Barrier})
	}
	for _, ev := range evals {
		if ev.Class != KnockedOut || ev.KnockOut == nil {
			continue
		}
		if i, ok := pos[ev.KnockOut.Day]; ok {
			out.Points[i].Count++
		}
	}

	for _, p := range out.Points {
		n := len(out.Groups)
		if n > 0 && out.Groups[n-1].Barrier.Equal(p.Barrier) {
			out.Groups[n-1].Count += p.Count
			continue
		}
		out.Groups = append(out.Groups, BarrierGroup{Barrier: p.Barrier, Count: p.Count})
	}
	return out
}

// PathReport 单条路径的统计
type PathReport struct {
	Max      Value          `json:"max"`
	Min      Value          `json:"min"`
	Mean     Value          `json:"mean"`
	State    Classification `json:"state"`
	KnockDay int            `json:"knock_day,omitempty"`
	Duration int            `json:"duration"`
}

// Describe 单条路径的最大/最小/均值、终态、敲出（入）日与存续期
func (s *Session) Describe(path Path, sched Schedule) PathReport {
	ev := s.Evaluate(path, sched)
	r := PathReport{
		Max:      Value(computeMax(path.Prices)),
		Min:      Value(computeMin(path.Prices)),
		Mean:     Value(computeMean(path.Prices)),
		State:    ev.Class,
		Duration: ev.Duration,
	}
	switch {
	case ev.KnockOut != nil:
		r.KnockDay = ev.KnockOut.Day
	case ev.Class.KnockedIn():
		if d, ok := s.KnockInDay(path); ok {
			r.KnockDay = d
		}
	}
	return r
}
