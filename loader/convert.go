package loader

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"snowball/model"
	"snowball/structure"
)

// MonteCarloDuration 蒙特卡洛文档未给出期限时的默认月数
const MonteCarloDuration = 12

// MonteCarloParams 蒙特卡洛文档参数转为结构参数。
// start_obInput / start_sdInput 以交易日计，按 blockSize 向上取整换算为观察月；
// start_sdInput 为 -1 或缺失表示不设降敲起始月。
func MonteCarloParams(p model.Parameter, blockSize int) (structure.Params, error) {
	if blockSize <= 0 {
		blockSize = structure.DefaultBlockSize
	}
	sp, err := baseParams(p)
	if err != nil {
		return structure.Params{}, err
	}

	if d, ok := p.Duration.Int(); ok && d > 0 {
		sp.Duration = d
	} else {
		sp.Duration = MonteCarloDuration
	}

	sp.StartObservation = 1
	if days, ok := p.StartObservation.Float(); ok && days > 0 {
		sp.StartObservation = periodsOf(days, blockSize)
	}
	if days, ok := p.StartStepDown.Float(); ok && days > 0 {
		sp.StepDownStart = periodsOf(days, blockSize)
	}
	return sp, nil
}

// BacktestParams 回测文档参数转为结构参数（期限与开始观察月以月计）
func BacktestParams(p model.Parameter) (structure.Params, error) {
	sp, err := baseParams(p)
	if err != nil {
		return structure.Params{}, err
	}
	if d, ok := p.Duration.Int(); ok {
		sp.Duration = d
	}
	sp.StartObservation = 1
	if m, ok := p.StartObservation.Int(); ok && m > 0 {
		sp.StartObservation = m
	}
	if m, ok := p.StartStepDown.Int(); ok && m > 0 {
		sp.StepDownStart = m
	}
	return sp, nil
}

func baseParams(p model.Parameter) (structure.Params, error) {
	t, err := structure.ParseType(p.Structure)
	if err != nil {
		return structure.Params{}, err
	}
	sp := structure.Params{
		Type:           t,
		KnockIn:        p.KnockIn.NullDecimal,
		StepDown:       p.StepDown.NullDecimal,
		ParachuteFinal: p.Parachute.NullDecimal,
		Coupons: structure.Coupons{
			KO:          p.KOCoupon.NullDecimal,
			Dividend:    p.DividendCoupon.NullDecimal,
			KO2:         p.KOCoupon2.NullDecimal,
			KO3:         p.KOCoupon3.NullDecimal,
			Guaranteed:  p.Guaranteed.NullDecimal,
			LimitedLoss: p.LimitedLoss.NullDecimal,
		},
	}
	if p.KnockOut.Valid {
		sp.KnockOut = p.KnockOut.Decimal
	}
	if n, ok := p.Coupon2Period.Int(); ok {
		sp.Coupons.Period2 = n
	}
	if n, ok := p.Coupon3Period.Int(); ok {
		sp.Coupons.Period3 = n
	}
	if !t.HasKnockIn() {
		sp.KnockIn = decimal.NullDecimal{}
	}
	return sp, nil
}

func periodsOf(days float64, blockSize int) int {
	n := int(math.Ceil(days / float64(blockSize)))
	if n < 1 {
		return 1
	}
	return n
}

// MonteCarloPaths 模拟路径转为 structure.Path；价格已归一化，期初价格为 1
func MonteCarloPaths(doc *model.MonteCarloDocument) ([]structure.Path, error) {
	out := make([]structure.Path, 0, len(doc.Path))
	for i, prices := range doc.Path {
		if len(prices) == 0 {
			return nil, fmt.Errorf("path %d is empty", i)
		}
		for j, v := range prices {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return nil, fmt.Errorf("path %d: invalid price at %d: %v", i, j, v)
			}
		}
		p := structure.SimulatedPath(prices)
		p.Initial = 1
		out = append(out, p)
	}
	return out, nil
}

// SortedRecords 回测记录按起始日排序（起始日相同时按原键的数字顺序）
func SortedRecords(doc *model.BacktestDocument) []model.BacktestRecord {
	keys := make([]string, 0, len(doc.Result))
	for k := range doc.Result {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := doc.Result[keys[i]], doc.Result[keys[j]]
		if !a.StartDate.Equal(b.StartDate.Time) {
			return a.StartDate.Before(b.StartDate.Time)
		}
		return keyLess(keys[i], keys[j])
	})

	out := make([]model.BacktestRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, doc.Result[k])
	}
	return out
}

func keyLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
