package structure

import (
	"math"

	"github.com/shopspring/decimal"
)

// Evaluation 单条路径的判定结果
type Evaluation struct {
	Path     Path           `json:"-"`
	Class    Classification `json:"state"`
	Duration int            `json:"duration"`
	KnockOut *Entry         `json:"knock_out,omitempty"`
}

// Evaluate 判定路径终态并计算存续期
func (s *Session) Evaluate(path Path, sched Schedule) Evaluation {
	ev := Evaluation{Path: path}
	if e, ok := s.KnockOutEntry(path, sched); ok {
		ev.Class = KnockedOut
		ev.Duration = e.Day
		ev.KnockOut = &e
		return ev
	}
	_, knockedIn := s.KnockInDay(path)
	ev.Class = settle(knockedIn, path.Open)
	ev.Duration = path.LastDay()
	return ev
}

// Classify 路径终态。先按时间顺序检查敲出，未敲出再检查全路径敲入。
func (s *Session) Classify(path Path, sched Schedule) Classification {
	if _, ok := s.KnockOutEntry(path, sched); ok {
		return KnockedOut
	}
	_, knockedIn := s.KnockInDay(path)
	return settle(knockedIn, path.Open)
}

// Duration 合约存续期：敲出取敲出观察日，否则取路径最后一个交易日
func (s *Session) Duration(path Path, class Classification, sched Schedule) int {
	if class == KnockedOut {
		if e, ok := s.KnockOutEntry(path, sched); ok {
			return e.Day
		}
	}
	return path.LastDay()
}

// KnockOutEntry 第一个满足 价格 >= 敲出线 x 期初价 的观察点
func (s *Session) KnockOutEntry(path Path, sched Schedule) (Entry, bool) {
	initial, ok := price(path.InitialPrice())
	if !ok {
		return Entry{}, false
	}
	for _, e := range sched.Entries {
		if e.Index < 0 || e.Index >= len(path.Prices) {
			continue
		}
		px, ok := price(path.Prices[e.Index])
		if !ok {
			continue
		}
		if px.GreaterThanOrEqual(e.Barrier.Mul(initial)) {
			return e, true
		}
	}
	return Entry{}, false
}

// KnockInDay 第一个满足 价格 < 敲入线 x 期初价 的交易日。无敲入线的结构恒为 false。
func (s *Session) KnockInDay(path Path) (int, bool) {
	p := s.Params
	if !p.Type.HasKnockIn() || !p.KnockIn.Valid {
		return 0, false
	}
	initial, ok := price(path.InitialPrice())
	if !ok {
		return 0, false
	}
	level := p.KnockIn.Decimal.Mul(initial)
	for i, v := range path.Prices {
		px, ok := price(v)
		if !ok {
			continue
		}
		if px.LessThan(level) {
			return i + path.Origin, true
		}
	}
	return 0, false
}

func settle(knockedIn, open bool) Classification {
	switch {
	case knockedIn && open:
		return ActiveKnockedIn
	case knockedIn:
		return KnockedInNoKnockOut
	case open:
		return ActiveNoKnockIn
	default:
		return NoKnockInNoKnockOut
	}
}

func price(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(v), true
}
