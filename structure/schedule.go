package structure

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"snowball/trading"
)

// SimulatedSchedule 蒙特卡洛路径的敲出观察表：观察日为 BlockSize 的整数倍。
// 超出 horizon 的观察日只记录第一期，其余计入 Diagnostics.Remaining。
func (s *Session) SimulatedSchedule(horizon int) Schedule {
	bs := s.blockSize()
	var sched Schedule
	for k := s.firstPeriod(); k <= s.Params.Duration; k++ {
		day := k * bs
		if day > horizon {
			sched.Diagnostics.Pending = append(sched.Diagnostics.Pending, Observation{Period: k, Day: day})
			sched.Diagnostics.Remaining = s.Params.Duration - k + 1
			break
		}
		sched.Entries = append(sched.Entries, Entry{Period: k, Day: day, Index: day - 1})
	}
	s.applyBarriers(sched.Entries)
	return sched
}

// CalendarSchedule 回测路径的敲出观察表。
// 第 i 期观察日为 start 加 i 个自然月；该日不是交易日时逐日向后查找，
// 超过 SearchDays 仍未找到则丢弃该期并记录在 Diagnostics.Dropped。
// Day/Index 为观察日相对 start 的交易日偏移。
func (s *Session) CalendarSchedule(start time.Time, cal *trading.Calendar) (Schedule, error) {
	startIdx, ok := cal.Index(start)
	if !ok {
		return Schedule{}, fmt.Errorf("start date %s is not a trading date", start.Format(trading.DateLayout))
	}

	var sched Schedule
	prev := startIdx
	for i := s.firstPeriod(); i <= s.Params.Duration; i++ {
		candidate := trading.AddMonths(start, i)
		obs := Observation{Period: i, Candidate: candidate.Format(trading.DateLayout)}

		if cal.Beyond(candidate) {
			sched.Diagnostics.Pending = append(sched.Diagnostics.Pending, obs)
			sched.Diagnostics.Remaining++
			continue
		}

		idx, found := cal.NextOnOrAfter(candidate, s.searchDays())
		if !found {
			obs.Reason = DropNoTradingDate
			s.drop(&sched, obs)
			continue
		}
		if idx <= prev {
			obs.Reason = DropDuplicate
			s.drop(&sched, obs)
			continue
		}
		prev = idx

		sched.Entries = append(sched.Entries, Entry{
			Period: i,
			Day:    idx - startIdx,
			Index:  idx - startIdx,
			Date:   cal.Date(idx).Format(trading.DateLayout),
		})
	}
	s.applyBarriers(sched.Entries)
	return sched, nil
}

// Expiry 合约到期日（start 加 Duration 个自然月）
func (s *Session) Expiry(start time.Time) time.Time {
	return trading.AddMonths(start, s.Params.Duration)
}

func (s *Session) drop(sched *Schedule, obs Observation) {
	sched.Diagnostics.Dropped = append(sched.Diagnostics.Dropped, obs)
	if s.OnDropped != nil {
		s.OnDropped(obs)
	}
}

func (s *Session) applyBarriers(entries []Entry) {
	for i := range entries {
		entries[i].Barrier = s.BarrierAt(entries[i].Period)
	}
}

// BarrierAt 第 period 期观察日的敲出线。
// 阶梯按期数计：首个观察期（或 StepDownStart 之前）为 KnockOut，此后每期递减 StepDown。
// 首个观察期被丢弃时，观察表第一项已是递减后的敲出线。
func (s *Session) BarrierAt(period int) decimal.Decimal {
	p := s.Params
	switch {
	case p.Type.IsStepDown() && p.StepDown.Valid:
		from := p.StepDownStart
		if from <= 0 {
			from = s.firstPeriod() + 1
		}
		steps := period - from + 1
		if steps <= 0 {
			return p.KnockOut
		}
		return p.KnockOut.Sub(p.StepDown.Decimal.Mul(decimal.NewFromInt(int64(steps))))
	case p.Type == TypeParachute && p.ParachuteFinal.Valid && period == p.Duration:
		return p.ParachuteFinal.Decimal
	default:
		return p.KnockOut
	}
}
