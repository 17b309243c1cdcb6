package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"snowball/loader"
	"snowball/model"
	"snowball/structure"
	"snowball/trading"
)

// Options 回测选项
type Options struct {
	// Start/End restrict the close series; zero values fall back to the
	// document's sdateInput/edateInput.
	Start      time.Time
	End        time.Time
	SearchDays int
	OnDropped  func(structure.Observation)

	// Params replaces the document's parameter block when set.
	Params *structure.Params
}

type Runner struct {
	opts Options
}

func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts}
}

// Run 以每个交易日为起始日滚动回测，并与文档中记录的状态比对
func (r *Runner) Run(doc *model.BacktestDocument) (Report, error) {
	sess, records, points, rep, err := r.prepare(doc)
	if err != nil {
		return Report{}, err
	}

	rows, evals, err := Evaluate(sess, points)
	if err != nil {
		return Report{}, err
	}

	byDate := make(map[string]model.BacktestRecord, len(records))
	for _, rec := range records {
		byDate[rec.StartDate.Format(trading.DateLayout)] = rec
	}
	for i := range rows {
		rec, ok := byDate[rows[i].StartDate]
		if !ok {
			continue
		}
		rows[i].Payoff = rec.Payoff
		if rec.State == "" {
			continue
		}
		rows[i].Recorded = rec.State
		if Expected(rec.State) != rows[i].State {
			rows[i].Mismatch = true
			rep.Mismatches++
		}
	}

	rep.Rows = rows
	rep.Summary = structure.Summarize(evals)
	rep.Records = SummarizeRecords(records)
	rep.From = points[0].Time.Format(trading.DateLayout)
	rep.To = points[len(points)-1].Time.Format(trading.DateLayout)
	return rep, nil
}

// Schedule 某起始日的敲出观察表、到期日与诊断信息
func (r *Runner) Schedule(doc *model.BacktestDocument, start time.Time) (ScheduleView, error) {
	sess, _, points, _, err := r.prepare(doc)
	if err != nil {
		return ScheduleView{}, err
	}
	return ScheduleAt(sess, points, start)
}

func (r *Runner) prepare(doc *model.BacktestDocument) (*structure.Session, []model.BacktestRecord, []Point, Report, error) {
	var params structure.Params
	if r.opts.Params != nil {
		params = *r.opts.Params
	} else {
		p, err := loader.BacktestParams(doc.Parameter)
		if err != nil {
			return nil, nil, nil, Report{}, err
		}
		params = p
	}
	if err := params.Validate(); err != nil {
		return nil, nil, nil, Report{}, err
	}

	from, to := r.opts.Start, r.opts.End
	if from.IsZero() {
		if ts, err := model.ParseTimestamp(doc.Parameter.StartDate); err == nil {
			from = ts.Time
		}
	}
	if to.IsZero() {
		if ts, err := model.ParseTimestamp(doc.Parameter.EndDate); err == nil {
			to = ts.Time
		}
	}

	rep := Report{Code: doc.Parameter.Code, Params: params}
	records := loader.SortedRecords(doc)
	points := make([]Point, 0, len(records))
	for _, rec := range records {
		day := trading.Day(rec.StartDate.Time)
		if !from.IsZero() && day.Before(trading.Day(from)) {
			continue
		}
		if !to.IsZero() && day.After(trading.Day(to)) {
			continue
		}
		if rec.Close == nil || !validPrice(*rec.Close) {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: missing close", day.Format(trading.DateLayout)))
			continue
		}
		points = append(points, Point{Time: day, Close: *rec.Close})
	}
	if len(points) == 0 {
		return nil, nil, nil, Report{}, fmt.Errorf("no prices in range")
	}

	sess := structure.NewSession(params)
	if r.opts.SearchDays > 0 {
		sess.SearchDays = r.opts.SearchDays
	}
	sess.OnDropped = r.opts.OnDropped
	return sess, records, points, rep, nil
}

// Evaluate 对每个起始日推导敲出表、截取合约窗口并判定终态
func Evaluate(sess *structure.Session, points []Point) ([]Row, []structure.Evaluation, error) {
	points = normalizePoints(points)
	dates := make([]time.Time, 0, len(points))
	closes := make([]float64, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.Time)
		closes = append(closes, p.Close)
	}
	cal := trading.NewCalendar(dates)

	rows := make([]Row, 0, len(points))
	evals := make([]structure.Evaluation, 0, len(points))
	for i := range points {
		row, ev, err := evaluateAt(sess, cal, closes, i)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
		evals = append(evals, ev)
	}
	return rows, evals, nil
}

func evaluateAt(sess *structure.Session, cal *trading.Calendar, closes []float64, i int) (Row, structure.Evaluation, error) {
	start := cal.Date(i)
	sched, err := sess.CalendarSchedule(start, cal)
	if err != nil {
		return Row{}, structure.Evaluation{}, err
	}

	expiry := sess.Expiry(start)
	open := cal.Beyond(expiry)
	end := len(closes) - 1
	if !open {
		if n := len(sched.Entries); n > 0 && sched.Entries[n-1].Period == sess.Params.Duration {
			end = i + sched.Entries[n-1].Index
		} else if j, ok := cal.LastOnOrBefore(expiry); ok {
			end = j
		}
	}

	path := structure.Path{Prices: closes[i : end+1], Origin: 0, Open: open}
	ev := sess.Evaluate(path, sched)

	row := Row{
		StartDate: start.Format(trading.DateLayout),
		Close:     closes[i],
		State:     ev.Class,
		Duration:  ev.Duration,
		KnockOut:  ev.KnockOut,
		Dropped:   sched.Diagnostics.Dropped,
	}
	if ev.KnockOut != nil || !open {
		endDate := cal.Date(i + ev.Duration)
		row.EndDate = endDate.Format(trading.DateLayout)
		row.DurationDays = trading.DaysBetween(start, endDate)
	}
	if ev.Class.KnockedIn() {
		if d, ok := sess.KnockInDay(path); ok {
			row.KnockInDate = cal.Date(i + d).Format(trading.DateLayout)
		}
	}
	return row, ev, nil
}

// ScheduleAt 某起始日的敲出观察表视图，敲入/敲出价位按起始日收盘价换算
func ScheduleAt(sess *structure.Session, points []Point, start time.Time) (ScheduleView, error) {
	points = normalizePoints(points)
	dates := make([]time.Time, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.Time)
	}
	cal := trading.NewCalendar(dates)

	i, ok := cal.Index(start)
	if !ok {
		return ScheduleView{}, fmt.Errorf("start date %s is not a trading date", start.Format(trading.DateLayout))
	}
	sched, err := sess.CalendarSchedule(start, cal)
	if err != nil {
		return ScheduleView{}, err
	}

	expiry := sess.Expiry(start)
	closePx := points[i].Close
	view := ScheduleView{
		StartDate:    cal.Date(i).Format(trading.DateLayout),
		Expiry:       expiry.Format(trading.DateLayout),
		Close:        closePx,
		KnockInLevel: structure.NaN(),
		Entries:      sched.Entries,
		Diagnostics:  sched.Diagnostics,
		Open:         cal.Beyond(expiry),
	}

	px := decimal.NewFromFloat(closePx)
	if ki := sess.Params.KnockIn; ki.Valid && sess.Params.Type.HasKnockIn() {
		view.KnockInLevel = structure.Value(round2(ki.Decimal.Mul(px).InexactFloat64()))
	}
	for _, e := range sched.Entries {
		view.KnockOutLevels = append(view.KnockOutLevels, round2(e.Barrier.Mul(px).InexactFloat64()))
	}
	return view, nil
}

// Expected 记录状态对应的路径终态（敲入后敲出按敲出计）
func Expected(s model.RecordState) structure.Classification {
	switch s {
	case model.StateKO, model.StateKIKO:
		return structure.KnockedOut
	case model.StateKINoKO:
		return structure.KnockedInNoKnockOut
	case model.StateNoKINoKO:
		return structure.NoKnockInNoKnockOut
	case model.StateActiveKI:
		return structure.ActiveKnockedIn
	case model.StateActiveNoKI:
		return structure.ActiveNoKnockIn
	default:
		return ""
	}
}

// SummarizeRecords 按记录状态统计合约数、占比、了结合约平均损益与平均存续期（自然日）
func SummarizeRecords(records []model.BacktestRecord) RecordSummary {
	out := RecordSummary{
		Total:           len(records),
		AvgPayoffPct:    structure.NaN(),
		AvgDurationDays: structure.NaN(),
	}

	counts := make(map[model.RecordState]int, len(model.RecordStates))
	payoffSum, payoffN := 0.0, 0
	durSum := 0
	for _, rec := range records {
		counts[rec.State]++
		if rec.ActualEndDate.IsZero() {
			continue
		}
		out.Ended++
		durSum += trading.DaysBetween(rec.StartDate.Time, rec.ActualEndDate.Time)
		if rec.Payoff != nil && validNumber(*rec.Payoff) {
			payoffSum += *rec.Payoff * 100
			payoffN++
		}
	}
	out.Active = out.Total - out.Ended

	for _, s := range model.RecordStates {
		denom := out.Active
		if s.Ended() {
			denom = out.Ended
		}
		sc := StateCount{State: s, Count: counts[s], Probability: structure.NaN()}
		if denom > 0 {
			sc.Probability = structure.Value(float64(sc.Count) / float64(denom))
		}
		out.States = append(out.States, sc)
	}

	if payoffN > 0 {
		out.AvgPayoffPct = structure.Value(round2(payoffSum / float64(payoffN)))
	}
	if out.Ended > 0 {
		out.AvgDurationDays = structure.Value(round2(float64(durSum) / float64(out.Ended)))
	}
	return out
}

// Count 某状态的统计行
func (s RecordSummary) Count(state model.RecordState) StateCount {
	for _, sc := range s.States {
		if sc.State == state {
			return sc
		}
	}
	return StateCount{State: state, Probability: structure.NaN()}
}

func normalizePoints(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Time.IsZero() || !validPrice(p.Close) {
			continue
		}
		out = append(out, Point{Time: trading.Day(p.Time), Close: p.Close})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, p := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(p.Time) {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

func validNumber(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func validPrice(x float64) bool {
	return validNumber(x) && x > 0
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
