package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/width"

	"snowball/backtest"
	"snowball/model"
	"snowball/montecarlo"
	"snowball/structure"
)

// Printer 文本表格输出
type Printer struct {
	w     io.Writer
	color bool
}

// New 创建输出器；w 为终端时启用颜色
func New(w io.Writer) *Printer {
	p := &Printer{w: w}
	if f, ok := w.(*os.File); ok {
		p.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

var stateLabels = map[structure.Classification]string{
	structure.KnockedOut:          "敲出",
	structure.KnockedInNoKnockOut: "敲入未敲出",
	structure.NoKnockInNoKnockOut: "未敲入未敲出",
	structure.ActiveKnockedIn:     "未了结:曾敲入",
	structure.ActiveNoKnockIn:     "未了结:未敲入",
}

var recordLabels = map[model.RecordState]string{
	model.StateKO:         "已了结:敲出",
	model.StateNoKINoKO:   "已了结:未敲入,未敲出",
	model.StateKIKO:       "已了结:敲入,期末敲出",
	model.StateKINoKO:     "已了结:敲入,未敲出",
	model.StateActiveKI:   "未了结:曾敲入",
	model.StateActiveNoKI: "未了结:未敲入",
}

// StateLabel 终态中文名
func StateLabel(s string) string {
	if s == structure.AllState {
		return "全部"
	}
	if l, ok := stateLabels[structure.Classification(s)]; ok {
		return l
	}
	return s
}

// Summary 各终态统计表
func (p *Printer) Summary(sum structure.Summary) {
	fmt.Fprintf(p.w, "%-14s %6s %8s %10s %10s %10s %10s %8s\n", "STATE", "COUNT", "PROB", "MAX_LAST", "MIN_LAST", "MEAN_LAST", "VAR_LAST", "DURATION")
	rows := append([]structure.Stats{sum.All}, sum.Buckets...)
	for _, st := range rows {
		fmt.Fprintf(p.w, "%s %6d %8s %10s %10s %10s %10s %8s\n",
			p.paint(st.State, pad(StateLabel(st.State), 14)), st.Count, pct(st.Probability),
			num(st.MaxLast, 4), num(st.MinLast, 4), num(st.MeanLast, 4), num(st.VarianceLast, 6), num(st.MeanDuration, 1))
	}
}

// Distribution 敲出分布表
func (p *Printer) Distribution(d structure.Distribution) {
	fmt.Fprintf(p.w, "%-8s %-6s %-10s %s\n", "PERIOD", "DAY", "BARRIER", "KO_COUNT")
	for _, pt := range d.Points {
		fmt.Fprintf(p.w, "%-8d %-6d %-10s %d\n", pt.Period, pt.Day, pt.Barrier.String(), pt.Count)
	}
	if len(d.Groups) > 1 {
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "%-10s %s\n", "BARRIER", "KO_COUNT")
		for _, g := range d.Groups {
			fmt.Fprintf(p.w, "%-10s %d\n", g.Barrier.String(), g.Count)
		}
	}
}

// Schedule 敲出观察表
func (p *Printer) Schedule(s structure.Schedule) {
	fmt.Fprintf(p.w, "%-8s %-6s %-12s %s\n", "PERIOD", "DAY", "DATE", "BARRIER")
	for _, e := range s.Entries {
		date := e.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(p.w, "%-8d %-6d %-12s %s\n", e.Period, e.Day, date, e.Barrier.String())
	}
	for _, o := range s.Diagnostics.Dropped {
		fmt.Fprintf(p.w, "  dropped: period %d candidate %s (%s)\n", o.Period, o.Candidate, o.Reason)
	}
	if n := s.Diagnostics.Remaining; n > 0 {
		fmt.Fprintf(p.w, "  pending: %d observation(s) beyond available data\n", n)
	}
}

// MonteCarlo 蒙特卡洛报告
func (p *Printer) MonteCarlo(rep montecarlo.Report) {
	fmt.Fprintf(p.w, "structure=%s ko=%s ki=%s paths=%d horizon=%d\n\n",
		rep.Params.Type, rep.Params.KnockOut.String(), nullString(rep.Params.KnockIn.Valid, rep.Params.KnockIn.Decimal.String()),
		rep.Summary.Total, rep.Horizon)
	p.Summary(rep.Summary)
	fmt.Fprintln(p.w)
	p.Distribution(rep.Distribution)

	if len(rep.Paths) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "%-6s %-14s %8s %10s %10s %10s %s\n", "PATH", "STATE", "KNOCK", "MAX", "MIN", "MEAN", "DURATION")
		for _, r := range rep.Paths {
			knock := "-"
			if r.KnockDay > 0 {
				knock = fmt.Sprintf("%d", r.KnockDay)
			}
			fmt.Fprintf(p.w, "%-6d %s %8s %10s %10s %10s %d\n",
				r.Index, p.paint(string(r.State), pad(StateLabel(string(r.State)), 14)), knock,
				num(r.Max, 4), num(r.Min, 4), num(r.Mean, 4), r.Duration)
		}
	}
}

// Backtest 回测报告
func (p *Printer) Backtest(rep backtest.Report, allRows bool) {
	code := rep.Code
	if code == "" {
		code = "-"
	}
	fmt.Fprintf(p.w, "code=%s structure=%s duration=%d range=%s..%s starts=%d mismatches=%d\n\n",
		code, rep.Params.Type, rep.Params.Duration, rep.From, rep.To, len(rep.Rows), rep.Mismatches)

	fmt.Fprintf(p.w, "%-12s %-10s %-14s %-12s %-8s %-12s %s\n", "START", "CLOSE", "STATE", "END", "DAYS", "RECORDED", "NOTE")
	for _, r := range rep.Rows {
		if !allRows && !r.Mismatch {
			continue
		}
		end := r.EndDate
		if end == "" {
			end = "-"
		}
		recorded := string(r.Recorded)
		if recorded == "" {
			recorded = "-"
		}
		note := ""
		if r.Mismatch {
			note = "MISMATCH"
		}
		if len(r.Dropped) > 0 {
			note = strings.TrimSpace(note + fmt.Sprintf(" dropped=%d", len(r.Dropped)))
		}
		fmt.Fprintf(p.w, "%-12s %-10.4f %s %-12s %-8d %-12s %s\n",
			r.StartDate, r.Close, p.paint(string(r.State), pad(StateLabel(string(r.State)), 14)), end, r.DurationDays, recorded, note)
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(p.w, "  warn: %s\n", e)
	}

	fmt.Fprintln(p.w)
	p.Summary(rep.Summary)
	fmt.Fprintln(p.w)
	p.Records(rep.Records)
}

// Records 回测记录合约统计
func (p *Printer) Records(s backtest.RecordSummary) {
	fmt.Fprintf(p.w, "合约总数 %d  已了结 %d  未了结 %d\n", s.Total, s.Ended, s.Active)
	fmt.Fprintf(p.w, "了结合约平均损益 %s  平均存续期 %s\n", suffix(num(s.AvgPayoffPct, 2), "%"), suffix(num(s.AvgDurationDays, 2), "天"))
	for _, sc := range s.States {
		fmt.Fprintf(p.w, "  %s %d %s\n", pad(recordLabels[sc.State], 22), sc.Count, pct(sc.Probability))
	}
}

// ScheduleView 回测起始日的敲出观察表
func (p *Printer) ScheduleView(v backtest.ScheduleView) {
	status := "已到期"
	if v.Open {
		status = "未到期"
	}
	fmt.Fprintf(p.w, "start=%s close=%.4f expiry=%s (%s) ki_level=%s\n", v.StartDate, v.Close, v.Expiry, status, num(v.KnockInLevel, 2))
	fmt.Fprintf(p.w, "%-8s %-12s %-10s %s\n", "PERIOD", "DATE", "BARRIER", "KO_LEVEL")
	for i, e := range v.Entries {
		level := ""
		if i < len(v.KnockOutLevels) {
			level = fmt.Sprintf("%.2f", v.KnockOutLevels[i])
		}
		fmt.Fprintf(p.w, "%-8d %-12s %-10s %s\n", e.Period, e.Date, e.Barrier.String(), level)
	}
	for _, o := range v.Diagnostics.Dropped {
		fmt.Fprintf(p.w, "  dropped: period %d candidate %s (%s)\n", o.Period, o.Candidate, o.Reason)
	}
	for _, o := range v.Diagnostics.Pending {
		fmt.Fprintf(p.w, "  pending: period %d candidate %s\n", o.Period, o.Candidate)
	}
}

// Issues 参数校验问题列表
func (p *Printer) Issues(ve *structure.ValidationError) {
	for _, is := range ve.Issues {
		fmt.Fprintf(p.w, "  %-18s %s\n", is.Field, is.Message)
	}
}

func (p *Printer) paint(state, text string) string {
	if !p.color {
		return text
	}
	switch structure.Classification(state) {
	case structure.KnockedOut:
		return "\033[31m" + text + "\033[0m"
	case structure.KnockedInNoKnockOut, structure.ActiveKnockedIn:
		return "\033[32m" + text + "\033[0m"
	default:
		return text
	}
}

// num 格式化统计值，NaN 输出空白
func num(v structure.Value, prec int) string {
	if !v.Valid() {
		return ""
	}
	return fmt.Sprintf("%.*f", prec, float64(v))
}

func pct(v structure.Value) string {
	if !v.Valid() {
		return ""
	}
	return fmt.Sprintf("%.2f%%", float64(v)*100)
}

func suffix(s, unit string) string {
	if s == "" {
		return "-"
	}
	return s + unit
}

func nullString(valid bool, s string) string {
	if !valid {
		return "-"
	}
	return s
}

// pad 按显示宽度右侧补空格
func pad(s string, cols int) string {
	w := displayWidth(s)
	if w >= cols {
		return s
	}
	return s + strings.Repeat(" ", cols-w)
}

// displayWidth 终端显示宽度：全角/宽字符占两格，组合字符不占格
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch {
		case unicode.In(r, unicode.Mn, unicode.Me):
		case isWide(r):
			w += 2
		default:
			w++
		}
	}
	return w
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
