package backtest

import (
	"time"

	"snowball/model"
	"snowball/structure"
)

// Point 收盘价序列中的一个交易日
type Point struct {
	Time  time.Time
	Close float64
}

// Row 以某交易日为起始日的合约回测结果
type Row struct {
	StartDate    string                   `json:"start_date"`
	Close        float64                  `json:"close"`
	State        structure.Classification `json:"state"`
	Duration     int                      `json:"duration"`
	DurationDays int                      `json:"duration_days,omitempty"`
	EndDate      string                   `json:"end_date,omitempty"`
	KnockOut     *structure.Entry         `json:"knock_out,omitempty"`
	KnockInDate  string                   `json:"knock_in_date,omitempty"`
	Dropped      []structure.Observation  `json:"dropped,omitempty"`

	Recorded model.RecordState `json:"recorded_state,omitempty"`
	Payoff   *float64          `json:"payoff,omitempty"`
	Mismatch bool              `json:"mismatch,omitempty"`
}

// StateCount 单个记录状态的个数与占比
type StateCount struct {
	State       model.RecordState `json:"state"`
	Count       int               `json:"count"`
	Probability structure.Value   `json:"probability"`
}

// RecordSummary 回测记录的合约统计：已了结占比按已了结合约数计，未了结占比按未了结合约数计
type RecordSummary struct {
	Total           int             `json:"total"`
	Ended           int             `json:"ended"`
	Active          int             `json:"active"`
	States          []StateCount    `json:"states"`
	AvgPayoffPct    structure.Value `json:"avg_payoff_pct"`
	AvgDurationDays structure.Value `json:"avg_duration_days"`
}

// Report 回测报告
type Report struct {
	Code       string             `json:"code,omitempty"`
	Params     structure.Params   `json:"params"`
	From       string             `json:"from"`
	To         string             `json:"to"`
	Rows       []Row              `json:"rows"`
	Summary    structure.Summary  `json:"summary"`
	Records    RecordSummary      `json:"records"`
	Mismatches int                `json:"mismatches"`
	Errors     []string           `json:"errors,omitempty"`
}

// ScheduleView 某起始日的敲出观察表视图
type ScheduleView struct {
	StartDate      string                `json:"start_date"`
	Expiry         string                `json:"expiry"`
	Close          float64               `json:"close"`
	KnockInLevel   structure.Value       `json:"knock_in_level"`
	KnockOutLevels []float64             `json:"knock_out_levels"`
	Entries        []structure.Entry     `json:"entries"`
	Diagnostics    structure.Diagnostics `json:"diagnostics"`
	Open           bool                  `json:"open"`
}
