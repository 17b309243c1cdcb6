package backtest

import (
	"fmt"
	"log"
	"time"

	"snowball/config"
	"snowball/structure"
)

// OptionsFromConfig 由服务配置构建回测选项
func OptionsFromConfig(c *config.Config) (Options, error) {
	opts := Options{SearchDays: c.SearchDays}
	if c.LogGaps {
		opts.OnDropped = LogDropped
	}

	if c.BacktestStart != "" {
		t, err := time.Parse("2006-01-02", c.BacktestStart)
		if err != nil {
			return Options{}, fmt.Errorf("invalid backtest.start: %w", err)
		}
		opts.Start = t
	}
	if c.BacktestEnd != "" {
		t, err := time.Parse("2006-01-02", c.BacktestEnd)
		if err != nil {
			return Options{}, fmt.Errorf("invalid backtest.end: %w", err)
		}
		opts.End = t
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && opts.End.Before(opts.Start) {
		return Options{}, fmt.Errorf("backtest.end %s is before backtest.start %s", c.BacktestEnd, c.BacktestStart)
	}
	return opts, nil
}

// LogDropped 记录被丢弃的敲出观察日
func LogDropped(o structure.Observation) {
	switch o.Reason {
	case structure.DropDuplicate:
		log.Printf("[SCHEDULE] 第%d期观察日 %s 与上一期匹配到同一交易日，已跳过\n", o.Period, o.Candidate)
	default:
		log.Printf("[SCHEDULE] 第%d期观察日 %s 在查找窗口内无交易日，已跳过\n", o.Period, o.Candidate)
	}
}
