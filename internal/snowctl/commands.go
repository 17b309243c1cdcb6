package snowctl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"snowball/backtest"
	"snowball/config"
	"snowball/internal/report"
	"snowball/loader"
	"snowball/model"
	"snowball/montecarlo"
	"snowball/structure"
)

func runMonteCarlo(cfg *config.Config, o options, stdout io.Writer) error {
	doc, err := loader.LoadMonteCarlo(o.mcPath, loader.Options{Encoding: cfg.Encoding})
	if err != nil {
		return err
	}

	var rep montecarlo.Report
	if o.paramsPath != "" {
		params, err := loadParams(o.paramsPath)
		if err != nil {
			return err
		}
		paths, err := loader.MonteCarloPaths(doc)
		if err != nil {
			return err
		}
		sess := structure.NewSession(params)
		sess.BlockSize = cfg.BlockSize
		rep = montecarlo.Evaluate(sess, paths, cfg.IncludePaths)
	} else {
		rep, err = montecarlo.Run(doc, montecarlo.Options{BlockSize: cfg.BlockSize, IncludePaths: cfg.IncludePaths})
		if err != nil {
			return err
		}
	}

	return writeOutput(o, stdout, rep, func(p *report.Printer) { p.MonteCarlo(rep) })
}

func runBacktest(cfg *config.Config, o options, stdout io.Writer) error {
	runner, doc, err := openBacktest(cfg, o)
	if err != nil {
		return err
	}
	rep, err := runner.Run(doc)
	if err != nil {
		return err
	}
	return writeOutput(o, stdout, rep, func(p *report.Printer) { p.Backtest(rep, o.allRows) })
}

func runBacktestSchedule(cfg *config.Config, o options, stdout io.Writer) error {
	if strings.TrimSpace(o.start) == "" {
		return fmt.Errorf("-schedule -backtest 需要 -start")
	}
	start, err := parseDate("start", o.start)
	if err != nil {
		return err
	}
	runner, doc, err := openBacktest(cfg, o)
	if err != nil {
		return err
	}
	view, err := runner.Schedule(doc, start)
	if err != nil {
		return err
	}
	return writeOutput(o, stdout, view, func(p *report.Printer) { p.ScheduleView(view) })
}

func runSimulatedSchedule(cfg *config.Config, o options, stdout io.Writer) error {
	params, err := loadParams(o.paramsPath)
	if err != nil {
		return err
	}
	sess := structure.NewSession(params)
	sess.BlockSize = cfg.BlockSize

	horizon := o.horizon
	if horizon <= 0 {
		horizon = params.Duration * sess.BlockSize
	}
	sched := sess.SimulatedSchedule(horizon)

	out := struct {
		Params   structure.Params   `json:"params"`
		Horizon  int                `json:"horizon"`
		Schedule structure.Schedule `json:"schedule"`
	}{params, horizon, sched}
	return writeOutput(o, stdout, out, func(p *report.Printer) { p.Schedule(sched) })
}

func openBacktest(cfg *config.Config, o options) (*backtest.Runner, *model.BacktestDocument, error) {
	opts, err := backtest.OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	doc, err := loader.LoadBacktest(o.backtestPath, loader.Options{Encoding: cfg.Encoding})
	if err != nil {
		return nil, nil, err
	}
	if o.paramsPath != "" {
		// -params only replaces the structure; rows still come from the document
		params, err := loadParams(o.paramsPath)
		if err != nil {
			return nil, nil, err
		}
		opts.Params = &params
	}
	return backtest.NewRunner(opts), doc, nil
}

func loadParams(path string) (structure.Params, error) {
	params, err := structure.LoadParams(path)
	if err != nil {
		return structure.Params{}, err
	}
	if err := params.Validate(); err != nil {
		return structure.Params{}, err
	}
	return params, nil
}

// writeOutput 按 -json 输出 JSON 或文本表格到 -out/stdout
func writeOutput(o options, stdout io.Writer, v any, text func(*report.Printer)) error {
	w := stdout
	if out := strings.TrimSpace(o.outPath); out != "" {
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("prepare output dir: %w", err)
			}
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(report.New(w))
	return nil
}
