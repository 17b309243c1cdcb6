package snowctl

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"snowball/config"
	"snowball/internal/report"
	"snowball/structure"
	"snowball/trading"
)

// options 命令行参数
type options struct {
	mcPath       string
	backtestPath string
	schedule     bool
	start        string
	paramsPath   string
	horizon      int

	jsonOut   bool
	outPath   string
	encoding  string
	quietGaps bool
	withPaths bool
	allRows   bool
	from      string
	to        string

	configPath string
}

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("snowctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.mcPath, "mc", "", "蒙特卡洛文档路径(JSON)，统计各终态并输出敲出分布")
	fs.StringVar(&o.backtestPath, "backtest", "", "历史回测文档路径(JSON)，逐日滚动回测并与记录状态比对")
	fs.BoolVar(&o.schedule, "schedule", false, "输出敲出观察表（配合 -backtest -start 输出回测起始日观察表；配合 -params 输出模拟观察表）")
	fs.StringVar(&o.start, "start", "", "回测起始日 YYYY-MM-DD（配合 -schedule）")
	fs.StringVar(&o.paramsPath, "params", "", "结构参数文件(YAML格式)，覆盖文档中的参数")
	fs.IntVar(&o.horizon, "horizon", 0, "模拟观察表的交易日数（默认 期限×21）")

	fs.BoolVar(&o.jsonOut, "json", false, "输出 JSON（默认表格文本）")
	fs.StringVar(&o.outPath, "out", "", "输出文件路径（默认stdout）")
	fs.StringVar(&o.encoding, "encoding", "", "输入文档编码 utf-8/gbk/gb18030（默认取配置）")
	fs.BoolVar(&o.quietGaps, "quiet-gaps", false, "不记录被丢弃的观察日")
	fs.BoolVar(&o.withPaths, "paths", false, "蒙特卡洛报告包含逐条路径明细")
	fs.BoolVar(&o.allRows, "all", false, "回测文本输出全部起始日（默认仅输出与记录不一致的行）")
	fs.StringVar(&o.from, "from", "", "回测收盘价序列起始日 YYYY-MM-DD（覆盖配置/文档）")
	fs.StringVar(&o.to, "to", "", "回测收盘价序列结束日 YYYY-MM-DD（覆盖配置/文档）")

	fs.StringVar(&o.configPath, "config", "", "配置文件路径(YAML格式)，默认优先使用 ./config.yaml")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if o.mcPath != "" && o.backtestPath != "" {
		log.Printf("[ERROR] -mc 不能与 -backtest 同时使用\n")
		return 2
	}
	if o.mcPath == "" && o.backtestPath == "" && !o.schedule {
		fs.Usage()
		return 2
	}
	if o.schedule && o.mcPath != "" {
		log.Printf("[ERROR] -schedule 不能与 -mc 同时使用\n")
		return 2
	}
	if o.schedule && o.backtestPath == "" && o.paramsPath == "" {
		log.Printf("[ERROR] -schedule 需要 -backtest 或 -params\n")
		return 2
	}

	if o.configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			o.configPath = "config.yaml"
		}
	}
	cfg := config.GetConfig(o.configPath)
	if o.encoding != "" {
		cfg.Encoding = o.encoding
	}
	if o.quietGaps {
		cfg.LogGaps = false
	}
	if o.withPaths {
		cfg.IncludePaths = true
	}
	if o.from != "" {
		cfg.BacktestStart = o.from
	}
	if o.to != "" {
		cfg.BacktestEnd = o.to
	}

	var err error
	switch {
	case o.mcPath != "":
		err = runMonteCarlo(cfg, o, stdout)
	case o.schedule && o.backtestPath != "":
		err = runBacktestSchedule(cfg, o, stdout)
	case o.schedule:
		err = runSimulatedSchedule(cfg, o, stdout)
	default:
		err = runBacktest(cfg, o, stdout)
	}
	return exitCode(err, stderr)
}

// exitCode 参数无效返回 2，其它错误返回 1
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ve *structure.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintln(stderr, "结构参数无效:")
		report.New(stderr).Issues(ve)
		return 2
	}
	log.Printf("[ERROR] %v\n", err)
	return 1
}

func parseDate(name, v string) (time.Time, error) {
	t, err := time.Parse(trading.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s %q: %w", name, v, err)
	}
	return t, nil
}
