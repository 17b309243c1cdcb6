package main

import (
	"os"

	"snowball/internal/snowctl"
	"snowball/internal/snowd"
)

// Version is injected by build scripts via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	args := os.Args[1:]
	if shouldRouteToCtl(args) {
		os.Exit(snowctl.Run(args))
	}
	os.Exit(snowd.Run(args))
}

// ctlFlags 只有 snowctl 识别的参数
var ctlFlags = []string{"mc", "backtest", "schedule", "params"}

func shouldRouteToCtl(args []string) bool {
	for _, a := range args {
		switch a {
		case "-mc", "--mc", "-backtest", "--backtest", "-schedule", "--schedule", "-params", "--params":
			return true
		}
		for _, name := range ctlFlags {
			if hasFlagPrefix(a, name) {
				return true
			}
		}
	}
	return false
}

// hasFlagPrefix 匹配 -name=value 形式
func hasFlagPrefix(a, name string) bool {
	for _, p := range []string{"-" + name + "=", "--" + name + "="} {
		if len(a) > len(p) && a[:len(p)] == p {
			return true
		}
	}
	return false
}
