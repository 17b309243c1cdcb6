package snowd

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"snowball/api"
	"snowball/config"
)

func Run(args []string) int {
	flags := flag.NewFlagSet("snowd", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var (
		configPath string
		port       int
		quietGaps  bool
	)

	flags.StringVar(&configPath, "config", "", "配置文件路径(YAML格式)，默认优先使用 ./config.yaml")
	flags.IntVar(&port, "port", 0, "HTTP 端口（覆盖配置与 SNOWBALL_PORT）")
	flags.BoolVar(&quietGaps, "quiet-gaps", false, "不记录被丢弃的观察日")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		}
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.GetConfig(configPath)
	if port > 0 {
		cfg.Port = port
	}
	if quietGaps {
		cfg.LogGaps = false
	}

	log.Println("=== 雪球结构评估服务 (snowd) ===")
	log.Printf("[CONFIG] encoding=%s block_size=%d search_days=%d log_gaps=%v\n", cfg.Encoding, cfg.BlockSize, cfg.SearchDays, cfg.LogGaps)

	server := api.NewServer(cfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("[ERROR] HTTP服务启动失败: %v\n", err)
			return 1
		}
		return 0
	case <-sigChan:
	}

	log.Println("正在关闭服务...")
	_ = server.Shutdown()
	log.Println("服务已关闭")
	return 0
}
