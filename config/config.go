package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfig YAML配置文件结构
type YAMLConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Input struct {
		Encoding string `yaml:"encoding"`
	} `yaml:"input"`

	Evaluator struct {
		BlockSize  int   `yaml:"block_size"`
		SearchDays int   `yaml:"search_days"`
		LogGaps    *bool `yaml:"log_gaps"`
	} `yaml:"evaluator"`

	MonteCarlo struct {
		IncludePaths bool `yaml:"include_paths"`
	} `yaml:"montecarlo"`

	Backtest struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"backtest"`
}

// Config 配置
type Config struct {
	// HTTP 服务端口
	Port int

	// 输入文件编码 (utf-8 / gbk / gb18030)
	Encoding string

	// 模拟路径一个观察月的交易日数
	BlockSize int

	// 观察日缺失时向后查找的最大天数
	SearchDays int

	// 是否记录被丢弃的观察日
	LogGaps bool

	// 蒙特卡洛报告是否包含逐条路径结果
	IncludePaths bool

	// 回测区间 (YYYY-MM-DD，空表示使用输入文件中的区间)
	BacktestStart string
	BacktestEnd   string
}

// DefaultConfig 默认配置
var DefaultConfig = Config{
	Port:       19528,
	Encoding:   "utf-8",
	BlockSize:  21,
	SearchDays: 31,
	LogGaps:    true,
}

// LoadFromFile 从YAML文件加载配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var yamlConfig YAMLConfig
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	config := DefaultConfig

	// 服务配置
	if yamlConfig.Server.Port > 0 {
		config.Port = yamlConfig.Server.Port
	}
	if enc := strings.TrimSpace(yamlConfig.Input.Encoding); enc != "" {
		config.Encoding = strings.ToLower(enc)
	}

	// 评估配置
	if yamlConfig.Evaluator.BlockSize > 0 {
		config.BlockSize = yamlConfig.Evaluator.BlockSize
	}
	if yamlConfig.Evaluator.SearchDays > 0 {
		config.SearchDays = yamlConfig.Evaluator.SearchDays
	}
	if yamlConfig.Evaluator.LogGaps != nil {
		config.LogGaps = *yamlConfig.Evaluator.LogGaps
	}
	config.IncludePaths = yamlConfig.MonteCarlo.IncludePaths

	config.BacktestStart = strings.TrimSpace(yamlConfig.Backtest.Start)
	config.BacktestEnd = strings.TrimSpace(yamlConfig.Backtest.End)

	return &config, nil
}

// GetConfig 获取配置 (优先级: 环境变量 > 配置文件 > 默认值)
func GetConfig(configPath string) *Config {
	config := DefaultConfig

	if configPath != "" {
		if cfg, err := LoadFromFile(configPath); err == nil {
			config = *cfg
		} else {
			fmt.Printf("警告: 无法加载配置文件 %s: %v\n", configPath, err)
		}
	}

	if port := getPort(); port > 0 {
		config.Port = port
	}
	if enc := os.Getenv("SNOWBALL_ENCODING"); enc != "" {
		config.Encoding = strings.ToLower(strings.TrimSpace(enc))
	}

	return &config
}

// getPort 获取端口环境变量，无效值忽略
func getPort() int {
	v := strings.TrimSpace(os.Getenv("SNOWBALL_PORT"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 65535 {
		return 0
	}
	return n
}
