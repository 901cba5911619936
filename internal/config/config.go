package config

import (
	"github.com/blues/quirklr/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Proofrail ProofrailConfig `mapstructure:"proofrail"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Log       LogConfig       `mapstructure:"log"`
	Cors      CorsConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	Enabled       bool   `mapstructure:"enabled"`       // 是否启用链上锚定
	ChainType     string `mapstructure:"chain_type"`    // 链类型 (coston2等测试网)
	ChainId       int64  `mapstructure:"chain_id"`      // 链ID
	RpcUrl        string `mapstructure:"rpc_url"`       // RPC节点URL
	PrivateKey    string `mapstructure:"private_key"`   // 私钥
	VaultAddress  string `mapstructure:"vault_address"` // 金库合约地址
	StartBlock    int64  `mapstructure:"start_block"`   // 监控起始区块号
	Confirmations int    `mapstructure:"confirmations"` // 确认区块数
}

// ProofrailConfig ISO-20022 凭证服务配置
type ProofrailConfig struct {
	BaseUrl string `mapstructure:"base_url"` // 服务地址
	ApiKey  string `mapstructure:"api_key"`  // X-API-Key
	Timeout int    `mapstructure:"timeout"`  // 请求超时（秒）
}

type SchedulerConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Interval int  `mapstructure:"interval"` // 秒
}

type MonitorConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Interval int  `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

type CorsConfig struct {
	Origin string `mapstructure:"origin"`
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/quirklr")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "quirklr")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.enabled", true)
	viper.SetDefault("chain.chain_type", "coston2")
	viper.SetDefault("chain.chain_id", 114)
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("chain.confirmations", 1)
	viper.SetDefault("proofrail.base_url", "http://localhost:8000")
	viper.SetDefault("proofrail.timeout", 15)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.interval", 300)
	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")
	viper.SetDefault("cors.origin", "*")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
