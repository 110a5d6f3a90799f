package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/gradia-project/gradia-parser/internal/models"
)

// Config 应用程序配置
type Config struct {
	Server  ServerConfig        `mapstructure:"server"`
	Pool    models.PoolConfig   `mapstructure:"pool"`
	Scrape  models.ScrapeConfig `mapstructure:"scrape"`
	Logging LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gradia-parser"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 工作协程数未显式配置时跟随实例上限
	if config.Pool.Workers == 0 {
		config.Pool.Workers = config.Pool.MaxHandles
	}

	return &config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return err
	}
	if err := c.Scrape.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("服务监听地址不能为空")
	}
	return nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务配置默认值
	v.SetDefault("server.addr", ":8000")

	// 资源池配置默认值
	v.SetDefault("pool.max_handles", 5)
	v.SetDefault("pool.admission_slots", 5)

	// 抓取配置默认值
	v.SetDefault("scrape.navigation_timeout", 10)
	v.SetDefault("scrape.wait_time", 2)
	v.SetDefault("scrape.max_retries", 2)
	v.SetDefault("scrape.retry_backoff", 1)
	v.SetDefault("scrape.headless", true)
	v.SetDefault("scrape.source_domain", "everytime.kr")

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// MergeCLIFlags 合并命令行参数到配置
// 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(
	maxHandles int,
	admissionSlots int,
	navigationTimeout int,
	waitTime int,
	maxRetries int,
	headless bool,
	addr string,
) {
	if maxHandles > 0 {
		c.Pool.MaxHandles = maxHandles
		if c.Pool.Workers < maxHandles {
			c.Pool.Workers = maxHandles
		}
	}
	if admissionSlots > 0 {
		c.Pool.AdmissionSlots = admissionSlots
	}
	if navigationTimeout > 0 {
		c.Scrape.NavigationTimeout = navigationTimeout
	}
	if waitTime >= 0 {
		c.Scrape.WaitTime = waitTime
	}
	if maxRetries >= 0 {
		c.Scrape.MaxRetries = maxRetries
	}
	c.Scrape.Headless = headless
	if addr != "" {
		c.Server.Addr = addr
	}
}
