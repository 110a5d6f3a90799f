package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// 不存在的路径下加载, 全部使用默认值
	tempDir := t.TempDir()
	origWd, _ := os.Getwd()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("切换目录失败: %v", err)
	}
	defer os.Chdir(origWd)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Errorf("默认监听地址 = %q, 期望 ':8000'", cfg.Server.Addr)
	}
	if cfg.Pool.MaxHandles != 5 {
		t.Errorf("默认实例上限 = %d, 期望 5", cfg.Pool.MaxHandles)
	}
	if cfg.Pool.AdmissionSlots != 5 {
		t.Errorf("默认准入槽数 = %d, 期望 5", cfg.Pool.AdmissionSlots)
	}
	// 工作协程数未配置时跟随实例上限
	if cfg.Pool.Workers != cfg.Pool.MaxHandles {
		t.Errorf("默认工作协程数 = %d, 期望 %d", cfg.Pool.Workers, cfg.Pool.MaxHandles)
	}
	if cfg.Scrape.NavigationTimeout != 10 {
		t.Errorf("默认导航超时 = %d, 期望 10", cfg.Scrape.NavigationTimeout)
	}
	if cfg.Scrape.SourceDomain != "everytime.kr" {
		t.Errorf("默认来源域名 = %q", cfg.Scrape.SourceDomain)
	}
	if !cfg.Scrape.Headless {
		t.Error("默认应为无头模式")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("默认日志级别 = %q, 期望 'info'", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应通过校验: %v", err)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	content := `server:
  addr: ":9090"
pool:
  max_handles: 3
  admission_slots: 2
  workers: 6
scrape:
  navigation_timeout: 20
  max_retries: 4
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置文件失败: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("监听地址 = %q, 期望 ':9090'", cfg.Server.Addr)
	}
	if cfg.Pool.MaxHandles != 3 || cfg.Pool.AdmissionSlots != 2 || cfg.Pool.Workers != 6 {
		t.Errorf("资源池配置 = %+v", cfg.Pool)
	}
	if cfg.Scrape.NavigationTimeout != 20 || cfg.Scrape.MaxRetries != 4 {
		t.Errorf("抓取配置 = %+v", cfg.Scrape)
	}
	// 未覆盖的字段保留默认值
	if cfg.Scrape.SourceDomain != "everytime.kr" {
		t.Errorf("来源域名 = %q, 期望默认值", cfg.Scrape.SourceDomain)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("日志级别 = %q, 期望 'debug'", cfg.Logging.Level)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("pool: [这不是映射"), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("非法配置文件应返回错误")
	}
}

func TestMergeCLIFlags(t *testing.T) {
	cfg := &Config{}
	cfg.Pool.MaxHandles = 5
	cfg.Pool.AdmissionSlots = 5
	cfg.Pool.Workers = 5
	cfg.Scrape.NavigationTimeout = 10
	cfg.Scrape.WaitTime = 2
	cfg.Scrape.MaxRetries = 2
	cfg.Server.Addr = ":8000"

	cfg.MergeCLIFlags(8, 4, 30, 5, 1, false, ":9000")

	if cfg.Pool.MaxHandles != 8 {
		t.Errorf("实例上限 = %d, 期望 8", cfg.Pool.MaxHandles)
	}
	// 工作协程数跟随抬升, 保证桥不窄于池
	if cfg.Pool.Workers != 8 {
		t.Errorf("工作协程数 = %d, 期望 8", cfg.Pool.Workers)
	}
	if cfg.Pool.AdmissionSlots != 4 {
		t.Errorf("准入槽数 = %d, 期望 4", cfg.Pool.AdmissionSlots)
	}
	if cfg.Scrape.NavigationTimeout != 30 || cfg.Scrape.WaitTime != 5 || cfg.Scrape.MaxRetries != 1 {
		t.Errorf("抓取配置 = %+v", cfg.Scrape)
	}
	if cfg.Scrape.Headless {
		t.Error("无头模式应被关闭")
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("监听地址 = %q, 期望 ':9000'", cfg.Server.Addr)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"准入槽超过实例上限", func(c *Config) { c.Pool.AdmissionSlots = 10 }, true},
		{"监听地址为空", func(c *Config) { c.Server.Addr = "" }, true},
		{"导航超时越界", func(c *Config) { c.Scrape.NavigationTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Server.Addr = ":8000"
			cfg.Pool.MaxHandles = 5
			cfg.Pool.AdmissionSlots = 5
			cfg.Pool.Workers = 5
			cfg.Scrape.NavigationTimeout = 10
			cfg.Scrape.WaitTime = 2
			cfg.Scrape.MaxRetries = 2
			cfg.Scrape.RetryBackoff = 1
			cfg.Scrape.SourceDomain = "everytime.kr"
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
