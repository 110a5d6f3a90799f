package models

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTPS URL", "https://everytime.kr/@abcd1234", false},
		{"有效的HTTP URL", "http://everytime.kr/@abcd1234", false},
		{"子域名", "https://account.everytime.kr/timetable", false},
		{"无效的协议", "ftp://everytime.kr/@abcd1234", true},
		{"非来源域名", "https://unrelated-domain.example/@abcd1234", true},
		{"域名后缀伪装", "https://fakeeverytime.kr/@abcd1234", true},
		{"无主机名", "https:///path", true},
		{"空URL", "", true},
		{"无协议", "everytime.kr/@abcd1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "everytime.kr")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("期望*ValidationError类型, 实际 %T", err)
				}
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"引擎超时", &EngineError{Kind: EngineTimeout, Attempts: 1}, true},
		{"引擎崩溃", &EngineError{Kind: EngineCrash, Attempts: 1}, true},
		{"空结果", &EngineError{Kind: EngineEmptyResult, Attempts: 1}, true},
		{"校验错误", &ValidationError{URL: "x", Reason: "bad"}, false},
		{"结构解析错误", &ExtractionError{Reason: "style缺失"}, false},
		{"池已满", ErrPoolExhausted, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScrapeConfig_Validate(t *testing.T) {
	valid := ScrapeConfig{
		NavigationTimeout: 10,
		WaitTime:          2,
		MaxRetries:        2,
		RetryBackoff:      1,
		Headless:          true,
		SourceDomain:      "everytime.kr",
	}

	tests := []struct {
		name    string
		mutate  func(c *ScrapeConfig)
		wantErr bool
	}{
		{"有效配置", func(c *ScrapeConfig) {}, false},
		{"超时过小", func(c *ScrapeConfig) { c.NavigationTimeout = 0 }, true},
		{"超时过大", func(c *ScrapeConfig) { c.NavigationTimeout = 300 }, true},
		{"重试为负", func(c *ScrapeConfig) { c.MaxRetries = -1 }, true},
		{"域名为空", func(c *ScrapeConfig) { c.SourceDomain = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PoolConfig
		wantErr bool
	}{
		{"有效配置", PoolConfig{MaxHandles: 5, AdmissionSlots: 5, Workers: 5}, false},
		{"准入槽小于上限", PoolConfig{MaxHandles: 5, AdmissionSlots: 3, Workers: 5}, false},
		{"上限为0", PoolConfig{MaxHandles: 0, AdmissionSlots: 1, Workers: 1}, true},
		{"准入槽大于上限", PoolConfig{MaxHandles: 5, AdmissionSlots: 6, Workers: 5}, true},
		{"工作协程不足", PoolConfig{MaxHandles: 5, AdmissionSlots: 5, Workers: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
