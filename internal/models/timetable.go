package models

import (
	"fmt"
	"time"
)

// DayNames 星期枚举(时间表只包含周一到周五)
var DayNames = [5]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// 子字段缺失时的占位符(来自页面本身的语言约定,缺失不是错误)
const (
	PlaceholderName       = "알 수 없음"  // 课程名未知
	PlaceholderPlace      = "장소 미정"   // 教室未定
	PlaceholderInstructor = "담당자 미정"  // 教师未定
)

// TimetableEntry 一条结构化的时间表记录
type TimetableEntry struct {
	Day       string `json:"day"`        // 星期 (Monday..Friday)
	Name      string `json:"name"`       // 课程名
	StartTime string `json:"start_time"` // 开始时间 (HH:MM, 24小时制)
	EndTime   string `json:"end_time"`   // 结束时间 (HH:MM, 24小时制)
	Place     string `json:"place"`      // 教室
	Professor string `json:"professor"`  // 教师
}

// ParseRequest 一次逻辑解析任务
type ParseRequest struct {
	URL               string        // 目标时间表URL
	MaxRetries        int           // 瞬时错误最大重试次数(不含首次尝试)
	NavigationTimeout time.Duration // 单次导航超时
	WaitTime          time.Duration // 页面加载后的额外等待时间(等待JS渲染)
}

// ScrapeConfig 抓取配置
type ScrapeConfig struct {
	NavigationTimeout int    `json:"navigation_timeout" mapstructure:"navigation_timeout"` // 导航超时(秒) (默认:10)
	WaitTime          int    `json:"wait_time" mapstructure:"wait_time"`                   // 页面等待时间(秒) (默认:2)
	MaxRetries        int    `json:"max_retries" mapstructure:"max_retries"`               // 最大重试次数 (默认:2)
	RetryBackoff      int    `json:"retry_backoff" mapstructure:"retry_backoff"`           // 重试前等待(秒) (默认:1)
	Headless          bool   `json:"headless" mapstructure:"headless"`                     // 无头模式 (默认:true)
	SourceDomain      string `json:"source_domain" mapstructure:"source_domain"`           // 允许的来源域名 (默认:everytime.kr)
}

// Validate 验证抓取配置
func (c *ScrapeConfig) Validate() error {
	if c.NavigationTimeout < 1 || c.NavigationTimeout > 120 {
		return fmt.Errorf("导航超时必须在1-120秒之间")
	}
	if c.WaitTime < 0 || c.WaitTime > 60 {
		return fmt.Errorf("等待时间必须在0-60秒之间")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("重试次数必须在0-10之间")
	}
	if c.RetryBackoff < 0 || c.RetryBackoff > 30 {
		return fmt.Errorf("重试等待必须在0-30秒之间")
	}
	if c.SourceDomain == "" {
		return fmt.Errorf("来源域名不能为空")
	}
	return nil
}

// PoolConfig 资源池配置
type PoolConfig struct {
	MaxHandles     int `json:"max_handles" mapstructure:"max_handles"`         // 浏览器实例硬上限 (默认:5)
	AdmissionSlots int `json:"admission_slots" mapstructure:"admission_slots"` // 全局并发准入槽数 (默认:5)
	Workers        int `json:"workers" mapstructure:"workers"`                 // 异步桥工作协程数 (默认:max_handles)
}

// Validate 验证资源池配置
func (c *PoolConfig) Validate() error {
	if c.MaxHandles < 1 || c.MaxHandles > 64 {
		return fmt.Errorf("浏览器实例上限必须在1-64之间")
	}
	if c.AdmissionSlots < 1 {
		return fmt.Errorf("准入槽数必须大于0")
	}
	if c.AdmissionSlots > c.MaxHandles {
		return fmt.Errorf("准入槽数不能大于浏览器实例上限")
	}
	if c.Workers < c.MaxHandles {
		return fmt.Errorf("工作协程数不能小于浏览器实例上限")
	}
	return nil
}
