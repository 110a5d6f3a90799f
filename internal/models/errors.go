package models

import (
	"errors"
	"fmt"
)

// 错误类型定义
var (
	ErrPoolExhausted = errors.New("浏览器实例池已满")
	ErrPoolClosed    = errors.New("浏览器实例池已关闭")
)

// EngineErrorKind 引擎错误分类
type EngineErrorKind string

const (
	EngineTimeout      EngineErrorKind = "timeout"       // 导航超时
	EngineCrash        EngineErrorKind = "crash"         // 引擎崩溃
	EngineEmptyResult  EngineErrorKind = "empty_result"  // 页面已加载但未找到时间表数据
	EngineCreateFailed EngineErrorKind = "create_failed" // 实例创建失败
)

// ValidationError URL校验失败,不重试
type ValidationError struct {
	URL    string // 被校验的URL
	Reason string // 拒绝原因
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("无效的URL [%s]: %s", e.URL, e.Reason)
}

// EngineError 瞬时引擎错误,可在重试上限内重试
// Attempts 记录执行器实际完成的尝试次数,便于观测
type EngineError struct {
	Kind     EngineErrorKind
	Attempts int
	Err      error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("引擎错误(%s, 尝试%d次): %v", e.Kind, e.Attempts, e.Err)
	}
	return fmt.Sprintf("引擎错误(%s, 尝试%d次)", e.Kind, e.Attempts)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// ExtractionError 页面已加载且非空,但结构无法解析(页面格式变化),不重试
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("时间表结构解析失败: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("时间表结构解析失败: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsTransient 判断错误是否为可重试的瞬时错误
func IsTransient(err error) bool {
	var engineErr *EngineError
	return errors.As(err, &engineErr)
}
