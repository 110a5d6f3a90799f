package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/gradia-project/gradia-parser/internal/engine"
	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// Executor 带重试的抓取执行器
// 单次请求的状态机: 校验 → 租用 → 导航 → 提取 → 成功 | 重试 → 耗尽
//
// 只有瞬时引擎错误(超时、崩溃、空提取)会重试; 校验错误、池满、
// 结构解析错误都是终态。每条退出路径都保证归还租约
type Executor struct {
	pool         *engine.HandlePool
	sourceDomain string
	retryBackoff time.Duration
}

// NewExecutor 创建执行器
func NewExecutor(pool *engine.HandlePool, cfg models.ScrapeConfig) *Executor {
	return &Executor{
		pool:         pool,
		sourceDomain: cfg.SourceDomain,
		retryBackoff: time.Duration(cfg.RetryBackoff) * time.Second,
	}
}

// Run 执行一次逻辑解析请求
// 调用方看到的要么是最终成功, 要么是一个最终的类型化错误, 绝无中间状态
func (e *Executor) Run(ctx context.Context, req models.ParseRequest) ([]models.TimetableEntry, error) {
	// 校验先行: 非法URL绝不消耗浏览器实例
	if err := models.ValidateURL(req.URL, e.sourceDomain); err != nil {
		return nil, err
	}

	attempts := 0
	for attempt := 0; attempt <= req.MaxRetries; attempt++ {
		attempts++

		entries, err := e.attempt(ctx, req)
		if err == nil {
			return entries, nil
		}

		// 池满是背压信号, 由调用方稍后重试, 执行器不消化
		if errors.Is(err, models.ErrPoolExhausted) || errors.Is(err, models.ErrPoolClosed) {
			return nil, err
		}

		var engErr *models.EngineError
		if !errors.As(err, &engErr) {
			// 校验/结构解析/未知错误: 不重试
			return nil, err
		}

		utils.Warnf("抓取尝试失败 [%s] (第%d/%d次, 分类: %s): %v",
			req.URL, attempts, req.MaxRetries+1, engErr.Kind, engErr.Err)

		if attempt == req.MaxRetries {
			// 重试耗尽, 带上尝试次数返回最后一个底层错误
			return nil, &models.EngineError{Kind: engErr.Kind, Attempts: attempts, Err: engErr.Err}
		}

		// 固定短退避后回到租用状态
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.retryBackoff):
		}
	}

	// 不可达: 循环内要么返回成功要么返回终态错误
	return nil, &models.EngineError{Kind: models.EngineCrash, Attempts: attempts}
}

// attempt 执行一次完整的 租用→导航→提取 尝试
// defer保证成功、预期失败、panic、超时下租约都恰好归还一次
func (e *Executor) attempt(ctx context.Context, req models.ParseRequest) (entries []models.TimetableEntry, err error) {
	h, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.pool.Release(h)

	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("抓取尝试panic [%s]: %v", req.URL, r)
			err = &models.EngineError{Kind: models.EngineCrash, Attempts: 1, Err: errors.New("引擎层panic")}
		}
	}()

	html, err := h.Render(ctx, req.URL)
	if err != nil {
		return nil, classifyRenderError(err)
	}

	entries, err = Extract(html)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		// 页面已加载但没有时间表数据: 多数情况是渲染未完成, 值得重试
		return nil, &models.EngineError{
			Kind:     models.EngineEmptyResult,
			Attempts: 1,
			Err:      errors.New("시간표 데이터를 찾을 수 없습니다"),
		}
	}

	return entries, nil
}

// classifyRenderError 把导航阶段的错误归入封闭的错误分类集合
func classifyRenderError(err error) error {
	// 调用方取消不属于引擎故障, 原样上抛且不重试
	if errors.Is(err, context.Canceled) {
		return err
	}
	kind := models.EngineCrash
	if errors.Is(err, context.DeadlineExceeded) {
		kind = models.EngineTimeout
	}
	return &models.EngineError{Kind: kind, Attempts: 1, Err: err}
}
