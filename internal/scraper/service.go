package scraper

import (
	"context"
	"time"

	"github.com/gradia-project/gradia-parser/internal/engine"
	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// Service 时间表解析服务
// 组合准入闸门、异步桥、重试执行器与实例池, 对外暴露单一操作:
// "解析URL处的时间表, 返回结构化条目或一个类型化错误"
//
// 由进程的组装根显式构造并注入, 生命周期挂在进程自身的启动/关停上
type Service struct {
	pool      *engine.HandlePool
	executor  *Executor
	admission *AdmissionController
	bridge    *Bridge
	scrape    models.ScrapeConfig
}

// NewService 组装解析服务
func NewService(eng engine.Engine, poolCfg models.PoolConfig, scrapeCfg models.ScrapeConfig) *Service {
	pool := engine.NewHandlePool(eng, poolCfg.MaxHandles)
	executor := NewExecutor(pool, scrapeCfg)

	s := &Service{
		pool:      pool,
		executor:  executor,
		admission: NewAdmissionController(poolCfg.AdmissionSlots),
		scrape:    scrapeCfg,
	}
	s.bridge = NewBridge(poolCfg.Workers, executor.Run)

	utils.Infof("解析服务已就绪: 实例上限=%d, 准入槽=%d, 工作协程=%d",
		poolCfg.MaxHandles, poolCfg.AdmissionSlots, poolCfg.Workers)
	return s
}

// ParseTimetable 解析一个时间表URL
// 流程: 准入闸门 → 异步桥 → 重试执行器 → 实例池 → 提取器
// 准入槽在结果最终确定后通过defer无条件归还
func (s *Service) ParseTimetable(ctx context.Context, url string) ([]models.TimetableEntry, error) {
	if err := s.admission.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.admission.Release()

	req := models.ParseRequest{
		URL:               url,
		MaxRetries:        s.scrape.MaxRetries,
		NavigationTimeout: time.Duration(s.scrape.NavigationTimeout) * time.Second,
		WaitTime:          time.Duration(s.scrape.WaitTime) * time.Second,
	}

	future, err := s.bridge.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return future.Wait(ctx)
}

// Pool 暴露实例池(用于观测)
func (s *Service) Pool() *engine.HandlePool {
	return s.pool
}

// Shutdown 关停服务: 先停异步桥(等待在途任务), 再关停实例池
func (s *Service) Shutdown() {
	s.bridge.Shutdown()
	s.pool.Shutdown()
}
