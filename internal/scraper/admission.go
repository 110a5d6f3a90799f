package scraper

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// AdmissionController 全局并发准入闸门
// 限制整个进程同时在途的抓取任务数, 与实例池的硬上限相互独立
// (通常不大于池上限, 留出余量)
//
// 与池的非阻塞Acquire不同, 这里是协作式挂起: 超出闸门的请求等待而非失败
type AdmissionController struct {
	sem   *semaphore.Weighted
	slots int
}

// NewAdmissionController 创建准入控制器
func NewAdmissionController(slots int) *AdmissionController {
	return &AdmissionController{
		sem:   semaphore.NewWeighted(int64(slots)),
		slots: slots,
	}
}

// Acquire 占用一个准入槽, 没有空槽时挂起等待
func (a *AdmissionController) Acquire(ctx context.Context) error {
	return a.sem.Acquire(ctx, 1)
}

// Release 归还准入槽
// 必须在任务结果最终确定后调用, 调用方用defer覆盖所有退出路径
func (a *AdmissionController) Release() {
	a.sem.Release(1)
}

// Slots 闸门容量
func (a *AdmissionController) Slots() int {
	return a.slots
}
