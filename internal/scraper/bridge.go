package scraper

import (
	"context"
	"errors"
	"sync"

	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// ErrBridgeClosed 异步桥已关停
var ErrBridgeClosed = errors.New("异步桥已关停")

// Outcome 一次解析任务的最终结果
type Outcome struct {
	Entries []models.TimetableEntry
	Err     error
}

// Future 异步任务凭证, 持有者等待结果
type Future struct {
	result chan Outcome
}

// Wait 等待任务完成或context取消
func (f *Future) Wait(ctx context.Context) ([]models.TimetableEntry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-f.result:
		return out.Entries, out.Err
	}
}

// Bridge 异步桥
// 浏览器自动化调用天然阻塞, 桥把它们调度到固定大小的工作协程池上,
// 向调用方返回Future, 保证请求处理层自身从不执行阻塞的引擎调用
// 一个工作任务对应恰好一个完整的解析请求
type Bridge struct {
	jobs   chan job
	done   chan struct{}
	runner func(ctx context.Context, req models.ParseRequest) ([]models.TimetableEntry, error)

	closeOnce sync.Once
	wg        sync.WaitGroup
}

type job struct {
	ctx    context.Context
	req    models.ParseRequest
	result chan Outcome
}

// NewBridge 创建异步桥并启动工作协程
// workers应不小于实例池上限, 保证桥不会成为比池更窄的瓶颈
func NewBridge(workers int, runner func(ctx context.Context, req models.ParseRequest) ([]models.TimetableEntry, error)) *Bridge {
	b := &Bridge{
		jobs:   make(chan job, workers),
		done:   make(chan struct{}),
		runner: runner,
	}

	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go b.worker(i)
	}

	utils.Debugf("异步桥已启动, 工作协程数: %d", workers)
	return b
}

// Submit 提交一个解析任务, 返回Future
func (b *Bridge) Submit(ctx context.Context, req models.ParseRequest) (*Future, error) {
	j := job{
		ctx: ctx,
		req: req,
		// 缓冲为1: 即使调用方放弃等待, 工作协程也不会被结果投递卡住
		result: make(chan Outcome, 1),
	}

	select {
	case <-b.done:
		return nil, ErrBridgeClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case b.jobs <- j:
		return &Future{result: j.result}, nil
	}
}

// worker 工作协程: 逐个取任务执行, 结果写入任务自己的result通道
func (b *Bridge) worker(id int) {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case j := <-b.jobs:
			entries, err := b.runner(j.ctx, j.req)
			j.result <- Outcome{Entries: entries, Err: err}
			if err != nil {
				utils.Debugf("工作协程 %d 任务失败 [%s]: %v", id, j.req.URL, err)
			}
		}
	}
}

// Shutdown 关停异步桥: 拒绝新任务, 已入队但未开始的任务以关停错误回应
// 仅在进程退出时调用
func (b *Bridge) Shutdown() {
	b.closeOnce.Do(func() {
		close(b.done)
		b.wg.Wait()

		// 回应所有尚未被工作协程取走的任务
		for {
			select {
			case j := <-b.jobs:
				j.result <- Outcome{Err: ErrBridgeClosed}
			default:
				utils.Debug("异步桥已关停")
				return
			}
		}
	})
}
