package engine

import (
	"context"
	"sync"

	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// HandlePool 浏览器实例池
// 职责: 持有实例数硬上限,签发和回收租约,独占实例的创建与销毁权
//
// 池不维护空闲实例列表: 每次租约都创建全新实例,归还即销毁
// 用创建延迟换取请求间的完全隔离(无陈旧cookie、无JS全局状态、无僵尸标签页)
//
// Acquire不阻塞: 达到上限立即返回ErrPoolExhausted
// 排队(如需要)发生在上游的准入控制器,那是一个独立且通常更小的闸门
type HandlePool struct {
	engine     Engine
	maxHandles int

	// active是池内唯一的共享可变状态,由mu保护
	// 计数包含"正在创建中"的实例,保证创建期间上限依然成立
	mu     sync.Mutex
	active int
	closed bool

	// 在租实例跟踪,关停时强制销毁
	leased map[string]Handle
}

// NewHandlePool 创建实例池
func NewHandlePool(engine Engine, maxHandles int) *HandlePool {
	return &HandlePool{
		engine:     engine,
		maxHandles: maxHandles,
		leased:     make(map[string]Handle),
	}
}

// Acquire 签发一个租约
// 未达上限: 原子递增计数并创建全新实例
// 已达上限: 立即返回ErrPoolExhausted,绝不阻塞
func (p *HandlePool) Acquire(ctx context.Context) (Handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, models.ErrPoolClosed
	}
	if p.active >= p.maxHandles {
		p.mu.Unlock()
		return nil, models.ErrPoolExhausted
	}
	p.active++
	p.mu.Unlock()

	// 实例创建较慢(进程启动),放在锁外执行
	h, err := p.engine.NewHandle(ctx)
	if err != nil {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
		utils.Errorf("创建浏览器实例失败: %v", err)
		return nil, &models.EngineError{Kind: models.EngineCreateFailed, Attempts: 1, Err: err}
	}

	p.mu.Lock()
	if p.closed {
		// 创建期间池被关停,立即销毁并拒绝签发
		p.active--
		p.mu.Unlock()
		p.destroy(h)
		return nil, models.ErrPoolClosed
	}
	p.leased[h.ID()] = h
	current := p.active
	p.mu.Unlock()

	utils.Debugf("签发浏览器实例租约: %s (在租: %d/%d)", h.ID(), current, p.maxHandles)
	return h, nil
}

// Release 结束租约并销毁实例
// 对同一实例重复调用是安全的: 只有首次调用生效
func (p *HandlePool) Release(h Handle) {
	if h == nil {
		return
	}

	p.mu.Lock()
	_, tracked := p.leased[h.ID()]
	if tracked {
		delete(p.leased, h.ID())
		p.active--
	}
	current := p.active
	p.mu.Unlock()

	if !tracked {
		// 已释放过,或已在关停时被强制销毁
		return
	}

	p.destroy(h)
	utils.Debugf("归还浏览器实例租约: %s (在租: %d/%d)", h.ID(), current, p.maxHandles)
}

// ActiveCount 当前在租(含创建中)的实例数
func (p *HandlePool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Shutdown 关停池: 后续Acquire快速失败,所有在租实例被强制销毁
// 仅在进程退出时调用
func (p *HandlePool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	remaining := make([]Handle, 0, len(p.leased))
	for _, h := range p.leased {
		remaining = append(remaining, h)
	}
	p.leased = make(map[string]Handle)
	p.active -= len(remaining)
	p.mu.Unlock()

	for _, h := range remaining {
		p.destroy(h)
	}

	utils.Infof("浏览器实例池已关停, 强制销毁实例数: %d", len(remaining))
}

// destroy 销毁实例,错误只记录不传播
func (p *HandlePool) destroy(h Handle) {
	if err := h.Destroy(); err != nil {
		utils.Warnf("销毁浏览器实例失败 [%s]: %v", h.ID(), err)
	}
}
