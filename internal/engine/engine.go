// Package engine 封装浏览器自动化引擎的实例生命周期与资源池
package engine

import (
	"context"
	"time"
)

// Handle 一个已租出的浏览器自动化实例
// 每个实例只服务一次租约,租约结束后必须销毁,绝不复用
// (复用会把上一次请求的DOM/JS状态带入下一次提取)
type Handle interface {
	// ID 实例唯一标识
	ID() string

	// CreatedAt 实例创建时间
	CreatedAt() time.Time

	// Render 导航到目标URL,等待页面渲染完成后返回DOM快照(HTML)
	Render(ctx context.Context, url string) (string, error)

	// Destroy 销毁底层引擎实例,释放所有资源
	Destroy() error
}

// Engine 浏览器实例工厂
type Engine interface {
	// NewHandle 创建一个全新的隔离实例
	NewHandle(ctx context.Context) (Handle, error)
}
