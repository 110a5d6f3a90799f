package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// 固定User-Agent,与真实浏览器保持一致,避免被目标站点识别为自动化流量
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

// RodEngine 基于Rod的浏览器实例工厂
// 每次NewHandle都启动一个独立的浏览器进程(隐身模式),保证请求间完全隔离:
// 没有残留cookie、没有共享JS全局变量、没有僵尸标签页
type RodEngine struct {
	headless          bool
	navigationTimeout time.Duration
	waitTime          time.Duration
}

// NewRodEngine 创建Rod引擎工厂
func NewRodEngine(cfg models.ScrapeConfig) *RodEngine {
	return &RodEngine{
		headless:          cfg.Headless,
		navigationTimeout: time.Duration(cfg.NavigationTimeout) * time.Second,
		waitTime:          time.Duration(cfg.WaitTime) * time.Second,
	}
}

// NewHandle 启动一个新的浏览器进程并建立连接
func (e *RodEngine) NewHandle(ctx context.Context) (Handle, error) {
	// 隔离与稳定性启动参数(隐身模式、禁用扩展、固定窗口大小)
	l := launcher.New().
		Headless(e.headless).
		Set("incognito").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("window-size", "1920,1080").
		Set("user-agent", defaultUserAgent)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	h := &rodHandle{
		id:                uuid.New().String(),
		createdAt:         time.Now(),
		launcher:          l,
		browser:           browser,
		navigationTimeout: e.navigationTimeout,
		waitTime:          e.waitTime,
	}

	utils.Debugf("浏览器实例已启动: %s", h.id)
	return h, nil
}

// rodHandle 一个独立的浏览器进程实例
type rodHandle struct {
	id                string
	createdAt         time.Time
	launcher          *launcher.Launcher
	browser           *rod.Browser
	navigationTimeout time.Duration
	waitTime          time.Duration
}

func (h *rodHandle) ID() string {
	return h.id
}

func (h *rodHandle) CreatedAt() time.Time {
	return h.createdAt
}

// Render 导航并返回渲染后的HTML快照
// Rod内部大量使用panic传递错误,这里统一recover转换为error,
// 保证上层执行器只面对显式的错误返回值
func (h *rodHandle) Render(ctx context.Context, url string) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("浏览器操作panic: %v", r)
		}
	}()

	page, err := h.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("创建页面失败: %w", err)
	}

	// 每次导航都带硬超时,超时的实例不会被悄悄留活,而是随租约一起销毁
	page = page.Context(ctx).Timeout(h.navigationTimeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("导航失败: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("等待页面加载失败: %w", err)
	}

	// 额外等待,让时间表的JS渲染完成
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(h.waitTime):
	}

	html, err = page.HTML()
	if err != nil {
		return "", fmt.Errorf("获取页面快照失败: %w", err)
	}
	return html, nil
}

// Destroy 关闭浏览器进程
// 销毁失败只记录日志,不向上传播(上层保证只调用一次)
func (h *rodHandle) Destroy() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("关闭浏览器panic: %v", r)
		}
		h.launcher.Kill()
	}()

	if cerr := h.browser.Close(); cerr != nil {
		return fmt.Errorf("关闭浏览器失败: %w", cerr)
	}
	utils.Debugf("浏览器实例已销毁: %s", h.id)
	return nil
}
