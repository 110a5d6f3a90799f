package sysinfo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Monitor 系统资源监控器
// 职责: 采样进程与系统内存, 后台周期性检查内存压力并记录日志
type Monitor struct {
	proc *process.Process

	// 缓存的最近一次快照
	lastSnapshot MemorySnapshot
	mu           sync.RWMutex

	// 监控控制
	cancelFunc context.CancelFunc
	isRunning  bool
}

// MemorySnapshot 内存使用快照
type MemorySnapshot struct {
	Timestamp   string            `json:"timestamp"`
	Application ApplicationMemory `json:"application"`
	System      SystemMemory      `json:"system"`
}

// ApplicationMemory 当前进程的内存占用
type ApplicationMemory struct {
	RSSMB   float64 `json:"rss_mb"`
	VMSMB   float64 `json:"vms_mb"`
	Percent float64 `json:"percent"`
}

// SystemMemory 系统整体内存状态
type SystemMemory struct {
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
	UsedPercent float64 `json:"used_percent"`
}

// NewMonitor 创建资源监控器实例
func NewMonitor() (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("获取当前进程句柄失败: %w", err)
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("获取系统内存失败")
	} else {
		log.Info().Msgf("系统总内存: %.2f GB", float64(vmStat.Total)/(1024*1024*1024))
	}

	return &Monitor{proc: proc}, nil
}

// Snapshot 采样一次内存状态
func (m *Monitor) Snapshot() (MemorySnapshot, error) {
	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		return MemorySnapshot{}, fmt.Errorf("获取进程内存信息失败: %w", err)
	}

	memPercent, err := m.proc.MemoryPercent()
	if err != nil {
		return MemorySnapshot{}, fmt.Errorf("获取进程内存占比失败: %w", err)
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return MemorySnapshot{}, fmt.Errorf("获取系统内存信息失败: %w", err)
	}

	snapshot := MemorySnapshot{
		Timestamp: time.Now().Format(time.RFC3339),
		Application: ApplicationMemory{
			RSSMB:   float64(memInfo.RSS) / 1024 / 1024,
			VMSMB:   float64(memInfo.VMS) / 1024 / 1024,
			Percent: float64(memPercent),
		},
		System: SystemMemory{
			TotalGB:     float64(vmStat.Total) / 1024 / 1024 / 1024,
			AvailableGB: float64(vmStat.Available) / 1024 / 1024 / 1024,
			UsedPercent: vmStat.UsedPercent,
		},
	}

	m.mu.Lock()
	m.lastSnapshot = snapshot
	m.mu.Unlock()

	return snapshot, nil
}

// LastSnapshot 返回缓存的最近一次快照
func (m *Monitor) LastSnapshot() MemorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSnapshot
}

// StartMonitoring 启动后台监控
// 启动后台goroutine周期性采样并检查内存压力(幂等)
func (m *Monitor) StartMonitoring(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFunc = cancel
	m.isRunning = true

	go m.monitoringLoop(ctx, interval)
}

// monitoringLoop 后台监控循环
func (m *Monitor) monitoringLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, err := m.Snapshot()
			if err != nil {
				log.Warn().Err(err).Msg("内存采样失败")
				continue
			}
			m.checkPressure(snapshot)
		}
	}
}

// checkPressure 根据可用内存记录压力日志
// 浏览器实例是内存大户, 压力升高往往预示实例创建即将失败
func (m *Monitor) checkPressure(snapshot MemorySnapshot) {
	availableMB := snapshot.System.AvailableGB * 1024

	switch pressure := ClassifyPressure(availableMB); pressure {
	case PressureEmergency:
		log.Error().Msgf("内存紧急状态(可用%.0fMB), 浏览器实例创建极可能失败", availableMB)
	case PressureCritical:
		log.Warn().Msgf("内存严重不足(可用%.0fMB)", availableMB)
	case PressureWarning:
		log.Warn().Msgf("内存偏紧(可用%.0fMB)", availableMB)
	}
}

// StopMonitoring 停止后台监控
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning && m.cancelFunc != nil {
		m.cancelFunc()
		m.isRunning = false
		m.cancelFunc = nil
	}
}

// Pressure 内存压力等级
type Pressure string

const (
	PressureNormal    Pressure = "normal"
	PressureWarning   Pressure = "warning"
	PressureCritical  Pressure = "critical"
	PressureEmergency Pressure = "emergency"
)

// ClassifyPressure 根据可用内存(MB)判断压力等级
func ClassifyPressure(availableMB float64) Pressure {
	switch {
	case availableMB < 200:
		return PressureEmergency
	case availableMB < 300:
		return PressureCritical
	case availableMB < 500:
		return PressureWarning
	default:
		return PressureNormal
	}
}
