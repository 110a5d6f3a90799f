package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/sysinfo"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// TimetableService 时间表解析服务的行为约定
// 由解析服务实现, 测试中可替换为假实现
type TimetableService interface {
	ParseTimetable(ctx context.Context, url string) ([]models.TimetableEntry, error)
}

// MemoryProvider 内存快照提供方
type MemoryProvider interface {
	Snapshot() (sysinfo.MemorySnapshot, error)
}

// Server HTTP服务
type Server struct {
	echo    *echo.Echo
	service TimetableService
	monitor MemoryProvider
}

// New 创建HTTP服务并注册路由
func New(service TimetableService, monitor MemoryProvider) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:    e,
		service: service,
		monitor: monitor,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/timetable", s.handleTimetable)
	s.echo.GET("/timetable/", s.handleTimetable)
	s.echo.GET("/system/memory", s.handleMemory)
}

// Start 启动HTTP服务(阻塞)
func (s *Server) Start(addr string) error {
	utils.Infof("HTTP服务监听: %s", addr)
	return s.echo.Start(addr)
}

// Shutdown 优雅关停HTTP服务
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
