package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

// TimetableResponse 时间表解析成功的响应体
type TimetableResponse struct {
	Timetable []models.TimetableEntry `json:"timetable"`
	Message   string                  `json:"message"`
}

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// handleRoot 欢迎页
func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Welcome to Gradia Parser",
	})
}

// handleTimetable 解析时间表
// GET /timetable?url=<时间表URL>
func (s *Server) handleTimetable(c echo.Context) error {
	url := c.QueryParam("url")
	if url == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Detail: "缺少url查询参数",
		})
	}

	entries, err := s.service.ParseTimetable(c.Request().Context(), url)
	if err != nil {
		status, detail := mapParseError(err)
		utils.Warnf("解析请求失败 [%s] -> %d: %v", url, status, err)
		return c.JSON(status, ErrorResponse{Detail: detail})
	}

	return c.JSON(http.StatusOK, TimetableResponse{
		Timetable: entries,
		Message:   "시간표 파싱 성공",
	})
}

// handleMemory 内存使用情况
// GET /system/memory
func (s *Server) handleMemory(c echo.Context) error {
	snapshot, err := s.monitor.Snapshot()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Detail: fmt.Sprintf("获取内存信息失败: %v", err),
		})
	}
	return c.JSON(http.StatusOK, snapshot)
}

// mapParseError 把类型化的解析错误映射为HTTP状态码
// 调用方错误(非法URL、页面结构无法解析)用4xx,
// 服务端资源与引擎问题用5xx, 其中超时用504与过载(503)区分开
func mapParseError(err error) (int, string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	var xerr *models.ExtractionError
	if errors.As(err, &xerr) {
		return http.StatusBadRequest, xerr.Error()
	}

	if errors.Is(err, models.ErrPoolExhausted) || errors.Is(err, models.ErrPoolClosed) {
		return http.StatusServiceUnavailable, err.Error()
	}

	var engErr *models.EngineError
	if errors.As(err, &engErr) {
		if engErr.Kind == models.EngineTimeout {
			return http.StatusGatewayTimeout, engErr.Error()
		}
		return http.StatusServiceUnavailable, engErr.Error()
	}

	return http.StatusInternalServerError, fmt.Sprintf("시간표 파싱 실패: %v", err)
}
