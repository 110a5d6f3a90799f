package models

import "time"

// BatchStats 批量解析统计
type BatchStats struct {
	Total     int     `json:"total"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Duration  float64 `json:"duration_seconds"`
}

// BatchResult 单个URL的解析结果
type BatchResult struct {
	URL       string           `json:"url"`
	Timetable []TimetableEntry `json:"timetable,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// BatchReport 批量解析报告
type BatchReport struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Stats     BatchStats    `json:"stats"`
	Results   []BatchResult `json:"results"`
	OutputDir string        `json:"output_dir"`
}
