package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 批量解析报告生成器
type Reporter struct {
	outputDir string
	startTime time.Time
	results   []models.BatchResult
	succeeded int
	failed    int
}

// NewReporter 创建报告生成器
func NewReporter(outputDir string) *Reporter {
	return &Reporter{
		outputDir: outputDir,
		startTime: time.Now(),
		results:   make([]models.BatchResult, 0),
	}
}

// AddSuccess 记录一个解析成功的URL
func (r *Reporter) AddSuccess(url string, entries []models.TimetableEntry) {
	r.results = append(r.results, models.BatchResult{
		URL:       url,
		Timetable: entries,
	})
	r.succeeded++
}

// AddFailure 记录一个解析失败的URL
func (r *Reporter) AddFailure(url string, err error) {
	r.results = append(r.results, models.BatchResult{
		URL:   url,
		Error: err.Error(),
	})
	r.failed++
}

// GenerateReport 生成批量解析报告
func (r *Reporter) GenerateReport() error {
	reportsDir := filepath.Join(r.outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	endTime := time.Now()
	report := models.BatchReport{
		StartTime: r.startTime,
		EndTime:   endTime,
		Stats: models.BatchStats{
			Total:     len(r.results),
			Succeeded: r.succeeded,
			Failed:    r.failed,
			Duration:  endTime.Sub(r.startTime).Seconds(),
		},
		Results:   r.results,
		OutputDir: r.outputDir,
	}

	// 保存主报告
	if err := r.saveJSONReport(reportsDir, "batch_report.json", report); err != nil {
		return err
	}

	// 成功与失败分别另存一份, 便于只关心其中一类的消费方
	succeeded := make([]models.BatchResult, 0, r.succeeded)
	failed := make([]models.BatchResult, 0, r.failed)
	for _, res := range r.results {
		if res.Error == "" {
			succeeded = append(succeeded, res)
		} else {
			failed = append(failed, res)
		}
	}
	if err := r.saveJSONReport(reportsDir, "success_results.json", succeeded); err != nil {
		return err
	}
	if err := r.saveJSONReport(reportsDir, "failed_results.json", failed); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	filepath := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", filepath)
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
