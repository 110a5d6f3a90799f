// Package scraper 实现时间表抓取流水线: 重试执行器、DOM提取器、准入控制与异步桥
package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gradia-project/gradia-parser/internal/models"
)

// 时间表DOM结构选择器
const (
	dayColumnSelector = ".wrap .tablebody .tablebody td" // 星期列
	subjectSelector   = ".subject"                       // 课程块
	nameSelector      = "h3"                             // 课程名
	placeSelector     = "p span"                         // 教室
	professorSelector = "em"                             // 教师
)

// 课程块的纵向布局编码时间: 0px对应凌晨0点, 每60px为1小时
// top编码开始时间, height编码时长
const pixelsPerHour = 60

// Extract 从渲染后的HTML快照中提取结构化时间表
// 纯函数: 不触碰网络和池资源
//
// 返回空列表表示"完全找不到时间表结构"(通常是页面尚未渲染完成),
// 由执行器按瞬时错误处理; 子字段缺失不是错误, 用占位符替代
func Extract(html string) ([]models.TimetableEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &models.ExtractionError{Reason: "HTML解析失败", Err: err}
	}

	entries := make([]models.TimetableEntry, 0)
	dayIndex := 0
	var structErr error

	doc.Find(dayColumnSelector).EachWithBreak(func(_ int, day *goquery.Selection) bool {
		subjects := day.Find(subjectSelector)
		if subjects.Length() == 0 {
			// 没有课程块的列(如时间轴列)不推进星期索引
			return true
		}

		subjects.EachWithBreak(func(_ int, subject *goquery.Selection) bool {
			if dayIndex >= len(models.DayNames) {
				return false
			}

			startTime, endTime, err := extractTimeRange(subject)
			if err != nil {
				structErr = err
				return false
			}

			entries = append(entries, models.TimetableEntry{
				Day:       models.DayNames[dayIndex],
				Name:      textOrPlaceholder(subject, nameSelector, models.PlaceholderName),
				StartTime: startTime,
				EndTime:   endTime,
				Place:     textOrPlaceholder(subject, placeSelector, models.PlaceholderPlace),
				Professor: textOrPlaceholder(subject, professorSelector, models.PlaceholderInstructor),
			})
			return true
		})

		if structErr != nil {
			return false
		}
		dayIndex++
		return true
	})

	if structErr != nil {
		return nil, structErr
	}
	return entries, nil
}

// extractTimeRange 从课程块的内联样式推导开始/结束时间
// 样式形如 "height:120px; top:600px;"
func extractTimeRange(subject *goquery.Selection) (string, string, error) {
	style, ok := subject.Attr("style")
	if !ok || strings.TrimSpace(style) == "" {
		return "", "", &models.ExtractionError{Reason: "课程块缺少style属性"}
	}

	height, top, err := parseBlockGeometry(style)
	if err != nil {
		return "", "", err
	}

	startPx := top
	endPx := top + height - 1
	return formatClock(startPx), formatClock(endPx), nil
}

// parseBlockGeometry 解析内联样式中的height和top像素值
func parseBlockGeometry(style string) (height, top int, err error) {
	height, top = -1, -1
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSuffix(strings.TrimSpace(parts[1]), "px")

		switch key {
		case "height":
			height, err = strconv.Atoi(value)
		case "top":
			top, err = strconv.Atoi(value)
		}
		if err != nil {
			return 0, 0, &models.ExtractionError{Reason: "时间信息提取失败", Err: err}
		}
	}

	if height < 0 || top < 0 {
		return 0, 0, &models.ExtractionError{Reason: "课程块样式缺少height或top"}
	}
	return height, top, nil
}

// formatClock 把纵向像素偏移换算为HH:MM
func formatClock(px int) string {
	hour := px / pixelsPerHour
	minute := (px % pixelsPerHour) * 60 / pixelsPerHour
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// textOrPlaceholder 读取子节点文本, 缺失时返回占位符
func textOrPlaceholder(s *goquery.Selection, selector, placeholder string) string {
	node := s.Find(selector).First()
	if node.Length() == 0 {
		return placeholder
	}
	text := strings.TrimSpace(node.Text())
	if text == "" {
		return placeholder
	}
	return text
}
