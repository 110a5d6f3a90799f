package models

import (
	"net/url"
	"strings"
)

// ValidateURL 验证时间表URL
// 规则: 必须为http/https协议,且主机必须属于指定的来源域名
// 校验在任何池交互之前执行,非法URL绝不消耗浏览器实例
func ValidateURL(urlStr string, sourceDomain string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return &ValidationError{URL: urlStr, Reason: "URL格式无法解析"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{URL: urlStr, Reason: "URL必须是HTTP或HTTPS协议"}
	}
	if parsed.Host == "" {
		return &ValidationError{URL: urlStr, Reason: "URL必须包含主机名"}
	}
	host := parsed.Hostname()
	if host != sourceDomain && !strings.HasSuffix(host, "."+sourceDomain) {
		return &ValidationError{URL: urlStr, Reason: "不是" + sourceDomain + "的URL"}
	}
	return nil
}
