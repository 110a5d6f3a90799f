package main

import (
	"fmt"

	"github.com/gradia-project/gradia-parser/internal/config"
	"github.com/gradia-project/gradia-parser/internal/models"
)

// ValidateFlags 验证命令行标志与合并后的配置
func ValidateFlags(targetURL string, cfg *config.Config) error {
	// 验证URL(批量模式下逐行校验, 这里只管单URL模式)
	if targetURL != "" {
		if err := models.ValidateURL(targetURL, cfg.Scrape.SourceDomain); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	if err := cfg.Pool.Validate(); err != nil {
		return err
	}
	if err := cfg.Scrape.Validate(); err != nil {
		return err
	}

	return nil
}
