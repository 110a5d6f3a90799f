package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradia-project/gradia-parser/internal/config"
	"github.com/gradia-project/gradia-parser/internal/engine"
	"github.com/gradia-project/gradia-parser/internal/models"
	"github.com/gradia-project/gradia-parser/internal/scraper"
	"github.com/gradia-project/gradia-parser/internal/server"
	"github.com/gradia-project/gradia-parser/internal/sysinfo"
	"github.com/gradia-project/gradia-parser/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// 解析参数
	targetURL         string
	urlFile           string
	maxHandles        int
	admissionSlots    int
	navigationTimeout int
	waitTime          int
	maxRetries        int
	headless          bool
	outputDir         string

	// 批量处理参数
	batchDelay      int
	continueOnError bool

	// 服务参数
	serveAddr string
)

// appConfig 在PersistentPreRunE中加载, 子命令直接使用
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "gradiaparser",
	Short: "에브리타임 시간표 파싱 도구",
	Long: `GradiaParser - 에브리타임(Everytime) 时间表解析工具 (Go版本)

通过无头浏览器渲染时间表分享页面, 从DOM中提取结构化的课程数据, 支持:
  • 单URL一次性解析
  • 批量URL处理与报告生成
  • 常驻HTTP服务模式 (serve子命令)
  • 有界浏览器实例池与全局并发准入
  • 瞬时故障自动重试

使用示例:
  # 单URL解析, 结果以JSON输出
  gradiaparser -u https://everytime.kr/@abcd1234

  # 批量解析
  gradiaparser -f urls.txt -o output

  # 启动HTTP服务
  gradiaparser serve --addr :8000

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig = cfg

		// 初始化日志系统
		logConfig := utils.LogConfig{
			Level:      cfg.Logging.Level,
			LogDir:     cfg.Logging.LogDir,
			MaxSize:    cfg.Logging.Rotation.MaxSize,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			Compress:   cfg.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 如果没有提供任何参数,显示帮助信息
		if targetURL == "" && urlFile == "" {
			return cmd.Help()
		}

		// 合并命令行参数并校验
		appConfig.MergeCLIFlags(maxHandles, admissionSlots, navigationTimeout, waitTime, maxRetries, headless, "")
		if err := ValidateFlags(targetURL, appConfig); err != nil {
			return err
		}

		// 设置信号处理(Ctrl+C优雅退出)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("收到中断信号: %v, 正在优雅关闭...", sig)
			cancel()
		}()

		// 组装解析服务
		eng := engine.NewRodEngine(appConfig.Scrape)
		service := scraper.NewService(eng, appConfig.Pool, appConfig.Scrape)
		defer service.Shutdown()

		// 批量处理模式
		if urlFile != "" {
			return runBatch(ctx, service)
		}

		// 单URL解析模式
		return runSingle(ctx, service)
	},
}

// runSingle 解析单个URL并以JSON输出结果
func runSingle(ctx context.Context, service *scraper.Service) error {
	entries, err := service.ParseTimetable(ctx, targetURL)
	if err != nil {
		return fmt.Errorf("时间表解析失败: %w", err)
	}

	output, err := json.MarshalIndent(map[string]interface{}{
		"timetable": entries,
		"message":   "시간표 파싱 성공",
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}

	fmt.Println(string(output))
	utils.Infof("✨ 解析完成, 共 %d 条课程记录", len(entries))
	return nil
}

// runBatch 批量解析URL文件中的所有URL
func runBatch(ctx context.Context, service *scraper.Service) error {
	validate := func(u string) error {
		return models.ValidateURL(u, appConfig.Scrape.SourceDomain)
	}
	urls, err := utils.ReadURLsFromFile(urlFile, validate)
	if err != nil {
		return fmt.Errorf("读取URL文件失败: %w", err)
	}

	reporter := utils.NewReporter(outputDir)
	bar := utils.NewProgressBar(len(urls), "解析时间表")

	for i, u := range urls {
		select {
		case <-ctx.Done():
			utils.Warn("批量处理被中断")
			return reporter.GenerateReport()
		default:
		}

		entries, err := service.ParseTimetable(ctx, u)
		if err != nil {
			reporter.AddFailure(u, err)
			utils.Errorf("解析失败 [%s]: %v", u, err)
			if !continueOnError {
				_ = bar.Finish()
				if reportErr := reporter.GenerateReport(); reportErr != nil {
					utils.Errorf("生成报告失败: %v", reportErr)
				}
				return fmt.Errorf("批量解析中止于 [%s]: %w", u, err)
			}
		} else {
			reporter.AddSuccess(u, entries)
		}
		_ = bar.Add(1)

		// URL间延迟, 最后一个之后不等待
		if batchDelay > 0 && i < len(urls)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(batchDelay) * time.Second):
			}
		}
	}

	if err := reporter.GenerateReport(); err != nil {
		return fmt.Errorf("生成报告失败: %w", err)
	}

	utils.Info("✨ 批量解析任务完成!")
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP解析服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig.MergeCLIFlags(maxHandles, admissionSlots, navigationTimeout, waitTime, maxRetries, headless, serveAddr)
		if err := appConfig.Validate(); err != nil {
			return fmt.Errorf("配置校验失败: %w", err)
		}

		// 组装解析服务
		eng := engine.NewRodEngine(appConfig.Scrape)
		service := scraper.NewService(eng, appConfig.Pool, appConfig.Scrape)

		// 资源监控
		monitor, err := sysinfo.NewMonitor()
		if err != nil {
			return fmt.Errorf("创建资源监控器失败: %w", err)
		}
		monitor.StartMonitoring(30 * time.Second)

		srv := server.New(service, monitor)

		// 监听中断信号, 优雅关停
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Start(appConfig.Server.Addr)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errChan:
			monitor.StopMonitoring()
			service.Shutdown()
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		case sig := <-sigChan:
			utils.Warnf("收到中断信号: %v, 正在优雅关闭...", sig)
		}

		// 先停HTTP入口, 再关停解析服务与监控
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Errorf("HTTP服务关停失败: %v", err)
		}
		monitor.StopMonitoring()
		service.Shutdown()

		utils.Info("服务已关闭")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("GradiaParser %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - 에브리타임 시간표 파싱 도구")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// 解析参数
	rootCmd.PersistentFlags().IntVar(&maxHandles, "max-handles", 0, "浏览器实例上限 (0表示使用配置文件值)")
	rootCmd.PersistentFlags().IntVar(&admissionSlots, "admission-slots", 0, "全局并发准入槽数 (0表示使用配置文件值)")
	rootCmd.PersistentFlags().IntVar(&navigationTimeout, "timeout", 0, "导航超时(秒) (0表示使用配置文件值)")
	rootCmd.PersistentFlags().IntVarP(&waitTime, "wait", "w", -1, "页面等待时间(秒) (-1表示使用配置文件值)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "retries", -1, "瞬时错误最大重试次数 (-1表示使用配置文件值)")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "无头浏览器模式")

	// 单次/批量参数
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "时间表URL (必需,除非使用 --url-file)")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "批量报告输出目录")
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "批量处理URL间延迟(秒)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")

	// 服务参数
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP服务监听地址 (默认使用配置文件值)")

	// 添加子命令
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
