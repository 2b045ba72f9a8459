package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abaaza/pricelistextractor/internal/config"
	"github.com/Abaaza/pricelistextractor/internal/enrich"
	"github.com/Abaaza/pricelistextractor/internal/exporter"
	"github.com/Abaaza/pricelistextractor/internal/importer"
	"github.com/Abaaza/pricelistextractor/internal/server"
	"github.com/Abaaza/pricelistextractor/internal/util"
)

var (
	port    = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	file    = flag.String("file", "", "批处理模式：待抽取的 Excel 文件路径")
	out     = flag.String("out", "pricelist", "批处理模式：输出文件前缀（生成 <out>.csv 与 <out>.json）")
	enhance = flag.Bool("enhance", false, "批处理模式：启用描述增强（需配置 api_key）")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Pricebook - 价目表抽取与协调工具")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	// 批处理模式：抽取单个文件后退出，不启动服务
	if *file != "" {
		runBatch(cfg, *file, *out, *enhance)
		return
	}

	// 确保数据目录存在
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("创建数据目录失败: %v", err)
	} else {
		fmt.Printf("数据目录: %s\n", dataDir)
	}

	// 创建服务器
	srv := server.NewServer(cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	} else {
		fmt.Printf("开发模式: 请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	if st := srv.GetStore(); st != nil {
		if err := st.Close(); err != nil {
			log.Printf("关闭数据库失败: %v", err)
		}
	}
}

// runBatch 批处理：抽取 -> 协调 -> 写出 CSV/JSON
func runBatch(cfg *config.AppConfig, filePath, outPrefix string, enhanceFlag bool) {
	var enhancer enrich.Enhancer
	if enhanceFlag {
		if e := enrich.NewOpenAI(cfg.Enhance.BaseURL, cfg.Enhance.APIKey, cfg.Enhance.Model); e != nil {
			enhancer = e
		} else {
			log.Printf("未配置增强密钥，跳过描述增强")
			enhanceFlag = false
		}
	}

	coordinator := importer.NewCoordinator(nil, enhancer)
	items, report, err := coordinator.Run(context.Background(), importer.ExtractOptions{
		FilePath:      filePath,
		Enhance:       enhanceFlag,
		MaxRate:       cfg.Extract.MaxRate,
		AllowZeroRate: cfg.Extract.AllowZeroRate,
	})
	if err != nil {
		log.Fatalf("抽取失败: %v", err)
	}

	for _, sheet := range report.Sheets {
		fmt.Printf("  %-20s %4d 条记录（%d 条带费率），处理 %d 行，跳过 %d 行\n",
			sheet.SheetName, sheet.Items, sheet.ItemsWithRate, sheet.RowsProcessed, sheet.RowsSkipped)
	}
	fmt.Printf("合计 %d 条记录，去重 %d 条，耗时 %s\n",
		report.Items, report.DuplicatesRemoved, report.Duration.Round(time.Millisecond))

	prefix := strings.TrimSuffix(outPrefix, ".csv")
	csvPath := prefix + ".csv"
	jsonPath := prefix + ".json"
	if err := exporter.SaveCSV(csvPath, items); err != nil {
		log.Fatalf("写出 CSV 失败: %v", err)
	}
	if err := exporter.SaveJSON(jsonPath, items); err != nil {
		log.Fatalf("写出 JSON 失败: %v", err)
	}
	fmt.Printf("已写出: %s, %s\n", csvPath, jsonPath)
}
