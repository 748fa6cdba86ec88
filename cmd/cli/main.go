package main

import (
	"context"
	"disease_gallery/config"
	"disease_gallery/pkg/gallery"
	"disease_gallery/pkg/logger"
	"disease_gallery/pkg/maintenance"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

func main() {
	// --- 1. 定义命令行参数 ---
	action := flag.String("action", "build", "要执行的操作: build, create-manifest, verify, init-config")
	configDir := flag.String("config", ".", "config.yaml 所在目录")
	root := flag.String("root", "", "图库根目录 (覆盖配置)")
	out := flag.String("out", "", "输出目录 (覆盖配置)")
	noCopy := flag.Bool("no-copy", false, "只生成索引，不复制图片")
	manifestOut := flag.String("manifest-out", "", "create-manifest 的输出目录，默认为 <out>/data")

	flag.Parse()

	// --- 2. 初始化配置与日志 ---
	if err := config.LoadConfig(*configDir); err != nil {
		log.Fatalf("FATAL: 无法加载配置: %v", err)
	}
	if *root != "" {
		config.C.Gallery.Root = *root
	}
	if *out != "" {
		config.C.Gallery.Out = *out
	}
	if *noCopy {
		config.C.Gallery.SkipCopy = true
	}
	if err := logger.InitLogger(); err != nil {
		log.Fatalf("FATAL: 无法初始化日志: %v", err)
	}

	// --- 3. 根据 action 参数执行相应的功能 ---
	ctx := context.Background()
	switch *action {
	case "build":
		orchestrator, err := gallery.NewOrchestrator(config.C.Gallery, slog.Default())
		if err != nil {
			slog.Error("FATAL: 无法创建图库构建器", "error", err)
			os.Exit(1)
		}
		res, err := orchestrator.Run()
		if err != nil {
			slog.Error("FATAL: 图库构建失败", "error", err)
			os.Exit(1)
		}
		fmt.Printf("index written: %s\n", res.IndexPath)

	case "create-manifest":
		outRoot := mustExpand(config.C.Gallery.Out)
		target := *manifestOut
		if target == "" {
			target = filepath.Join(outRoot, "data")
		}
		m := mustMaintenance()
		defer m.Close()
		manifestPath, err := m.GenerateFileManifest(ctx, outRoot, target)
		if err != nil {
			slog.Error("生成文件清单失败", "error", err)
			os.Exit(1)
		}
		fmt.Printf("manifest written: %s\n", manifestPath)

	case "verify":
		m := mustMaintenance()
		defer m.Close()
		report, err := m.VerifyIndex(ctx, mustExpand(config.C.Gallery.Out))
		if err != nil {
			slog.Error("索引校验失败", "error", err)
			os.Exit(1)
		}
		fmt.Printf("列出 %d 张，total_images %d，缺失 %d 张\n", report.Listed, report.TotalImages, len(report.Missing))
		for _, p := range report.Missing {
			fmt.Printf("  缺失: %s\n", p)
		}
		if !report.OK() {
			os.Exit(1)
		}

	case "init-config":
		path := filepath.Join(*configDir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("错误: %s 已存在\n", path)
			os.Exit(1)
		}
		if err := config.Save(path, config.C); err != nil {
			slog.Error("写入配置失败", "error", err)
			os.Exit(1)
		}
		fmt.Printf("config written: %s\n", path)

	default:
		fmt.Printf("错误: 未知的 action '%s'\n", *action)
		flag.Usage()
		os.Exit(1)
	}
}

func mustExpand(p string) string {
	abs, err := config.ExpandPath(p)
	if err != nil {
		slog.Error("FATAL: 无效路径", "path", p, "error", err)
		os.Exit(1)
	}
	return abs
}

func mustMaintenance() maintenance.Maintenance {
	m, err := maintenance.NewMaintenance(config.C.Logger.Path, 0)
	if err != nil {
		slog.Error("FATAL: 无法创建维护模块", "error", err)
		os.Exit(1)
	}
	return m
}
