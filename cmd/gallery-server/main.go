// 文件: cmd/gallery-server/main.go
package main

import (
	"disease_gallery/config"
	"disease_gallery/internal/api"
	"disease_gallery/internal/task"
	"disease_gallery/pkg/logger"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	configDir := flag.String("config", ".", "config.yaml 所在目录")
	flag.Parse()

	// --- 1. 初始化 ---
	if err := config.LoadConfig(*configDir); err != nil {
		log.Fatalf("FATAL: 无法加载配置: %v", err)
	}
	if err := logger.InitLogger(); err != nil {
		log.Fatalf("FATAL: 无法初始化日志: %v", err)
	}
	slog.Info("应用启动")
	defer slog.Info("应用关闭")

	outRoot, err := config.ExpandPath(config.C.Gallery.Out)
	if err != nil {
		slog.Error("FATAL: 无效的输出目录", "error", err)
		os.Exit(1)
	}

	// --- 2. 创建任务管理器 ---
	taskManager := task.NewManager(config.C.Gallery, nil, slog.Default())
	slog.Info("任务管理器创建成功")

	// --- 3. 设置并启动HTTP服务器 ---
	router := api.RegisterRoutes(taskManager, outRoot, filepath.Join(*configDir, "config.yaml"))

	server := &http.Server{
		Addr:         config.C.Server.Port,
		Handler:      router,
		ReadTimeout:  config.C.Server.Timeout,
		WriteTimeout: config.C.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("HTTP服务器正在启动...", "地址", config.C.Server.Port, "图库目录", outRoot)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("无法启动HTTP服务器", "error", err)
		os.Exit(1)
	}
}
