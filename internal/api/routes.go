// 文件: internal/api/routes.go
package api

import (
	"disease_gallery/internal/task"
	"disease_gallery/pkg/viewer"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册所有API路由，outRoot 下的静态图库挂载在根路径
func RegisterRoutes(tm *task.Manager, outRoot, configPath string) *chi.Mux {
	r := chi.NewRouter()

	// --- 中间件 (Middleware) ---
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers := NewAPIHandlers(tm, outRoot, configPath)

	// --- API路由 ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tasks/build", handlers.HandleStartBuildTask)
		r.Get("/tasks/{taskId}", handlers.HandleGetTaskStatus)
		r.Get("/index", handlers.HandleGetIndex)
		r.Get("/config", handlers.HandleGetConfig)
		r.Put("/config", handlers.HandleUpdateConfig)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// 静态图库预览: 查看器页面来自内嵌文件，索引与图片来自 outRoot
	gallery := http.FileServer(http.Dir(outRoot))
	r.Handle("/data/*", gallery)
	r.Handle("/images/*", gallery)
	r.Handle("/*", http.FileServerFS(viewer.FS()))

	return r
}
