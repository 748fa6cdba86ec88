// 文件: internal/api/handlers.go
package api

import (
	"disease_gallery/config"
	"disease_gallery/internal/task"
	"disease_gallery/pkg/gallery"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// APIHandlers 持有所有依赖
type APIHandlers struct {
	taskManager *task.Manager
	outRoot     string
	configPath  string
}

// NewAPIHandlers 创建一个新的API处理器实例
func NewAPIHandlers(tm *task.Manager, outRoot, configPath string) *APIHandlers {
	return &APIHandlers{
		taskManager: tm,
		outRoot:     outRoot,
		configPath:  configPath,
	}
}

// --- 辅助函数 ---

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// --- 任务处理器 ---

func (h *APIHandlers) HandleStartBuildTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SkipCopy bool `json:"skipCopy"`
	}
	// 请求体可以为空，此时按配置执行
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "无效的请求体: "+err.Error())
		return
	}
	taskID, err := h.taskManager.StartNewBuildTask(payload.SkipCopy)
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
}

func (h *APIHandlers) HandleGetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")
	status, err := h.taskManager.GetTaskStatus(taskID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// --- 索引处理器 ---

// HandleGetIndex 原样返回已写出的 index.json
func (h *APIHandlers) HandleGetIndex(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(gallery.IndexPath(h.outRoot))
	if err != nil {
		if os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "索引尚未生成，请先执行构建任务")
			return
		}
		respondError(w, http.StatusInternalServerError, "读取索引失败: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// --- 配置处理器 ---

// HandleGetConfig 获取当前应用配置
func (h *APIHandlers) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, config.Get())
}

// HandleUpdateConfig 保存配置到 config.yaml，新配置在服务重启后生效
func (h *APIHandlers) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var newConfig config.Config
	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		respondError(w, http.StatusBadRequest, "无效的配置格式: "+err.Error())
		return
	}
	if _, err := gallery.ParseWalkPolicy(newConfig.Gallery.OnWalkError); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := gallery.NewCollator(newConfig.Gallery.SortKey); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := config.Save(h.configPath, &newConfig); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	config.Set(&newConfig)

	respondJSON(w, http.StatusOK, &newConfig)
}
