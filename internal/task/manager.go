package task

import (
	"disease_gallery/config"
	"disease_gallery/pkg/gallery"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus 定义了任务可能的状态。
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// Task 结构体代表一次后台图库构建。
type Task struct {
	ID          string            `json:"id"`
	Status      TaskStatus        `json:"status"`
	SkipCopy    bool              `json:"skipCopy"`
	Error       string            `json:"error,omitempty"`
	IndexPath   string            `json:"indexPath,omitempty"`
	TotalImages int               `json:"totalImages"`
	Copy        gallery.CopyStats `json:"copy"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     *time.Time        `json:"endTime,omitempty"`
}

// Runner 执行一次构建，由 gallery.Orchestrator 实现
type Runner interface {
	Run() (*gallery.Result, error)
}

// RunnerFactory 按任务参数创建 Runner
type RunnerFactory func(cfg config.GalleryConfig) (Runner, error)

// Manager 结构体是任务管理器，同一时间只允许一个构建任务运行。
type Manager struct {
	tasks map[string]*Task
	mu    sync.RWMutex
	wg    sync.WaitGroup

	config    config.GalleryConfig
	newRunner RunnerFactory
	logger    *slog.Logger
}

// NewManager 创建任务管理器，newRunner 为空时使用 gallery.NewOrchestrator。
func NewManager(cfg config.GalleryConfig, newRunner RunnerFactory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if newRunner == nil {
		newRunner = func(cfg config.GalleryConfig) (Runner, error) {
			return gallery.NewOrchestrator(cfg, logger)
		}
	}
	return &Manager{
		tasks:     make(map[string]*Task),
		config:    cfg,
		newRunner: newRunner,
		logger:    logger,
	}
}

// StartNewBuildTask 创建一个新的构建任务，并立即在后台启动它。
func (m *Manager) StartNewBuildTask(skipCopy bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, task := range m.tasks {
		if task.Status == StatusRunning || task.Status == StatusPending {
			return "", fmt.Errorf("另一个构建任务正在进行中 (ID: %s)，请等待其完成后再试", task.ID)
		}
	}

	cfg := m.config
	cfg.SkipCopy = cfg.SkipCopy || skipCopy
	runner, err := m.newRunner(cfg)
	if err != nil {
		return "", fmt.Errorf("无法创建构建任务: %w", err)
	}

	taskID := uuid.New().String()
	newTask := &Task{
		ID:        taskID,
		Status:    StatusPending,
		SkipCopy:  cfg.SkipCopy,
		StartTime: time.Now(),
	}
	m.tasks[taskID] = newTask

	m.wg.Add(1)
	go m.runBuild(newTask, runner)

	return taskID, nil
}

// GetTaskStatus 根据任务ID返回任务状态的快照。
func (m *Manager) GetTaskStatus(taskID string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, exists := m.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("找不到任务ID: %s", taskID)
	}
	snapshot := *task
	return &snapshot, nil
}

// Wait 等待所有已启动的任务结束
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runBuild(task *Task, runner Runner) {
	defer m.wg.Done()

	m.mu.Lock()
	task.Status = StatusRunning
	m.mu.Unlock()
	m.logger.Info("构建任务启动", "task", task.ID, "skipCopy", task.SkipCopy)

	res, err := runner.Run()

	m.mu.Lock()
	defer m.mu.Unlock()
	endTime := time.Now()
	task.EndTime = &endTime
	if err != nil {
		task.Status = StatusFailed
		task.Error = err.Error()
		m.logger.Error("构建任务失败", "task", task.ID, "error", err)
		return
	}
	task.Status = StatusCompleted
	task.IndexPath = res.IndexPath
	task.Copy = res.Copy
	if res.Index != nil {
		task.TotalImages = res.Index.TotalImages
	}
	m.logger.Info("构建任务完成", "task", task.ID, "total_images", task.TotalImages)
}
