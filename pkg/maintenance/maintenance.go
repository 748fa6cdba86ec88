package maintenance

import (
	"context"
	"disease_gallery/pkg/gallery"
	"disease_gallery/pkg/hasher"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Maintenance 定义了维护工具的接口
type Maintenance interface {
	GenerateFileManifest(ctx context.Context, outRoot, outputPath string) (string, error)
	VerifyIndex(ctx context.Context, outRoot string) (*VerifyReport, error)
	Close()
}

// VerifyReport 记录 index.json 与输出目录的一致性检查结果
type VerifyReport struct {
	TotalImages int      `json:"totalImages"`
	Listed      int      `json:"listed"`
	Missing     []string `json:"missing"`
}

// OK 索引中的每条路径都存在且数量与 total_images 一致
func (r *VerifyReport) OK() bool {
	return len(r.Missing) == 0 && r.Listed == r.TotalImages
}

type defaultMaintenance struct {
	logger     *log.Logger
	logFile    *os.File
	numWorkers int
}

const maintenanceLogFileName = "maintenance.log"

// NewMaintenance 创建一个新的维护模块实例
func NewMaintenance(logDir string, workerCount int) (Maintenance, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("无法创建日志目录: %w", err)
	}
	logFilePath := filepath.Join(logDir, maintenanceLogFileName)
	file, err := os.OpenFile(logFilePath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("无法初始化维护模块日志: %w", err)
	}
	logger := log.New(file, "MAINTENANCE: ", log.LstdFlags|log.Lshortfile)
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &defaultMaintenance{
		logger:     logger,
		logFile:    file,
		numWorkers: workerCount,
	}, nil
}

func (m *defaultMaintenance) Close() {
	if m.logFile != nil {
		m.logger.Println("================== 维护任务结束，关闭日志文件 ==================")
		m.logFile.Close()
	}
}

// GenerateFileManifest 并发计算 outRoot/images 下所有文件的哈希，
// 排序后写入 outputPath/manifest_<日期>.txt，返回清单路径。
func (m *defaultMaintenance) GenerateFileManifest(ctx context.Context, outRoot, outputPath string) (string, error) {
	m.logger.Println("--- 开始生成文件清单 (File Manifest) ---")

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return "", fmt.Errorf("无法创建清单目录: %w", err)
	}
	manifestFileName := fmt.Sprintf("manifest_%s.txt", time.Now().Format("2006-01-02"))
	manifestPath := filepath.Join(outputPath, manifestFileName)

	var wg sync.WaitGroup
	tasks := make(chan string, m.numWorkers)
	results := make(chan string, m.numWorkers)

	for i := 0; i < m.numWorkers; i++ {
		wg.Add(1)
		go m.manifestWorker(&wg, outRoot, tasks, results)
	}

	var lines []string
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for line := range results {
			lines = append(lines, line)
		}
	}()

	m.logger.Println("开始扫描文件并分发任务...")
	walkErr := filepath.WalkDir(filepath.Join(outRoot, "images"), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			tasks <- path
		}
		return nil
	})

	close(tasks)
	wg.Wait()
	close(results)
	collectWg.Wait()

	if walkErr != nil {
		return "", fmt.Errorf("扫描输出目录失败: %w", walkErr)
	}

	sort.Strings(lines)
	file, err := os.Create(manifestPath)
	if err != nil {
		return "", fmt.Errorf("无法创建清单文件: %w", err)
	}
	defer file.Close()
	for _, line := range lines {
		if _, err := file.WriteString(line); err != nil {
			return "", fmt.Errorf("写入清单文件失败: %w", err)
		}
	}

	m.logger.Printf("--- 文件清单生成完毕: %s (%d 个文件) ---", manifestPath, len(lines))
	return manifestPath, nil
}

// manifestWorker 是计算哈希并格式化输出的工人
func (m *defaultMaintenance) manifestWorker(wg *sync.WaitGroup, outRoot string, tasks <-chan string, results chan<- string) {
	defer wg.Done()
	for path := range tasks {
		hash, err := hasher.CalculateSHA256(path)
		if err != nil {
			m.logger.Printf("警告: 计算文件 %s 的哈希失败: %v", path, err)
			continue
		}
		relPath, err := filepath.Rel(outRoot, path)
		if err != nil {
			m.logger.Printf("警告: 无法计算 %s 的相对路径: %v", path, err)
			continue
		}
		results <- fmt.Sprintf("%s *%s\n", hash, filepath.ToSlash(relPath))
	}
}

// VerifyIndex 检查 index.json 中列出的图片是否都存在于 outRoot 下
func (m *defaultMaintenance) VerifyIndex(ctx context.Context, outRoot string) (*VerifyReport, error) {
	m.logger.Println("--- 开始校验索引 ---")
	idx, err := gallery.ReadIndex(gallery.IndexPath(outRoot))
	if err != nil {
		return nil, fmt.Errorf("读取索引失败: %w", err)
	}

	report := &VerifyReport{TotalImages: idx.TotalImages, Missing: []string{}}
	for _, c := range idx.Categories {
		for _, d := range c.Diseases {
			for _, rel := range d.Images {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				report.Listed++
				info, err := os.Stat(filepath.Join(outRoot, filepath.FromSlash(rel)))
				if err != nil || !info.Mode().IsRegular() {
					m.logger.Printf("缺失: %s", rel)
					report.Missing = append(report.Missing, rel)
				}
			}
		}
	}

	m.logger.Printf("--- 索引校验完成: 列出 %d, total_images %d, 缺失 %d ---", report.Listed, report.TotalImages, len(report.Missing))
	return report, nil
}
