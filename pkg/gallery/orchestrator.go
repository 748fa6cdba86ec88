package gallery

import (
	"disease_gallery/config"
	"disease_gallery/pkg/metrics"
	"disease_gallery/pkg/viewer"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Result 是一次完整构建的结果
type Result struct {
	IndexPath string        `json:"indexPath"`
	Index     *Index        `json:"-"`
	Copy      CopyStats     `json:"copy"`
	Duration  time.Duration `json:"duration"`
}

type Orchestrator struct {
	root     string
	outRoot  string
	skipCopy bool

	walker  *Walker
	Builder *IndexBuilder
	Copier  *Copier
	logger  *slog.Logger
}

func NewOrchestrator(cfg config.GalleryConfig, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := config.ExpandPath(cfg.Root)
	if err != nil {
		return nil, err
	}
	outRoot, err := config.ExpandPath(cfg.Out)
	if err != nil {
		return nil, err
	}
	policy, err := ParseWalkPolicy(cfg.OnWalkError)
	if err != nil {
		return nil, err
	}
	collator, err := NewCollator(cfg.SortKey)
	if err != nil {
		return nil, err
	}

	walker := NewWalker(policy, logger)
	walker.Exclude(outRoot)
	return &Orchestrator{
		root:     root,
		outRoot:  outRoot,
		skipCopy: cfg.SkipCopy,
		walker:   walker,
		Builder:  NewIndexBuilder(walker, collator, logger),
		Copier:   NewCopier(walker, cfg.VerifyHash, logger),
		logger:   logger,
	}, nil
}

func (o *Orchestrator) OutRoot() string { return o.outRoot }

// Run 依次执行 同步图片 -> 构建索引 -> 写出查看器页面与 index.json。
// 任一步失败立即返回，index.json 保持上一次的内容。
func (o *Orchestrator) Run() (*Result, error) {
	start := time.Now()
	res, err := o.run()
	if err != nil {
		metrics.BuildsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	res.Duration = time.Since(start)
	metrics.BuildsTotal.WithLabelValues("completed").Inc()
	metrics.LastBuildDuration.Set(res.Duration.Seconds())
	metrics.LastBuildImages.Set(float64(res.Index.TotalImages))
	return res, nil
}

func (o *Orchestrator) run() (*Result, error) {
	o.logger.Info("开始构建图库", "root", o.root, "out", o.outRoot, "skipCopy", o.skipCopy)

	if info, err := os.Stat(o.root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, o.root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s 不是目录", ErrSourceUnreadable, o.root)
	}
	dataDir := filepath.Join(o.outRoot, dataDirName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: 无法创建目录 %s: %v", ErrDestinationWrite, dataDir, err)
	}
	// 输出目录此时已存在，按解析符号链接后的路径再排除一次
	if resolved, err := filepath.EvalSymlinks(o.outRoot); err == nil {
		o.walker.Exclude(resolved)
	}

	res := &Result{IndexPath: IndexPath(o.outRoot)}
	if !o.skipCopy {
		o.logger.Info("--- 阶段 1/2: 同步图片 ---")
		stats, err := o.Copier.Copy(o.root, o.outRoot)
		if err != nil {
			return nil, fmt.Errorf("同步图片失败: %w", err)
		}
		res.Copy = stats
	} else {
		o.logger.Info("已设置 skipCopy，跳过图片同步")
	}

	o.logger.Info("--- 阶段 2/2: 构建索引 ---")
	idx, err := o.Builder.Build(o.root)
	if err != nil {
		return nil, fmt.Errorf("构建索引失败: %w", err)
	}
	if err := viewer.WriteTo(o.outRoot); err != nil {
		return nil, fmt.Errorf("%w: 写入查看器页面失败: %v", ErrDestinationWrite, err)
	}
	if err := WriteIndex(res.IndexPath, idx); err != nil {
		return nil, err
	}
	res.Index = idx
	o.logger.Info("索引已写入", "path", res.IndexPath, "total_images", idx.TotalImages)
	return res, nil
}
