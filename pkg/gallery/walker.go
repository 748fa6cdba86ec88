package gallery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"disease_gallery/pkg/metrics"
)

const (
	imagesDirName = "images"
	dataDirName   = "data"
	indexFileName = "index.json"
)

var (
	// ErrSourceUnreadable 图库根目录不存在，或其中的文件/目录无法读取
	ErrSourceUnreadable = errors.New("源目录不可读")
	// ErrDestinationWrite 输出目录无法创建或文件无法写入
	ErrDestinationWrite = errors.New("输出目录写入失败")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageExtension 判断文件扩展名 (不区分大小写) 是否在允许列表中
func IsImageExtension(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// WalkPolicy 决定遍历时遇到不可读条目的处理方式，整次运行只使用一种策略
type WalkPolicy string

const (
	WalkAbort WalkPolicy = "abort"
	WalkSkip  WalkPolicy = "skip"
)

// ParseWalkPolicy 解析配置中的 onWalkError，空值视为 abort
func ParseWalkPolicy(s string) (WalkPolicy, error) {
	switch WalkPolicy(strings.ToLower(s)) {
	case "", WalkAbort:
		return WalkAbort, nil
	case WalkSkip:
		return WalkSkip, nil
	default:
		return "", fmt.Errorf("无效的 onWalkError '%s' (可选: abort, skip)", s)
	}
}

// ImageFile 是图库根目录下一个允许扩展名的常规文件
type ImageFile struct {
	Path string
	Info fs.FileInfo
}

// Walker 递归枚举图库中的图片文件
type Walker struct {
	policy  WalkPolicy
	exclude map[string]bool
	logger  *slog.Logger
}

func NewWalker(policy WalkPolicy, logger *slog.Logger) *Walker {
	if policy == "" {
		policy = WalkAbort
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{policy: policy, exclude: make(map[string]bool), logger: logger}
}

// Exclude 让遍历跳过 dir 整个目录，输出目录位于图库内部时用它避免重复收录
func (w *Walker) Exclude(dir string) {
	w.exclude[filepath.Clean(dir)] = true
}

// Walk 对 root 下的每个图片文件调用 fn，fn 返回的错误会原样中止遍历。
// 符号链接只在指向常规文件时计入。
func (w *Walker) Walk(root string, fn func(img ImageFile) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s 不是目录", ErrSourceUnreadable, root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
			}
			return w.handleError(path, d, err)
		}
		if d.IsDir() {
			if path != root && w.exclude[path] {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImageExtension(path) {
			return nil
		}

		fi, err := os.Stat(path)
		if err != nil {
			return w.handleError(path, nil, err)
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		return fn(ImageFile{Path: path, Info: fi})
	})
}

func (w *Walker) handleError(path string, d fs.DirEntry, err error) error {
	if w.policy == WalkAbort {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	metrics.WalkErrors.Inc()
	w.logger.Warn("跳过不可读条目", "path", path, "error", err)
	if d != nil && d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}
