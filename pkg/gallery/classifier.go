package gallery

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Classification 是由相对路径层级推导出的 (类别, 病例, 剩余路径) 三元组
type Classification struct {
	Category  string
	Disease   string
	Remainder []string
}

// Classify 根据 filePath 相对 root 的层级推导分类，filePath 必须位于 root 之下。
func Classify(root, filePath string) (Classification, error) {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return Classification{}, fmt.Errorf("无法计算 %s 相对 %s 的路径: %w", filePath, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Classification{}, fmt.Errorf("文件 %s 不在图库根目录 %s 之下", filePath, root)
	}
	return ClassifyRel(rel), nil
}

// ClassifyRel 对相对路径分类：
//   - 三层及以上: 类别/病例/剩余...
//   - 两层: 目录同时作为类别和病例
//   - 一层: 归入 其他/其他
func ClassifyRel(rel string) Classification {
	parts := splitRel(rel)
	switch {
	case len(parts) >= 3:
		return Classification{Category: parts[0], Disease: parts[1], Remainder: parts[2:]}
	case len(parts) == 2:
		return Classification{Category: parts[0], Disease: parts[0], Remainder: parts[1:]}
	case len(parts) == 1:
		return Classification{Category: OtherLabel, Disease: OtherLabel, Remainder: parts}
	default:
		return Classification{Category: OtherLabel, Disease: OtherLabel}
	}
}

func splitRel(rel string) []string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}

// segments 返回 images 目录下的目标路径片段，剩余路径为空时用 fileName 兜底
func (c Classification) segments(fileName string) []string {
	segs := []string{c.Category, c.Disease}
	if len(c.Remainder) == 0 {
		return append(segs, fileName)
	}
	return append(segs, c.Remainder...)
}

// DestRel 返回相对输出目录、以 images/ 开头的正斜杠路径
func (c Classification) DestRel(fileName string) string {
	return path.Join(append([]string{imagesDirName}, c.segments(fileName)...)...)
}

// DestPath 返回 outRoot 下的目标文件系统路径
func (c Classification) DestPath(outRoot, fileName string) string {
	return filepath.Join(append([]string{outRoot, imagesDirName}, c.segments(fileName)...)...)
}
