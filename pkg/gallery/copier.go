package gallery

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"disease_gallery/pkg/hasher"
	"disease_gallery/pkg/metrics"
)

// CopyStats 统计一次同步的结果
type CopyStats struct {
	Copied  int   `json:"copied"`
	Skipped int   `json:"skipped"`
	Bytes   int64 `json:"bytes"`
}

// Copier 将图库按分类结果同步到 outRoot/images 下。
//
// 目标已存在且字节数与源文件一致时视为已同步并跳过，
// 大小相同但内容不同的文件不会被重新复制。开启 verifyHash 后改为比较 SHA-256。
type Copier struct {
	walker     *Walker
	verifyHash bool
	logger     *slog.Logger
}

func NewCopier(walker *Walker, verifyHash bool, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Copier{walker: walker, verifyHash: verifyHash, logger: logger}
}

func (c *Copier) Copy(root, outRoot string) (CopyStats, error) {
	var stats CopyStats
	err := c.walker.Walk(root, func(img ImageFile) error {
		cls, err := Classify(root, img.Path)
		if err != nil {
			return err
		}
		dest := cls.DestPath(outRoot, filepath.Base(img.Path))

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("%w: 无法创建目录 %s: %v", ErrDestinationWrite, filepath.Dir(dest), err)
		}

		synced, err := c.inSync(img, dest)
		if err != nil {
			return err
		}
		if synced {
			stats.Skipped++
			metrics.FilesSkipped.Inc()
			c.logger.Debug("目标已同步，跳过", "dest", dest)
			return nil
		}

		n, err := copyFile(img.Path, dest, img.Info)
		if err != nil {
			return err
		}
		stats.Copied++
		stats.Bytes += n
		metrics.FilesCopied.Inc()
		metrics.BytesCopied.Add(float64(n))
		c.logger.Debug("文件已复制", "src", img.Path, "dest", dest, "bytes", n)
		return nil
	})
	if err != nil {
		return stats, err
	}

	c.logger.Info("图片同步完成", "copied", stats.Copied, "skipped", stats.Skipped, "bytes", stats.Bytes)
	return stats, nil
}

func (c *Copier) inSync(img ImageFile, dest string) (bool, error) {
	di, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: 无法读取目标 %s: %v", ErrDestinationWrite, dest, err)
	}
	if !di.Mode().IsRegular() || di.Size() != img.Info.Size() {
		return false, nil
	}
	if !c.verifyHash {
		return true, nil
	}

	srcHash, err := hasher.CalculateSHA256(img.Path)
	if err != nil {
		return false, fmt.Errorf("%w: 计算 %s 哈希失败: %v", ErrSourceUnreadable, img.Path, err)
	}
	destHash, err := hasher.CalculateSHA256(dest)
	if err != nil {
		return false, fmt.Errorf("%w: 计算 %s 哈希失败: %v", ErrDestinationWrite, dest, err)
	}
	return srcHash == destHash, nil
}

// copyFile 经临时文件写入后重命名，并保留权限位与修改时间
func copyFile(src, dest string, info os.FileInfo) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: 无法打开 %s: %v", ErrSourceUnreadable, src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".copy-*")
	if err != nil {
		return 0, fmt.Errorf("%w: 无法创建临时文件: %v", ErrDestinationWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("%w: 复制 %s 失败: %v", ErrDestinationWrite, src, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: 关闭 %s 失败: %v", ErrDestinationWrite, tmpName, err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("%w: 设置权限失败: %v", ErrDestinationWrite, err)
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return 0, fmt.Errorf("%w: 设置修改时间失败: %v", ErrDestinationWrite, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("%w: 无法写入 %s: %v", ErrDestinationWrite, dest, err)
	}
	return n, nil
}
