// Package viewer 内嵌静态图库的浏览页面 (index.html + app.js)，
// 页面读取同目录下的 data/index.json 并按类别/病例展示缩略图。
package viewer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed assets/*
var embeddedAssets embed.FS

var assets = mustSub(embeddedAssets, "assets")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// FS 返回以 index.html 为根的查看器文件系统
func FS() fs.FS {
	return assets
}

// WriteTo 将查看器文件写入 dir，内容未变化的文件不重写
func WriteTo(dir string) error {
	return fs.WalkDir(assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets, p)
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if old, err := os.ReadFile(dest); err == nil && bytes.Equal(old, data) {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("无法创建目录 %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("无法写入 %s: %w", dest, err)
		}
		return nil
	})
}
