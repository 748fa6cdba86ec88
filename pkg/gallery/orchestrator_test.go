package gallery

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disease_gallery/config"
	"disease_gallery/pkg/logger"
)

func newTestOrchestrator(t *testing.T, root, out string, skipCopy bool) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(config.GalleryConfig{Root: root, Out: out, SkipCopy: skipCopy}, logger.Discard())
	require.NoError(t, err)
	return o
}

func TestRunWritesIndexAndImages(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "site")
	writeTree(t, root, scenarioFiles...)

	res, err := newTestOrchestrator(t, root, out, false).Run()
	require.NoError(t, err)
	assert.Equal(t, 4, res.Copy.Copied)
	assert.Equal(t, 4, res.Index.TotalImages)

	// 索引中的每条路径都对应输出目录下与源文件大小相同的文件
	sources := make(map[string]string)
	for _, rel := range scenarioFiles {
		if IsImageExtension(rel) {
			sources[ClassifyRel(rel).DestRel(path.Base(rel))] = rel
		}
	}
	idx, err := ReadIndex(res.IndexPath)
	require.NoError(t, err)
	listed := 0
	for _, c := range idx.Categories {
		for _, d := range c.Diseases {
			for _, rel := range d.Images {
				src, ok := sources[rel]
				require.True(t, ok, rel)
				srcInfo, err := os.Stat(filepath.Join(root, filepath.FromSlash(src)))
				require.NoError(t, err)
				info, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
				require.NoError(t, err, rel)
				assert.Equal(t, srcInfo.Size(), info.Size(), rel)
				listed++
			}
		}
	}
	assert.Equal(t, len(sources), listed)

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "app.js"))
}

func TestRunIsByteStable(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "皮肤科/湿疹/1.jpg", "皮肤科/湿疹/2.jpg", "眼科/3.png", "4.bmp", "A/B/C/5.tif")

	o := newTestOrchestrator(t, root, out, false)
	first, err := o.Run()
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(first.IndexPath)
	require.NoError(t, err)

	second, err := o.Run()
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second.IndexPath)
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes)
	assert.Equal(t, 0, second.Copy.Copied)
	assert.Equal(t, 5, second.Copy.Skipped)
}

func TestRunSkipCopy(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "A/B/1.jpg")

	res, err := newTestOrchestrator(t, root, out, true).Run()
	require.NoError(t, err)
	assert.Equal(t, CopyStats{}, res.Copy)
	assert.Equal(t, 1, res.Index.TotalImages)
	assert.FileExists(t, res.IndexPath)
	assert.NoDirExists(t, filepath.Join(out, "images"))
}

func TestRunOutputInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "A/B/1.jpg", "2.jpg")
	o := newTestOrchestrator(t, root, filepath.Join(root, "_site"), false)

	_, err := o.Run()
	require.NoError(t, err)
	res, err := o.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index.TotalImages)
}

func TestRunMissingRootWritesNothing(t *testing.T) {
	out := t.TempDir()
	_, err := newTestOrchestrator(t, filepath.Join(t.TempDir(), "missing"), out, false).Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
	assert.NoFileExists(t, IndexPath(out))
}

func TestRunCopyFailureKeepsOldIndex(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "A/B/1.jpg")
	require.NoError(t, os.MkdirAll(filepath.Join(out, "data"), 0755))
	require.NoError(t, os.WriteFile(IndexPath(out), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "images"), []byte("blocker"), 0644))

	_, err := newTestOrchestrator(t, root, out, false).Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDestinationWrite))

	data, err := os.ReadFile(IndexPath(out))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestNewOrchestratorRejectsBadOptions(t *testing.T) {
	_, err := NewOrchestrator(config.GalleryConfig{Root: ".", Out: ".", SortKey: "stroke"}, logger.Discard())
	assert.Error(t, err)

	_, err = NewOrchestrator(config.GalleryConfig{Root: ".", Out: ".", OnWalkError: "retry"}, logger.Discard())
	assert.Error(t, err)
}
