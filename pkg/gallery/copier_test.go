package gallery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyScenario(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, scenarioFiles...)

	stats, err := newTestCopier(false).Copy(root, out)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Copied)
	assert.Equal(t, 0, stats.Skipped)

	for _, rel := range []string{
		"images/CategoryA/DiseaseX/a.jpg",
		"images/CategoryA/DiseaseX/b.png",
		"images/DiseaseOnly/DiseaseOnly/c.bmp",
		"images/" + OtherLabel + "/" + OtherLabel + "/loose.jpg",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}
	assert.NoFileExists(t, filepath.Join(out, "images", OtherLabel, OtherLabel, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(out, "images", "CategoryA", "DiseaseX", "notes.txt"))
}

func TestCopyTwiceIsNoop(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "A/B/sub/1.jpg", "A/2.png", "3.webp")

	mtime := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	src := filepath.Join(root, "A", "B", "sub", "1.jpg")
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	c := newTestCopier(false)
	first, err := c.Copy(root, out)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Copied)

	dest := filepath.Join(out, "images", "A", "B", "sub", "1.jpg")
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "修改时间应被保留")

	second, err := c.Copy(root, out)
	require.NoError(t, err)
	assert.Equal(t, CopyStats{Skipped: 3}, second)

	info2, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info2.ModTime().Equal(info.ModTime()))
}

func TestCopySizeMismatchRecopies(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "A/B/1.jpg")

	c := newTestCopier(false)
	_, err := c.Copy(root, out)
	require.NoError(t, err)

	dest := filepath.Join(out, "images", "A", "B", "1.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("truncated-and-longer-than-source"), 0644))

	stats, err := c.Copy(root, out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Copied)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "A/B/1.jpg", string(data))
}

func TestCopySameSizeDifferentContent(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "A/B/1.jpg")
	dest := filepath.Join(out, "images", "A", "B", "1.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, os.WriteFile(dest, []byte("XXXXXXXXX"), 0644))

	// 默认只比较大小，内容不同的同尺寸文件被视为已同步
	stats, err := newTestCopier(false).Copy(root, out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	data, _ := os.ReadFile(dest)
	assert.Equal(t, "XXXXXXXXX", string(data))

	stats, err = newTestCopier(true).Copy(root, out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Copied)
	data, _ = os.ReadFile(dest)
	assert.Equal(t, "A/B/1.jpg", string(data))
}

func TestCopyDestinationWriteFailure(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, "A/B/1.jpg")
	require.NoError(t, os.WriteFile(filepath.Join(out, "images"), []byte("not a dir"), 0644))

	_, err := newTestCopier(false).Copy(root, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDestinationWrite))
}
