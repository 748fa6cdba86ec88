package gallery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"disease_gallery/pkg/logger"
)

// writeTree 在 root 下按相对路径创建文件，内容即路径本身
func writeTree(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(rel), 0644))
	}
}

func newTestBuilder() *IndexBuilder {
	return NewIndexBuilder(NewWalker(WalkAbort, logger.Discard()), nil, logger.Discard())
}

func newTestCopier(verifyHash bool) *Copier {
	return NewCopier(NewWalker(WalkAbort, logger.Discard()), verifyHash, logger.Discard())
}

var scenarioFiles = []string{
	"CategoryA/DiseaseX/a.jpg",
	"CategoryA/DiseaseX/b.png",
	"loose.jpg",
	"DiseaseOnly/c.bmp",
	"notes.txt",
	"CategoryA/DiseaseX/notes.txt",
}
