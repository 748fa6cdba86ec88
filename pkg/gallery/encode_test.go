package gallery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndexFormat(t *testing.T) {
	idx := &Index{
		TotalImages: 1,
		Categories: []CategoryEntry{{
			Name: OtherLabel,
			Diseases: []DiseaseEntry{{
				Name:   OtherLabel,
				Images: []string{"images/其他/其他/a&b.jpg"},
			}},
		}},
	}

	got, err := MarshalIndex(idx)
	require.NoError(t, err)

	want := `{
  "total_images": 1,
  "categories": [
    {
      "name": "\u5176\u4ed6",
      "diseases": [
        {
          "name": "\u5176\u4ed6",
          "images": [
            "images/\u5176\u4ed6/\u5176\u4ed6/a&b.jpg"
          ]
        }
      ]
    }
  ]
}`
	assert.Equal(t, want, string(got))
}

func TestMarshalIndexEmpty(t *testing.T) {
	got, err := MarshalIndex(newAccumulator().finish(defaultCollator))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"total_images\": 0,\n  \"categories\": []\n}", string(got))
}

func TestEscapeNonASCII(t *testing.T) {
	assert.Equal(t, `"\ud83d\ude00"`, string(escapeNonASCII([]byte(`"😀"`))))
	assert.Equal(t, `"\u00e9a\u007f"`, string(escapeNonASCII([]byte("\"éa\x7f\""))))
	assert.Equal(t, `{"a": 1}`, string(escapeNonASCII([]byte(`{"a": 1}`))))
}

func TestWriteAndReadIndex(t *testing.T) {
	out := t.TempDir()
	path := IndexPath(out)
	assert.Equal(t, filepath.Join(out, "data", "index.json"), path)

	idx := &Index{TotalImages: 2, Categories: []CategoryEntry{{
		Name:     "皮肤科",
		Diseases: []DiseaseEntry{{Name: "湿疹", Images: []string{"images/皮肤科/湿疹/1.jpg", "images/皮肤科/湿疹/2.jpg"}}},
	}}}
	require.NoError(t, WriteIndex(path, idx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, b := range raw {
		require.Less(t, b, byte(0x80), "index.json 必须是纯 ASCII")
	}

	back, err := ReadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, idx, back)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "不应残留临时文件")
}
