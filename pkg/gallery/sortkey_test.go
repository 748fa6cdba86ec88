package gallery

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleKeyGBK(t *testing.T) {
	assert.Equal(t, "414243", LocaleKey("ABC"))
	assert.Equal(t, "d6d0", LocaleKey("中"))
	assert.Equal(t, "b0a2", LocaleKey("阿"))

	names := []string{"中", "白", "阿"}
	slices.SortFunc(names, func(a, b string) int {
		return diseaseKey(defaultCollator, a).Compare(diseaseKey(defaultCollator, b))
	})
	assert.Equal(t, []string{"阿", "白", "中"}, names)
}

func TestLocaleKeyDropsUnsupportedRunes(t *testing.T) {
	assert.Equal(t, "61", LocaleKey("a😀"))
	// 全部无法编码时退化为小写原文
	assert.Equal(t, "😀", LocaleKey("😀"))
	assert.Equal(t, "", LocaleKey(""))
}

func TestCategoryKeyOtherAlwaysLast(t *testing.T) {
	other := categoryKey(defaultCollator, OtherLabel)
	assert.Equal(t, CategoryKey{Tier: 1}, other)

	for _, name := range []string{"", "zzz", "齄", "😀", "其它"} {
		k := categoryKey(defaultCollator, name)
		assert.Equal(t, 0, k.Tier, name)
		assert.Equal(t, -1, k.Compare(other), name)
		assert.Equal(t, 1, other.Compare(k), name)
	}
}

func TestDiseaseKeyTieBreakOnName(t *testing.T) {
	a := diseaseKey(defaultCollator, "a😀")
	b := diseaseKey(defaultCollator, "a🙂")
	require.Equal(t, a.Key, b.Key)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
}

func TestNewCollator(t *testing.T) {
	for _, kind := range []string{"", "gbk", "GBK", "unidecode", "collate"} {
		c, err := NewCollator(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, c.Key("Banana"), kind)
	}

	_, err := NewCollator("pinyin2")
	assert.Error(t, err)
}

func TestUnidecodeCollator(t *testing.T) {
	c, err := NewCollator(SortKeyUnidecode)
	require.NoError(t, err)
	assert.Equal(t, "bai", c.Key("白"))
	assert.Less(t, c.Key("白"), c.Key("中"))
	assert.Equal(t, c.Key("abc"), c.Key("ABC"))
}

func TestCollateCollator(t *testing.T) {
	c, err := NewCollator(SortKeyCollate)
	require.NoError(t, err)
	assert.Less(t, c.Key("apple"), c.Key("Banana"))
	assert.Equal(t, c.Key("apple"), c.Key("apple"))
}
