package gallery

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/collate"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/language"
)

// OtherLabel 是路径层级不足时使用的保留分组名，始终排在类别列表最后。
const OtherLabel = "其他"

const (
	SortKeyGBK       = "gbk"
	SortKeyUnidecode = "unidecode"
	SortKeyCollate   = "collate"
)

// Collator 把显示名称映射为可比较的排序键。
// 键之间按字节序比较，无法转换的名称退化为小写原文，绝不返回错误。
type Collator interface {
	Key(name string) string
}

// NewCollator 按名称创建排序键实现，空字符串等同于 gbk
func NewCollator(kind string) (Collator, error) {
	switch strings.ToLower(kind) {
	case "", SortKeyGBK:
		return gbkCollator{enc: simplifiedchinese.GBK}, nil
	case SortKeyUnidecode:
		return unidecodeCollator{}, nil
	case SortKeyCollate:
		return &textCollator{c: collate.New(language.Chinese)}, nil
	default:
		return nil, fmt.Errorf("未知的排序方式 '%s' (可选: gbk, unidecode, collate)", kind)
	}
}

var defaultCollator Collator = gbkCollator{enc: simplifiedchinese.GBK}

// LocaleKey 使用默认的 GBK 字节序生成排序键
func LocaleKey(name string) string {
	return defaultCollator.Key(name)
}

// gbkCollator 将名称编码为 GBK 后取十六进制串，汉字由此大致按拼音排列。
// 无法用 GBK 表示的字符直接丢弃。
type gbkCollator struct {
	enc encoding.Encoding
}

func (g gbkCollator) Key(name string) string {
	enc := g.enc.NewEncoder()
	var b strings.Builder
	for _, r := range name {
		out, err := enc.String(string(r))
		if err != nil {
			continue
		}
		b.WriteString(hex.EncodeToString([]byte(out)))
	}
	return orLower(b.String(), name)
}

type unidecodeCollator struct{}

func (unidecodeCollator) Key(name string) string {
	return orLower(strings.ToLower(strings.TrimSpace(unidecode.Unidecode(name))), name)
}

// textCollator 基于 x/text/collate 的中文排序规则，collate.Collator 不能并发使用
type textCollator struct {
	mu  sync.Mutex
	c   *collate.Collator
	buf collate.Buffer
}

func (t *textCollator) Key(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Reset()
	return orLower(hex.EncodeToString(t.c.KeyFromString(&t.buf, name)), name)
}

func orLower(key, name string) string {
	if key == "" {
		return strings.ToLower(name)
	}
	return key
}

// CategoryKey 是类别的两级排序键：保留分组 Tier 为 1，其余为 0。
type CategoryKey struct {
	Tier int
	Key  string
}

func categoryKey(c Collator, name string) CategoryKey {
	if name == OtherLabel {
		return CategoryKey{Tier: 1}
	}
	return CategoryKey{Tier: 0, Key: c.Key(name)}
}

func (k CategoryKey) Compare(o CategoryKey) int {
	return cmp.Or(cmp.Compare(k.Tier, o.Tier), strings.Compare(k.Key, o.Key))
}

// DiseaseKey 以排序键为主、原名为辅，保证不同名称之间顺序确定。
type DiseaseKey struct {
	Key  string
	Name string
}

func diseaseKey(c Collator, name string) DiseaseKey {
	return DiseaseKey{Key: c.Key(name), Name: name}
}

func (k DiseaseKey) Compare(o DiseaseKey) int {
	return cmp.Or(strings.Compare(k.Key, o.Key), strings.Compare(k.Name, o.Name))
}
