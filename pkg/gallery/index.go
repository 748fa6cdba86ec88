package gallery

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"disease_gallery/pkg/metrics"
)

// Index 是写入 data/index.json 的图库索引，字段顺序即输出顺序
type Index struct {
	TotalImages int             `json:"total_images"`
	Categories  []CategoryEntry `json:"categories"`
}

type CategoryEntry struct {
	Name     string         `json:"name"`
	Diseases []DiseaseEntry `json:"diseases"`
}

type DiseaseEntry struct {
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

// accumulator 按 类别 -> 病例 -> 图片路径 收集文件，与遍历顺序无关
type accumulator struct {
	categories map[string]map[string][]string
	total      int
}

func newAccumulator() *accumulator {
	return &accumulator{categories: make(map[string]map[string][]string)}
}

func (a *accumulator) add(c Classification, fileName string) {
	diseases, ok := a.categories[c.Category]
	if !ok {
		diseases = make(map[string][]string)
		a.categories[c.Category] = diseases
	}
	diseases[c.Disease] = append(diseases[c.Disease], c.DestRel(fileName))
	a.total++
}

// finish 排序并生成最终索引：类别按 (tier, key, name)，病例按 (key, name)，图片按字典序
func (a *accumulator) finish(col Collator) *Index {
	type sortedCategory struct {
		key  CategoryKey
		name string
	}
	cats := make([]sortedCategory, 0, len(a.categories))
	for name := range a.categories {
		cats = append(cats, sortedCategory{key: categoryKey(col, name), name: name})
	}
	slices.SortFunc(cats, func(x, y sortedCategory) int {
		if c := x.key.Compare(y.key); c != 0 {
			return c
		}
		return strings.Compare(x.name, y.name)
	})

	idx := &Index{TotalImages: a.total, Categories: make([]CategoryEntry, 0, len(cats))}
	for _, cat := range cats {
		diseaseMap := a.categories[cat.name]
		keys := make([]DiseaseKey, 0, len(diseaseMap))
		for name := range diseaseMap {
			keys = append(keys, diseaseKey(col, name))
		}
		slices.SortFunc(keys, DiseaseKey.Compare)

		entry := CategoryEntry{Name: cat.name, Diseases: make([]DiseaseEntry, 0, len(keys))}
		for _, k := range keys {
			images := slices.Clone(diseaseMap[k.Name])
			slices.Sort(images)
			entry.Diseases = append(entry.Diseases, DiseaseEntry{Name: k.Name, Images: images})
		}
		idx.Categories = append(idx.Categories, entry)
	}
	return idx
}

// IndexBuilder 遍历图库并生成排序后的索引，不读取文件内容
type IndexBuilder struct {
	walker   *Walker
	collator Collator
	logger   *slog.Logger
}

func NewIndexBuilder(walker *Walker, collator Collator, logger *slog.Logger) *IndexBuilder {
	if collator == nil {
		collator = defaultCollator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexBuilder{walker: walker, collator: collator, logger: logger}
}

func (b *IndexBuilder) Build(root string) (*Index, error) {
	acc := newAccumulator()
	err := b.walker.Walk(root, func(img ImageFile) error {
		c, err := Classify(root, img.Path)
		if err != nil {
			return err
		}
		acc.add(c, filepath.Base(img.Path))
		metrics.ImagesIndexed.Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	idx := acc.finish(b.collator)
	b.logger.Info("索引构建完成", "total_images", idx.TotalImages, "categories", len(idx.Categories))
	return idx, nil
}
