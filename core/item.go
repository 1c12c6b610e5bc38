package core

import "github.com/rushteam/courserec/pkg/utils"

// Item 是推荐链路中的统一承载结构：课程 ID、分数、特征、元信息、标签。
// Features 存放各召回源的原始分（content_score / collab_score）；Score 用于排序决策。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Feature 读取特征值，不存在时返回 0。
func (it *Item) Feature(key string) float64 {
	if it.Features == nil {
		return 0
	}
	return it.Features[key]
}

// SetFeature 写入特征值。
func (it *Item) SetFeature(key string, v float64) {
	if it.Features == nil {
		it.Features = make(map[string]float64)
	}
	it.Features[key] = v
}
