package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/model"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/pkg/utils"
)

// HybridNode 是混合排序 Node：对召回结果调用 Combine，把 content_score 与 collab_score 线性加权。
// - Alpha 取自请求（rctx.Alpha），由调用方校验；Node 本身不持有权重
// - 同一课程只保留首个 Item
// - 写入 labels：rank_model
// - 更新 item.Score 并按分数降序排序，同分按课程 ID 升序
type HybridNode struct{}

func (n *HybridNode) Name() string        { return "rank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	alpha := model.DefaultAlpha
	if rctx != nil {
		alpha = rctx.Alpha
	}

	byID := make(map[int64]*core.Item, len(items))
	content := make(map[int64]float64, len(items))
	collab := make(map[int64]float64, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, dup := byID[it.ID]; dup {
			continue
		}
		byID[it.ID] = it
		if v, ok := it.Features[model.FeatureContentScore]; ok {
			content[it.ID] = v
		}
		if v, ok := it.Features[model.FeatureCollabScore]; ok {
			collab[it.ID] = v
		}
		if _, ok := content[it.ID]; !ok {
			if _, ok := collab[it.ID]; !ok {
				// 两路分数都缺失的候选按 0 分参与排序
				content[it.ID] = 0
			}
		}
	}

	rankLabel := utils.Label{
		Value:  fmt.Sprintf("%s(alpha=%g)", (&model.HybridModel{}).Name(), alpha),
		Source: "rank",
	}
	scored := Combine(content, collab, alpha)
	out := make([]*core.Item, 0, len(scored))
	for _, s := range scored {
		it := byID[s.CourseID]
		it.Score = s.Score
		it.PutLabel(utils.LabelRankModel, rankLabel)
		out = append(out, it)
	}
	return out, nil
}

// Scored 是一门课程的混合得分。
type Scored struct {
	CourseID int64
	Score    float64
}

// Combine 合并内容分与协同分（hybrid combine）：
//
//	final[id] = alpha*content[id] + (1-alpha)*collab[id]
//
// id 取两个 map 的并集，缺失项按 0 计；结果按分数降序、同分按 ID 升序。两个 map 都为空时返回空切片。
func Combine(content, collab map[int64]float64, alpha float64) []Scored {
	m := &model.HybridModel{Alpha: alpha}
	final := make(map[int64]float64, len(content)+len(collab))
	for id := range content {
		final[id] = 0
	}
	for id := range collab {
		final[id] = 0
	}
	for id := range final {
		final[id], _ = m.Predict(map[string]float64{
			model.FeatureContentScore: content[id],
			model.FeatureCollabScore:  collab[id],
		})
	}

	out := make([]Scored, 0, len(final))
	for id, s := range final {
		out = append(out, Scored{CourseID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CourseID < out[j].CourseID
	})
	return out
}
