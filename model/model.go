package model

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}

// 召回源写入 Item.Features 的分数 key。
const (
	FeatureContentScore = "content_score"
	FeatureCollabScore  = "collab_score"
)

// DefaultAlpha 是混合权重默认值，偏向内容信号。
const DefaultAlpha = 0.7

// HybridModel 线性混合内容分与协同分：
//
//	score = Alpha*content_score + (1-Alpha)*collab_score
//
// 缺失的分数按 0 计。
type HybridModel struct {
	Alpha float64
}

func (m *HybridModel) Name() string { return "hybrid" }

func (m *HybridModel) Predict(features map[string]float64) (float64, error) {
	return m.Alpha*features[FeatureContentScore] + (1-m.Alpha)*features[FeatureCollabScore], nil
}

var _ RankModel = (*HybridModel)(nil)
