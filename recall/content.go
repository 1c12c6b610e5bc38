package recall

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/model"
	"github.com/rushteam/courserec/pkg/utils"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："和参考课程属性相近的课程，用户也可能感兴趣"
//
// 以参考课程的特征向量为基准，对所有课程计算余弦相似度。参考课程缺失或不在数据中时
// 视为冷启动，不产出任何候选。
type ContentRecall struct{}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

// Scores 返回所有课程与参考课程的余弦相似度（content_scores）。
//
// 参考课程不存在时返回空 map。参考课程自身恒为 1.0；与零向量比较的结果为 0。
func (r *ContentRecall) Scores(snap *model.Snapshot, courseID int64) map[int64]float64 {
	if snap == nil || snap.Content == nil {
		return map[int64]float64{}
	}
	ref, ok := snap.Content.Vector(courseID)
	if !ok {
		return map[int64]float64{}
	}

	scores := make(map[int64]float64, snap.Content.Len())
	for i, c := range snap.Content.Courses {
		if c.ID == courseID {
			scores[c.ID] = 1
			continue
		}
		scores[c.ID] = model.Cosine(ref, snap.Content.Rows[i])
	}
	return scores
}

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if !rctx.HasCourse() {
		return nil, nil
	}
	snap, ok := model.FromContext(ctx)
	if !ok {
		return nil, errNoSnapshot
	}

	items := scoresToItems(r.Scores(snap, *rctx.CourseID), model.FeatureContentScore)
	for _, it := range items {
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "content", Source: "recall"})
		it.PutLabel(utils.LabelRecallMetric, utils.Label{Value: "cosine", Source: "recall"})
	}
	return items, nil
}

var _ Source = (*ContentRecall)(nil)
