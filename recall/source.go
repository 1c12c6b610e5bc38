package recall

import (
	"context"

	"github.com/rushteam/courserec/core"
)

// Source 表示一个可复用的召回源（内容 / 协同过滤 / ...）。
// 可以理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// scoresToItems 把分数表转成 Item 列表，按课程 ID 升序输出，保证结果可复现。
func scoresToItems(scores map[int64]float64, feature string) []*core.Item {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sortIDs(ids)

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = scores[id]
		it.SetFeature(feature, scores[id])
		out = append(out, it)
	}
	return out
}
