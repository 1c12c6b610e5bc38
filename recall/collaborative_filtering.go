package recall

import (
	"context"
	"errors"
	"sort"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/model"
	"github.com/rushteam/courserec/pkg/utils"
)

// DefaultNeighborCount 是 UserBasedCF 默认考虑的相似用户数。
const DefaultNeighborCount = 5

var errNoSnapshot = errors.New("recall: no model snapshot in context")

// UserBasedCF 是基于用户的协同过滤召回源（User-based Collaborative Filtering, User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的课程"
//
// 算法流程：
//  1. 用户 → 评分向量（快照中的 UserItem 行）
//  2. 用户相似度（快照中预计算的余弦相似度表）
//  3. 取 TopK 个其他用户（相似度降序，同分按用户 ID 升序）
//  4. score[course] += similarity * rating，只累加评分 > 0 的课程；负相似度会扣分
type UserBasedCF struct {
	// NeighborCount 参与聚合的相似用户数，<= 0 时使用 DefaultNeighborCount
	NeighborCount int
}

func (r *UserBasedCF) Name() string {
	return "recall.u2i" // u2u → u2i
}

func (r *UserBasedCF) neighborCount() int {
	if r.NeighborCount <= 0 {
		return DefaultNeighborCount
	}
	return r.NeighborCount
}

// Scores 返回 userID 的协同过滤分数（collaborative_scores）。
// 用户不在相似度表中时返回空 map；用户自身永远不会作为邻居。
func (r *UserBasedCF) Scores(snap *model.Snapshot, userID int64) map[int64]float64 {
	scores := make(map[int64]float64)
	if snap == nil || snap.Similarity == nil || snap.UserItem == nil {
		return scores
	}

	for _, nb := range snap.Similarity.Neighbors(userID, r.neighborCount()) {
		ratings, ok := snap.UserItem.Row(nb.UserID)
		if !ok {
			continue
		}
		for j, rating := range ratings {
			if rating > 0 {
				scores[snap.UserItem.Courses[j]] += nb.Similarity * rating
			}
		}
	}
	return scores
}

func (r *UserBasedCF) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if !rctx.HasUser() {
		return nil, nil
	}
	snap, ok := model.FromContext(ctx)
	if !ok {
		return nil, errNoSnapshot
	}

	items := scoresToItems(r.Scores(snap, *rctx.UserID), model.FeatureCollabScore)
	for _, it := range items {
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "u2i", Source: "recall"})
		it.PutLabel(utils.LabelRecallMetric, utils.Label{Value: "cosine", Source: "recall"})
	}
	return items, nil
}

// U2IRecall 是 UserBasedCF 的类型别名，提供更符合工业习惯的命名。
type U2IRecall = UserBasedCF

var _ Source = (*UserBasedCF)(nil)

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
