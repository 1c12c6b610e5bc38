package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
)

// Filter 判断一门候选课程是否从推荐列表中移除。
//
// 过滤器由 FilterNode 在 rank.hybrid 之后、rerank.topn 之前调用，
// 此时 item.ID 为课程 ID，item.Score 为混合得分，
// item.Features 含 content_score / collab_score。
// 返回 true 表示移除该课程，false 表示保留；被移除的课程不占用 top_n 名额。
type Filter interface {
	// Name 返回过滤器名称，记录在 filtered 标签的 Source 中
	Name() string

	// ShouldFilter 判断课程是否应被移除；rctx 携带本次请求的 user_id、course_id 等参数
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
