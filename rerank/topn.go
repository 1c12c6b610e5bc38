package rerank

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在排序之后截取前 N 门课程。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Fanout{...},     // 召回
//	        &rank.HybridNode{},      // 混合排序
//	        &rerank.TopNNode{},      // 截取 rctx.TopN
//	    },
//	}
//
// 截断数量只取自请求的 rctx.TopN，<= 0 时不截断；TopN > len(items) 时返回全部，不补齐。
type TopNNode struct{}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := 0
	if rctx != nil {
		limit = rctx.TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
