package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该课程就会被移除；过滤器出错时记录到 OnError 并保留该课程。
type FilterNode struct {
	Filters []Filter

	// OnError 过滤器出错时的回调（可选）
	OnError func(filter string, item *core.Item, err error)
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		filtered := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if n.OnError != nil {
					n.OnError(f.Name(), item, err)
				}
				continue
			}
			if ok {
				filtered = true
				item.PutLabel(utils.LabelFiltered, utils.Label{Value: "true", Source: f.Name()})
				break
			}
		}
		if !filtered {
			out = append(out, item)
		}
	}
	return out, nil
}
