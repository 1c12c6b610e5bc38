package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/courserec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：Recall → Rank → Filter → ReRank → PostProcess。
type Pipeline struct {
	Nodes []Node
}

// Run 依次执行各 Node，上一个 Node 的输出作为下一个 Node 的输入。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Names 返回 Node 名称列表，便于日志输出。
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	return names
}
