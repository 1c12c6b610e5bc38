package recall

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按课程 ID 合并结果。
//
// 同一课程被多个召回源命中时合并为一个 Item：Features 取并集（各源写入自己的分数 key），
// Labels 按 MergeLabel 累积。输出按课程 ID 升序，与各源完成的先后无关。
type Fanout struct {
	Sources []Source

	// Timeout 每个召回源的超时时间，0 表示不设置
	Timeout time.Duration

	// MaxConcurrent 最大并发数（0 表示无限制）
	MaxConcurrent int

	// OnError 召回源失败时的回调（可选）；失败的召回源视为无结果，不中断其他召回源
	OnError func(source string, err error)
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		results = make([][]*core.Item, len(n.Sources))
		eg      errgroup.Group
	)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		i, s := i, src
		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				if n.OnError != nil {
					n.OnError(s.Name(), err)
				}
				return nil
			}

			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	// 上游已取消时不再返回部分结果
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return merge(results), nil
}

// merge 按 Sources 顺序合并，同 ID 的 Item 合并特征与标签。
func merge(results [][]*core.Item) []*core.Item {
	seen := make(map[int64]*core.Item)
	for _, items := range results {
		for _, it := range items {
			if it == nil {
				continue
			}
			old, ok := seen[it.ID]
			if !ok {
				seen[it.ID] = it
				continue
			}
			for k, v := range it.Features {
				old.SetFeature(k, v)
			}
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
		}
	}

	out := make([]*core.Item, 0, len(seen))
	for _, it := range seen {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
