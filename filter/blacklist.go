package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉指定课程。
type BlacklistFilter struct {
	courseIDs map[int64]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(courseIDs []int64) *BlacklistFilter {
	set := make(map[int64]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{courseIDs: set}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.courseIDs[item.ID]
	return ok, nil
}
