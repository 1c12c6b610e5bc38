// Package postprocess 在排序截断之后补充课程展示信息。
package postprocess

import (
	"context"
	"errors"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/model"
	"github.com/rushteam/courserec/pipeline"
)

// Meta key。
const (
	MetaCourseName = "course_name"
	MetaInstructor = "instructor"
	MetaRating     = "rating"
)

// EnrichNode 把课程名、讲师、归一化评分写入 Item.Meta。
// 课程信息取自快照中的去重课程表（首行），不在课程表中的 Item 被丢弃。
type EnrichNode struct{}

func (n *EnrichNode) Name() string        { return "postprocess.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	snap, ok := model.FromContext(ctx)
	if !ok {
		return nil, errors.New("postprocess: no model snapshot in context")
	}

	out := items[:0]
	for _, it := range items {
		if it == nil {
			continue
		}
		c, ok := snap.Content.Course(it.ID)
		if !ok {
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any, 3)
		}
		it.Meta[MetaCourseName] = c.Name
		it.Meta[MetaInstructor] = c.Instructor
		it.Meta[MetaRating] = c.Rating
		out = append(out, it)
	}
	return out, nil
}

// Records 把已补全的 Item 转成课程记录，保持顺序；同一课程只输出一次。
func Records(items []*core.Item) []core.CourseRecord {
	seen := make(map[int64]struct{}, len(items))
	out := make([]core.CourseRecord, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		rec := core.CourseRecord{CourseID: it.ID}
		rec.CourseName, _ = it.Meta[MetaCourseName].(string)
		rec.Instructor, _ = it.Meta[MetaInstructor].(string)
		rec.Rating, _ = it.Meta[MetaRating].(float64)
		out = append(out, rec)
	}
	return out
}
