// Package courserec 是一个混合课程推荐工具包。
//
// 设计要点：
// - Snapshot-first: 数据集一次加载为只读快照（内容矩阵 + 评分矩阵 + 用户相似度），整体原子替换
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Rank → Filter → ReRank → PostProcess）
// - Labels-first: labels 全链路透传，记录召回来源与排序模型，便于 explain
package courserec

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/service"
)

// 轻量 facade：便于直接 import "courserec" 使用核心抽象。
type (
	Pipeline     = pipeline.Pipeline
	Node         = pipeline.Node
	Kind         = pipeline.Kind
	Recommender  = service.Recommender
	Query        = service.Query
	Option       = service.Option
	CourseRecord = core.CourseRecord
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// Open 使用内置链路创建推荐服务并加载数据集（.csv / .xlsx）。
func Open(ctx context.Context, path string, opts ...Option) (*Recommender, error) {
	rec := service.New(nil, opts...)
	if _, err := rec.Load(ctx, path); err != nil {
		return nil, err
	}
	return rec, nil
}
