// Package service 提供课程推荐服务：持有当前模型快照，并通过 Pipeline 产出混合推荐。
package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/filter"
	"github.com/rushteam/courserec/model"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/postprocess"
	"github.com/rushteam/courserec/rank"
	"github.com/rushteam/courserec/recall"
	"github.com/rushteam/courserec/rerank"
)

// DefaultTopN 是未指定 top_n 时返回的课程数量。
const DefaultTopN = 5

// Query 是一次推荐请求。指针字段为 nil 表示调用方未提供。
type Query struct {
	UserID   *int64
	CourseID *int64
	TopN     int
	Alpha    *float64 // nil 时使用默认 alpha
}

// Recommender 是推荐服务。
//
// 快照保存在 atomic.Pointer 中：每个请求只 Load 一次并固定到 context，
// Reload 在旁路构建完整的新快照后一次性替换，失败时旧快照继续服务。
type Recommender struct {
	snap     atomic.Pointer[model.Snapshot]
	pipeline *pipeline.Pipeline

	logger       zerolog.Logger
	cache        core.Store
	cacheTTL     int
	defaultAlpha float64
	buildOpts    model.BuildOptions

	reloadMu sync.Mutex
	path     string
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithLogger 设置日志。
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithCache 设置推荐结果缓存，ttl 单位为秒（<= 0 表示不过期）。
func WithCache(s core.Store, ttl int) Option {
	return func(r *Recommender) {
		r.cache = s
		r.cacheTTL = ttl
	}
}

// WithDefaultAlpha 设置请求未指定 alpha 时的权重。
func WithDefaultAlpha(alpha float64) Option {
	return func(r *Recommender) { r.defaultAlpha = alpha }
}

// WithSimilarityWorkers 设置构建用户相似度的并发数。
func WithSimilarityWorkers(n int) Option {
	return func(r *Recommender) { r.buildOpts.SimilarityWorkers = n }
}

// New 创建推荐服务。p 为 nil 时使用 DefaultPipeline。
// 新建的服务没有快照，需先 Load 或 Use。
func New(p *pipeline.Pipeline, opts ...Option) *Recommender {
	r := &Recommender{
		pipeline:     p,
		logger:       zerolog.Nop(),
		defaultAlpha: model.DefaultAlpha,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pipeline == nil {
		r.pipeline = DefaultPipeline(recall.DefaultNeighborCount, nil)
	}
	r.attachErrorHooks()
	return r
}

// DefaultPipeline 返回内置链路：fan-out 召回 → 混合排序 → [过滤] → 截断 → 补全。
func DefaultPipeline(neighborCount int, filters []filter.Filter) *pipeline.Pipeline {
	nodes := []pipeline.Node{
		&recall.Fanout{Sources: []recall.Source{
			&recall.ContentRecall{},
			&recall.UserBasedCF{NeighborCount: neighborCount},
		}},
		&rank.HybridNode{},
	}
	if len(filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: filters})
	}
	nodes = append(nodes, &rerank.TopNNode{}, &postprocess.EnrichNode{})
	return &pipeline.Pipeline{Nodes: nodes}
}

// attachErrorHooks 为未设置回调的召回/过滤 Node 挂上日志。
func (r *Recommender) attachErrorHooks() {
	for _, node := range r.pipeline.Nodes {
		switch n := node.(type) {
		case *recall.Fanout:
			if n.OnError == nil {
				n.OnError = func(source string, err error) {
					r.logger.Warn().Err(err).Str("source", source).Msg("recall source failed")
				}
			}
		case *filter.FilterNode:
			if n.OnError == nil {
				n.OnError = func(name string, item *core.Item, err error) {
					r.logger.Warn().Err(err).Str("filter", name).Int64("course_id", item.ID).Msg("filter failed, item kept")
				}
			}
		}
	}
}

// Pipeline 返回当前使用的链路。
func (r *Recommender) Pipeline() *pipeline.Pipeline {
	return r.pipeline
}

// Snapshot 返回当前快照，未加载时为 nil。
func (r *Recommender) Snapshot() *model.Snapshot {
	return r.snap.Load()
}

// Use 直接替换当前快照。
func (r *Recommender) Use(snap *model.Snapshot) {
	r.snap.Store(snap)
}

// Load 读取数据集并替换快照，同时记住路径供 Reload 使用。
// 失败时保留原快照并返回错误。
func (r *Recommender) Load(ctx context.Context, path string) (*model.Snapshot, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	start := time.Now()
	snap, err := model.LoadFile(ctx, path, r.buildOpts)
	if err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("dataset load failed")
		return nil, err
	}
	r.path = path
	prev := r.snap.Swap(snap)

	ev := r.logger.Info().
		Str("path", path).
		Str("version", snap.Version).
		Int("courses", snap.Content.Len()).
		Int("users", snap.Similarity.Len()).
		Dur("took", time.Since(start))
	if prev != nil {
		ev = ev.Str("previous_version", prev.Version)
	}
	ev.Msg("snapshot loaded")
	return snap, nil
}

// Reload 从最近一次 Load 的路径重新加载。
func (r *Recommender) Reload(ctx context.Context) (*model.Snapshot, error) {
	r.reloadMu.Lock()
	path := r.path
	r.reloadMu.Unlock()
	if path == "" {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "no dataset path loaded yet")
	}
	return r.Load(ctx, path)
}

// Recommend 返回混合推荐结果：
//
//	final = alpha*content_score + (1-alpha)*collab_score
//
// 只有提供课程时计算内容分，只有提供用户时计算协同分；按分数降序、同分按课程 ID 升序取前 TopN，不补齐。
// 两路都没有结果时返回空切片。
func (r *Recommender) Recommend(ctx context.Context, q Query) ([]core.CourseRecord, error) {
	alpha, err := r.validate(q)
	if err != nil {
		return nil, err
	}
	snap := r.snap.Load()
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "no model snapshot loaded")
	}

	key := cacheKey(snap.Version, q, alpha)
	if recs, ok := r.cached(ctx, key); ok {
		return recs, nil
	}

	rctx := &core.RecommendContext{
		UserID:   q.UserID,
		CourseID: q.CourseID,
		TopN:     q.TopN,
		Alpha:    alpha,
	}
	items, err := r.pipeline.Run(model.NewContext(ctx, snap), rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	recs := postprocess.Records(items)

	r.store(ctx, key, recs)
	return recs, nil
}

func (r *Recommender) validate(q Query) (float64, error) {
	if q.TopN <= 0 {
		return 0, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("top_n must be positive, got %d", q.TopN))
	}
	alpha := r.defaultAlpha
	if q.Alpha != nil {
		alpha = *q.Alpha
	}
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return 0, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidArgument,
			fmt.Sprintf("alpha must be within [0,1], got %v", alpha))
	}
	return alpha, nil
}

// ContentScores 返回参考课程与所有课程的内容相似度；未知课程返回空 map。
func (r *Recommender) ContentScores(courseID int64) (map[int64]float64, error) {
	snap := r.snap.Load()
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "no model snapshot loaded")
	}
	return (&recall.ContentRecall{}).Scores(snap, courseID), nil
}

// CollaborativeScores 返回基于 neighborCount 个最相似用户的协同分；未知用户返回空 map。
func (r *Recommender) CollaborativeScores(userID int64, neighborCount int) (map[int64]float64, error) {
	snap := r.snap.Load()
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "no model snapshot loaded")
	}
	return (&recall.UserBasedCF{NeighborCount: neighborCount}).Scores(snap, userID), nil
}

func (r *Recommender) cached(ctx context.Context, key string) ([]core.CourseRecord, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			r.logger.Warn().Err(err).Str("store", r.cache.Name()).Msg("cache get failed")
		}
		return nil, false
	}
	var recs []core.CourseRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return nil, false
	}
	return recs, true
}

func (r *Recommender) store(ctx context.Context, key string, recs []core.CourseRecord) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(recs)
	if err != nil {
		r.logger.Warn().Err(err).Msg("cache encode failed")
		return
	}
	if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil {
		r.logger.Warn().Err(err).Str("store", r.cache.Name()).Msg("cache set failed")
	}
}

// cacheKey 以快照版本开头，快照替换后旧条目自然失效。
func cacheKey(version string, q Query, alpha float64) string {
	return "rec:" + version +
		":u=" + optInt(q.UserID) +
		":c=" + optInt(q.CourseID) +
		":n=" + strconv.Itoa(q.TopN) +
		":a=" + strconv.FormatFloat(alpha, 'g', -1, 64)
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
