package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/courserec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，使用 CEL (Common Expression Language) 语法。
// 编译一次，可被多个请求并发求值。
//
// 可用变量：
//   - item.id / item.score / item.features / item.meta / item.labels
//   - label.<key>：Label 的 Value，例如 label.recall_source
//   - rctx.user_id / rctx.course_id（未提供时为 null）/ rctx.top_n / rctx.alpha / rctx.params
//
// 示例：
//   - `item.features.collab_score < 0.0` → 协同分为负
//   - `label.recall_source == "u2i"` → 只被协同过滤命中
//   - `item.features.content_score > 0.9 && item.id != rctx.course_id`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string {
	return p.expr
}

// Eval 对单个 Item 求值。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	labelValues := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = map[string]any{
			"value":  v.Value,
			"source": v.Source,
		}
		labelValues[k] = v.Value
	}

	features := make(map[string]any, len(it.Features))
	for k, v := range it.Features {
		features[k] = v
	}
	meta := make(map[string]any, len(it.Meta))
	for k, v := range it.Meta {
		meta[k] = v
	}

	item := map[string]any{
		"id":       it.ID,
		"score":    it.Score,
		"features": features,
		"meta":     meta,
		"labels":   labels,
	}

	r := map[string]any{
		"user_id":   nil,
		"course_id": nil,
		"top_n":     int64(0),
		"alpha":     0.0,
		"params":    map[string]any{},
	}
	if rctx != nil {
		if rctx.UserID != nil {
			r["user_id"] = *rctx.UserID
		}
		if rctx.CourseID != nil {
			r["course_id"] = *rctx.CourseID
		}
		r["top_n"] = int64(rctx.TopN)
		r["alpha"] = rctx.Alpha
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  item,
		"label": labelValues,
		"rctx":  r,
	}
}
