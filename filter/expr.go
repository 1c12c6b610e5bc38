package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤课程，表达式为 true 时移除。
// 语法见 dsl.Program。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式；语法错误在构建期返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string {
	return f.prg.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.prg.Eval(item, rctx)
}
