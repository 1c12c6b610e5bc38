package core

import "github.com/rushteam/courserec/pkg/utils"

// RecommendContext 承载一次推荐请求的参数，贯穿整个 Pipeline 透传。
//
// UserID / CourseID 为 nil 表示调用方未提供；"未提供"与"数据中不存在"语义相同，
// 对应信号直接视为不可用（冷启动）。
type RecommendContext struct {
	UserID   *int64
	CourseID *int64

	// TopN 最终返回的课程数量
	TopN int

	// Alpha 是混合权重：final = Alpha*content + (1-Alpha)*collab
	Alpha float64

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级扩展参数（供表达式过滤等使用）
	Params map[string]any
}

// HasUser 判断请求是否携带用户。
func (rctx *RecommendContext) HasUser() bool {
	return rctx != nil && rctx.UserID != nil
}

// HasCourse 判断请求是否携带参考课程。
func (rctx *RecommendContext) HasCourse() bool {
	return rctx != nil && rctx.CourseID != nil
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
