package core

import "github.com/rushteam/reelsense/pkg/utils"

// RecommendContext 承载单次推荐请求的用户与参数信息，贯穿整个链路透传。
// 每个请求新建一个，链路内只读。
type RecommendContext struct {
	UserID int64 // MovieLens 风格的整型用户 ID
	Scene  string

	// Labels 是用户级标签，可驱动过滤/重排行为（例如：新用户）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（device_type、ab_bucket 等）。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
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

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
