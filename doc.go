// Package reelsense 是一个混合电影推荐引擎（Hybrid Movie Recommender）。
//
// 设计要点：
// - 双路召回：离线算好的协同相似表 + 内容相似表，各自独立打分
// - 归一融合：每路按自身最大值归一后做 alpha 加权，冷启动走热门兜底
// - Labels-first: 召回来源标签全链路透传，驱动规则过滤与解释生成
// - 降级优先：数据缺失/形状异常一律走空结果或通用话术，请求永不因此失败
package reelsense

import (
	"github.com/rushteam/reelsense/hybrid"
	"github.com/rushteam/reelsense/pipeline"
)

// 轻量 facade：便于用户直接 import "reelsense" 使用核心抽象。
type Engine = hybrid.Engine
type Options = hybrid.Options
type Ranker = hybrid.Ranker
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// NewEngine 见 hybrid.NewEngine。
var NewEngine = hybrid.NewEngine

// DefaultOptions 见 hybrid.DefaultOptions。
var DefaultOptions = hybrid.DefaultOptions
