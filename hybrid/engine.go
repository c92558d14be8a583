package hybrid

import (
	"context"
	"strings"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/dataset"
	"github.com/rushteam/reelsense/explain"
	"github.com/rushteam/reelsense/pipeline"
	"github.com/rushteam/reelsense/recall"
	"github.com/rushteam/reelsense/rerank"
)

// Options 是单次推荐请求的参数。
type Options struct {
	K         int     // 结果条数
	Alpha     float64 // 协同权重，[0,1]
	MinRating float64 // 内容召回的"喜欢"阈值
}

// DefaultOptions 返回与端上默认一致的请求参数。
func DefaultOptions() Options {
	return Options{
		K:         DefaultK,
		Alpha:     DefaultAlpha,
		MinRating: recall.DefaultMinRating,
	}
}

// Engine 是对外的唯一入口：融合排序 → 后处理链 → 生成解释。
//
// 整条链路同步执行、请求内无阻塞 IO；所有共享数据只读，
// 每个请求的候选/结果都是新分配的，请求结束即丢弃。
type Engine struct {
	Data      *dataset.Dataset
	Ranker    *Ranker
	Explainer *explain.Engine

	// PostNodes 融合排序后的处理链（规则过滤/多样性等），
	// 不含 TopN：截断节点按请求的 K 动态追加在链尾。
	PostNodes []pipeline.Node
}

// NewEngine 以 Dataset 后端组装一套默认引擎。
func NewEngine(data *dataset.Dataset, postNodes ...pipeline.Node) *Engine {
	return &Engine{
		Data: data,
		Ranker: &Ranker{
			CF:       &recall.ItemCF{Store: &recall.DatasetCFAdapter{Data: data}},
			Content:  &recall.ContentRecall{Store: &recall.DatasetContentAdapter{Data: data}},
			Fallback: &recall.Hot{Data: data},
		},
		Explainer: &explain.Engine{Data: data},
		PostNodes: postNodes,
	}
}

// Recommend 为一个用户产出带解释的有序推荐列表。
// 数据缺失一律走空/兜底路径；返回空列表（而非错误）表示确实无可推荐。
func (e *Engine) Recommend(
	ctx context.Context,
	rctx *core.RecommendContext,
	opts Options,
) ([]core.Recommendation, error) {
	if opts.K <= 0 {
		opts.K = DefaultK
	}
	if opts.MinRating > 0 {
		if rctx.Params == nil {
			rctx.Params = make(map[string]any)
		}
		rctx.Params["min_rating"] = opts.MinRating
	}

	items, err := e.Ranker.Rank(ctx, rctx, opts.Alpha, 0)
	if err != nil {
		return nil, err
	}

	e.enrichMeta(items)

	post := &pipeline.Pipeline{
		Nodes: append(append([]pipeline.Node{}, e.PostNodes...), &rerank.TopNNode{N: opts.K}),
	}
	items, err = post.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]core.Recommendation, 0, len(items))
	for i, it := range items {
		out = append(out, core.Recommendation{
			ItemID:      it.ID,
			Rank:        i + 1,
			Explanation: e.Explainer.Explain(rctx.UserID, it.ID),
		})
	}
	return out, nil
}

// enrichMeta 从目录回填标题/类型元信息，供 CEL 规则与多样性重排使用。
// 目录缺条目的候选保持原样（解释阶段会相应降级话术）。
func (e *Engine) enrichMeta(items []*core.Item) {
	if e.Data == nil {
		return
	}
	for _, it := range items {
		movie, ok := e.Data.Movie(it.ID)
		if !ok {
			continue
		}
		genres := strings.Split(strings.ToLower(movie.Genres), "|")
		it.Meta["title"] = movie.Title
		it.Meta["genres"] = genres
		if len(genres) > 0 && genres[0] != "" {
			it.Meta["primary_genre"] = genres[0]
		}
	}
}
