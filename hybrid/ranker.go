// Package hybrid 实现两路召回分数的归一融合排序，是整条链路的核心。
package hybrid

import (
	"context"
	"sort"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/pkg/utils"
	"github.com/rushteam/reelsense/recall"
)

// 默认请求参数（与离线评估使用的配置一致）。
const (
	DefaultK     = 10
	DefaultAlpha = 0.7
)

// Ranker 把协同与内容两路打分融合成单一排序：
//
//  1. 分别计算两路 score map
//  2. 两路皆空 → 整体交给热门兜底，严格保持榜单前 K 顺序
//  3. 每路独立按"自身最大值"归一；某路为空时其隐式最大值为 1，
//     该路对所有候选的贡献即为 0，永不出现除零
//  4. final = alpha * cf_norm + (1-alpha) * content_norm，对两路候选并集计算
//  5. 融合分降序、同分 ID 升序，截断到前 K
//
// 保证：结果长度 <= K、无重复 ID、每个 ID 至少来自一路召回；
// 输入相同则输出相同（确定性 tie-break）。
type Ranker struct {
	CF       recall.Scorer
	Content  recall.Scorer
	Fallback recall.Source
}

// Rank 执行融合排序。k <= 0 表示不截断（由下游 TopN 节点截断）。
// alpha 超出 [0,1] 会被收拢到边界。
//
// 某一路召回源出错时按该路为空处理，不中断请求（与兜底语义一致：
// 宁可少一路信号，不能不出结果）。
func (r *Ranker) Rank(
	ctx context.Context,
	rctx *core.RecommendContext,
	alpha float64,
	k int,
) ([]*core.Item, error) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}

	var cfScores, contentScores map[int64]float64
	if r.CF != nil {
		if m, err := r.CF.Score(ctx, rctx); err == nil {
			cfScores = m
		}
	}
	if r.Content != nil {
		if m, err := r.Content.Score(ctx, rctx); err == nil {
			contentScores = m
		}
	}

	if len(cfScores) == 0 && len(contentScores) == 0 {
		return r.fallback(ctx, rctx, k)
	}

	maxCF := maxScore(cfScores)
	maxContent := maxScore(contentScores)

	out := make([]*core.Item, 0, len(cfScores)+len(contentScores))
	seen := make(map[int64]*core.Item, len(cfScores)+len(contentScores))

	for id, score := range cfScores {
		it := core.NewItem(id)
		it.Score = alpha * (score / maxCF)
		it.PutLabel("recall_source", utils.Label{Value: "cf", Source: "recall"})
		seen[id] = it
		out = append(out, it)
	}
	for id, score := range contentScores {
		part := (1 - alpha) * (score / maxContent)
		if it, ok := seen[id]; ok {
			it.Score += part
			it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
			continue
		}
		it := core.NewItem(id)
		it.Score = part
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		seen[id] = it
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (r *Ranker) fallback(
	ctx context.Context,
	rctx *core.RecommendContext,
	k int,
) ([]*core.Item, error) {
	if r.Fallback == nil {
		return nil, nil
	}
	items, err := r.Fallback.Recall(ctx, rctx)
	if err != nil {
		return nil, nil
	}
	if k > 0 && len(items) > k {
		items = items[:k]
	}
	return items, nil
}

// maxScore 返回 map 的最大值；空 map 或最大值非正时返回 1，
// 作为归一分母使用（见 Ranker 文档第 3 条）。
func maxScore(scores map[int64]float64) float64 {
	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return 1
	}
	return max
}
