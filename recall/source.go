package recall

import (
	"context"
	"sort"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/pkg/utils"
)

// Source 表示一个可复用的召回源（协同/内容/热门）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Scorer 是在 Source 之上暴露原始分数图的召回源。
// 混合排序需要按"各自的最大值"分别归一两路分数，所以除了排好序的
// 候选列表，还需要拿到未归一的 score map。
type Scorer interface {
	Source

	// Score 返回候选 ID → 累积分数。
	// 用户无可用信号时返回空 map（不报错），由上游触发兜底。
	Score(ctx context.Context, rctx *core.RecommendContext) (map[int64]float64, error)
}

// sortedItems 把 score map 变成确定有序的候选列表：
// 分数降序，同分按 ID 升序（全仓库统一的 tie-break 规则）。
func sortedItems(scores map[int64]float64, source string) []*core.Item {
	out := make([]*core.Item, 0, len(scores))
	for id, score := range scores {
		it := core.NewItem(id)
		it.Score = score
		it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
