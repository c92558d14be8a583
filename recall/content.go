package recall

import (
	"context"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/pkg/conv"
	"github.com/rushteam/reelsense/sim"
)

// DefaultMinRating 是内容召回的默认"喜欢"阈值。
const DefaultMinRating = 3.5

// ContentStore 是内容召回的数据访问接口。
type ContentStore interface {
	// GetLikedItems 返回用户评分 >= minRating 的物品 ID（按历史顺序）
	GetLikedItems(ctx context.Context, userID int64, minRating float64) ([]int64, error)

	// GetSimilarItems 返回物品的规范内容相似序列
	GetSimilarItems(ctx context.Context, itemID int64) ([]sim.Pair, error)
}

// ContentRecall 是基于内容相似的召回源。
//
// 聚合逻辑与 ItemCF 一致，区别在于：
//   - 种子集合取自完整评分历史中评分 >= MinRating 的"喜欢"物品，而非矩阵行
//   - 排除集合是这个"喜欢"集合本身：低于阈值评过的物品仍可被推荐
//   - 相似表换成内容相似表
type ContentRecall struct {
	Store ContentStore

	// MinRating "喜欢"阈值；<= 0 时使用 DefaultMinRating
	MinRating float64
}

func (r *ContentRecall) Name() string { return "recall.content" }

// Score 实现 Scorer 接口。
// 不变式：返回的 map 中不存在任何"喜欢"集合里的 ID。
func (r *ContentRecall) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) (map[int64]float64, error) {
	if r.Store == nil || rctx == nil {
		return nil, nil
	}

	minRating := r.MinRating
	if minRating <= 0 {
		minRating = DefaultMinRating
	}
	// 请求级覆盖：调用方可在 Params 里带 min_rating 调整"喜欢"阈值
	if rctx.Params != nil {
		if v, ok := conv.ToFloat64(rctx.Params["min_rating"]); ok && v > 0 {
			minRating = v
		}
	}

	likedList, err := r.Store.GetLikedItems(ctx, rctx.UserID, minRating)
	if err != nil {
		return nil, err
	}
	if len(likedList) == 0 {
		return nil, nil
	}

	liked := make(map[int64]struct{}, len(likedList))
	for _, id := range likedList {
		liked[id] = struct{}{}
	}

	scores := make(map[int64]float64)
	for id := range liked {
		pairs, err := r.Store.GetSimilarItems(ctx, id)
		if err != nil {
			continue
		}
		for _, p := range pairs {
			if _, ok := liked[p.ID]; ok {
				continue
			}
			scores[p.ID] += p.Score
		}
	}
	return scores, nil
}

// Recall 实现 Source 接口。
func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	scores, err := r.Score(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return sortedItems(scores, "content"), nil
}

var _ Scorer = (*ContentRecall)(nil)
