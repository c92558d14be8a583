package recall

import (
	"context"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/sim"
)

// CFStore 是协同召回的数据访问接口。
// 相似表离线算好，这里只做读取；用户缺失返回空结果而不是错误。
type CFStore interface {
	// GetUserRatings 返回用户的矩阵行（movieID → rating），用户缺失返回 nil
	GetUserRatings(ctx context.Context, userID int64) (map[int64]float64, error)

	// GetSimilarItems 返回物品的规范相似序列，物品缺失返回空序列
	GetSimilarItems(ctx context.Context, itemID int64) ([]sim.Pair, error)
}

// ItemCF 是基于物品的协同过滤召回源（Item-CF，i2i）。
//
// 核心思想："被同一批用户喜欢的物品，相互相似"
//
// 算法流程：
//  1. 取用户矩阵行，评分 > 0 的物品构成已评集合（显式 0 按未评分处理）
//  2. 对每个已评物品，取其离线相似列表
//  3. score[candidate] += similarity，已评物品不进候选（排除自荐）
//
// 纯函数：除读取 Store 外无任何副作用。
type ItemCF struct {
	Store CFStore
}

func (r *ItemCF) Name() string { return "recall.cf" }

// Score 实现 Scorer 接口。
// 不变式：返回的 map 中不存在任何已评物品的 ID。
func (r *ItemCF) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) (map[int64]float64, error) {
	if r.Store == nil || rctx == nil {
		return nil, nil
	}

	ratings, err := r.Store.GetUserRatings(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}

	rated := make(map[int64]struct{}, len(ratings))
	for itemID, rating := range ratings {
		if rating > 0 {
			rated[itemID] = struct{}{}
		}
	}
	if len(rated) == 0 {
		return nil, nil
	}

	scores := make(map[int64]float64)
	for itemID := range rated {
		pairs, err := r.Store.GetSimilarItems(ctx, itemID)
		if err != nil {
			continue
		}
		for _, p := range pairs {
			if _, ok := rated[p.ID]; ok {
				continue
			}
			scores[p.ID] += p.Score
		}
	}
	return scores, nil
}

// Recall 实现 Source 接口：分数降序、同分 ID 升序的候选列表。
func (r *ItemCF) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	scores, err := r.Score(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return sortedItems(scores, "cf"), nil
}

var _ Scorer = (*ItemCF)(nil)
