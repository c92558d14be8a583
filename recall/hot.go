package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/dataset"
	"github.com/rushteam/reelsense/pkg/utils"
)

// Hot 是热门兜底召回源：按全局流行度的既有榜单顺序返回物品。
// 冷启动用户（两路打分都为空）完全由它接管。
//
// 读取优先级：
//   - Store 有序集合（ZRange，按流行度降序）
//   - Data.Popularity 内存榜单
type Hot struct {
	Store core.KeyValueStore
	Key   string // 有序集合 key，例如 "hot:movies"
	Data  *dataset.Dataset

	// Limit 最多返回的物品数；<= 0 时取 100
	Limit int
}

func (r *Hot) Name() string { return "recall.hot" }

// Recall 实现 Source 接口。榜单为空时返回空列表，由调用方决定
// 如何向用户呈现"无可推荐"。
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = 100
	}

	var ids []int64

	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(limit-1))
		if err == nil && len(members) > 0 {
			ids = make([]int64, 0, len(members))
			for _, m := range members {
				if id, err := strconv.ParseInt(m, 10, 64); err == nil {
					ids = append(ids, id)
				}
			}
		}
	}

	if len(ids) == 0 && r.Data != nil {
		ids = r.Data.TopPopular(limit)
	}

	out := make([]*core.Item, 0, len(ids))
	for rank, id := range ids {
		it := core.NewItem(id)
		// 榜单位置编码为分数，保证后续排序不破坏既有顺序
		it.Score = float64(len(ids) - rank)
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

var _ Source = (*Hot)(nil)
