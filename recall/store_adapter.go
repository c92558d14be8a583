package recall

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/dataset"
	"github.com/rushteam/reelsense/pkg/conv"
	"github.com/rushteam/reelsense/sim"
)

// StoreAdapter 是基于 core.Store 的召回数据适配器，用于把离线表
// 放进 Redis 等在线存储按需读取（数据量大到不适合整表进内存时）。
//
// key 约定：
//   矩阵行：    {KeyPrefix}:ratings:{userID} → {"movieId": rating}
//   评分历史：  {KeyPrefix}:history:{userID} → [{userId, movieId, rating}]
//   相似列表：  {KeyPrefix}:sim:{itemID}     → 映射或有序对（两种形状都接受）
//
// 同时实现 CFStore 与 ContentStore：协同与内容两路各建一个实例，
// 用 KeyPrefix 区分两张相似表。
type StoreAdapter struct {
	store core.Store

	KeyPrefix string
}

// NewStoreAdapter 创建适配器；keyPrefix 为空时用 "rec"。
func NewStoreAdapter(s core.Store, keyPrefix string) *StoreAdapter {
	if keyPrefix == "" {
		keyPrefix = "rec"
	}
	return &StoreAdapter{store: s, KeyPrefix: keyPrefix}
}

func (a *StoreAdapter) GetUserRatings(ctx context.Context, userID int64) (map[int64]float64, error) {
	data, err := a.store.Get(ctx, a.KeyPrefix+":ratings:"+formatID(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[int64]float64, len(raw))
	for k, v := range raw {
		id, ok := conv.ToInt64(k)
		if !ok {
			continue
		}
		rating, ok := conv.ToFloat64(v)
		if !ok {
			continue
		}
		out[id] = rating
	}
	return out, nil
}

func (a *StoreAdapter) GetLikedItems(ctx context.Context, userID int64, minRating float64) ([]int64, error) {
	data, err := a.store.Get(ctx, a.KeyPrefix+":history:"+formatID(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var history []dataset.Rating
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}

	var out []int64
	for _, r := range history {
		if r.Rating >= minRating {
			out = append(out, r.MovieID)
		}
	}
	return out, nil
}

// GetSimilarItems 读取相似列表。存储里的条目与离线文件同构，
// 直接复用 sim.Entry 的归一解码：形状异常降级为空序列。
func (a *StoreAdapter) GetSimilarItems(ctx context.Context, itemID int64) ([]sim.Pair, error) {
	data, err := a.store.Get(ctx, a.KeyPrefix+":sim:"+formatID(itemID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var entry sim.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, nil
	}
	return entry.Pairs(), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

var _ CFStore = (*StoreAdapter)(nil)
var _ ContentStore = (*StoreAdapter)(nil)
