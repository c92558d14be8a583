package recall

import (
	"context"

	"github.com/rushteam/reelsense/dataset"
	"github.com/rushteam/reelsense/sim"
)

// DatasetCFAdapter 把启动时装载的 Dataset 适配成 CFStore。
// 只读访问，无任何网络/IO，错误恒为 nil。
type DatasetCFAdapter struct {
	Data *dataset.Dataset
}

func (a *DatasetCFAdapter) GetUserRatings(_ context.Context, userID int64) (map[int64]float64, error) {
	return a.Data.UserRatings(userID), nil
}

func (a *DatasetCFAdapter) GetSimilarItems(_ context.Context, itemID int64) ([]sim.Pair, error) {
	return a.Data.ItemSim.Lookup(itemID), nil
}

var _ CFStore = (*DatasetCFAdapter)(nil)

// DatasetContentAdapter 把 Dataset 适配成 ContentStore，
// 相似表换成内容相似表，种子来自完整评分历史。
type DatasetContentAdapter struct {
	Data *dataset.Dataset
}

func (a *DatasetContentAdapter) GetLikedItems(_ context.Context, userID int64, minRating float64) ([]int64, error) {
	return a.Data.LikedItems(userID, minRating), nil
}

func (a *DatasetContentAdapter) GetSimilarItems(_ context.Context, itemID int64) ([]sim.Pair, error) {
	return a.Data.ContentSim.Lookup(itemID), nil
}

var _ ContentStore = (*DatasetContentAdapter)(nil)
