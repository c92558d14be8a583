// Package dataset 负责离线产出物的一次性装载与只读访问。
//
// 六张表（目录、评分、用户-物品矩阵、两张相似表、热门榜）在进程启动时
// 装载一次，之后全程只读：多请求并发读取无需加锁，按引用共享不拷贝。
// 这是推荐链路显式传递的不可变上下文对象，不使用任何全局可变状态。
package dataset

import "github.com/rushteam/reelsense/sim"

// UserItemMatrix 是稀疏的用户-物品评分矩阵：userID → (movieID → rating)。
// 缺失即未评分；显式 0 也按未评分处理（见 UserRatings）。
type UserItemMatrix map[int64]map[int64]float64

// Dataset 聚合全部只读数据源。
type Dataset struct {
	Movies     map[int64]*Movie
	Ratings    []Rating
	Matrix     UserItemMatrix
	ItemSim    sim.Matrix // 物品-物品协同相似表
	ContentSim sim.Matrix // 物品-物品内容相似表
	Popularity []int64    // 全局流行度降序的物品 ID
}

// Movie 按 ID 取目录条目；缺失返回 (nil, false)，不报错。
func (d *Dataset) Movie(id int64) (*Movie, bool) {
	m, ok := d.Movies[id]
	return m, ok
}

// UserRatings 返回用户的矩阵行（movieID → rating）。
// 用户不在矩阵中返回 nil：上游据此走空结果路径，而非报错。
func (d *Dataset) UserRatings(userID int64) map[int64]float64 {
	return d.Matrix[userID]
}

// LikedItems 返回用户评分 >= minRating 的物品 ID，按评分历史出现顺序。
// 取自完整评分历史，而不是矩阵。
func (d *Dataset) LikedItems(userID int64, minRating float64) []int64 {
	var out []int64
	for _, r := range d.Ratings {
		if r.UserID == userID && r.Rating >= minRating {
			out = append(out, r.MovieID)
		}
	}
	return out
}

// UserHistory 返回用户的全部评分记录，按历史出现顺序。
func (d *Dataset) UserHistory(userID int64) []Rating {
	var out []Rating
	for _, r := range d.Ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// TopPopular 返回热门榜前 k 个物品 ID，保持既有榜单顺序。
func (d *Dataset) TopPopular(k int) []int64 {
	if k <= 0 || len(d.Popularity) == 0 {
		return nil
	}
	if k > len(d.Popularity) {
		k = len(d.Popularity)
	}
	out := make([]int64, k)
	copy(out, d.Popularity[:k])
	return out
}
