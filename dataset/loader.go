package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rushteam/reelsense/pkg/conv"
)

// 产出物文件名约定（与离线构建任务对齐）。
const (
	FileMovies     = "movies.json"
	FileRatings    = "ratings.json"
	FileMatrix     = "user_item_matrix.json"
	FileItemSim    = "item_similarity.json"
	FileContentSim = "content_similarity.json"
	FilePopularity = "popularity.json"
)

// Load 从目录一次性装载全部产出物。
// 任何文件不可读或无法解析都是致命错误：装载失败应中止进程启动，
// 而不是带着残缺数据服务请求。
func Load(dir string) (*Dataset, error) {
	d := &Dataset{}

	var movies []*Movie
	if err := readJSON(dir, FileMovies, &movies); err != nil {
		return nil, err
	}
	d.Movies = make(map[int64]*Movie, len(movies))
	for _, m := range movies {
		d.Movies[m.MovieID] = m
	}

	if err := readJSON(dir, FileRatings, &d.Ratings); err != nil {
		return nil, err
	}

	var rawMatrix map[string]map[string]any
	if err := readJSON(dir, FileMatrix, &rawMatrix); err != nil {
		return nil, err
	}
	d.Matrix = decodeMatrix(rawMatrix)

	if err := readJSON(dir, FileItemSim, &d.ItemSim); err != nil {
		return nil, err
	}
	if err := readJSON(dir, FileContentSim, &d.ContentSim); err != nil {
		return nil, err
	}

	var rawPopularity json.RawMessage
	if err := readJSON(dir, FilePopularity, &rawPopularity); err != nil {
		return nil, err
	}
	d.Popularity = decodePopularity(rawPopularity)

	return d, nil
}

func readJSON(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("dataset: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("dataset: parse %s: %w", name, err)
	}
	return nil
}

// decodeMatrix 把字符串 key 的原始矩阵转为 int64 key，
// 评分值经 conv 强转，null/不可转的格子按缺失处理。
func decodeMatrix(raw map[string]map[string]any) UserItemMatrix {
	out := make(UserItemMatrix, len(raw))
	for userKey, row := range raw {
		userID, ok := conv.ToInt64(userKey)
		if !ok {
			continue
		}
		ratings := make(map[int64]float64, len(row))
		for itemKey, v := range row {
			itemID, ok := conv.ToInt64(itemKey)
			if !ok {
				continue
			}
			rating, ok := conv.ToFloat64(v)
			if !ok {
				continue
			}
			ratings[itemID] = rating
		}
		out[userID] = ratings
	}
	return out
}

// decodePopularity 归一热门榜的三种存储形状：
//   - ID 数组：保持原有顺序
//   - 行数组（含 movieId 字段）：保持原有顺序
//   - ID → 流行度映射：按流行度降序，同分按 ID 升序
//
// 无法识别的形状归一为空榜单。
func decodePopularity(raw json.RawMessage) []int64 {
	var asList []any
	if err := json.Unmarshal(raw, &asList); err == nil {
		out := make([]int64, 0, len(asList))
		for _, v := range asList {
			if id, ok := conv.ToInt64(v); ok {
				out = append(out, id)
				continue
			}
			if row, ok := v.(map[string]any); ok {
				if id, ok := conv.ToInt64(row["movieId"]); ok {
					out = append(out, id)
				}
			}
		}
		return out
	}

	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		type ranked struct {
			id    int64
			score float64
		}
		entries := make([]ranked, 0, len(asMap))
		for k, v := range asMap {
			id, ok := conv.ToInt64(k)
			if !ok {
				continue
			}
			score, ok := conv.ToFloat64(v)
			if !ok {
				continue
			}
			entries = append(entries, ranked{id: id, score: score})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].score != entries[j].score {
				return entries[i].score > entries[j].score
			}
			return entries[i].id < entries[j].id
		})
		out := make([]int64, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.id)
		}
		return out
	}

	return nil
}
