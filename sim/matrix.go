// Package sim 提供物品相似表的统一访问层。
//
// 离线产出物里同一张相似表存在两种形状：
//   - 映射：   {"sourceId": {"targetId": score, ...}}
//   - 有序对： {"sourceId": [[targetId, score], ...]}
//
// Entry 在解码时把两种形状归一为有序 (ID, Score) 序列，下游打分逻辑
// 永远只面对一种形状，不做任何结构判断。形状异常的条目归一为空序列，
// 不向上抛错（离线表质量问题不应打断在线请求）。
package sim

import (
	"encoding/json"
	"sort"

	"github.com/rushteam/reelsense/pkg/conv"
)

// Pair 是一条相似关系：目标物品 ID + 非负相似度分数。
type Pair struct {
	ID    int64
	Score float64
}

// Shape 标记 Entry 的原始存储形状，仅用于观测/测试。
type Shape string

const (
	ShapeEmpty   Shape = "empty"   // 缺失或无法识别的形状
	ShapeWeights Shape = "weights" // 映射形状
	ShapePairs   Shape = "pairs"   // 有序对形状
)

// Entry 是单个源物品的相似列表，解码后即为规范形状。
type Entry struct {
	shape Shape
	pairs []Pair
}

// NewEntry 从既有的有序对构造 Entry（测试与 Store 适配器使用）。
func NewEntry(pairs []Pair) Entry {
	if len(pairs) == 0 {
		return Entry{shape: ShapeEmpty}
	}
	return Entry{shape: ShapePairs, pairs: pairs}
}

// EntryFromWeights 从映射构造 Entry，按 ID 升序产生稳定顺序。
func EntryFromWeights(weights map[int64]float64) Entry {
	if len(weights) == 0 {
		return Entry{shape: ShapeEmpty}
	}
	pairs := make([]Pair, 0, len(weights))
	for id, score := range weights {
		pairs = append(pairs, Pair{ID: id, Score: score})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	return Entry{shape: ShapeWeights, pairs: pairs}
}

func (e Entry) Shape() Shape  { return e.shape }
func (e Entry) Pairs() []Pair { return e.pairs }

// UnmarshalJSON 实现两种存储形状的归一解码：
//   - JSON 对象 → 映射形状，ID 升序
//   - JSON 数组 → 有序对形状，保持原有顺序
//   - 其他形状 → 空序列
//
// ID 与分数经 conv 强制转换（字符串 key、混杂数值都容忍），
// 无法转换的元素被跳过。
func (e *Entry) UnmarshalJSON(data []byte) error {
	*e = Entry{shape: ShapeEmpty}

	var asMap map[string]any
	if err := json.Unmarshal(data, &asMap); err == nil {
		weights := make(map[int64]float64, len(asMap))
		for k, v := range asMap {
			id, ok := conv.ToInt64(k)
			if !ok {
				continue
			}
			score, ok := conv.ToFloat64(v)
			if !ok {
				continue
			}
			weights[id] = score
		}
		*e = EntryFromWeights(weights)
		return nil
	}

	var asList []json.RawMessage
	if err := json.Unmarshal(data, &asList); err == nil {
		pairs := make([]Pair, 0, len(asList))
		for _, raw := range asList {
			var tuple []any
			if err := json.Unmarshal(raw, &tuple); err != nil || len(tuple) < 2 {
				continue
			}
			id, ok := conv.ToInt64(tuple[0])
			if !ok {
				continue
			}
			score, ok := conv.ToFloat64(tuple[1])
			if !ok {
				continue
			}
			pairs = append(pairs, Pair{ID: id, Score: score})
		}
		if len(pairs) > 0 {
			*e = Entry{shape: ShapePairs, pairs: pairs}
		}
		return nil
	}

	// 既不是映射也不是有序对：按空序列处理，不报错
	return nil
}

// Matrix 是完整的物品-物品相似表：源物品 ID → Entry。
// 进程启动时装载一次，之后只读，可被多请求共享。
type Matrix map[int64]Entry

// UnmarshalJSON 解码整张表，源 ID 同样经 conv 强转。
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Matrix, len(raw))
	for k, entry := range raw {
		id, ok := conv.ToInt64(k)
		if !ok {
			continue
		}
		out[id] = entry
	}
	*m = out
	return nil
}

// Lookup 返回源物品的规范相似序列。
// 源物品缺失或条目形状异常时返回空序列，永不失败。
func (m Matrix) Lookup(sourceID int64) []Pair {
	if m == nil {
		return nil
	}
	entry, ok := m[sourceID]
	if !ok {
		return nil
	}
	return entry.Pairs()
}
