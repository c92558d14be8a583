package rerank

import (
	"context"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/pipeline"
)

// Diversity 是一个简单的多样性 ReRank：按主类型去重（保留首个出现的类型）。
// 主类型来源：meta["primary_genre"] (string)，由引擎在目录回填阶段写入。
// 缺少主类型的物品不参与去重，原样保留。
type Diversity struct {
	MetaKey string // 默认 "primary_genre"
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.MetaKey
	if key == "" {
		key = "primary_genre"
	}

	seen := make(map[string]bool, 16)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		genre := ""
		if it.Meta != nil {
			if v, ok := it.Meta[key]; ok {
				if s, ok := v.(string); ok {
					genre = s
				}
			}
		}

		if genre == "" {
			out = append(out, it)
			continue
		}
		if seen[genre] {
			continue
		}
		seen[genre] = true
		out = append(out, it)
	}

	return out, nil
}
