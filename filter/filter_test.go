package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/pkg/utils"
)

func TestBlacklistFilter(t *testing.T) {
	f := NewBlacklistFilter([]int64{2, 4})

	tests := []struct {
		id   int64
		want bool
	}{
		{id: 1, want: false},
		{id: 2, want: true},
		{id: 4, want: true},
		{id: 5, want: false},
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), nil, core.NewItem(tt.id))
		if err != nil {
			t.Fatalf("ShouldFilter(%d) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNewRuleFilter_CompileError(t *testing.T) {
	if _, err := NewRuleFilter([]string{"item.score >"}); err == nil {
		t.Fatal("NewRuleFilter() with invalid expression should fail")
	}
	if _, err := NewRuleFilter([]string{""}); err == nil {
		t.Fatal("NewRuleFilter() with empty expression should fail")
	}
}

func TestRuleFilter_ShouldFilter(t *testing.T) {
	f, err := NewRuleFilter([]string{
		`item.score < 0.05`,
		`"horror" in item.genres`,
		`label.recall_source == "hot" && rctx.scene == "vip"`,
	})
	if err != nil {
		t.Fatalf("NewRuleFilter() error = %v", err)
	}

	newItem := func(id int64, score float64, genres []string, source string) *core.Item {
		it := core.NewItem(id)
		it.Score = score
		it.Meta["genres"] = genres
		if source != "" {
			it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
		}
		return it
	}

	tests := []struct {
		name  string
		item  *core.Item
		scene string
		want  bool
	}{
		{
			name: "weak score is filtered",
			item: newItem(1, 0.01, []string{"action"}, "cf"),
			want: true,
		},
		{
			name: "blocked genre is filtered",
			item: newItem(2, 0.9, []string{"horror", "thriller"}, "cf"),
			want: true,
		},
		{
			name:  "scene-scoped rule matches",
			item:  newItem(3, 0.9, []string{"action"}, "hot"),
			scene: "vip",
			want:  true,
		},
		{
			name:  "scene-scoped rule misses on other scene",
			item:  newItem(4, 0.9, []string{"action"}, "hot"),
			scene: "web",
			want:  false,
		},
		{
			name: "clean item passes",
			item: newItem(5, 0.9, []string{"action"}, "cf"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := &core.RecommendContext{UserID: 1, Scene: tt.scene}
			got, err := f.ShouldFilter(context.Background(), rctx, tt.item)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }
func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, errors.New("boom")
}

func TestFilterNode_Process(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		errFilter{}, // 出错的过滤器被跳过，不中断流程
		NewBlacklistFilter([]int64{2}),
	}}

	items := []*core.Item{core.NewItem(1), core.NewItem(2), core.NewItem(3), nil}
	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: 1}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantIDs := []int64{1, 3}
	if len(out) != len(wantIDs) {
		t.Fatalf("Process() len = %d, want %d", len(out), len(wantIDs))
	}
	for i, id := range wantIDs {
		if out[i].ID != id {
			t.Errorf("Process()[%d].ID = %d, want %d", i, out[i].ID, id)
		}
	}

	// 被过滤的物品带上过滤原因标签
	if lbl := items[1].Labels["filtered"]; lbl.Value != "true" || lbl.Source != "filter.blacklist" {
		t.Errorf("filtered label = %+v", lbl)
	}
}

func TestFilterNode_NoFilters(t *testing.T) {
	node := &FilterNode{}
	items := []*core.Item{core.NewItem(1)}
	out, err := node.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 {
		t.Errorf("Process() len = %d, want 1", len(out))
	}
}
