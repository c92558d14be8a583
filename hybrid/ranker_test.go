package hybrid

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rushteam/reelsense/core"
)

type fakeScorer struct {
	scores map[int64]float64
	err    error
}

func (s *fakeScorer) Name() string { return "fake" }

func (s *fakeScorer) Score(_ context.Context, _ *core.RecommendContext) (map[int64]float64, error) {
	return s.scores, s.err
}

func (s *fakeScorer) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	return nil, s.err
}

type fakeFallback struct {
	ids []int64
}

func (f *fakeFallback) Name() string { return "fallback" }

func (f *fakeFallback) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(f.ids))
	for rank, id := range f.ids {
		it := core.NewItem(id)
		it.Score = float64(len(f.ids) - rank)
		out = append(out, it)
	}
	return out, nil
}

func rankIDs(items []*core.Item) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestRanker_Rank_Fusion(t *testing.T) {
	tests := []struct {
		name    string
		cf      map[int64]float64
		content map[int64]float64
		alpha   float64
		k       int
		wantIDs []int64
	}{
		{
			name:    "alpha 1.0 means pure collaborative order",
			cf:      map[int64]float64{1: 0.2, 2: 0.8},
			content: map[int64]float64{1: 10, 3: 100},
			alpha:   1.0,
			k:       10,
			// 内容路贡献为 0：2(1.0), 1(0.25), 3(0)
			wantIDs: []int64{2, 1, 3},
		},
		{
			name:    "alpha 0.0 means pure content order",
			cf:      map[int64]float64{2: 100},
			content: map[int64]float64{1: 0.2, 3: 0.8},
			alpha:   0.0,
			k:       10,
			wantIDs: []int64{3, 1, 2},
		},
		{
			name:    "per-source normalization is scale invariant",
			cf:      map[int64]float64{1: 1000, 2: 500},
			content: map[int64]float64{2: 0.001, 3: 0.001},
			alpha:   0.5,
			k:       10,
			// cf 归一 {1:1, 2:0.5}，content 归一 {2:1, 3:1}
			// final: 1=0.5, 2=0.75, 3=0.5 -> 2, 1, 3 (同分 ID 升序)
			wantIDs: []int64{2, 1, 3},
		},
		{
			name:    "k truncates the fused list",
			cf:      map[int64]float64{1: 3, 2: 2, 3: 1},
			content: nil,
			alpha:   0.7,
			k:       2,
			wantIDs: []int64{1, 2},
		},
		{
			name:    "k zero keeps the full list",
			cf:      map[int64]float64{1: 3, 2: 2, 3: 1},
			content: nil,
			alpha:   0.7,
			k:       0,
			wantIDs: []int64{1, 2, 3},
		},
		{
			name:    "equal scores break ties by id ascending",
			cf:      map[int64]float64{9: 1, 4: 1, 6: 1},
			content: nil,
			alpha:   1.0,
			k:       10,
			wantIDs: []int64{4, 6, 9},
		},
		{
			name:    "alpha outside range is clamped",
			cf:      map[int64]float64{1: 1},
			content: map[int64]float64{2: 1},
			alpha:   7.0, // clamp 到 1：content 贡献 0
			k:       10,
			wantIDs: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Ranker{
				CF:      &fakeScorer{scores: tt.cf},
				Content: &fakeScorer{scores: tt.content},
			}
			items, err := r.Rank(context.Background(), &core.RecommendContext{UserID: 1}, tt.alpha, tt.k)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			got := rankIDs(items)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Rank() ids = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("Rank() ids = %v, want %v", got, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestRanker_Rank_FusedScoreValue(t *testing.T) {
	r := &Ranker{
		CF:      &fakeScorer{scores: map[int64]float64{1: 2, 2: 4}},
		Content: &fakeScorer{scores: map[int64]float64{2: 5, 3: 10}},
	}
	items, err := r.Rank(context.Background(), &core.RecommendContext{UserID: 1}, 0.7, 0)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := map[int64]float64{
		1: 0.7 * (2.0 / 4.0),
		2: 0.7*(4.0/4.0) + 0.3*(5.0/10.0),
		3: 0.3 * (10.0 / 10.0),
	}
	for _, it := range items {
		if math.Abs(it.Score-want[it.ID]) > 1e-9 {
			t.Errorf("item %d score = %v, want %v", it.ID, it.Score, want[it.ID])
		}
	}

	// 双路命中的物品，recall_source 累积为 cf|content
	for _, it := range items {
		if it.ID != 2 {
			continue
		}
		if lbl := it.Labels["recall_source"]; lbl.Value != "cf|content" {
			t.Errorf("item 2 recall_source = %q, want cf|content", lbl.Value)
		}
	}
}

func TestRanker_Rank_Fallback(t *testing.T) {
	r := &Ranker{
		CF:       &fakeScorer{},
		Content:  &fakeScorer{},
		Fallback: &fakeFallback{ids: []int64{7, 3, 5, 1}},
	}

	items, err := r.Rank(context.Background(), &core.RecommendContext{UserID: 1}, 0.7, 3)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	// 兜底严格保持榜单顺序并截断到 K
	want := []int64{7, 3, 5}
	got := rankIDs(items)
	if len(got) != len(want) {
		t.Fatalf("fallback ids = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("fallback ids = %v, want %v", got, want)
			break
		}
	}
}

func TestRanker_Rank_ScorerErrorDegrades(t *testing.T) {
	r := &Ranker{
		CF:      &fakeScorer{err: errors.New("boom")},
		Content: &fakeScorer{scores: map[int64]float64{3: 1}},
	}
	items, err := r.Rank(context.Background(), &core.RecommendContext{UserID: 1}, 0.7, 10)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != 3 {
		t.Errorf("Rank() = %v, want single item 3", rankIDs(items))
	}
}

func TestRanker_Rank_NoSignalNoFallback(t *testing.T) {
	r := &Ranker{CF: &fakeScorer{}, Content: &fakeScorer{}}
	items, err := r.Rank(context.Background(), &core.RecommendContext{UserID: 1}, 0.7, 10)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Rank() = %v, want empty", rankIDs(items))
	}
}
