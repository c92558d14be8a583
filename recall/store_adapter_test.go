package recall

import (
	"context"
	"testing"

	"github.com/rushteam/reelsense/store"
)

func TestStoreAdapter_GetUserRatings(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	ctx := context.Background()

	_ = kv.Set(ctx, "rec:ratings:1", []byte(`{"10": 4.5, "20": 3.0}`))

	a := NewStoreAdapter(kv, "")
	got, err := a.GetUserRatings(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserRatings() error = %v", err)
	}
	if len(got) != 2 || got[10] != 4.5 || got[20] != 3.0 {
		t.Errorf("GetUserRatings() = %v", got)
	}

	// 用户缺失走空结果，不报错
	missing, err := a.GetUserRatings(ctx, 404)
	if err != nil {
		t.Fatalf("GetUserRatings(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetUserRatings(missing) = %v, want nil", missing)
	}
}

func TestStoreAdapter_GetLikedItems(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	ctx := context.Background()

	_ = kv.Set(ctx, "cf:history:7", []byte(
		`[{"userId":7,"movieId":1,"rating":5.0},
		  {"userId":7,"movieId":2,"rating":2.0},
		  {"userId":7,"movieId":3,"rating":3.5}]`))

	a := NewStoreAdapter(kv, "cf")
	got, err := a.GetLikedItems(ctx, 7, 3.5)
	if err != nil {
		t.Fatalf("GetLikedItems() error = %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("GetLikedItems() = %v, want [1 3]", got)
	}
}

func TestStoreAdapter_GetSimilarItems(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   string
		itemID  int64
		wantLen int
	}{
		{
			name:    "weights shape",
			key:     "rec:sim:1",
			value:   `{"2": 0.8, "3": 0.5}`,
			itemID:  1,
			wantLen: 2,
		},
		{
			name:    "pairs shape",
			key:     "rec:sim:2",
			value:   `[[3, 0.6]]`,
			itemID:  2,
			wantLen: 1,
		},
		{
			name:    "malformed value degrades to empty",
			key:     "rec:sim:3",
			value:   `"garbage"`,
			itemID:  3,
			wantLen: 0,
		},
		{
			name:    "missing key degrades to empty",
			itemID:  404,
			wantLen: 0,
		},
	}

	a := NewStoreAdapter(kv, "rec")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != "" {
				_ = kv.Set(ctx, tt.key, []byte(tt.value))
			}
			got, err := a.GetSimilarItems(ctx, tt.itemID)
			if err != nil {
				t.Fatalf("GetSimilarItems() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("GetSimilarItems() = %v, want len %d", got, tt.wantLen)
			}
		})
	}
}
