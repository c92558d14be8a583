package explain

import (
	"testing"

	"github.com/rushteam/reelsense/dataset"
)

func explainData() *dataset.Dataset {
	return &dataset.Dataset{
		Movies: map[int64]*dataset.Movie{
			1: {MovieID: 1, Title: "Heat (1995)", Genres: "Action|Crime", AllTags: "heist bank crime"},
			2: {MovieID: 2, Title: "Toy Story (1995)", Genres: "Animation|Children", AllTags: "pixar fun"},
			3: {MovieID: 3, Title: "Se7en (1995)", Genres: "Crime|Thriller", AllTags: "serial crime dark"},
			4: {MovieID: 4, Title: "Ronin (1998)", Genres: "Action|Thriller", AllTags: "heist car"},
			5: {MovieID: 5, Title: "Barbie (2023)", Genres: "Comedy", AllTags: "doll pink"},
			6: {MovieID: 6, Title: "Speed (1994)", Genres: "Action", AllTags: "bus bomb"},
		},
		Ratings: []dataset.Rating{
			{UserID: 1, MovieID: 1, Rating: 5.0},
			{UserID: 1, MovieID: 2, Rating: 2.0},
			{UserID: 1, MovieID: 4, Rating: 4.5},
			{UserID: 2, MovieID: 5, Rating: 5.0},
			{UserID: 3, MovieID: 99, Rating: 4.0}, // 目录缺条目
		},
	}
}

func TestEngine_Explain(t *testing.T) {
	e := &Engine{Data: explainData()}

	tests := []struct {
		name    string
		userID  int64
		movieID int64
		want    string
	}{
		{
			name:    "no history falls back to cold start message",
			userID:  404,
			movieID: 3,
			want:    "Recommended because it is popular among users.",
		},
		{
			name:    "missing catalog entry falls back to generic message",
			userID:  1,
			movieID: 999,
			want:    "Recommended based on similarity with your preferences.",
		},
		{
			name:    "history without overlap falls back to profile message",
			userID:  2,
			movieID: 3,
			want:    "Recommended because it matches your viewing profile.",
		},
		{
			name:   "cites genres and tags from the best matching history",
			userID: 1,
			// Se7en vs Heat: genres {crime}, tags {crime}; vs Ronin: genres {thriller}
			movieID: 3,
			want:    "Because you liked Heat (1995) and Ronin (1998), which share the genres 'crime', 'thriller' and tags 'crime'.",
		},
		{
			name:   "genres only when no tag overlaps",
			userID: 1,
			// Speed vs Heat/Ronin: 仅 action 类型重合，无标签重合
			movieID: 6,
			want:    "Because you liked Heat (1995) and Ronin (1998), which share the genres 'action'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Explain(tt.userID, tt.movieID)
			if got != tt.want {
				t.Errorf("Explain(%d, %d) = %q, want %q", tt.userID, tt.movieID, got, tt.want)
			}
		})
	}
}

func TestEngine_Explain_CitationCaps(t *testing.T) {
	data := &dataset.Dataset{
		Movies: map[int64]*dataset.Movie{
			1: {MovieID: 1, Title: "A", Genres: "g1|g2|g3|g4|g5", AllTags: "t1 t2 t3 t4 t5 t6"},
			2: {MovieID: 2, Title: "B", Genres: "g1|g2|g3|g4|g5", AllTags: "t1 t2 t3 t4 t5 t6"},
		},
		Ratings: []dataset.Rating{
			{UserID: 1, MovieID: 2, Rating: 5.0},
		},
	}
	e := &Engine{Data: data}

	// 类型最多引用 3 个、标签最多 4 个，且按字典序稳定
	want := "Because you liked B, which share the genres 'g1', 'g2', 'g3' and tags 't1', 't2', 't3', 't4'."
	if got := e.Explain(1, 1); got != want {
		t.Errorf("Explain() = %q, want %q", got, want)
	}
}

func TestEngine_Explain_TopNTitles(t *testing.T) {
	data := &dataset.Dataset{
		Movies: map[int64]*dataset.Movie{
			1: {MovieID: 1, Title: "Target", Genres: "action", AllTags: ""},
			2: {MovieID: 2, Title: "First", Genres: "action", AllTags: ""},
			3: {MovieID: 3, Title: "Second", Genres: "action", AllTags: ""},
			4: {MovieID: 4, Title: "Third", Genres: "action", AllTags: ""},
		},
		Ratings: []dataset.Rating{
			{UserID: 1, MovieID: 2, Rating: 5.0},
			{UserID: 1, MovieID: 3, Rating: 4.0},
			{UserID: 1, MovieID: 4, Rating: 3.0},
		},
	}
	e := &Engine{Data: data}

	// 最多引用 2 部，评分最高的优先
	want := "Because you liked First and Second, which share the genres 'action'."
	if got := e.Explain(1, 1); got != want {
		t.Errorf("Explain() = %q, want %q", got, want)
	}
}
