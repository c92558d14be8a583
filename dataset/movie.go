package dataset

import "strings"

// Movie 是目录中的一部电影。装载后不可变，目录层唯一持有。
// Genres 为 '|' 分隔的类型串，AllTags 为离线拼好的空白分隔标签串。
type Movie struct {
	MovieID int64  `json:"movieId"`
	Title   string `json:"title"`
	Genres  string `json:"genres"`
	AllTags string `json:"all_tags"`
}

// GenreSet 返回小写化的类型 token 集合。
func (m *Movie) GenreSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, g := range strings.Split(strings.ToLower(m.Genres), "|") {
		if g = strings.TrimSpace(g); g != "" {
			out[g] = struct{}{}
		}
	}
	return out
}

// TagSet 返回小写化的标签 token 集合（按空白切分）。
func (m *Movie) TagSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(m.AllTags)) {
		out[t] = struct{}{}
	}
	return out
}

// Rating 是一条历史评分：不可变事实，评分层唯一持有。
type Rating struct {
	UserID  int64   `json:"userId"`
	MovieID int64   `json:"movieId"`
	Rating  float64 `json:"rating"`
}
