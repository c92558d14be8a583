// Package explain 从用户自己的评分历史反推"为什么推荐这部"。
//
// 思路：取用户评分最高的若干部电影，与被推荐电影比较类型/标签 token
// 重合度，引用重合最多的 1-2 部生成一句可读的理由。任何数据缺失
// （无历史、目录缺条目、毫无重合）都降级为通用话术，永不失败。
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rushteam/reelsense/dataset"
)

// 通用话术。冷启动话术被端上直接断言，措辞即契约，改动需评审。
const (
	msgColdStart   = "Recommended because it is popular among users."
	msgMissingItem = "Recommended based on similarity with your preferences."
	msgNoOverlap   = "Recommended because it matches your viewing profile."
)

// 可读性上限：引用的标签/类型太多反而没人看。
const (
	maxHistoryItems = 10 // 参与比较的历史高分电影数
	maxCitedTags    = 4
	maxCitedGenres  = 3
	maxCitedTitles  = 2
)

// Engine 是解释引擎。只读共享 Dataset，可并发使用。
type Engine struct {
	Data *dataset.Dataset

	// TopN 引用的"理由"电影数；<= 0 时取 2
	TopN int
}

// Explain 为一条推荐生成理由文案。
func (e *Engine) Explain(userID, recMovieID int64) string {
	history := e.Data.UserHistory(userID)
	if len(history) == 0 {
		return msgColdStart
	}

	recMovie, ok := e.Data.Movie(recMovieID)
	if !ok {
		return msgMissingItem
	}
	recTags := recMovie.TagSet()
	recGenres := recMovie.GenreSet()

	// 用户评分最高的若干部：评分降序，同分保持历史顺序
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Rating > history[j].Rating
	})
	if len(history) > maxHistoryItems {
		history = history[:maxHistoryItems]
	}

	type match struct {
		title   string
		tags    map[string]struct{}
		genres  map[string]struct{}
		overlap int
	}
	var matches []match

	for _, r := range history {
		movie, ok := e.Data.Movie(r.MovieID)
		if !ok {
			continue
		}
		commonTags := intersect(recTags, movie.TagSet())
		commonGenres := intersect(recGenres, movie.GenreSet())

		overlap := len(commonTags) + len(commonGenres)
		if overlap == 0 {
			continue
		}
		matches = append(matches, match{
			title:   movie.Title,
			tags:    commonTags,
			genres:  commonGenres,
			overlap: overlap,
		})
	}

	if len(matches) == 0 {
		return msgNoOverlap
	}

	// 重合度降序，同分保持评分高者在前
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].overlap > matches[j].overlap
	})

	topN := e.TopN
	if topN <= 0 {
		topN = 2
	}
	if len(matches) > topN {
		matches = matches[:topN]
	}

	titles := make([]string, 0, len(matches))
	combinedTags := make(map[string]struct{})
	combinedGenres := make(map[string]struct{})
	for _, m := range matches {
		titles = append(titles, m.title)
		for t := range m.tags {
			combinedTags[t] = struct{}{}
		}
		for g := range m.genres {
			combinedGenres[g] = struct{}{}
		}
	}

	tagsText := quoteJoin(sortedCap(combinedTags, maxCitedTags))
	genresText := quoteJoin(sortedCap(combinedGenres, maxCitedGenres))
	if len(titles) > maxCitedTitles {
		titles = titles[:maxCitedTitles]
	}
	moviesText := strings.Join(titles, " and ")

	switch {
	case tagsText != "" && genresText != "":
		return fmt.Sprintf("Because you liked %s, which share the genres %s and tags %s.", moviesText, genresText, tagsText)
	case genresText != "":
		return fmt.Sprintf("Because you liked %s, which share the genres %s.", moviesText, genresText)
	case tagsText != "":
		return fmt.Sprintf("Because you liked %s, which share the tags %s.", moviesText, tagsText)
	default:
		return fmt.Sprintf("Because you liked %s, and this movie matches similar preferences.", moviesText)
	}
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// sortedCap 把 token 集合变成字典序稳定的列表再截断，
// 保证同样的输入永远引用同样的词。
func sortedCap(set map[string]struct{}, limit int) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func quoteJoin(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = "'" + t + "'"
	}
	return strings.Join(quoted, ", ")
}
