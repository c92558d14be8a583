package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/rushteam/reelsense/config"
	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/dataset"
	"github.com/rushteam/reelsense/hybrid"
	"github.com/rushteam/reelsense/poster"
)

var (
	recommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reelsense_recommend_duration_seconds",
		Help:    "Latency of the full recommend pipeline.",
		Buckets: prometheus.DefBuckets,
	})
	recommendTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelsense_recommend_total",
		Help: "Total recommendation requests served.",
	})
	recommendEmpty = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelsense_recommend_empty_total",
		Help: "Requests that produced an empty result list.",
	})
	posterMiss = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelsense_poster_miss_total",
		Help: "Poster lookups that degraded to no-image.",
	})
)

func init() {
	prometheus.MustRegister(recommendDuration, recommendTotal, recommendEmpty, posterMiss)
}

type handler struct {
	engine  *hybrid.Engine
	data    *dataset.Dataset
	posters *poster.Client
	cfg     *config.Config
	logger  zerolog.Logger
}

type recommendationView struct {
	ItemID      int64  `json:"item_id"`
	Rank        int    `json:"rank"`
	Title       string `json:"title"`
	Genres      string `json:"genres"`
	Explanation string `json:"explanation"`
	PosterURL   string `json:"poster_url,omitempty"`
}

type recommendationsResponse struct {
	UserID          int64                `json:"user_id"`
	Count           int                  `json:"count"`
	Recommendations []recommendationView `json:"recommendations"`
}

// recommendations 处理 GET /v1/recommendations?user_id=1&k=10&alpha=0.7&min_rating=3.5
func (h *handler) recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	recommendTotal.Inc()

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be an integer")
		return
	}

	opts := hybrid.Options{
		K:         h.cfg.Recommend.K,
		Alpha:     h.cfg.Recommend.Alpha,
		MinRating: h.cfg.Recommend.MinRating,
	}
	if v := r.URL.Query().Get("k"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			opts.K = k
		}
	}
	if v := r.URL.Query().Get("alpha"); v != "" {
		if a, err := strconv.ParseFloat(v, 64); err == nil {
			opts.Alpha = a
		}
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		if m, err := strconv.ParseFloat(v, 64); err == nil && m > 0 {
			opts.MinRating = m
		}
	}

	rctx := &core.RecommendContext{UserID: userID, Scene: "web"}
	recs, err := h.engine.Recommend(r.Context(), rctx, opts)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("recommend")
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	if len(recs) == 0 {
		recommendEmpty.Inc()
	}

	views := make([]recommendationView, 0, len(recs))
	titles := make([]string, 0, len(recs))
	for _, rec := range recs {
		v := recommendationView{
			ItemID:      rec.ItemID,
			Rank:        rec.Rank,
			Explanation: rec.Explanation,
		}
		if movie, ok := h.data.Movie(rec.ItemID); ok {
			v.Title = movie.Title
			v.Genres = strings.ReplaceAll(movie.Genres, "|", " / ")
			titles = append(titles, movie.Title)
		}
		views = append(views, v)
	}

	// 海报查询彼此独立、可并发；失败只是没有图，不影响结果
	posters := h.posters.BatchLookup(r.Context(), titles, h.cfg.TMDB.MaxConcurrent)
	for i := range views {
		if views[i].Title == "" {
			continue
		}
		res := posters[views[i].Title]
		if res.Available {
			views[i].PosterURL = res.URL
		} else {
			posterMiss.Inc()
		}
	}

	recommendDuration.Observe(time.Since(start).Seconds())
	h.logger.Info().
		Int64("user_id", userID).
		Int("k", opts.K).
		Float64("alpha", opts.Alpha).
		Int("results", len(views)).
		Dur("took", time.Since(start)).
		Msg("recommendations served")

	writeJSON(w, http.StatusOK, recommendationsResponse{
		UserID:          userID,
		Count:           len(views),
		Recommendations: views,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
