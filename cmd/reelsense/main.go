package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/reelsense/config"
	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/dataset"
	"github.com/rushteam/reelsense/filter"
	"github.com/rushteam/reelsense/hybrid"
	"github.com/rushteam/reelsense/pipeline"
	"github.com/rushteam/reelsense/poster"
	"github.com/rushteam/reelsense/recall"
	"github.com/rushteam/reelsense/rerank"
	"github.com/rushteam/reelsense/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty = defaults)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "reelsense").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	// 离线产出物一次性装载；装载失败中止启动，绝不带残缺数据上线
	data, err := dataset.Load(cfg.Data.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("load dataset")
	}
	logger.Info().
		Int("movies", len(data.Movies)).
		Int("ratings", len(data.Ratings)).
		Int("matrix_users", len(data.Matrix)).
		Int("popularity", len(data.Popularity)).
		Msg("dataset loaded")

	var kv core.KeyValueStore
	if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect redis")
		}
		kv = rs
	} else {
		kv = store.NewMemoryStore()
	}
	defer kv.Close()

	postNodes, err := buildPostNodes(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("build post pipeline")
	}

	engine := hybrid.NewEngine(data, postNodes...)
	// 热门兜底优先走有序集合（运营可在线调榜），缺失时回退内存榜单
	engine.Ranker.Fallback = &recall.Hot{Store: kv, Key: "hot:movies", Data: data}

	posters := poster.NewClient(cfg.TMDB.APIKey, kv)
	if cfg.TMDB.TimeoutSeconds > 0 {
		posters.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second}
	}

	h := &handler{
		engine:  engine,
		data:    data,
		posters: posters,
		cfg:     cfg,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/v1/recommendations", h.recommendations)

	logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server exit")
	}
}

// buildPostNodes 根据配置组装融合排序后的处理链。
// TopN 截断由引擎按请求的 K 动态追加，这里不配。
func buildPostNodes(cfg *config.Config) ([]pipeline.Node, error) {
	var filters []filter.Filter
	if len(cfg.Recommend.Blacklist) > 0 {
		filters = append(filters, filter.NewBlacklistFilter(cfg.Recommend.Blacklist))
	}
	if len(cfg.Recommend.Rules) > 0 {
		rf, err := filter.NewRuleFilter(cfg.Recommend.Rules)
		if err != nil {
			return nil, err
		}
		filters = append(filters, rf)
	}

	var nodes []pipeline.Node
	if len(filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: filters})
	}
	if cfg.Recommend.Diversity {
		nodes = append(nodes, &rerank.Diversity{})
	}
	return nodes, nil
}
