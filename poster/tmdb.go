// Package poster 是海报查询协作方：按标题到 TMDB 搜索海报 URL。
//
// 失败语义：任何网络/解析/超时问题都归一为"无海报"结果，绝不向
// 推荐链路或用户暴露错误。Result 用显式的 Available 标记缺失，
// 而不是把失败悄悄吞掉——测试和日志都看得见。
package poster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/reelsense/core"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultTimeout      = 3 * time.Second

	// 海报按标题缓存一天：片单海报基本不变，省掉重复外呼
	defaultCacheTTLSeconds = 86400
)

// Result 是单次查询结果。Available 为 false 表示"无海报可用"，
// 包括确实没有海报与查询失败两种情况。
type Result struct {
	URL       string
	Available bool
}

// Client 是 TMDB 搜索客户端。
// 查询之间相互独立、可并发、可按标题缓存，不影响推荐正确性。
type Client struct {
	APIKey string

	// HTTPClient 可注入（测试用）；为空时使用带默认超时的客户端
	HTTPClient *http.Client

	// BaseURL / ImageBaseURL 可覆盖（测试指向 httptest server）
	BaseURL      string
	ImageBaseURL string

	// Cache 按标题缓存查询结果（含"已知无海报"），可为空
	Cache    core.Store
	CacheTTL int // 秒；<= 0 时取默认值
}

// NewClient 创建带默认超时的客户端。
func NewClient(apiKey string, cache core.Store) *Client {
	return &Client{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		Cache:      cache,
	}
}

type searchResponse struct {
	Results []struct {
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// Lookup 查询单个标题的海报。
func (c *Client) Lookup(ctx context.Context, title string) Result {
	// 标题带年份后缀（例如 "Heat (1995)"）会干扰搜索，去掉再查
	cleanTitle := strings.TrimSpace(strings.SplitN(title, "(", 2)[0])
	if cleanTitle == "" || c.APIKey == "" {
		return Result{}
	}

	cacheKey := "poster:" + strings.ToLower(cleanTitle)
	if c.Cache != nil {
		if data, err := c.Cache.Get(ctx, cacheKey); err == nil {
			// 空值表示缓存过的"已知无海报"
			return Result{URL: string(data), Available: len(data) > 0}
		}
	}

	res := c.search(ctx, cleanTitle)

	if c.Cache != nil {
		ttl := c.CacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTLSeconds
		}
		// 写缓存失败无所谓，下次再查一遍
		_ = c.Cache.Set(ctx, cacheKey, []byte(res.URL), ttl)
	}
	return res
}

func (c *Client) search(ctx context.Context, title string) Result {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	imageBase := c.ImageBaseURL
	if imageBase == "" {
		imageBase = defaultImageBaseURL
	}

	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("query", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/search/movie?"+q.Encode(), nil)
	if err != nil {
		return Result{}
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}
	}
	if len(parsed.Results) == 0 || parsed.Results[0].PosterPath == "" {
		return Result{}
	}
	return Result{URL: imageBase + parsed.Results[0].PosterPath, Available: true}
}

// BatchLookup 并发查询一批标题，返回标题 → 结果。
// 查询之间无顺序要求，单个失败只影响自己（Available=false）。
func (c *Client) BatchLookup(ctx context.Context, titles []string, maxConcurrent int) map[string]Result {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var (
		mu  sync.Mutex
		out = make(map[string]Result, len(titles))
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrent)

	for _, title := range titles {
		t := title
		eg.Go(func() error {
			res := c.Lookup(ctx, t)
			mu.Lock()
			out[t] = res
			mu.Unlock()
			return nil
		})
	}
	// Lookup 永不报错，Wait 只用于等待全部完成
	_ = eg.Wait()
	return out
}
