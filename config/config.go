// Package config 是服务端的应用配置（YAML）。
// 先填默认值再覆盖：文件里没写的字段保持默认，写了 0 就是 0
// （例如 alpha: 0.0 表示纯内容排序，不会被默认值顶掉）。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Data struct {
		// Dir 离线产出物目录（movies.json 等六张表）
		Dir string `yaml:"dir"`
	} `yaml:"data"`

	Redis struct {
		// Addr 为空时使用内存 Store
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`

	TMDB struct {
		// APIKey 为空时海报查询整体关闭（全部返回"无海报"）
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxConcurrent  int    `yaml:"max_concurrent"`
	} `yaml:"tmdb"`

	Recommend struct {
		K         int     `yaml:"k"`
		Alpha     float64 `yaml:"alpha"`
		MinRating float64 `yaml:"min_rating"`

		// Rules CEL 过滤规则，启动期编译，非法表达式直接拒绝启动
		Rules []string `yaml:"rules"`

		// Blacklist 运营屏蔽的物品 ID
		Blacklist []int64 `yaml:"blacklist"`

		// Diversity 是否开启主类型去重重排
		Diversity bool `yaml:"diversity"`
	} `yaml:"recommend"`
}

// Default 返回全部默认值。
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Data.Dir = "./data"
	cfg.TMDB.TimeoutSeconds = 3
	cfg.TMDB.MaxConcurrent = 4
	cfg.Recommend.K = 10
	cfg.Recommend.Alpha = 0.7
	cfg.Recommend.MinRating = 3.5
	return cfg
}

// Load 从 YAML 文件加载配置；path 为空时直接返回默认配置。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Recommend.K <= 0 {
		return fmt.Errorf("config: recommend.k must be positive, got %d", c.Recommend.K)
	}
	if c.Recommend.Alpha < 0 || c.Recommend.Alpha > 1 {
		return fmt.Errorf("config: recommend.alpha must be in [0,1], got %v", c.Recommend.Alpha)
	}
	return nil
}
