package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 是环境变量前缀，"__" 表示层级，例如 COURSEREC_DATASET__PATH → dataset.path。
const EnvPrefix = "COURSEREC_"

// Settings 是进程级配置：默认值 → YAML 文件 → 环境变量，后者覆盖前者。
type Settings struct {
	Dataset   DatasetSettings   `koanf:"dataset"`
	Recommend RecommendSettings `koanf:"recommend"`
	Pipeline  PipelineSettings  `koanf:"pipeline"`
	Cache     CacheSettings     `koanf:"cache"`
	Server    ServerSettings    `koanf:"server"`
	Log       LogSettings       `koanf:"log"`
}

type DatasetSettings struct {
	Path string `koanf:"path"` // .csv 或 .xlsx
}

type RecommendSettings struct {
	DefaultAlpha      float64 `koanf:"default_alpha"`
	DefaultTopN       int     `koanf:"default_top_n"`
	NeighborCount     int     `koanf:"neighbor_count"`
	SimilarityWorkers int     `koanf:"similarity_workers"` // 0 = GOMAXPROCS
}

type PipelineSettings struct {
	Path   string `koanf:"path"`   // 可选的 pipeline YAML；为空时使用内置链路
	Filter string `koanf:"filter"` // 可选的 CEL 过滤表达式，仅作用于内置链路，不能与 path 同时设置
}

type CacheSettings struct {
	Backend    string `koanf:"backend"` // none / memory / redis
	TTLSeconds int    `koanf:"ttl_seconds"`
	RedisAddr  string `koanf:"redis_addr"`
	RedisDB    int    `koanf:"redis_db"`
	MaxEntries int    `koanf:"max_entries"` // memory 后端的条目上限
}

type ServerSettings struct {
	Addr string `koanf:"addr"`
}

type LogSettings struct {
	Level  string `koanf:"level"`  // debug / info / warn / error
	Format string `koanf:"format"` // json / console
}

// DefaultSettings 返回默认配置。
func DefaultSettings() *Settings {
	return &Settings{
		Dataset: DatasetSettings{Path: "online_course_data.xlsx"},
		Recommend: RecommendSettings{
			DefaultAlpha:  0.7,
			DefaultTopN:   5,
			NeighborCount: 5,
		},
		Cache: CacheSettings{
			Backend:    "memory",
			TTLSeconds: 300,
			RedisAddr:  "127.0.0.1:6379",
			MaxEntries: 10000,
		},
		Server: ServerSettings{Addr: ":8080"},
		Log:    LogSettings{Level: "info", Format: "json"},
	}
}

// LoadSettings 加载配置。path 为空或文件不存在时只使用默认值与环境变量。
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	transform := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	s := DefaultSettings()
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 校验配置取值范围。
func (s *Settings) Validate() error {
	var errs []error
	if s.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.path is required"))
	}
	if s.Recommend.DefaultAlpha < 0 || s.Recommend.DefaultAlpha > 1 {
		errs = append(errs, fmt.Errorf("recommend.default_alpha must be within [0,1], got %v", s.Recommend.DefaultAlpha))
	}
	if s.Recommend.DefaultTopN <= 0 {
		errs = append(errs, fmt.Errorf("recommend.default_top_n must be positive, got %d", s.Recommend.DefaultTopN))
	}
	if s.Recommend.NeighborCount <= 0 {
		errs = append(errs, fmt.Errorf("recommend.neighbor_count must be positive, got %d", s.Recommend.NeighborCount))
	}
	if s.Pipeline.Path != "" && s.Pipeline.Filter != "" {
		errs = append(errs, errors.New("pipeline.filter only applies to the built-in pipeline; add a filter node to pipeline.path instead"))
	}
	if s.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.max_entries must not be negative, got %d", s.Cache.MaxEntries))
	}
	switch s.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be none, memory or redis, got %q", s.Cache.Backend))
	}
	if s.Cache.Backend == "redis" && s.Cache.RedisAddr == "" {
		errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
	}
	return errors.Join(errs...)
}

// ConfigPath 返回配置文件路径：COURSEREC_CONFIG 优先，否则为 fallback。
func ConfigPath(fallback string) string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return fallback
}
