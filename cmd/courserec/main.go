// Command courserec 加载课程数据集并通过 HTTP 提供混合课程推荐。
//
//	courserec -config configs/config.yaml
//
// 收到 SIGHUP 时重新加载数据集；SIGINT / SIGTERM 时优雅退出。
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/courserec/config"
	_ "github.com/rushteam/courserec/config/builders"
	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/filter"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/pkg/logging"
	"github.com/rushteam/courserec/server"
	"github.com/rushteam/courserec/service"
	"github.com/rushteam/courserec/store"
)

func main() {
	configPath := flag.String("config", config.ConfigPath("configs/config.yaml"), "path to the YAML config file")
	flag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		l := logging.New("info", "json", nil)
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(settings.Log.Level, settings.Log.Format, nil)

	if err := run(settings, logger); err != nil {
		logger.Fatal().Err(err).Msg("courserec stopped")
	}
}

func run(settings *config.Settings, logger zerolog.Logger) error {
	p, err := buildPipeline(settings, logger)
	if err != nil {
		return err
	}
	logger.Info().Strs("nodes", p.Names()).Msg("pipeline ready")

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithDefaultAlpha(settings.Recommend.DefaultAlpha),
		service.WithSimilarityWorkers(settings.Recommend.SimilarityWorkers),
	}
	cache, err := openCache(settings, logger)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		opts = append(opts, service.WithCache(cache, settings.Cache.TTLSeconds))
		logger.Info().Str("backend", cache.Name()).Int("ttl_seconds", settings.Cache.TTLSeconds).Msg("result cache enabled")
	}
	rec := service.New(p, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := rec.Load(ctx, settings.Dataset.Path); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              settings.Server.Addr,
		Handler:           server.New(rec, server.WithLogger(logger), server.WithDefaultTopN(settings.Recommend.DefaultTopN)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if _, err := rec.Reload(ctx); err != nil {
					logger.Error().Err(err).Msg("reload on SIGHUP failed, keeping previous snapshot")
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildPipeline 优先使用 pipeline.path 指向的 YAML，否则使用内置链路。
// 使用 YAML 时近邻数取自 u2i source 的 neighbor_count，recommend.neighbor_count 不生效。
func buildPipeline(settings *config.Settings, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	if settings.Pipeline.Path != "" {
		logger.Warn().
			Str("pipeline", settings.Pipeline.Path).
			Int("neighbor_count", settings.Recommend.NeighborCount).
			Msg("recommend.neighbor_count is ignored, set neighbor_count on the u2i source in the pipeline file")
		cfg, err := pipeline.LoadFromYAML(settings.Pipeline.Path)
		if err != nil {
			return nil, err
		}
		return config.BuildPipeline(cfg)
	}

	var filters []filter.Filter
	if settings.Pipeline.Filter != "" {
		f, err := filter.NewExprFilter(settings.Pipeline.Filter)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return service.DefaultPipeline(settings.Recommend.NeighborCount, filters), nil
}

func openCache(settings *config.Settings, logger zerolog.Logger) (core.Store, error) {
	switch settings.Cache.Backend {
	case "memory":
		return store.NewMemoryStore(store.WithMaxEntries(settings.Cache.MaxEntries)), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		rs, err := store.NewRedisStore(ctx, settings.Cache.RedisAddr, settings.Cache.RedisDB)
		if err != nil {
			return nil, err
		}
		return store.NewBreakerStore(rs, store.DefaultBreakerConfig(), logger), nil
	default:
		return nil, nil
	}
}
