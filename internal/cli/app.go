package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"studyspaces/internal/buildings"
	"studyspaces/internal/config"
	"studyspaces/internal/lookup"
	"studyspaces/internal/metrics"
	"studyspaces/internal/search"
	"studyspaces/internal/sourceapi"
)

// App holds everything a command needs.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Service *lookup.Service
	Metrics *metrics.Metrics

	gatherer *prometheus.Registry
	redis    *redis.Client
	clients  map[string]*sourceapi.Client
}

// NewApp wires the catalog, data source client, cache and metrics described by cfg.
// Logs go to logOut.
func NewApp(cfg *config.Config, logOut io.Writer, verbose bool) (*App, error) {
	level := cfg.LogLevel()
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: logOut, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()

	registry := buildings.Default()
	if cfg.CatalogPath != "" {
		cat, err := buildings.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		registry = buildings.NewRegistry(cat)
		logger.Debug().Str("path", cfg.CatalogPath).Int("buildings", registry.Len()).Msg("catalog loaded")
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		gatherer: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.New(a.gatherer, cfg.Monitoring.Namespace)

	var source lookup.Source
	if cfg.Source.BaseURL != "" {
		if ttl := cfg.CacheTTL(); ttl > 0 {
			a.redis = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		}
		primary := a.newClient(cfg.Source.BaseURL)
		source = primary
		if cfg.Source.FallbackURL != "" {
			source = sourceapi.NewFailover(primary, a.newClient(cfg.Source.FallbackURL), logger)
		}
	}

	openTag, closeTag := cfg.HighlightMarkers()
	a.Service = lookup.NewService(registry, source, a.Metrics, logger, search.WithMarkers(openTag, closeTag))
	return a, nil
}

func (a *App) newClient(baseURL string) *sourceapi.Client {
	cfg := a.Config
	client := sourceapi.NewClient(sourceapi.Options{
		BaseURL:       baseURL,
		APIKey:        cfg.Source.APIKey,
		Timeout:       cfg.SourceTimeout(),
		RatePerSecond: cfg.Source.RatePerSecond,
		Burst:         cfg.Source.Burst,
		MaxRetries:    cfg.SourceMaxRetries(),
	}, a.Logger)
	client.UseMetrics(a.Metrics)
	if a.redis != nil {
		client.UseRedisCache(a.redis, cfg.CacheTTL())
	}
	if a.clients == nil {
		a.clients = make(map[string]*sourceapi.Client)
	}
	a.clients[baseURL] = client
	return client
}

// Close pushes metrics when a Pushgateway is configured and releases the cache
// connection. Push failures are logged, never returned.
func (a *App) Close(ctx context.Context) error {
	if url := a.Config.Monitoring.PushgatewayURL; url != "" {
		pushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := metrics.Push(pushCtx, url, a.Config.MonitoringJob(), a.gatherer)
		cancel()
		if err != nil {
			a.Logger.Warn().Err(err).Str("url", url).Msg("metrics push failed")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
	}
	return nil
}
