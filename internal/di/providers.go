package di

import (
	"fmt"

	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/service/marketdata"
	"RateScope/pkg/cache"
	"RateScope/pkg/config"
	phttp "RateScope/pkg/http"
	"RateScope/pkg/logger"
	"RateScope/pkg/metrics"
	"RateScope/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the outbound HTTP client used for source
// document fetches.
func ProvideHTTPClient(cfg *config.Config) *phttp.Client {
	return phttp.NewClient(
		phttp.WithTimeout(cfg.Source.FetchTimeout),
	)
}

// ProvideCache creates the fetch cache: in-process by default, layered
// over Redis when Redis is enabled.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	log.Info("redis cache enabled",
		logger.String("host", cfg.Redis.Host),
		logger.Int("port", cfg.Redis.Port))
	return cache.NewLayeredCache(rc), nil
}

// ProvideDataSource selects the input-document source from config:
// direct assembly from the public statistical sources, or a prebuilt
// dataset + params document pair.
func ProvideDataSource(
	cfg *config.Config,
	client *phttp.Client,
	cacheSvc cache.Service,
	metrics repository.Metrics,
	log *logger.Logger,
) (repository.DataSource, error) {
	switch cfg.Source.Mode {
	case "documents":
		return marketdata.NewDocumentsProvider(client, cfg.Source.DataURL, cfg.Source.ParamsURL, log), nil
	case "direct":
		return marketdata.NewDirectProvider(client, cacheSvc, marketdata.Sources{
			PolicyRateURL: cfg.Source.PolicyRate,
			EurostatBase:  cfg.Source.EurostatBase,
			GeoCode:       cfg.Source.GeoCode,
			CacheTTL:      cfg.Source.CacheTTL,
			StartPeriod:   cfg.Source.StartPeriod,
			EndPeriod:     cfg.Source.EndPeriod,
			Defaults: models.RuleParameters{
				Rho:   cfg.Rule.Rho,
				RStar: cfg.Rule.RStar,
				Alpha: cfg.Rule.Alpha,
				Beta:  cfg.Rule.Beta,
			},
		}, metrics, log), nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	metrics repository.Metrics,
	source repository.DataSource,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, log, metrics, source, cacheSvc)
}
