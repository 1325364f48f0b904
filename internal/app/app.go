package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/fantasy-hoops/external/statsprovider"
	"github.com/riskibarqy/fantasy-hoops/internal/config"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
	"github.com/riskibarqy/fantasy-hoops/internal/infrastructure/kv"
	repocache "github.com/riskibarqy/fantasy-hoops/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-hoops/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-hoops/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-hoops/internal/metrics"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
)

// Runtime is the wired ranking engine shared by the API and the operator CLI.
type Runtime struct {
	Config         config.Config
	Rankings       *usecase.RankingService
	GameLogs       *usecase.GameLogService
	MetricsHandler http.Handler
	closers        []func() error
}

type repositories struct {
	teams     team.Repository
	ownership ownership.Repository
	cache     ranking.CacheRepository
}

// Build opens the configured stores and assembles the services. Close
// releases every opened resource.
func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{Config: cfg}

	store := openKV(ctx, cfg, logger, rt)

	repos, err := openRepositories(ctx, cfg, store, logger, rt)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	provider, err := statsprovider.Build(cfg.StatsProviders, statsClientConfigs(cfg), logger)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("build stats providers: %w", err)
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewService(registry)
		rt.MetricsHandler = metrics.NewHandler(registry)
	}

	rt.GameLogs = usecase.NewGameLogService(provider, store, usecase.GameLogConfig{
		Season:     cfg.Season,
		CacheTTL:   cfg.GameLogCacheTTL,
		MaxWorkers: cfg.StatsMaxWorkers,
	}, recorder, logger)
	rt.Rankings = usecase.NewRankingService(
		repos.teams,
		repos.ownership,
		repos.cache,
		rt.GameLogs,
		cfg.SeasonStart,
		recorder,
		logger,
	)
	rt.Rankings.SetComputeTimeout(cfg.RankingComputeTimeout)

	logger.Info("ranking engine ready",
		"store_backend", cfg.StoreBackend,
		"season", cfg.Season,
		"season_start", cfg.SeasonStart.Format("2006-01-02"),
		"providers", provider.Name(),
	)
	return rt, nil
}

// NewHTTPServer builds the API server on top of rt.
func NewHTTPServer(rt *Runtime, logger *logging.Logger) (*http.Server, error) {
	if rt == nil || rt.Rankings == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	cfg := rt.Config
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(rt.Rankings, cfg.RankingMaxAge, logger)
	router := httpapi.NewRouter(handler, rt.MetricsHandler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = stderrors.Join(errs, r.closers[i]())
	}
	r.closers = nil
	return errs
}

func (r *Runtime) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// openKV prefers redis and falls back to an in-process store when it is not
// configured or unreachable.
func openKV(ctx context.Context, cfg config.Config, logger *logging.Logger, rt *Runtime) cache.KV {
	if cfg.RedisAddr == "" {
		logger.Info("redis not configured, using in-process cache")
		return cache.NewStore()
	}

	store, err := kv.NewRedisStore(ctx, kv.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewStore()
	}
	rt.onClose(store.Close)
	return store
}

func openRepositories(ctx context.Context, cfg config.Config, store cache.KV, logger *logging.Logger, rt *Runtime) (repositories, error) {
	if cfg.StoreBackend != config.StorePostgres {
		if err := memory.ValidateSeed(); err != nil {
			return repositories{}, err
		}
		return repositories{
			teams:     memory.NewTeamRepository(memory.SeedTeams()),
			ownership: memory.NewOwnershipRepository(memory.SeedTransactions(), memory.SeedRoster()),
			cache:     memory.NewRankingCacheRepository(),
		}, nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	rt.onClose(db.Close)

	var seededTeams []string
	if cfg.DBSeedOnStart {
		seededTeams, err = postgres.BootstrapSeed(ctx, db)
		if err != nil {
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("bootstrap seed applied", "db", dbNameFromURL(cfg.DBURL), "teams_inserted", len(seededTeams))
	}

	var teams team.Repository = postgres.NewTeamRepository(db)
	if cfg.CacheEnabled {
		cached := repocache.NewTeamRepository(teams, store, cfg.CacheTTL)
		// The KV outlives restarts; drop entries that predate the seeded rows.
		if len(seededTeams) > 0 {
			if err := cached.Invalidate(ctx, seededTeams...); err != nil {
				logger.Warn("invalidate cached teams after seed failed", "error", err)
			}
		}
		teams = cached
	}

	return repositories{
		teams:     teams,
		ownership: postgres.NewOwnershipRepository(db),
		cache:     postgres.NewRankingCacheRepository(db),
	}, nil
}

func statsClientConfigs(cfg config.Config) map[string]statsprovider.ClientConfig {
	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.StatsCircuitEnabled,
		FailureThreshold: cfg.StatsCircuitFailures,
		OpenTimeout:      cfg.StatsCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.StatsCircuitHalfOpenMax,
	}
	base := statsprovider.ClientConfig{
		APIKey:         cfg.StatsAPIKey,
		Timeout:        cfg.StatsTimeout,
		MaxRetries:     cfg.StatsMaxRetries,
		RetryBaseDelay: cfg.StatsRetryBaseDelay,
		RateLimitRPS:   cfg.StatsRateLimitRPS,
		CircuitBreaker: breaker,
	}

	primary := base
	primary.BaseURL = cfg.StatsPrimaryBaseURL
	fallback := base
	fallback.BaseURL = cfg.StatsFallbackBaseURL

	return map[string]statsprovider.ClientConfig{
		statsprovider.PrimaryName:  primary,
		statsprovider.FallbackName: fallback,
	}
}
