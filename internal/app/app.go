package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/battle-arena/internal/config"
	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/eventbus"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/lease"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/battle-arena/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/battle-arena/internal/platform/id"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/platform/resilience"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

// App holds the wired process: the HTTP server plus the background pieces
// that must be stopped with it.
type App struct {
	Server  *http.Server
	Sweeper *Sweeper

	dispatcher *usecase.EventDispatcher
	db         *sqlx.DB
	redis      redis.UniversalClient
	logger     *logging.Logger
}

type repositories struct {
	battles battle.Repository
	stats   battlestats.Repository
	scores  progress.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	ok := false
	defer func() {
		if ok {
			return
		}
		if a.dispatcher != nil {
			_ = a.dispatcher.Close(context.Background())
		}
		_ = a.closeResources()
	}()

	repos, err := a.buildRepositories(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RedisEnabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	ids := idgen.NewUUIDGenerator()
	sinks, err := a.buildEventSinks(cfg)
	if err != nil {
		return nil, err
	}
	dispatcher, err := usecase.NewEventDispatcher(cfg.EventWorkers, cfg.EventTimeout, ids, logger, sinks...)
	if err != nil {
		return nil, err
	}
	a.dispatcher = dispatcher

	accounts := anubis.NewClient(anubis.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.AnubisTimeout},
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectPath,
		AccountPath:    cfg.AnubisAccountPath,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
			OnStateChange:    resilience.LogStateChanges(logger),
		},
		Logger: logger,
	})

	rules := battle.DefaultRules()
	rules.MatchmakingWindow = cfg.BattleMatchmakingWindow
	rules.VotingWindow = cfg.BattleVotingWindow
	rules.ResolutionThreshold = cfg.BattleResolutionThreshold

	scoringSvc := usecase.NewScoringService(repos.scores, accounts, dispatcher, logger)
	battleSvc := usecase.NewBattleService(repos.battles, repos.stats, scoringSvc, dispatcher, ids, usecase.BattleServiceConfig{
		Rules:            rules,
		SweepBatchSize:   cfg.SweepBatchSize,
		SweepConcurrency: cfg.SweepConcurrency,
	}, logger)
	voteSvc := usecase.NewVoteService(repos.battles, repos.stats, scoringSvc, battleSvc, ids, rules, logger)

	handler := httpapi.NewHandler(battleSvc, voteSvc, scoringSvc, logger)
	router := httpapi.NewRouter(handler, accounts, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.SweepEnabled {
		var locker leaseAcquirer
		if a.redis != nil {
			locker = lease.NewRedisLease(a.redis, cfg.ServiceName+":lease:", ids)
		}
		sweeper, err := NewSweeper(battleSvc, locker, SweeperConfig{
			Interval: cfg.SweepInterval,
			LockTTL:  cfg.SweepLockTTL,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.Sweeper = sweeper
	}

	ok = true
	return a, nil
}

func (a *App) buildRepositories(cfg config.Config) (repositories, error) {
	var repos repositories
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDatabase(cfg)
		if err != nil {
			return repos, err
		}
		a.db = db
		repos = repositories{
			battles: postgres.NewBattleRepository(db),
			stats:   postgres.NewBattleStatsRepository(db),
			scores:  postgres.NewScoreRepository(db),
		}
	default:
		a.logger.Warn("using in-memory storage", "driver", cfg.StorageDriver)
		repos = repositories{
			battles: memory.NewBattleRepository(),
			stats:   memory.NewBattleStatsRepository(),
			scores:  memory.NewScoreRepository(),
		}
	}

	if cfg.CacheEnabled {
		repos.stats = cache.NewBattleStatsRepository(repos.stats, cfg.CacheTTL)
		repos.scores = cache.NewScoreRepository(repos.scores, cfg.CacheTTL)
	}
	return repos, nil
}

func (a *App) buildEventSinks(cfg config.Config) ([]usecase.EventSink, error) {
	sinks := []usecase.EventSink{
		{Name: "log", Publisher: eventbus.NewLogPublisher(a.logger)},
	}

	if a.redis != nil {
		sinks = append(sinks, usecase.EventSink{
			Name:      "redis-stream",
			Publisher: eventbus.NewRedisStreamPublisher(a.redis, cfg.RedisEventStream, cfg.RedisEventStreamMaxLen),
		})
	}

	if cfg.WebhookEnabled {
		webhook, err := eventbus.NewWebhookPublisher(eventbus.WebhookConfig{
			URL:     cfg.WebhookURL,
			Secret:  cfg.WebhookSecret,
			Timeout: cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				OpenTimeout:      30 * time.Second,
				HalfOpenMaxReq:   1,
				OnStateChange:    resilience.LogStateChanges(a.logger),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("build webhook publisher: %w", err)
		}
		sinks = append(sinks, usecase.EventSink{Name: "webhook", Publisher: webhook})
	}

	if cfg.QStashEnabled {
		sinks = append(sinks, usecase.EventSink{
			Name: "qstash",
			Publisher: jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
				HTTPClient:       &http.Client{Timeout: cfg.EventTimeout},
				BaseURL:          cfg.QStashBaseURL,
				Token:            cfg.QStashToken,
				TargetURL:        cfg.QStashTargetURL,
				Retries:          cfg.QStashRetries,
				InternalJobToken: cfg.InternalJobToken,
				Timeout:          cfg.EventTimeout,
				CircuitBreaker: resilience.CircuitBreakerConfig{
					Enabled:          cfg.QStashCircuitEnabled,
					FailureThreshold: cfg.QStashCircuitFailureCount,
					OpenTimeout:      cfg.QStashCircuitOpenTimeout,
					HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
					OnStateChange:    resilience.LogStateChanges(a.logger),
				},
			}, a.logger),
		})
	}

	return sinks, nil
}

// Shutdown stops the HTTP server, then the sweeper and event dispatcher, then storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if a.Sweeper != nil {
		if err := a.Sweeper.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close event dispatcher: %w", err))
		}
	}
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
