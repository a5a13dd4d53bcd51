package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/battle-arena/internal/observability"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

const sweepJobName = "expire-stale-battles"

var errLeaseHeld = errors.New("sweep lease held by another instance")

type battleExpirer interface {
	ExpireStaleBattles(ctx context.Context, now time.Time) ([]string, error)
}

type leaseAcquirer interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error)
}

type SweeperConfig struct {
	Interval time.Duration
	LockTTL  time.Duration
}

// Sweeper runs the expiry sweep on a fixed interval. With a lease configured
// only one instance sweeps per tick.
type Sweeper struct {
	scheduler gocron.Scheduler
	expirer   battleExpirer
	timeout   time.Duration
	logger    *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSweeper(expirer battleExpirer, lease leaseAcquirer, cfg SweeperConfig, logger *logging.Logger) (*Sweeper, error) {
	if expirer == nil {
		return nil, fmt.Errorf("sweeper requires a battle expirer")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be > 0")
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("sweeper")

	opts := []gocron.SchedulerOption{
		gocron.WithLogger(logger),
		gocron.WithLocation(time.UTC),
	}
	if lease != nil {
		ttl := cfg.LockTTL
		if ttl <= 0 {
			ttl = cfg.Interval
		}
		opts = append(opts, gocron.WithDistributedLocker(&leaseLocker{lease: lease, ttl: ttl}))
	}

	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{
		scheduler: scheduler,
		expirer:   expirer,
		timeout:   cfg.Interval,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Interval),
		gocron.NewTask(s.runOnce),
		gocron.WithName(sweepJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register sweep job: %w", err)
	}

	return s, nil
}

func (s *Sweeper) Start() {
	s.logger.Info("sweeper starting", "job", sweepJobName)
	s.scheduler.Start()
}

func (s *Sweeper) Shutdown() error {
	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("sweeper stopped")
	return nil
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	started := time.Now()
	var (
		ids []string
		err error
	)
	observability.ProfileJob(ctx, sweepJobName, func(ctx context.Context) {
		ids, err = s.expirer.ExpireStaleBattles(ctx, time.Time{})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "sweep failed", "error", err)
		return
	}
	if len(ids) == 0 {
		s.logger.DebugContext(ctx, "sweep found nothing due")
		return
	}
	s.logger.InfoContext(ctx, "sweep expired battles",
		"count", len(ids),
		"duration", time.Since(started),
	)
}

// leaseLocker adapts the redis lease to gocron's distributed locker.
type leaseLocker struct {
	lease leaseAcquirer
	ttl   time.Duration
}

func (l *leaseLocker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	release, ok, err := l.lease.TryAcquire(ctx, key, l.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errLeaseHeld
	}
	return releaseLock(release), nil
}

type releaseLock func(context.Context) error

func (f releaseLock) Unlock(ctx context.Context) error {
	return f(ctx)
}
