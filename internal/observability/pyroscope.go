package observability

import (
	"context"
	"runtime"
	"strconv"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/battle-arena/internal/config"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

// Sampling rates for the mutex and block profiles. Battle writes serialize on
// repository locks and row locks, so contention is the profile worth keeping.
const (
	mutexProfileFraction = 5
	blockProfileRate     = 10_000
)

// JobLabel is the pprof label key set on background arena work.
const JobLabel = "arena_job"

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	runtime.SetMutexProfileFraction(mutexProfileFraction)
	runtime.SetBlockProfileRate(blockProfileRate)

	pc := profilerConfig(cfg)
	profiler, err := pyroscope.Start(pc)
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", pc.ServerAddress,
		"application", pc.ApplicationName,
		"storage", cfg.StorageDriver,
		"sweep_enabled", cfg.SweepEnabled,
	)

	return func() error {
		runtime.SetMutexProfileFraction(0)
		runtime.SetBlockProfileRate(0)
		return profiler.Stop()
	}, nil
}

func profilerConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":           cfg.AppEnv,
			"service":       cfg.ServiceName,
			"version":       cfg.ServiceVersion,
			"storage":       cfg.StorageDriver,
			"sweep":         strconv.FormatBool(cfg.SweepEnabled),
			"event_workers": strconv.Itoa(cfg.EventWorkers),
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	}
}

// ProfileJob runs fn with the arena_job label so sweep and delivery samples
// can be told apart from request handling. It works with profiling disabled.
func ProfileJob(ctx context.Context, job string, fn func(context.Context)) {
	pyroscope.TagWrapper(ctx, pyroscope.Labels(JobLabel, job), fn)
}
