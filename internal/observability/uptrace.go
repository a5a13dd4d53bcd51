package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/battle-arena/internal/config"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// InitUptrace configures global OpenTelemetry providers for Uptrace.
// The returned logger also ships entries to Uptrace when UPTRACE_LOGS_ENABLED is set.
func InitUptrace(cfg config.Config, logger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func(context.Context) error { return nil }

	if reason := uptraceDisabledReason(cfg); reason != "" {
		logger.Info("uptrace disabled", "reason", reason)
		return logger, noop, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(arenaResourceAttributes(cfg)...),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	if cfg.UptraceLogsEnabled {
		logger = logger.Tee(newUptraceLogCore(cfg.ServiceVersion, cfg.LogLevel))
	}

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
		"storage", cfg.StorageDriver,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return logger, uptrace.Shutdown, nil
}

func uptraceDisabledReason(cfg config.Config) string {
	switch {
	case !cfg.UptraceEnabled:
		return "UPTRACE_ENABLED=false"
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return "UPTRACE_DSN empty"
	default:
		return ""
	}
}

// arenaResourceAttributes tags every span with the battle rules and the
// background workers this instance runs.
func arenaResourceAttributes(cfg config.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("arena.storage", cfg.StorageDriver),
		attribute.Bool("arena.cache.enabled", cfg.CacheEnabled),
		attribute.String("arena.battle.matchmaking_window", cfg.BattleMatchmakingWindow.String()),
		attribute.String("arena.battle.voting_window", cfg.BattleVotingWindow.String()),
		attribute.Int("arena.battle.resolution_threshold", cfg.BattleResolutionThreshold),
		attribute.Bool("arena.sweep.enabled", cfg.SweepEnabled),
		attribute.String("arena.sweep.interval", cfg.SweepInterval.String()),
		attribute.Int("arena.events.workers", cfg.EventWorkers),
	}
}
