package resilience

import (
	"time"

	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

type CircuitBreakerConfig struct {
	Enabled bool
	// Name identifies the dependency in rejections and state changes.
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	OnStateChange    func(name string, from, to CircuitState)
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		Name:             "dependency",
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// NewBreaker returns nil when the breaker is disabled; a nil *CircuitBreaker
// lets every call through.
func NewBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return newCircuitBreaker(cfg)
}

// Named fills in the dependency name unless the caller already set one.
func (cfg CircuitBreakerConfig) Named(name string) CircuitBreakerConfig {
	if cfg.Name == "" {
		cfg.Name = name
	}
	return cfg
}

// LogStateChanges reports breaker transitions. Opening logs at warn.
func LogStateChanges(logger *logging.Logger) func(name string, from, to CircuitState) {
	logger = logger.Named("resilience")
	return func(name string, from, to CircuitState) {
		log := logger.Info
		if to == CircuitStateOpen {
			log = logger.Warn
		}
		log("circuit breaker state changed", "dependency", name, "from", string(from), "to", string(to))
	}
}
