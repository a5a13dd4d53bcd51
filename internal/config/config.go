package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/battle-arena/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	LogLevel                    logging.Level
	StorageDriver               string
	DBURL                       string
	DBDisablePreparedBinary     bool
	DBMaxOpenConns              int
	CacheEnabled                bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	BattleMatchmakingWindow     time.Duration
	BattleVotingWindow          time.Duration
	BattleResolutionThreshold   int
	SweepEnabled                bool
	SweepInterval               time.Duration
	SweepBatchSize              int
	SweepConcurrency            int
	SweepLockTTL                time.Duration
	EventWorkers                int
	EventTimeout                time.Duration
	RedisEnabled                bool
	RedisAddr                   string
	RedisPassword               string
	RedisDB                     int
	RedisEventStream            string
	RedisEventStreamMaxLen      int64
	WebhookEnabled              bool
	WebhookURL                  string
	WebhookSecret               string
	WebhookTimeout              time.Duration
	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetURL             string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int
	AnubisBaseURL               string
	AnubisIntrospectPath        string
	AnubisAccountPath           string
	AnubisAdminKey              string
	AnubisTimeout               time.Duration
	AnubisCircuitEnabled        bool
	AnubisCircuitFailureCount   int
	AnubisCircuitOpenTimeout    time.Duration
	AnubisCircuitHalfOpenMaxReq int
	InternalJobToken            string
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	PprofEnabled                bool
	PprofAddr                   string
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	storageDefault := StoragePostgres
	if appEnv == EnvDev {
		storageDefault = StorageMemory
	}
	storageDriver, err := parseStorageDriver(getEnv("STORAGE_DRIVER", storageDefault))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 20)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == StoragePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=postgres")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	matchmakingWindow, err := time.ParseDuration(getEnv("BATTLE_MATCHMAKING_WINDOW", "120h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BATTLE_MATCHMAKING_WINDOW: %w", err)
	}
	if matchmakingWindow <= 0 {
		return Config{}, fmt.Errorf("BATTLE_MATCHMAKING_WINDOW must be > 0")
	}
	votingWindow, err := time.ParseDuration(getEnv("BATTLE_VOTING_WINDOW", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BATTLE_VOTING_WINDOW: %w", err)
	}
	if votingWindow <= 0 {
		return Config{}, fmt.Errorf("BATTLE_VOTING_WINDOW must be > 0")
	}
	resolutionThreshold, err := getEnvAsInt("BATTLE_RESOLUTION_THRESHOLD", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse BATTLE_RESOLUTION_THRESHOLD: %w", err)
	}
	if resolutionThreshold <= 0 {
		return Config{}, fmt.Errorf("BATTLE_RESOLUTION_THRESHOLD must be > 0")
	}

	sweepEnabled, err := strconv.ParseBool(getEnv("SWEEP_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_ENABLED: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
	}
	if sweepInterval <= 0 {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	sweepBatchSize, err := getEnvAsInt("SWEEP_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_BATCH_SIZE: %w", err)
	}
	if sweepBatchSize <= 0 {
		return Config{}, fmt.Errorf("SWEEP_BATCH_SIZE must be > 0")
	}
	sweepConcurrency, err := getEnvAsInt("SWEEP_CONCURRENCY", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_CONCURRENCY: %w", err)
	}
	if sweepConcurrency <= 0 {
		return Config{}, fmt.Errorf("SWEEP_CONCURRENCY must be > 0")
	}
	sweepLockTTL, err := time.ParseDuration(getEnv("SWEEP_LOCK_TTL", "50s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_LOCK_TTL: %w", err)
	}
	if sweepLockTTL <= 0 {
		return Config{}, fmt.Errorf("SWEEP_LOCK_TTL must be > 0")
	}

	eventWorkers, err := getEnvAsInt("EVENT_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_WORKERS: %w", err)
	}
	if eventWorkers <= 0 {
		return Config{}, fmt.Errorf("EVENT_WORKERS must be > 0")
	}
	eventTimeout, err := time.ParseDuration(getEnv("EVENT_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EVENT_TIMEOUT: %w", err)
	}
	if eventTimeout <= 0 {
		return Config{}, fmt.Errorf("EVENT_TIMEOUT must be > 0")
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	redisAddr := strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379"))
	if redisEnabled && redisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if redisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be >= 0")
	}
	redisEventStreamMaxLen, err := getEnvAsInt("REDIS_EVENT_STREAM_MAXLEN", 10000)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_EVENT_STREAM_MAXLEN: %w", err)
	}
	if redisEventStreamMaxLen < 0 {
		return Config{}, fmt.Errorf("REDIS_EVENT_STREAM_MAXLEN must be >= 0")
	}

	webhookEnabled, err := strconv.ParseBool(getEnv("WEBHOOK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WEBHOOK_ENABLED: %w", err)
	}
	webhookURL := strings.TrimSpace(getEnv("WEBHOOK_URL", ""))
	webhookSecret := strings.TrimSpace(getEnv("WEBHOOK_SECRET", ""))
	if webhookEnabled {
		if webhookURL == "" {
			return Config{}, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_ENABLED=true")
		}
		if webhookSecret == "" {
			return Config{}, fmt.Errorf("WEBHOOK_SECRET is required when WEBHOOK_ENABLED=true")
		}
	}
	webhookTimeout, err := time.ParseDuration(getEnv("WEBHOOK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WEBHOOK_TIMEOUT: %w", err)
	}
	if webhookTimeout <= 0 {
		return Config{}, fmt.Errorf("WEBHOOK_TIMEOUT must be > 0")
	}

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashCircuitEnabled, err := strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	qstashCircuitFailureCount, err := getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if qstashCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	qstashCircuitOpenTimeout, err := time.ParseDuration(getEnv("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if qstashCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	qstashCircuitHalfOpenMaxReq, err := getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if qstashCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetURL := strings.TrimSpace(getEnv("QSTASH_TARGET_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_URL is required when QSTASH_ENABLED=true")
		}
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "battle-arena-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		StorageDriver:               storageDriver,
		DBURL:                       dbURL,
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		DBMaxOpenConns:              dbMaxOpenConns,
		CacheEnabled:                cacheEnabled,
		CacheTTL:                    cacheTTL,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		BattleMatchmakingWindow:     matchmakingWindow,
		BattleVotingWindow:          votingWindow,
		BattleResolutionThreshold:   resolutionThreshold,
		SweepEnabled:                sweepEnabled,
		SweepInterval:               sweepInterval,
		SweepBatchSize:              sweepBatchSize,
		SweepConcurrency:            sweepConcurrency,
		SweepLockTTL:                sweepLockTTL,
		EventWorkers:                eventWorkers,
		EventTimeout:                eventTimeout,
		RedisEnabled:                redisEnabled,
		RedisAddr:                   redisAddr,
		RedisPassword:               getEnv("REDIS_PASSWORD", ""),
		RedisDB:                     redisDB,
		RedisEventStream:            strings.TrimSpace(getEnv("REDIS_EVENT_STREAM", "battle-arena:events")),
		RedisEventStreamMaxLen:      int64(redisEventStreamMaxLen),
		WebhookEnabled:              webhookEnabled,
		WebhookURL:                  webhookURL,
		WebhookSecret:               webhookSecret,
		WebhookTimeout:              webhookTimeout,
		QStashEnabled:               qstashEnabled,
		QStashBaseURL:               qstashBaseURL,
		QStashToken:                 qstashToken,
		QStashTargetURL:             qstashTargetURL,
		QStashRetries:               qstashRetries,
		QStashCircuitEnabled:        qstashCircuitEnabled,
		QStashCircuitFailureCount:   qstashCircuitFailureCount,
		QStashCircuitOpenTimeout:    qstashCircuitOpenTimeout,
		QStashCircuitHalfOpenMaxReq: qstashCircuitHalfOpenMaxReq,
		AnubisBaseURL:               getEnv("ANUBIS_BASE_URL", "http://localhost:8081"),
		AnubisIntrospectPath:        getEnv("ANUBIS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AnubisAccountPath:           getEnv("ANUBIS_ACCOUNT_PATH", "/v1/admin/users"),
		AnubisAdminKey:              getEnv("ANUBIS_ADMIN_KEY", ""),
		InternalJobToken:            internalJobToken,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	anubisTimeout, err := time.ParseDuration(getEnv("ANUBIS_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ANUBIS_TIMEOUT: %w", err)
	}

	anubisCircuitEnabled, err := strconv.ParseBool(getEnv("ANUBIS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ANUBIS_CIRCUIT_ENABLED: %w", err)
	}

	anubisCircuitFailureCount, err := getEnvAsInt("ANUBIS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANUBIS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if anubisCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ANUBIS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}

	anubisCircuitOpenTimeout, err := time.ParseDuration(getEnv("ANUBIS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ANUBIS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if anubisCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ANUBIS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}

	anubisCircuitHalfOpenMaxReq, err := getEnvAsInt("ANUBIS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANUBIS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if anubisCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ANUBIS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.AnubisTimeout = anubisTimeout
	cfg.AnubisCircuitEnabled = anubisCircuitEnabled
	cfg.AnubisCircuitFailureCount = anubisCircuitFailureCount
	cfg.AnubisCircuitOpenTimeout = anubisCircuitOpenTimeout
	cfg.AnubisCircuitHalfOpenMaxReq = anubisCircuitHalfOpenMaxReq
	cfg.LogLevel = logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseStorageDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StorageMemory, StoragePostgres:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", v, StorageMemory, StoragePostgres)
	}
}
