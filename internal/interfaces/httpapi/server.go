package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RouterConfig holds the HTTP surface settings of the arena API.
type RouterConfig struct {
	CORSAllowedOrigins []string
	InternalJobToken   string
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicBattleRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	var h http.Handler = mux
	h = recoverPanic(logger, h)
	h = CORS(cfg.CORSAllowedOrigins, h)
	h = RequestLogging(logger, h)
	return RequestTracing(h)
}

// recoverPanic turns a handler panic into an INTERNAL envelope and marks the
// request span as failed. http.ErrAbortHandler is re-raised.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := r.Context()
			span := trace.SpanFromContext(ctx)
			span.RecordError(fmt.Errorf("panic: %v", rec))
			span.SetStatus(codes.Error, "panic recovered")

			fields := []any{"panic", rec, "method", r.Method, "route", routeTemplate(r.URL.Path)}
			if info := requestInfoFromContext(ctx); info != nil {
				fields = append(fields, "caller_id", info.callerID, "battle_id", info.battleID)
			}
			logger.ErrorContext(ctx, "panic recovered", fields...)
			writeInternalError(ctx, w)
		}()
		next.ServeHTTP(w, r)
	})
}
