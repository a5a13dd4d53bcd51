package httpapi

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/user"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const internalJobTokenHeader = "X-Internal-Job-Token"

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

// TokenVerifier resolves a bearer token to the calling account.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (user.Principal, error)
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("%w: missing Authorization header", usecase.ErrUnauthorized)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", fmt.Errorf("%w: invalid Authorization header format", usecase.ErrUnauthorized)
	}
	return token, nil
}

// RequireAuth resolves the caller before any battle or vote handler runs.
func RequireAuth(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireAuth")
		defer span.End()

		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		principal, err := verifier.VerifyAccessToken(ctx, token)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		annotateCaller(ctx, span, principal.UserID)

		next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, principal)))
	})
}

// RequireInternalJobToken guards the expiry job and score ingestion routes.
func RequireInternalJobToken(token string, next http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(token))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if len(expected) == 0 {
			writeError(ctx, w, fmt.Errorf("%w: internal job token is not configured", usecase.ErrDependencyUnavailable))
			return
		}

		provided := []byte(strings.TrimSpace(r.Header.Get(internalJobTokenHeader)))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			writeError(ctx, w, fmt.Errorf("%w: invalid internal job token", usecase.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestLogging writes one access log line per request with the caller,
// battle and user the handlers resolved. Server errors log at warn.
func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, info := withRequestInfo(r.Context())

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		log := logger.InfoContext
		if rec.status >= http.StatusInternalServerError {
			log = logger.WarnContext
		}
		log(ctx, "http request",
			"method", r.Method,
			"route", routeTemplate(r.URL.Path),
			"status", rec.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"caller_id", info.callerID,
			"battle_id", info.battleID,
			"user_id", info.userID,
			"remote_addr", r.RemoteAddr,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "battle-arena-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + routeTemplate(r.URL.Path)
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

func shouldTraceRequest(path string) bool {
	normalized := strings.ToLower(strings.TrimSpace(path))
	switch normalized {
	case "/healthz", "/health", "/livez", "/readyz":
		return false
	default:
		return true
	}
}

// Literal segments that share a position with battle and user IDs.
var (
	battleRouteLiterals = []string{"active", "entries", "me"}
	userRouteLiterals   = []string{"me"}
)

// routeTemplate replaces battle and user IDs in a path with their route
// parameter names.
func routeTemplate(path string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	if len(segments) >= 3 && segments[0] == "v1" {
		switch {
		case segments[1] == "battles" && !slices.Contains(battleRouteLiterals, segments[2]):
			segments[2] = "{battleID}"
		case segments[1] == "users" && !slices.Contains(userRouteLiterals, segments[2]):
			segments[2] = "{userID}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

// corsPolicy answers cross-origin requests from the arena web clients.
type corsPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func newCORSPolicy(allowedOrigins []string) corsPolicy {
	policy := corsPolicy{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		switch candidate := strings.TrimSpace(origin); candidate {
		case "":
		case "*":
			policy.allowAll = true
		default:
			policy.origins[candidate] = struct{}{}
		}
	}
	return policy
}

func (p corsPolicy) allowOrigin(origin string) (string, bool) {
	if p.allowAll {
		return "*", true
	}
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	return "", false
}

func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if allowed, ok := policy.allowOrigin(origin); ok {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Accept,"+internalJobTokenHeader)
			w.Header().Set("Access-Control-Max-Age", "600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
