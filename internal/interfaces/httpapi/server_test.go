package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecoverPanic_WritesInternalEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.FromZap(zap.New(core))

	panicking := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		annotateBattle(r.Context(), noopSpan, "battle-7")
		panic("tally overflow")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/battles/battle-7/votes", nil)
	rec := httptest.NewRecorder()
	RequestLogging(logger, recoverPanic(logger, panicking)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Status != "INTERNAL" || body.Error.Message != internalErrorMessage {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}

	entries := logs.FilterMessage("panic recovered").All()
	if len(entries) != 1 {
		t.Fatalf("expected one panic log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["battle_id"] != "battle-7" || fields["route"] != "/v1/battles/{battleID}/votes" {
		t.Fatalf("unexpected panic fields: %v", fields)
	}
}

func TestRecoverPanic_ReraisesAbortHandler(t *testing.T) {
	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	req := httptest.NewRequest(http.MethodGet, "/v1/battles/active", nil)
	recoverPanic(logging.NewNop(), aborting).ServeHTTP(httptest.NewRecorder(), req)
	t.Fatalf("expected panic to propagate")
}

func TestNewRouter_AppliesCORSConfig(t *testing.T) {
	router := NewRouter(&Handler{}, staticVerifier{}, logging.NewNop(), RouterConfig{
		CORSAllowedOrigins: []string{"https://arena.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/battles/active", nil)
	req.Header.Set("Origin", "https://arena.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://arena.example.com" {
		t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
	}
}
