package jobqueue

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/platform/resilience"
)

func TestQStashPublisher_PublishSetsUpstashHeaders(t *testing.T) {
	var gotPath, gotAuth, gotDedup, gotForward, gotRetries, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDedup = r.Header.Get("Upstash-Deduplication-Id")
		gotForward = r.Header.Get("Upstash-Forward-X-Internal-Job-Token")
		gotRetries = r.Header.Get("Upstash-Retries")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		HTTPClient:       srv.Client(),
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetURL:        "https://hooks.example.com/arena/events",
		Retries:          3,
		InternalJobToken: "job-token",
	}, logging.NewNop())

	err := publisher.Publish(t.Context(), event.Event{ID: "evt-1", Kind: event.KindAchievementUnlocked, UserID: "alice"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotPath != "/v2/publish/https://hooks.example.com/arena/events" {
		t.Fatalf("unexpected publish path: %s", gotPath)
	}
	if gotAuth != "Bearer qstash-token" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotDedup != "evt-1" || gotForward != "job-token" || gotRetries != "3" {
		t.Fatalf("unexpected upstash headers dedup=%q forward=%q retries=%q", gotDedup, gotForward, gotRetries)
	}
	if !strings.Contains(gotBody, `"kind":"achievement_unlocked"`) {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestQStashPublisher_CircuitOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		TargetURL:  "https://hooks.example.com/arena/events",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	for i := 0; i < 4; i++ {
		if err := publisher.Publish(t.Context(), event.Event{ID: "evt"}); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected breaker to stop calls after 2 failures, got %d", calls.Load())
	}
}

func TestValidateHTTPBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "https://qstash.upstash.io/", wantErr: false},
		{in: "", wantErr: true},
		{in: "ftp://qstash.upstash.io", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		_, err := validateHTTPBaseURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("validateHTTPBaseURL(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
		}
	}
}

func TestBuildQStashCurlPreview_MasksSecrets(t *testing.T) {
	preview := buildQStashCurlPreview("https://qstash/v2/publish/x", 2, "evt-1", `{"a":"it's"}`, true)
	if strings.Contains(preview, "qstash-token") || !strings.Contains(preview, "Bearer ***") {
		t.Fatalf("expected masked bearer token: %s", preview)
	}
	if !strings.Contains(preview, "Upstash-Forward-X-Internal-Job-Token: ***") {
		t.Fatalf("expected masked forward token: %s", preview)
	}
	if !strings.Contains(preview, `'{"a":"it'"'"'s"}'`) {
		t.Fatalf("expected shell-quoted body: %s", preview)
	}
}
