package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/user"
	"github.com/riskibarqy/battle-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/battle-arena/internal/platform/id"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

const testInternalToken = "internal-secret"

type staticVerifier map[string]user.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	p, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return p, nil
}

type testEnvelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	ids := id.NewUUIDGenerator()
	rules := battle.DefaultRules()

	battles := memory.NewBattleRepository()
	stats := memory.NewBattleStatsRepository()
	scores := memory.NewScoreRepository()

	scoring := usecase.NewScoringService(scores, nil, nil, logger)
	battleService := usecase.NewBattleService(battles, stats, scoring, nil, ids, usecase.BattleServiceConfig{Rules: rules}, logger)
	voteService := usecase.NewVoteService(battles, stats, scoring, battleService, ids, rules, logger)

	verifier := staticVerifier{
		"token-alice": {UserID: "alice"},
		"token-bob":   {UserID: "bob"},
		"token-carol": {UserID: "carol", Premium: true},
	}
	return NewRouter(NewHandler(battleService, voteService, scoring, logger), verifier, logger, RouterConfig{InternalJobToken: testInternalToken})
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var out testEnvelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response body: %v body=%s", err, rec.Body.String())
	}
	return out
}

func TestHandler_SubmitEntryPairsTwoAuthors(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"I once outran a cheetah"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	first := decodeEnvelope[battleDTO](t, rec)
	if first.Data.Status != string(battle.StatusWaiting) {
		t.Fatalf("expected waiting battle, got %s", first.Data.Status)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-bob", `{"content":"I taught my cat chess"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	second := decodeEnvelope[battleDTO](t, rec)
	if second.Data.ID != first.Data.ID {
		t.Fatalf("expected bob to join battle %s, got %s", first.Data.ID, second.Data.ID)
	}
	if second.Data.Status != string(battle.StatusActive) || second.Data.PostB == nil {
		t.Fatalf("expected active battle with post b, got %+v", second.Data)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/battles/me/active", "token-alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeEnvelope[battleDTO](t, rec).Data.ID; got != first.Data.ID {
		t.Fatalf("expected active battle %s, got %s", first.Data.ID, got)
	}
}

func TestHandler_SubmitEntryErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		token      string
		body       string
		wantCode   int
		wantStatus string
	}{
		{name: "missing token", token: "", body: `{"content":"x"}`, wantCode: http.StatusUnauthorized, wantStatus: "UNAUTHENTICATED"},
		{name: "unknown token", token: "nope", body: `{"content":"x"}`, wantCode: http.StatusUnauthorized, wantStatus: "UNAUTHENTICATED"},
		{name: "unknown field", token: "token-alice", body: `{"content":"x","extra":1}`, wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT"},
		{name: "missing content", token: "token-alice", body: `{}`, wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT"},
		{name: "content too long", token: "token-alice", body: `{"content":"` + strings.Repeat("a", 281) + `"}`, wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", tc.token, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d body=%s", tc.wantCode, rec.Code, rec.Body.String())
			}
			env := decodeEnvelope[any](t, rec)
			if env.Error == nil || env.Error.Status != tc.wantStatus {
				t.Fatalf("expected error status %s, got %+v", tc.wantStatus, env.Error)
			}
		})
	}
}

func TestHandler_DuplicateEntryConflicts(t *testing.T) {
	router := newTestRouter(t)

	if rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"first"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"second"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
	if env := decodeEnvelope[any](t, rec); env.Error == nil || env.Error.Status != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS, got %+v", env.Error)
	}
}

func TestHandler_VoteFlow(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"a"}`)
	rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-bob", `{"content":"b"}`)
	active := decodeEnvelope[battleDTO](t, rec).Data
	votePath := "/v1/battles/" + active.ID + "/votes"
	body := `{"post_id":"` + active.PostA.ID + `"}`

	rec = doRequest(t, router, http.MethodGet, "/v1/battles/"+active.ID+"/can-vote", "token-alice", "")
	if got := decodeEnvelope[canVoteDTO](t, rec).Data; got.CanVote {
		t.Fatalf("author must not be able to vote: %+v", got)
	}
	rec = doRequest(t, router, http.MethodGet, "/v1/battles/"+active.ID+"/can-vote", "token-carol", "")
	if got := decodeEnvelope[canVoteDTO](t, rec).Data; !got.CanVote {
		t.Fatalf("expected carol to be able to vote: %+v", got)
	}

	rec = doRequest(t, router, http.MethodPost, votePath, "token-alice", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected self vote 409, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, votePath, "token-carol", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeEnvelope[battleDTO](t, rec).Data; got.VotesA != 1 || got.VotesB != 0 {
		t.Fatalf("expected 1-0, got %d-%d", got.VotesA, got.VotesB)
	}

	rec = doRequest(t, router, http.MethodPost, votePath, "token-carol", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected repeat vote 409, got %d", rec.Code)
	}
	if env := decodeEnvelope[any](t, rec); env.Error == nil || env.Error.Status != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS, got %+v", env.Error)
	}

	rec = doRequest(t, router, http.MethodPost, votePath, "token-carol", `{"post_id":"not-a-post"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid choice 400, got %d", rec.Code)
	}
}

func TestHandler_WithdrawBattle(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"a"}`)
	waiting := decodeEnvelope[battleDTO](t, rec).Data

	rec = doRequest(t, router, http.MethodDelete, "/v1/battles/"+waiting.ID, "token-bob", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected non-owner withdraw 401, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/battles/"+waiting.ID, "token-alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/battles/"+waiting.ID, "", "")
	if got := decodeEnvelope[battleDTO](t, rec).Data.Status; got != string(battle.StatusCancelled) {
		t.Fatalf("expected cancelled, got %s", got)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/battles/"+waiting.ID, "token-alice", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected second withdraw 409, got %d", rec.Code)
	}
}

func TestHandler_PublicQueries(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/battles/missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/nobody/battle-stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeEnvelope[battleStatsDTO](t, rec).Data; got.UserID != "nobody" || got.TotalBattles != 0 {
		t.Fatalf("expected zero stats, got %+v", got)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/alice/battles?limit=abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"a"}`)
	rec = doRequest(t, router, http.MethodGet, "/v1/users/alice/battles?limit=5&offset=0", "", "")
	if got := decodeEnvelope[[]battleDTO](t, rec).Data; len(got) != 1 {
		t.Fatalf("expected one battle in history, got %d", len(got))
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/battles/active", "", "")
	if got := decodeEnvelope[[]battleDTO](t, rec).Data; len(got) != 0 {
		t.Fatalf("expected no active battles, got %d", len(got))
	}
}

func TestHandler_ScoreRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/score-events", "", `{"user_id":"carol","action":"RECEIVE_REACTION_COMMENT"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without internal token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/score-events", strings.NewReader(`{"user_id":"carol","action":"receive_reaction_comment","premium":false}`))
	req.Header.Set("X-Internal-Job-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeEnvelope[scoreResultDTO](t, rec).Data; got.Delta != 3 || got.Total != 3 {
		t.Fatalf("expected delta 3 total 3, got %+v", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/score-events", strings.NewReader(`{"user_id":"carol","action":"TELEPORT"}`))
	req.Header.Set("X-Internal-Job-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/users/me/score", "token-carol", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeEnvelope[scoreSummaryDTO](t, rec).Data; got.CumulativePoints != 3 || got.Level != 1 {
		t.Fatalf("expected 3 points at level 1, got %+v", got)
	}
}

func TestHandler_RunExpireBattlesJob(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/battles/entries", "token-alice", `{"content":"a"}`)
	waiting := decodeEnvelope[battleDTO](t, rec).Data

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/expire-battles", strings.NewReader(`{"now":"2100-01-01T00:00:00Z"}`))
	req.Header.Set("X-Internal-Job-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope[expireBattlesDTO](t, rec).Data
	if got.Count != 1 || got.ExpiredBattleIDs[0] != waiting.ID {
		t.Fatalf("expected %s to expire, got %+v", waiting.ID, got)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/expire-battles", nil)
	req.Header.Set("X-Internal-Job-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected empty body to be accepted, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeEnvelope[expireBattlesDTO](t, rec).Data; got.Count != 0 {
		t.Fatalf("expected nothing left to expire, got %+v", got)
	}
}

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
