package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestWriteError_HidesUncategorizedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("pq: connection refused to 10.0.0.7"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Message != internalErrorMessage {
		t.Fatalf("expected generic message, got %+v", body.Error)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Reason != "internalError" {
		t.Fatalf("unexpected error items: %+v", body.Error.Errors)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
		wantReason string
	}{
		{name: "invalid input", err: fmt.Errorf("%w: x", usecase.ErrInvalidInput), wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT", wantReason: "invalidInput"},
		{name: "content too long", err: fmt.Errorf("%w: %w", usecase.ErrInvalidInput, battle.ErrContentTooLong), wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT", wantReason: "contentTooLong"},
		{name: "invalid choice", err: fmt.Errorf("%w: %w", usecase.ErrInvalidInput, battle.ErrInvalidChoice), wantCode: http.StatusBadRequest, wantStatus: "INVALID_ARGUMENT", wantReason: "invalidChoice"},
		{name: "not found", err: fmt.Errorf("%w: x", usecase.ErrNotFound), wantCode: http.StatusNotFound, wantStatus: "NOT_FOUND", wantReason: "notFound"},
		{name: "already voted", err: fmt.Errorf("%w: %w", usecase.ErrConflict, battle.ErrAlreadyVoted), wantCode: http.StatusConflict, wantStatus: "ALREADY_EXISTS", wantReason: "alreadyVoted"},
		{name: "duplicate entry", err: fmt.Errorf("%w: %w", usecase.ErrConflict, battle.ErrDuplicateEntry), wantCode: http.StatusConflict, wantStatus: "ALREADY_EXISTS", wantReason: "openEntryExists"},
		{name: "self vote", err: fmt.Errorf("%w: %w", usecase.ErrConflict, battle.ErrSelfVote), wantCode: http.StatusConflict, wantStatus: "ABORTED", wantReason: "selfVote"},
		{name: "voting closed", err: fmt.Errorf("%w: %w", usecase.ErrConflict, battle.ErrBattleNotActive), wantCode: http.StatusConflict, wantStatus: "ABORTED", wantReason: "battleClosed"},
		{name: "plain conflict", err: fmt.Errorf("%w: x", usecase.ErrConflict), wantCode: http.StatusConflict, wantStatus: "ABORTED", wantReason: "conflict"},
		{name: "invalid state", err: fmt.Errorf("%w: %w", usecase.ErrInvalidState, battle.ErrNotCancellable), wantCode: http.StatusConflict, wantStatus: "FAILED_PRECONDITION", wantReason: "battleNotCancellable"},
		{name: "not owner", err: fmt.Errorf("%w: %w", usecase.ErrUnauthorized, battle.ErrNotOwner), wantCode: http.StatusUnauthorized, wantStatus: "UNAUTHENTICATED", wantReason: "notBattleOwner"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, wantCode: http.StatusUnauthorized, wantStatus: "UNAUTHENTICATED", wantReason: "unauthorized"},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, wantCode: http.StatusServiceUnavailable, wantStatus: "UNAVAILABLE", wantReason: "dependencyUnavailable"},
		{name: "uncategorized battle error", err: battle.ErrSelfVote, wantCode: http.StatusInternalServerError, wantStatus: "INTERNAL", wantReason: "internalError"},
		{name: "unknown", err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError, wantStatus: "INTERNAL", wantReason: "internalError"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.wantCode || got.Status != tc.wantStatus || got.Reason != tc.wantReason {
				t.Fatalf("mapError() = %d %s %s, want %d %s %s", got.HTTPStatus, got.Status, got.Reason, tc.wantCode, tc.wantStatus, tc.wantReason)
			}
		})
	}
}
