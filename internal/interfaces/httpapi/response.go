package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "battle-arena"

	internalErrorMessage = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

// errorCategories map the usecase sentinels, first match wins.
var errorCategories = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "ABORTED"}},
	{usecase.ErrInvalidState, mappedError{http.StatusConflict, "failedPrecondition", "FAILED_PRECONDITION"}},
}

// battleReasons narrow the reason of a categorized battle error. A non-empty
// status replaces the category status.
var battleReasons = []struct {
	target error
	reason string
	status string
}{
	{battle.ErrAlreadyVoted, "alreadyVoted", "ALREADY_EXISTS"},
	{battle.ErrDuplicateEntry, "openEntryExists", "ALREADY_EXISTS"},
	{battle.ErrSelfVote, "selfVote", ""},
	{battle.ErrInvalidChoice, "invalidChoice", ""},
	{battle.ErrBattleNotActive, "battleClosed", ""},
	{battle.ErrNotOwner, "notBattleOwner", ""},
	{battle.ErrNotCancellable, "battleNotCancellable", ""},
	{battle.ErrNotFinishable, "battleNotFinishable", ""},
	{battle.ErrContentEmpty, "contentEmpty", ""},
	{battle.ErrContentTooLong, "contentTooLong", ""},
	{battle.ErrImageRefTooLong, "imageRefTooLong", ""},
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError maps err onto the envelope. Uncategorized errors are reported
// as INTERNAL without their text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(ctx, err)
	message := err.Error()
	if mapped == internalError {
		message = internalErrorMessage
	}
	writeErrorBody(ctx, w, mapped, message)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorBody(ctx, w, internalError, internalErrorMessage)
}

func writeErrorBody(ctx context.Context, w http.ResponseWriter, mapped mappedError, message string) {
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func mapError(_ context.Context, err error) mappedError {
	for _, category := range errorCategories {
		if !errors.Is(err, category.target) {
			continue
		}
		mapped := category.mapped
		for _, refined := range battleReasons {
			if errors.Is(err, refined.target) {
				mapped.Reason = refined.reason
				if refined.status != "" {
					mapped.Status = refined.status
				}
				break
			}
		}
		return mapped
	}
	return internalError
}
