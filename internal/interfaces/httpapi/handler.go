package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/battle-arena/internal/domain/user"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

type Handler struct {
	battleService  *usecase.BattleService
	voteService    *usecase.VoteService
	scoringService *usecase.ScoringService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	battleService *usecase.BattleService,
	voteService *usecase.VoteService,
	scoringService *usecase.ScoringService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		battleService:  battleService,
		voteService:    voteService,
		scoringService: scoringService,
		logger:         logger.Named("httpapi"),
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON rejects unknown fields. An empty body is accepted when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}
