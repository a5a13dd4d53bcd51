package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/progress"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

// RunExpireBattlesJob lets an external scheduler drive the expiry sweep.
func (h *Handler) RunExpireBattlesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpireBattlesJob")
	defer span.End()

	var req internalExpireBattlesRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var now time.Time
	if raw := strings.TrimSpace(req.Now); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: now must be RFC3339: %v", usecase.ErrInvalidInput, err))
			return
		}
		now = parsed
	}

	ids, err := h.battleService.ExpireStaleBattles(ctx, now)
	if err != nil {
		h.logger.WarnContext(ctx, "run expire battles job failed", "expired", len(ids), "error", err)
		writeError(ctx, w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeSuccess(ctx, w, http.StatusOK, expireBattlesDTO{ExpiredBattleIDs: ids, Count: len(ids)})
}

// IngestScoreEvent applies score for actions that happen outside battles, such as reactions and daily streaks.
func (h *Handler) IngestScoreEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestScoreEvent")
	defer span.End()

	var req internalScoreEventRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kind, err := progress.ParseActionKind(req.Action)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.scoringService.ApplyScore(ctx, strings.TrimSpace(req.UserID), kind, progress.ScoreContext{
		Premium:  req.Premium,
		BattleID: strings.TrimSpace(req.BattleID),
		Reason:   strings.TrimSpace(req.Reason),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingest score event failed", "user_id", req.UserID, "action", req.Action, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreResultToDTO(result))
}
