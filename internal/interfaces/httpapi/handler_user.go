package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/battle-arena/internal/usecase"
)

func (h *Handler) GetUserBattleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserBattleStats")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	annotateUser(ctx, span, userID)
	stats, err := h.battleService.GetUserBattleStats(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user battle stats failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, battleStatsToDTO(stats))
}

func (h *Handler) GetUserBattleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserBattleHistory")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	annotateUser(ctx, span, userID)
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.battleService.GetUserBattleHistory(ctx, userID, usecase.HistoryPage{Limit: limit, Offset: offset})
	if err != nil {
		h.logger.WarnContext(ctx, "get user battle history failed", "user_id", userID, "limit", limit, "offset", offset, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, battlesToDTO(items))
}

func (h *Handler) GetMyScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyScore")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.scoringService.GetScore(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get score failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreSummaryToDTO(summary))
}
