package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/battle-arena/internal/usecase"
)

func (h *Handler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitEntry")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitEntryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	premium := principal.Premium
	item, err := h.battleService.SubmitEntry(ctx, usecase.SubmitEntryInput{
		AuthorID: principal.UserID,
		Content:  req.Content,
		ImageRef: req.ImageRef,
		Premium:  &premium,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit entry failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, battleToDTO(item))
}

func (h *Handler) WithdrawBattle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.WithdrawBattle")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	battleID := strings.TrimSpace(r.PathValue("battleID"))
	annotateBattle(ctx, span, battleID)
	if err := h.battleService.Withdraw(ctx, principal.UserID, battleID); err != nil {
		h.logger.WarnContext(ctx, "withdraw battle failed", "user_id", principal.UserID, "battle_id", battleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, withdrawBattleDTO{BattleID: battleID, Withdrawn: true})
}

func (h *Handler) GetMyActiveBattle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyActiveBattle")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.battleService.GetActiveBattle(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, battleToDTO(item))
}

func (h *Handler) ListActiveBattles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListActiveBattles")
	defer span.End()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.battleService.ListActiveBattles(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list active battles failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, battlesToDTO(items))
}

func (h *Handler) GetBattle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBattle")
	defer span.End()

	battleID := strings.TrimSpace(r.PathValue("battleID"))
	annotateBattle(ctx, span, battleID)
	item, err := h.battleService.GetBattle(ctx, battleID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, battleToDTO(item))
}

func (h *Handler) CanVote(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CanVote")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	battleID := strings.TrimSpace(r.PathValue("battleID"))
	annotateBattle(ctx, span, battleID)
	allowed, err := h.voteService.CanVote(ctx, principal.UserID, battleID)
	if err != nil {
		h.logger.WarnContext(ctx, "can vote check failed", "user_id", principal.UserID, "battle_id", battleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, canVoteDTO{BattleID: battleID, CanVote: allowed})
}

func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CastVote")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req castVoteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	battleID := strings.TrimSpace(r.PathValue("battleID"))
	annotateBattle(ctx, span, battleID)
	premium := principal.Premium
	item, err := h.voteService.CastVote(ctx, usecase.CastVoteInput{
		VoterID:      principal.UserID,
		BattleID:     battleID,
		ChosenPostID: strings.TrimSpace(req.PostID),
		Premium:      &premium,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cast vote failed", "user_id", principal.UserID, "battle_id", battleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, battleToDTO(item))
}
