package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicBattleRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/battles/active", handler.ListActiveBattles)
	mux.HandleFunc("GET /v1/battles/{battleID}", handler.GetBattle)
	mux.HandleFunc("GET /v1/users/{userID}/battle-stats", handler.GetUserBattleStats)
	mux.HandleFunc("GET /v1/users/{userID}/battles", handler.GetUserBattleHistory)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedBattleRoutes(mux, handler, verifier)
	registerAuthorizedVoteRoutes(mux, handler, verifier)
	registerAuthorizedScoreRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/expire-battles", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpireBattlesJob)))
	mux.Handle("POST /v1/internal/score-events", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestScoreEvent)))
}

func registerAuthorizedBattleRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/battles/entries", RequireAuth(verifier, http.HandlerFunc(handler.SubmitEntry)))
	mux.Handle("DELETE /v1/battles/{battleID}", RequireAuth(verifier, http.HandlerFunc(handler.WithdrawBattle)))
	mux.Handle("GET /v1/battles/me/active", RequireAuth(verifier, http.HandlerFunc(handler.GetMyActiveBattle)))
}

func registerAuthorizedVoteRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/battles/{battleID}/can-vote", RequireAuth(verifier, http.HandlerFunc(handler.CanVote)))
	mux.Handle("POST /v1/battles/{battleID}/votes", RequireAuth(verifier, http.HandlerFunc(handler.CastVote)))
}

func registerAuthorizedScoreRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/users/me/score", RequireAuth(verifier, http.HandlerFunc(handler.GetMyScore)))
}
