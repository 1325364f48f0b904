package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerRankingRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/rankings", handler.ListRankings)
	mux.HandleFunc("GET /v1/rankings/teams/{teamID}", handler.GetTeamRanking)
	mux.HandleFunc("GET /v1/rankings/weeks/{week}", handler.GetWeek)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/rankings/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecomputeRankings)))
}
