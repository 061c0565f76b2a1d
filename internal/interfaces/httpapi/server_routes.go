package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons", handler.ListSeasons)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons/{season}/table", handler.GetLeagueTable)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons/{season}/staleness", handler.GetStaleness)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons/{season}/teams", handler.GetLeagueTeamData)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons/{season}/positions", handler.GetPositionTimeline)
	mux.HandleFunc("GET /v1/teams/{teamID}/seasons/{season}", handler.GetTeamSummary)
	mux.HandleFunc("GET /v1/teams/{teamID}/seasons/{season}/points-series", handler.GetTeamPointsSeries)
	mux.HandleFunc("GET /v1/head-to-head", handler.GetHeadToHead)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncJob)))
	mux.Handle("POST /v1/internal/jobs/resync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResyncJob)))
}
