package api

import (
	"context"
	"net/http"
)

// LeaguesDependencies defines the interface for league listings.
type LeaguesDependencies interface {
	Leagues(ctx context.Context) []string
}

// LeaguesHandler handles league listing requests.
type LeaguesHandler struct {
	deps LeaguesDependencies
}

// NewLeaguesHandler creates a new leagues handler.
func NewLeaguesHandler(deps LeaguesDependencies) *LeaguesHandler {
	return &LeaguesHandler{deps: deps}
}

type leaguesResponse struct {
	Leagues []string `json:"leagues"`
}

// HandleGetLeagues handles GET /leagues requests.
func (h *LeaguesHandler) HandleGetLeagues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	leagues := h.deps.Leagues(r.Context())
	if leagues == nil {
		leagues = []string{}
	}
	writeJSON(w, http.StatusOK, leaguesResponse{Leagues: leagues})
}
