// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/lookalike/internal/app"
	"github.com/okian/lookalike/internal/domain/model"
	"github.com/okian/lookalike/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Similar ranks the players most similar to target.
	Similar(ctx context.Context, target string, q service.Query) (service.Result, error)

	// Read operations expose the loaded dataset.
	Player(ctx context.Context, name string) (model.Player, error)
	Names(ctx context.Context, prefix string, limit int) []string
	Leagues(ctx context.Context) []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	leaguesHandler *LeaguesHandler
	similarHandler *SimilarHandler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{defaults: DefaultQuery(), maxListLimit: defaultMaxListLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		playersHandler: NewPlayersHandler(deps, cfg.maxListLimit),
		leaguesHandler: NewLeaguesHandler(deps),
		similarHandler: NewSimilarHandler(deps, cfg.defaults),
		logger:         cfg.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.Handle("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/players", s.wrap(s.playersHandler.HandleListPlayers, "players"))
	mux.Handle("/players/", s.wrap(s.playersHandler.HandleGetPlayer, "player"))
	mux.Handle("/leagues", s.wrap(s.leaguesHandler.HandleGetLeagues, "leagues"))
	mux.Handle("/similar", s.wrap(s.similarHandler.HandlePostSimilar, "similar"))
	s.logger.Debug(ctx, "routes registered")
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint), s.logger)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError translates a service error into an HTTP response.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		RequestLogger(r.Context()).Error(r.Context(), "request failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}
