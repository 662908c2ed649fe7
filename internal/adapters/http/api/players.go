package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/lookalike/internal/domain/model"
	"github.com/okian/lookalike/internal/domain/types"
)

const defaultListLimit = 50

// PlayersDependencies defines the interface for player lookups.
type PlayersDependencies interface {
	Player(ctx context.Context, name string) (model.Player, error)
	Names(ctx context.Context, prefix string, limit int) []string
}

// PlayersHandler handles player lookup requests.
type PlayersHandler struct {
	deps     PlayersDependencies
	maxLimit int
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies, maxLimit int) *PlayersHandler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxListLimit
	}
	return &PlayersHandler{deps: deps, maxLimit: maxLimit}
}

type namesResponse struct {
	Names []string `json:"names"`
}

// HandleListPlayers handles GET /players?prefix=P&limit=N requests.
func (h *PlayersHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errInvalidLimit))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	names := h.deps.Names(r.Context(), r.URL.Query().Get("prefix"), limit)
	writeJSON(w, http.StatusOK, namesResponse{Names: names})
}

// HandleGetPlayer handles GET /players/{name} requests.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/players/")
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	p, err := h.deps.Player(r.Context(), name)
	if err != nil {
		writeUpstreamError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewPlayerView(p, true))
}
