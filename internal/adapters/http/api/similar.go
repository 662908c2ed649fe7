package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/lookalike/internal/app"
	"github.com/okian/lookalike/internal/domain/types"
	"github.com/okian/lookalike/pkg/logger"
)

const maxSimilarBody = 64 << 10

var (
	errMissingPlayer = errors.New("missing player")
	errInvalidLimit  = errors.New("limit must be a positive integer")
)

// SimilarDependencies defines the interface for similarity queries.
type SimilarDependencies interface {
	Similar(ctx context.Context, target string, q service.Query) (service.Result, error)
}

// SimilarHandler handles similarity requests.
type SimilarHandler struct {
	deps     SimilarDependencies
	defaults Defaults
}

// NewSimilarHandler creates a new similarity handler.
func NewSimilarHandler(deps SimilarDependencies, defaults Defaults) *SimilarHandler {
	return &SimilarHandler{deps: deps, defaults: defaults}
}

// similarRequest is the body of POST /similar. Omitted fields take the
// server defaults; an explicit empty league list is rejected downstream.
type similarRequest struct {
	Player   string   `json:"player"`
	MaxAge   *int     `json:"max_age"`
	Leagues  []string `json:"leagues"`
	MaxValue *float64 `json:"max_value"`
	MaxWage  *float64 `json:"max_wage"`
	K        *int     `json:"k"`
}

func (req similarRequest) validate() error {
	if strings.TrimSpace(req.Player) == "" {
		return errMissingPlayer
	}
	return nil
}

func (req similarRequest) query(d Defaults) service.Query {
	q := d.query()
	if req.MaxAge != nil {
		q.MaxAge = *req.MaxAge
	}
	if req.Leagues != nil {
		q.Leagues = req.Leagues
	}
	if req.MaxValue != nil {
		q.MaxValue = *req.MaxValue
	}
	if req.MaxWage != nil {
		q.MaxWage = *req.MaxWage
	}
	if req.K != nil {
		q.K = *req.K
	}
	return q
}

// HandlePostSimilar handles POST /similar requests.
func (h *SimilarHandler) HandlePostSimilar(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_similar"
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req similarRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSimilarBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	q := req.query(h.defaults)
	res, err := h.deps.Similar(r.Context(), req.Player, q)
	if err != nil {
		writeUpstreamError(w, r, Wrap(op, err))
		return
	}

	RequestLogger(r.Context()).Info(r.Context(), "similar players served",
		logger.String("target", res.Target.Name),
		logger.Int("k", q.K),
		logger.Int("matches", len(res.Matches)))

	writeJSON(w, http.StatusOK, types.SimilarResponse{
		Target:  types.NewPlayerView(res.Target, false),
		Matches: types.NewMatches(res.Matches, res.Distances),
	})
}
