package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lookalike/internal/adapters/http/api"
	repository "github.com/okian/lookalike/internal/adapters/repository"
	service "github.com/okian/lookalike/internal/app"
	"github.com/okian/lookalike/internal/config"
	"github.com/okian/lookalike/internal/domain/eligibility"
	"github.com/okian/lookalike/internal/domain/model"
	"github.com/okian/lookalike/internal/domain/types"
	"github.com/okian/lookalike/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func vec(x float64) model.Vector {
	v := make(model.Vector, model.AttributeCount)
	for i := range v {
		v[i] = x
	}
	return v
}

func samplePlayer(name string, attr float64) model.Player {
	return model.Player{
		Name:       name,
		Age:        22,
		League:     "Italian Serie A",
		Positions:  []model.Position{model.ST},
		Value:      1e6,
		Wage:       1e4,
		Contract:   "2024",
		Attributes: vec(attr),
	}
}

// Mock implementations for testing
type mockDependencies struct {
	players    map[string]model.Player
	names      []string
	leagues    []string
	similar    service.Result
	similarErr error

	lastTarget string
	lastQuery  service.Query
	lastPrefix string
	lastLimit  int
}

func (m *mockDependencies) Similar(ctx context.Context, target string, q service.Query) (service.Result, error) {
	m.lastTarget, m.lastQuery = target, q
	if m.similarErr != nil {
		return service.Result{}, m.similarErr
	}
	return m.similar, nil
}

func (m *mockDependencies) Player(ctx context.Context, name string) (model.Player, error) {
	p, ok := m.players[name]
	if !ok {
		return model.Player{}, fmt.Errorf("%w: %q", repository.ErrNotFound, name)
	}
	return p, nil
}

func (m *mockDependencies) Names(ctx context.Context, prefix string, limit int) []string {
	m.lastPrefix, m.lastLimit = prefix, limit
	if limit < len(m.names) {
		return m.names[:limit]
	}
	return m.names
}

func (m *mockDependencies) Leagues(ctx context.Context) []string {
	return m.leagues
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	if m.stats == nil {
		return map[string]interface{}{}
	}
	return m.stats
}

func newMockDeps() *mockDependencies {
	return &mockDependencies{
		players: map[string]model.Player{"Dusan Vlahovic": samplePlayer("Dusan Vlahovic", 70)},
		names:   []string{"Dusan Vlahovic", "Duvan Zapata"},
		leagues: []string{"Italian Serie A"},
		similar: service.Result{
			Target:    samplePlayer("Dusan Vlahovic", 70),
			Matches:   []model.Player{samplePlayer("Duvan Zapata", 69), samplePlayer("Andrea Belotti", 66)},
			Distances: []float64{5.830951894845301, 23.323807579381203},
		},
	}
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newMockDeps()
		server := api.NewServer(deps, &mockStatsProvider{})
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then health endpoint should be accessible", func() {
				So(serve(mux, "GET", "/healthz", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				So(serve(mux, "GET", "/stats", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And players endpoints should be accessible", func() {
				So(serve(mux, "GET", "/players?prefix=du", "").Code, ShouldEqual, http.StatusOK)
				So(serve(mux, "GET", "/players/Dusan%20Vlahovic", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And leagues endpoint should be accessible", func() {
				So(serve(mux, "GET", "/leagues", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("And similar endpoint should be accessible", func() {
				So(serve(mux, "POST", "/similar", `{"player":"Dusan Vlahovic"}`).Code, ShouldEqual, http.StatusOK)
			})

			Convey("And unknown paths should return 404", func() {
				So(serve(mux, "GET", "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And every response should carry a request id", func() {
				w := serve(mux, "GET", "/leagues", "")
				So(w.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			})
		})
	})
}

func TestSimilarHandler_HandlePostSimilar(t *testing.T) {
	Convey("Given a similar handler", t, func() {
		deps := newMockDeps()
		defaults := api.DefaultQuery()
		handler := api.NewSimilarHandler(deps, defaults)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/similar", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.HandlePostSimilar(w, req)
			return w
		}

		Convey("When posting only the player", func() {
			w := post(`{"player":"Dusan Vlahovic"}`)

			Convey("Then the defaults are used and the ranking is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastTarget, ShouldEqual, "Dusan Vlahovic")
				So(deps.lastQuery.K, ShouldEqual, defaults.K)
				So(deps.lastQuery.MaxAge, ShouldEqual, defaults.MaxAge)
				So(deps.lastQuery.Leagues, ShouldResemble, defaults.Leagues)

				var resp types.SimilarResponse
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Target.Name, ShouldEqual, "Dusan Vlahovic")
				So(resp.Matches, ShouldHaveLength, 2)
				So(resp.Matches[0].Rank, ShouldEqual, 1)
				So(resp.Matches[0].Player.Name, ShouldEqual, "Duvan Zapata")
				So(resp.Matches[1].Distance, ShouldAlmostEqual, 23.3238, 0.001)
			})
		})

		Convey("When posting explicit constraints", func() {
			w := post(`{"player":"Dusan Vlahovic","max_age":25,"leagues":["All"],"max_value":0,"max_wage":1000,"k":3}`)

			Convey("Then they override the defaults, zero values included", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldResemble, service.Query{MaxAge: 25, Leagues: []string{"All"}, MaxValue: 0, MaxWage: 1000, K: 3})
			})
		})

		Convey("When the player is missing", func() {
			w := post(`{"k":3}`)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing player")
			})
		})

		Convey("When the body has unknown fields or is malformed", func() {
			unknown := post(`{"player":"x","fee":1}`)
			broken := post(`{"player":`)

			Convey("Then it should return 400", func() {
				So(unknown.Code, ShouldEqual, http.StatusBadRequest)
				So(broken.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the service rejects the query", func() {
			deps.similarErr = eligibility.NewValidationError("k", "must be between 0 and 20")
			w := post(`{"player":"Dusan Vlahovic","k":99}`)

			Convey("Then it should return 400 with a JSON error body", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp map[string]string
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "invalid_query")
				So(resp["message"], ShouldContainSubstring, "k")
			})
		})

		Convey("When the target is unknown", func() {
			deps.similarErr = fmt.Errorf("%w: %q", repository.ErrNotFound, "Nobody")
			w := post(`{"player":"Nobody"}`)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.similarErr = errors.New("index exploded")
			w := post(`{"player":"Dusan Vlahovic"}`)

			Convey("Then it should return 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the method is not POST", func() {
			req := httptest.NewRequest("GET", "/similar", nil)
			w := httptest.NewRecorder()
			handler.HandlePostSimilar(w, req)

			Convey("Then it should return 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestPlayersHandler(t *testing.T) {
	Convey("Given a players handler", t, func() {
		deps := newMockDeps()
		handler := api.NewPlayersHandler(deps, 100)

		Convey("When listing without a limit", func() {
			req := httptest.NewRequest("GET", "/players?prefix=Du", nil)
			w := httptest.NewRecorder()
			handler.HandleListPlayers(w, req)

			Convey("Then the default limit and prefix are forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPrefix, ShouldEqual, "Du")
				So(deps.lastLimit, ShouldEqual, 50)
				So(w.Body.String(), ShouldContainSubstring, `"names":["Dusan Vlahovic","Duvan Zapata"]`)
			})
		})

		Convey("When the limit is invalid or too large", func() {
			bad := httptest.NewRecorder()
			handler.HandleListPlayers(bad, httptest.NewRequest("GET", "/players?limit=abc", nil))
			big := httptest.NewRecorder()
			handler.HandleListPlayers(big, httptest.NewRequest("GET", "/players?limit=101", nil))

			Convey("Then it should return 400", func() {
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(big.Code, ShouldEqual, http.StatusBadRequest)
				So(big.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When fetching a known player", func() {
			req := httptest.NewRequest("GET", "/players/Dusan%20Vlahovic", nil)
			w := httptest.NewRecorder()
			handler.HandleGetPlayer(w, req)

			Convey("Then the player with attributes is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.PlayerView
				So(json.NewDecoder(w.Body).Decode(&view), ShouldBeNil)
				So(view.Name, ShouldEqual, "Dusan Vlahovic")
				So(view.Attributes, ShouldHaveLength, model.AttributeCount)
			})
		})

		Convey("When fetching an unknown player", func() {
			req := httptest.NewRequest("GET", "/players/Nobody", nil)
			w := httptest.NewRecorder()
			handler.HandleGetPlayer(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestLeaguesHandler(t *testing.T) {
	Convey("Given a leagues handler with an empty dataset", t, func() {
		handler := api.NewLeaguesHandler(&mockDependencies{})
		w := httptest.NewRecorder()
		handler.HandleGetLeagues(w, httptest.NewRequest("GET", "/leagues", nil))

		Convey("Then an empty list is returned", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"leagues":[]`)
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it should expose the metrics registry", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "lookalike_")
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"players": 18278,
				"queries": 12,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response["players"], ShouldEqual, 18278)
				So(response["queries"], ShouldEqual, 12)
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a handler behind the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = api.RequestID(r.Context())
		}), logger.Named("test"))

		Convey("When the caller supplies an id", func() {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set(api.HeaderRequestID, "req-42")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is propagated and echoed", func() {
				So(seen, ShouldEqual, "req-42")
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "req-42")
			})
		})

		Convey("When no id is supplied", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

			Convey("Then a uuid is generated", func() {
				So(seen, ShouldHaveLength, 36)
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, seen)
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given operation errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes are both reachable", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")

			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(errors.Is(api.Wrap("api.op", cause), cause), ShouldBeTrue)
		})
	})
}

func TestEndToEnd(t *testing.T) {
	Convey("Given the API wired to a real service", t, func() {
		svc := service.New(service.WithIndexKind(service.IndexExact))
		pool := []model.Player{samplePlayer("A", 50), samplePlayer("B", 40), samplePlayer("C", 49)}
		So(svc.Reload(context.Background(), pool), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		Convey("When asking for players similar to A", func() {
			w := serve(mux, "POST", "/similar", `{"player":"A","leagues":["Italian Serie A"],"k":5}`)

			Convey("Then the closest player ranks first", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp types.SimilarResponse
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Matches, ShouldHaveLength, 2)
				So(resp.Matches[0].Player.Name, ShouldEqual, "C")
				So(resp.Matches[1].Player.Name, ShouldEqual, "B")
			})
		})

		Convey("When k exceeds the service maximum", func() {
			w := serve(mux, "POST", "/similar", `{"player":"A","k":500}`)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestDefaultsFromConfig(t *testing.T) {
	Convey("Given a configuration", t, func() {
		cfg := config.New()

		Convey("When the stock defaults are taken", func() {
			d := api.DefaultQuery()

			Convey("Then they follow the configuration defaults", func() {
				So(d.MaxAge, ShouldEqual, cfg.DefaultMaxAge)
				So(d.Leagues, ShouldResemble, cfg.DefaultLeagues)
				So(d.MaxValue, ShouldEqual, cfg.DefaultMaxValue)
				So(d.MaxWage, ShouldEqual, cfg.DefaultMaxWage)
				So(d.K, ShouldEqual, cfg.DefaultK)
			})
		})

		Convey("When the configuration overrides them", func() {
			cfg.DefaultMaxAge = 24
			cfg.DefaultLeagues = []string{"Italian Serie A"}
			cfg.DefaultMaxValue = 1e6
			cfg.DefaultMaxWage = 9000
			cfg.DefaultK = 3
			d := api.DefaultsFromConfig(cfg)

			Convey("Then the request defaults carry the overrides", func() {
				So(d, ShouldResemble, api.Defaults{
					MaxAge:   24,
					Leagues:  []string{"Italian Serie A"},
					MaxValue: 1e6,
					MaxWage:  9000,
					K:        3,
				})
			})
		})
	})
}
