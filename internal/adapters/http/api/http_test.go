package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/shelf/internal/adapters/http/api"
	"github.com/okian/shelf/internal/adapters/sheets"
	service "github.com/okian/shelf/internal/app"
	"github.com/okian/shelf/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedLoader struct{}

func (fixedLoader) Load(context.Context) sheets.Result {
	return sheets.Result{
		Games: []model.Game{
			{Name: "Wingspan", Category: []string{"Strategy", "Engine Building"}, PlaytimeMinutes: 70, MinPlayers: 1, MaxPlayers: 5, SoldByOKG: true, ReplayabilityRank: model.NumericRank(2)},
			{Name: "Azul", Category: []string{"Abstract", "Family"}, PlaytimeMinutes: 30, MinPlayers: 2, MaxPlayers: 4, ReplayabilityRank: model.NumericRank(3)},
			{Name: "Spirit Island", Category: []string{"Strategy", "Cooperative"}, PlaytimeMinutes: 120, MinPlayers: 1, MaxPlayers: 4, Coop: true, ReplayabilityRank: model.NumericRank(1)},
			{Name: "Existence", Category: []string{"Party"}, PlaytimeMinutes: 20, MinPlayers: 2, MaxPlayers: 6},
		},
		Categories: []model.Category{
			{Name: "Strategy", Description: "Plan ahead."},
			{Name: "Party", Description: "Loud."},
		},
		Source:   model.SourceRemote,
		LoadedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

type stats struct{}

func (stats) GetStats() map[string]interface{} { return map[string]interface{}{"started": true} }

func newHandler(t *testing.T, start bool) http.Handler {
	t.Helper()
	svc := service.New(service.WithLoader(fixedLoader{}))
	t.Cleanup(svc.Stop)
	if start {
		if err := svc.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		select {
		case <-svc.Ready():
		case <-time.After(5 * time.Second):
			t.Fatal("catalog never became ready")
		}
	}
	return api.NewServer(svc, stats{}).Handler(context.Background())
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

type gamesBody struct {
	State struct {
		Categories []string `json:"categories"`
		SortKey    string   `json:"sort_by"`
	} `json:"state"`
	Active struct {
		Categories bool `json:"categories"`
	} `json:"active"`
	Count int `json:"count"`
	Games []struct {
		Name string `json:"name"`
	} `json:"games"`
}

func (g gamesBody) names() []string {
	out := make([]string, 0, len(g.Games))
	for _, x := range g.Games {
		out = append(out, x.Name)
	}
	return out
}

type sessionBody struct {
	ID    string `json:"id"`
	State struct {
		Categories []string `json:"categories"`
		Search     string   `json:"search"`
		SortDir    string   `json:"sort_direction"`
	} `json:"state"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestNotReady(t *testing.T) {
	Convey("Given a service whose catalog has not loaded", t, func() {
		h := newHandler(t, false)

		Convey("Then readiness and catalog reads report unavailable", func() {
			w := do(h, http.MethodGet, "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)

			w = do(h, http.MethodGet, "/api/games", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decode[errorBody](w).Code, ShouldEqual, "not_ready")
		})

		Convey("Then sessions can still be created", func() {
			w := do(h, http.MethodPost, "/api/sessions", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a ready server", t, func() {
		h := newHandler(t, true)

		Convey("Then readiness is reported", func() {
			w := do(h, http.MethodGet, "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ready")
		})

		Convey("Then metrics are served on /healthz", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats come from the provider", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](w)["started"], ShouldEqual, true)
		})
	})
}

func TestCatalogRoutes(t *testing.T) {
	Convey("Given a ready server", t, func() {
		h := newHandler(t, true)

		Convey("When the whole catalog is requested", func() {
			w := do(h, http.MethodGet, "/api/catalog", "")

			Convey("Then games, categories and metadata are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[struct {
					Meta struct {
						Source  string `json:"source"`
						Version uint64 `json:"version"`
					} `json:"meta"`
					Games      []json.RawMessage `json:"games"`
					Categories []json.RawMessage `json:"categories"`
				}](w)
				So(body.Meta.Source, ShouldEqual, "remote")
				So(body.Meta.Version, ShouldEqual, uint64(1))
				So(len(body.Games), ShouldEqual, 4)
				So(len(body.Categories), ShouldEqual, 2)
			})
		})

		Convey("When games are listed without a query", func() {
			body := decode[gamesBody](do(h, http.MethodGet, "/api/games", ""))

			Convey("Then every game is returned by name", func() {
				So(body.names(), ShouldResemble, []string{"Azul", "Existence", "Spirit Island", "Wingspan"})
				So(body.Count, ShouldEqual, 4)
				So(body.Active.Categories, ShouldBeFalse)
			})
		})

		Convey("When games are filtered by query", func() {
			w := do(h, http.MethodGet, "/api/games?category=Strategy&category=Strategy&sort=replayability&players=5%2B", "")
			body := decode[gamesBody](w)

			Convey("Then the criteria combine", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body.names(), ShouldResemble, []string{"Wingspan"})
				So(body.State.Categories, ShouldResemble, []string{"Strategy"})
				So(body.State.SortKey, ShouldEqual, "replayability")
				So(body.Active.Categories, ShouldBeTrue)
			})
		})

		Convey("When the same category is repeated with different spacing", func() {
			w := do(h, http.MethodGet, "/api/games?category=Strategy&category=%20Strategy&category=Strategy%20", "")
			body := decode[gamesBody](w)

			Convey("Then the category is still required", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body.State.Categories, ShouldResemble, []string{"Strategy"})
				So(body.names(), ShouldResemble, []string{"Spirit Island", "Wingspan"})
			})
		})

		Convey("When sorted by anything but name", func() {
			body := decode[gamesBody](do(h, http.MethodGet, "/api/games?sort=playtime&dir=desc", ""))

			Convey("Then Existence is left out", func() {
				So(body.names(), ShouldResemble, []string{"Spirit Island", "Wingspan", "Azul"})
			})
		})

		Convey("When a query value is invalid", func() {
			w := do(h, http.MethodGet, "/api/games?playtime=forever", "")

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "invalid_value")
			})
		})

		Convey("When one game is requested", func() {
			w := do(h, http.MethodGet, "/api/games/Spirit%20Island", "")
			missing := do(h, http.MethodGet, "/api/games/Monopoly", "")

			Convey("Then it is found by exact name", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"name":"Spirit Island"`)
				So(missing.Code, ShouldEqual, http.StatusNotFound)
				So(decode[errorBody](missing).Code, ShouldEqual, "game_not_found")
			})
		})

		Convey("When categories are requested", func() {
			body := decode[struct {
				Names        []string          `json:"names"`
				Descriptions map[string]string `json:"descriptions"`
			}](do(h, http.MethodGet, "/api/categories", ""))

			Convey("Then names and descriptions are returned", func() {
				So(body.Names, ShouldContain, "Strategy")
				So(body.Descriptions["Party"], ShouldEqual, "Loud.")
			})
		})
	})
}

func TestSessionRoutes(t *testing.T) {
	Convey("Given a ready server and a new session", t, func() {
		h := newHandler(t, true)
		w := do(h, http.MethodPost, "/api/sessions", "")
		So(w.Code, ShouldEqual, http.StatusCreated)
		created := decode[sessionBody](w)
		base := "/api/sessions/" + created.ID

		Convey("Then it starts from the default state", func() {
			So(created.ID, ShouldNotBeEmpty)
			So(w.Header().Get("Location"), ShouldEqual, base)
			So(created.State.Categories, ShouldBeEmpty)
			So(created.State.SortDir, ShouldEqual, "asc")
		})

		Convey("When intents are posted", func() {
			w := do(h, http.MethodPost, base+"/intents", `{"type":"toggle_category","value":"Strategy"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			w = do(h, http.MethodPost, base+"/intents", `{"intents":[{"type":"set_search","value":"wing"},{"type":"toggle_sort_direction"}]}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then the session state accumulates them", func() {
				got := decode[sessionBody](do(h, http.MethodGet, base, ""))
				So(got.State.Categories, ShouldResemble, []string{"Strategy"})
				So(got.State.Search, ShouldEqual, "wing")
				So(got.State.SortDir, ShouldEqual, "desc")
			})

			Convey("Then the session's games reflect the state", func() {
				body := decode[gamesBody](do(h, http.MethodGet, base+"/games", ""))
				So(body.names(), ShouldResemble, []string{"Wingspan"})
			})
		})

		Convey("When a batch contains a bad intent", func() {
			w := do(h, http.MethodPost, base+"/intents", `{"intents":[{"type":"toggle_category","value":"Party"},{"type":"shuffle"}]}`)

			Convey("Then nothing is applied", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "unknown_intent")
				got := decode[sessionBody](do(h, http.MethodGet, base, ""))
				So(got.State.Categories, ShouldBeEmpty)
			})
		})

		Convey("When the body is not JSON or empty", func() {
			So(do(h, http.MethodPost, base+"/intents", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, base+"/intents", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a category is jumped to", func() {
			_ = do(h, http.MethodPost, base+"/intents", `{"type":"toggle_category","value":"Family"}`)
			w := do(h, http.MethodPost, base+"/signals/category", `{"category":"Strategy"}`)

			Convey("Then only that category is selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[sessionBody](w).State.Categories, ShouldResemble, []string{"Strategy"})
			})

			Convey("Then a blank category is rejected", func() {
				So(do(h, http.MethodPost, base+"/signals/category", `{"category":" "}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session is deleted", func() {
			So(do(h, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNoContent)

			Convey("Then it is gone", func() {
				w := do(h, http.MethodGet, base, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode[errorBody](w).Code, ShouldEqual, "session_not_found")
				So(do(h, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
