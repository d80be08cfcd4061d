package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/shelf/internal/domain/filter"
	"github.com/okian/shelf/internal/domain/model"
)

// Query parameters accepted by GET /api/games, mapped to the intent that
// applies each one.
var queryIntents = []struct {
	param string
	kind  filter.Kind
}{
	{"search", filter.KindSetSearch},
	{"playtime", filter.KindSetPlaytime},
	{"players", filter.KindSetPlayerCount},
	{"okg", filter.KindSetProvenance},
	{"coop", filter.KindSetCoopMode},
	{"sort", filter.KindSetSortKey},
	{"dir", filter.KindSetSortDirection},
}

// CatalogHandler serves stateless reads of the loaded catalog.
type CatalogHandler struct {
	deps Dependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps Dependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type metaView struct {
	Source   model.Source `json:"source"`
	Advisory string       `json:"advisory,omitempty"`
	LoadedAt time.Time    `json:"loaded_at"`
	Version  uint64       `json:"version"`
}

type catalogResponse struct {
	Meta       metaView         `json:"meta"`
	Games      []model.Game     `json:"games"`
	Categories []model.Category `json:"categories"`
}

type gamesResponse struct {
	State  filter.State  `json:"state"`
	Active filter.Active `json:"active"`
	Count  int           `json:"count"`
	Games  []model.Game  `json:"games"`
}

type categoriesResponse struct {
	Categories   []model.Category  `json:"categories"`
	Names        []string          `json:"names"`
	Descriptions map[string]string `json:"descriptions"`
}

func newMetaView(c *model.Catalog, version uint64) metaView {
	m := c.Meta()
	return metaView{Source: m.Source, Advisory: m.Advisory, LoadedAt: m.LoadedAt, Version: version}
}

// HandleCatalog handles GET /api/catalog.
func (h *CatalogHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	c, version, err := h.deps.Catalog(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Meta:       newMetaView(c, version),
		Games:      c.Games(),
		Categories: c.Categories(),
	})
}

// HandleGames handles GET /api/games. The query string describes a filter
// state; nothing is stored between requests.
func (h *CatalogHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	state, err := stateFromQuery(r.URL.Query())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	c, _, err := h.deps.Catalog(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGamesResponse(state, filter.ComputeVisible(c.Games(), state)))
}

// HandleGame handles GET /api/games/{name}.
func (h *CatalogHandler) HandleGame(w http.ResponseWriter, r *http.Request) {
	c, _, err := h.deps.Catalog(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	g, ok := c.Game(name)
	if !ok {
		writeDomainError(w, fmt.Errorf("%w: %q", ErrGameNotFound, name))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleCategories handles GET /api/categories.
func (h *CatalogHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	c, _, err := h.deps.Catalog(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories:   c.Categories(),
		Names:        c.CategoryNames(),
		Descriptions: c.CategoryDescriptions(),
	})
}

func newGamesResponse(state filter.State, games []model.Game) gamesResponse {
	if games == nil {
		games = []model.Game{}
	}
	return gamesResponse{State: state, Active: state.Active(), Count: len(games), Games: games}
}

// stateFromQuery folds query parameters over the default state. Repeated
// category parameters are combined; a category given twice counts once.
func stateFromQuery(q url.Values) (filter.State, error) {
	var intents []filter.Intent
	for _, c := range q["category"] {
		i, err := filter.Decode(string(filter.KindAddCategory), c)
		if err != nil {
			return filter.State{}, err
		}
		intents = append(intents, i)
	}
	for _, qi := range queryIntents {
		if !q.Has(qi.param) {
			continue
		}
		i, err := filter.Decode(string(qi.kind), q.Get(qi.param))
		if err != nil {
			return filter.State{}, err
		}
		intents = append(intents, i)
	}
	return filter.ApplyAll(filter.Default(), intents...), nil
}
