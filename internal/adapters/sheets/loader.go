package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/pkg/logger"
	"github.com/okian/shelf/pkg/metrics"
)

// Advisory messages attached to fallback results.
const (
	AdvisoryFetchFailed = "Failed to load data. Showing the bundled catalog."
	AdvisoryEmpty       = "The catalog source returned no games. Showing the bundled catalog."
	AdvisoryUnavailable = "Failed to load data."
)

// Fetcher downloads the two CSV exports.
type Fetcher interface {
	FetchAll(ctx context.Context, gamesURL, categoriesURL string) (games, categories []byte, err error)
}

// Result is the outcome of one load. It is always structurally valid.
type Result struct {
	Games      []model.Game
	Categories []model.Category
	Source     model.Source
	Advisory   string
	LoadedAt   time.Time
}

// Catalog wraps the result in an immutable snapshot.
func (r Result) Catalog() *model.Catalog {
	return model.NewCatalog(r.Games, r.Categories, model.Meta{
		Source:   r.Source,
		Advisory: r.Advisory,
		LoadedAt: r.LoadedAt,
	})
}

// Loader applies the fallback policy: unconfigured sources, a failed
// fetch or zero valid game rows all resolve to the bundled snapshot.
type Loader struct {
	fetcher       Fetcher
	gamesURL      string
	categoriesURL string
	log           logger.Logger
	now           func() time.Time
}

// NewLoader creates a loader. Without WithURLs it always serves the
// bundled snapshot.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher: NewClient(),
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Configured reports whether both remote sources are set.
func (l *Loader) Configured() bool {
	return l.gamesURL != "" && l.categoriesURL != ""
}

// Load fetches and parses the catalog. It never fails; failures are
// logged and reported through Result.Advisory.
func (l *Loader) Load(ctx context.Context) Result {
	start := l.now()
	res := l.load(ctx)
	res.LoadedAt = l.now()

	elapsed := res.LoadedAt.Sub(start)
	metrics.RecordCatalogLoad(string(res.Source), float64(elapsed.Milliseconds()))
	metrics.UpdateCatalogSize(len(res.Games), len(res.Categories))
	l.log.Info(ctx, "catalog loaded",
		logger.String("source", string(res.Source)),
		logger.Int("games", len(res.Games)),
		logger.Int("categories", len(res.Categories)),
		logger.Bool("advisory", res.Advisory != ""),
		logger.Duration("elapsed", elapsed),
	)
	return res
}

func (l *Loader) load(ctx context.Context) Result {
	if !l.Configured() {
		l.log.Warn(ctx, "catalog sources not configured, using bundled snapshot",
			logger.Error(ErrNotConfigured))
		return l.fallback(ctx, "")
	}

	games, cats, err := l.remote(ctx)
	switch {
	case errors.Is(err, ErrNoRows):
		l.log.Warn(ctx, "remote catalog empty, using bundled snapshot")
		return l.fallback(ctx, AdvisoryEmpty)
	case err != nil:
		l.log.Error(ctx, "remote catalog load failed, using bundled snapshot", logger.Error(err))
		return l.fallback(ctx, AdvisoryFetchFailed)
	}
	return Result{Games: games, Categories: cats, Source: model.SourceRemote}
}

func (l *Loader) remote(ctx context.Context) ([]model.Game, []model.Category, error) {
	gamesCSV, categoriesCSV, err := l.fetcher.FetchAll(ctx, l.gamesURL, l.categoriesURL)
	if err != nil {
		return nil, nil, err
	}
	games, err := ParseGames(bytes.NewReader(gamesCSV))
	if err != nil {
		return nil, nil, err
	}
	if len(games) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoRows, l.gamesURL)
	}
	cats, err := ParseCategories(bytes.NewReader(categoriesCSV))
	if err != nil {
		return nil, nil, err
	}
	return games, cats, nil
}

func (l *Loader) fallback(ctx context.Context, advisory string) Result {
	games, cats, err := Snapshot()
	if err != nil {
		l.log.Error(ctx, "bundled snapshot unreadable", logger.Error(err))
		return Result{
			Games:      []model.Game{},
			Categories: []model.Category{},
			Source:     model.SourceFallback,
			Advisory:   AdvisoryUnavailable,
		}
	}
	return Result{Games: games, Categories: cats, Source: model.SourceFallback, Advisory: advisory}
}
