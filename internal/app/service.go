// Package service wires ingestion, the catalog store and sessions into the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/shelf/internal/adapters/repository"
	"github.com/okian/shelf/internal/adapters/sheets"
	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/internal/domain/session"
	"github.com/okian/shelf/pkg/logger"
)

const defaultMaxSessions = 10_000

// Loader produces the catalog. It must not fail.
type Loader interface {
	Load(ctx context.Context) sheets.Result
}

// Service owns the one-shot catalog load and the session registry.
type Service struct {
	mu sync.RWMutex

	loader      Loader
	store       *repository.SnapshotStore
	sessions    *session.Registry
	maxSessions int

	started    bool
	startedAt  time.Time
	cancelLoad context.CancelFunc
	loadDone   chan struct{}

	logger logger.Logger
}

// New constructs a Service. Without WithLoader it serves the bundled
// snapshot.
func New(opts ...Option) *Service {
	s := &Service{
		maxSessions: defaultMaxSessions,
		store:       repository.NewSnapshotStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.loader == nil {
		s.loader = sheets.NewLoader(sheets.WithLogger(s.logger.Named("sheets")))
	}
	s.sessions = session.NewRegistry(
		session.WithMaxSessions(s.maxSessions),
		session.WithLogger(s.logger.Named("sessions")),
	)
	return s
}

// Start issues the catalog load in the background and returns at once.
// The load ignores cancellation of ctx; Stop cancels it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.loadDone != nil {
		return ErrStopped
	}

	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelLoad = cancel
	s.loadDone = make(chan struct{})
	s.started = true
	s.startedAt = time.Now()

	s.logger.Info(ctx, "starting catalog service", logger.Int("max_sessions", s.maxSessions))
	go s.load(loadCtx)
	return nil
}

func (s *Service) load(ctx context.Context) {
	defer close(s.loadDone)

	res := s.loader.Load(ctx)
	version, err := s.store.Publish(ctx, res.Catalog())
	if err != nil {
		s.logger.Error(ctx, "publish catalog", logger.Error(err))
		return
	}
	s.logger.Info(ctx, "catalog ready",
		logger.String("source", string(res.Source)),
		logger.Int("games", len(res.Games)),
		logger.Int("version", int(version)),
	)
	if res.Advisory != "" {
		s.logger.Warn(ctx, "catalog advisory", logger.String("advisory", res.Advisory))
	}
}

// Stop cancels an in-flight load, waits for it and ends every session.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping catalog service...")

	s.cancelLoad()
	<-s.loadDone
	s.sessions.Close()

	s.started = false
	s.logger.Info(context.Background(), "catalog service stopped")
}

// Ready is closed once the catalog is published.
func (s *Service) Ready() <-chan struct{} { return s.store.Ready() }

// Catalog returns the published catalog and its version.
func (s *Service) Catalog(ctx context.Context) (*model.Catalog, uint64, error) {
	c, v, err := s.store.Current(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: %w", err)
	}
	return c, v, nil
}

// WaitCatalog blocks until the catalog is published or ctx is done.
func (s *Service) WaitCatalog(ctx context.Context) (*model.Catalog, uint64, error) {
	return s.store.Wait(ctx)
}

// CreateSession starts a session at the default state.
func (s *Service) CreateSession(ctx context.Context) *session.Session {
	return s.sessions.Create(ctx)
}

// Session looks up a live session.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.sessions.Get(ctx, id)
}

// DeleteSession ends a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"ready":    false,
		"sessions": s.sessions.Len(),
	}
	if s.started {
		stats["uptime_seconds"] = int(time.Since(s.startedAt).Seconds())
	}

	c, v, err := s.store.Current(context.Background())
	if errors.Is(err, repository.ErrNotReady) {
		return stats
	}
	meta := c.Meta()
	stats["ready"] = true
	stats["version"] = v
	stats["source"] = string(meta.Source)
	stats["games"] = c.Len()
	stats["categories"] = len(c.CategoryNames())
	stats["loaded_at"] = meta.LoadedAt
	if meta.Advisory != "" {
		stats["advisory"] = meta.Advisory
	}
	return stats
}
