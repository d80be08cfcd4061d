// Package session keeps per-user filter state and its memoized result.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/shelf/internal/adapters/mq/bus"
	"github.com/okian/shelf/internal/domain/filter"
	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/pkg/metrics"
)

// TopicCategorySelected names the jump-to-category signal.
const TopicCategorySelected = "category_selected"

// CategorySelected asks a session to show exactly one category.
type CategorySelected struct {
	Category string `json:"category"`
}

// Session owns one filter state. All mutation goes through Apply, which is
// serialized by the session mutex.
type Session struct {
	id        string
	createdAt time.Time

	mu    sync.Mutex
	state filter.State
	memo  memo

	signals     *bus.Bus[CategorySelected]
	unsubscribe func()
}

// memo caches the last result keyed by catalog version and state.
type memo struct {
	valid   bool
	version uint64
	state   filter.State
	games   []model.Game
}

func newSession(id string, createdAt time.Time) *Session {
	s := &Session{
		id:        id,
		createdAt: createdAt,
		state:     filter.Default(),
		signals:   bus.New[CategorySelected](bus.WithTopic(TopicCategorySelected)),
	}
	// A fresh bus is open and the handler is non-nil.
	s.unsubscribe, _ = s.signals.Subscribe(s.onCategorySelected)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns a copy of the current state.
func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Apply folds intents into the state in order and returns the result.
func (s *Session) Apply(_ context.Context, intents ...filter.Intent) filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range intents {
		s.state = i.Apply(s.state)
		metrics.RecordIntent(string(i.Kind()))
	}
	return s.state.Clone()
}

// SelectCategory publishes a jump-to-category signal on the session bus
// and returns the state after every subscriber has handled it. A session
// that was deleted or evicted reports ErrSessionNotFound.
func (s *Session) SelectCategory(ctx context.Context, category string) (filter.State, error) {
	if _, err := s.signals.Publish(ctx, CategorySelected{Category: category}); err != nil {
		if errors.Is(err, bus.ErrClosed) {
			return filter.State{}, fmt.Errorf("%w: %s ended", ErrSessionNotFound, s.id)
		}
		return filter.State{}, fmt.Errorf("select category %q: %w", category, err)
	}
	return s.State(), nil
}

// Signals exposes the session bus so other components can subscribe.
func (s *Session) Signals() *bus.Bus[CategorySelected] { return s.signals }

func (s *Session) onCategorySelected(ctx context.Context, m CategorySelected) error {
	s.Apply(ctx, filter.SelectOnlyCategory{Category: m.Category})
	return nil
}

// Visible returns the filtered and sorted games for the current state.
// The result is memoized until the state or the catalog version changes.
func (s *Session) Visible(c *model.Catalog, version uint64) []model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memo.valid && s.memo.version == version && s.memo.state.Equal(s.state) {
		return slices.Clone(s.memo.games)
	}

	start := time.Now()
	games := filter.ComputeVisible(c.Games(), s.state)
	metrics.RecordFilterCompute(float64(time.Since(start).Microseconds())/1000, len(games))

	s.memo = memo{valid: true, version: version, state: s.state.Clone(), games: games}
	return slices.Clone(games)
}

func (s *Session) close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	_ = s.signals.Close()
}
