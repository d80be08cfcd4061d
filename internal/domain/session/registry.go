package session

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/shelf/pkg/logger"
	"github.com/okian/shelf/pkg/metrics"
)

const defaultMaxSessions = 10_000

// Registry tracks live sessions. When full, creating a session evicts the
// least recently used one.
type Registry struct {
	mu      sync.Mutex
	max     int
	order   *list.List // front is most recently used
	entries map[string]*list.Element

	newID func() string
	now   func() time.Time
	log   logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		max:     defaultMaxSessions,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		newID:   uuid.NewString,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a session with the default state.
func (r *Registry) Create(ctx context.Context) *Session {
	s := newSession(r.newID(), r.now())

	r.mu.Lock()
	for r.order.Len() >= r.max {
		r.evictOldest(ctx)
	}
	r.entries[s.id] = r.order.PushFront(s)
	n := r.order.Len()
	r.mu.Unlock()

	metrics.UpdateSessionsActive(n)
	r.log.Debug(ctx, "session created", logger.String("session_id", s.id), logger.Int("active", n))
	return s
}

// Get returns a session and marks it recently used.
func (r *Registry) Get(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	r.order.MoveToFront(el)
	return el.Value.(*Session), nil
}

// Delete ends a session.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	el, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	r.order.Remove(el)
	delete(r.entries, id)
	n := r.order.Len()
	r.mu.Unlock()

	el.Value.(*Session).close()
	metrics.UpdateSessionsActive(n)
	r.log.Debug(ctx, "session deleted", logger.String("session_id", id))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for el := r.order.Front(); el != nil; el = el.Next() {
		el.Value.(*Session).close()
	}
	r.order.Init()
	r.entries = make(map[string]*list.Element)
	metrics.UpdateSessionsActive(0)
}

// evictOldest must be called with r.mu held.
func (r *Registry) evictOldest(ctx context.Context) {
	el := r.order.Back()
	if el == nil {
		return
	}
	s := r.order.Remove(el).(*Session)
	delete(r.entries, s.id)
	s.close()
	metrics.RecordSessionEvicted()
	r.log.Info(ctx, "session evicted", logger.String("session_id", s.id))
}
