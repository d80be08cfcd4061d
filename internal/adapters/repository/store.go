// Package repository holds the catalog snapshot shared by every session.
package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/shelf/internal/domain/model"
)

// Store provides read access to the published catalog and a single publish.
type Store interface {
	// Publish installs the catalog. Only the first call succeeds; later
	// calls return ErrAlreadyPublished.
	Publish(ctx context.Context, c *model.Catalog) (uint64, error)

	// Current returns the catalog and its version, or ErrNotReady.
	Current(ctx context.Context) (*model.Catalog, uint64, error)

	// Ready is closed once a catalog has been published.
	Ready() <-chan struct{}

	// Wait blocks until the catalog is published or ctx is done.
	Wait(ctx context.Context) (*model.Catalog, uint64, error)
}

type snapshot struct {
	catalog *model.Catalog
	version uint64
}

// SnapshotStore is an in-memory Store. Reads do not take the lock.
type SnapshotStore struct {
	current atomic.Pointer[snapshot]
	ready   chan struct{}
	mu      sync.Mutex
	version uint64
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{ready: make(chan struct{})}
}

// Publish installs c as version 1.
func (s *SnapshotStore) Publish(_ context.Context, c *model.Catalog) (uint64, error) {
	if c == nil {
		return 0, ErrNilCatalog
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Load() != nil {
		return 0, fmt.Errorf("%w: version %d", ErrAlreadyPublished, s.version)
	}
	s.version++
	s.current.Store(&snapshot{catalog: c, version: s.version})
	close(s.ready)
	return s.version, nil
}

// Current returns the published catalog.
func (s *SnapshotStore) Current(_ context.Context) (*model.Catalog, uint64, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, 0, ErrNotReady
	}
	return snap.catalog, snap.version, nil
}

// Ready is closed after the first Publish.
func (s *SnapshotStore) Ready() <-chan struct{} { return s.ready }

// Wait blocks until Publish or ctx cancellation.
func (s *SnapshotStore) Wait(ctx context.Context) (*model.Catalog, uint64, error) {
	select {
	case <-s.ready:
		return s.Current(ctx)
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}
