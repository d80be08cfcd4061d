// Package bus is a typed publish/subscribe channel scoped to its owner.
//
// Delivery is synchronous: Publish runs every handler in subscription
// order before returning, so a publisher observes the effects of its
// message.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/shelf/pkg/metrics"
)

const defaultTopic = "default"

// Handler consumes one message.
type Handler[T any] func(ctx context.Context, msg T) error

// Bus fans a message out to its current subscribers.
type Bus[T any] struct {
	topic          string
	maxSubscribers int

	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID uint64
	closed bool
}

type subscriber[T any] struct {
	id      uint64
	handler Handler[T]
}

// New creates an open bus.
func New[T any](opts ...Option) *Bus[T] {
	cfg := config{topic: defaultTopic}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus[T]{topic: cfg.topic, maxSubscribers: cfg.maxSubscribers}
}

// Topic returns the bus name used in metrics.
func (b *Bus[T]) Topic() string { return b.topic }

// Subscribe registers h and returns a function that removes it.
func (b *Bus[T]) Subscribe(h Handler[T]) (unsubscribe func(), err error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if b.maxSubscribers > 0 && len(b.subs) >= b.maxSubscribers {
		return nil, fmt.Errorf("%w: %d", ErrTooManySubscribers, b.maxSubscribers)
	}

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, handler: h})

	var once sync.Once
	return func() { once.Do(func() { b.remove(id) }) }, nil
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers msg to every subscriber and returns how many handled
// it. Handler errors are joined; one failing handler does not stop the
// rest.
func (b *Bus[T]) Publish(ctx context.Context, msg T) (int, error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return 0, ErrClosed
	}
	subs := append([]subscriber[T](nil), b.subs...)
	b.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	metrics.RecordSignal(b.topic)

	var (
		delivered int
		errs      []error
	)
	for _, s := range subs {
		if err := s.handler(ctx, msg); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops every subscriber. Later Publish and Subscribe calls fail
// with ErrClosed.
func (b *Bus[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.subs = nil
	return nil
}

// IsClosed reports whether Close has been called.
func (b *Bus[T]) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
