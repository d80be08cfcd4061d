package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/shelf/internal/domain/model"
)

func testCatalog() *model.Catalog {
	return model.NewCatalog(
		[]model.Game{{Name: "Azul", Category: []string{"Family"}}},
		[]model.Category{{Name: "Family", Description: "All ages"}},
		model.Meta{Source: model.SourceFallback},
	)
}

func TestSnapshotStore_BeforePublish(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	if _, _, err := store.Current(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	select {
	case <-store.Ready():
		t.Fatal("ready closed before publish")
	default:
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, _, err := store.Wait(waitCtx); !errors.Is(err, ErrNotReady) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected ErrNotReady wrapping deadline, got %v", err)
	}
}

func TestSnapshotStore_Publish(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	cat := testCatalog()

	v, err := store.Publish(ctx, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}

	got, gv, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cat || gv != 1 {
		t.Errorf("expected published catalog at version 1, got %p v%d", got, gv)
	}

	select {
	case <-store.Ready():
	default:
		t.Error("ready not closed after publish")
	}

	if _, err := store.Publish(ctx, testCatalog()); !errors.Is(err, ErrAlreadyPublished) {
		t.Errorf("expected ErrAlreadyPublished, got %v", err)
	}
	if got, _, _ := store.Current(ctx); got != cat {
		t.Error("second publish replaced the catalog")
	}

	if _, err := NewSnapshotStore().Publish(ctx, nil); !errors.Is(err, ErrNilCatalog) {
		t.Errorf("expected ErrNilCatalog, got %v", err)
	}
}

func TestSnapshotStore_ConcurrentPublish(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	const publishers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Publish(ctx, testCatalog()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}

	waiter := make(chan uint64, 1)
	go func() {
		_, v, _ := store.Wait(ctx)
		waiter <- v
	}()

	wg.Wait()
	if successes != 1 {
		t.Errorf("expected exactly one successful publish, got %d", successes)
	}
	select {
	case v := <-waiter:
		if v != 1 {
			t.Errorf("waiter saw version %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never woke")
	}
}
