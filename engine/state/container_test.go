package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type flakyStore struct {
	*MemoryStore
	getErr error
	setErr error
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, doc []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStore.Set(ctx, key, doc)
}

func TestContainerDefaultBeforeHydrate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	seed, _ := json.Marshal(42)
	if err := store.Set(context.Background(), "n", seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c, err := NewContainer(store, "n", 7)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	if got := c.Get(); got != 7 {
		t.Fatalf("Get() before Hydrate = %d, want default 7", got)
	}

	c.Hydrate(context.Background())
	if got := c.Get(); got != 42 {
		t.Fatalf("Get() after Hydrate = %d, want stored 42", got)
	}
}

func TestContainerHydrateMissingKeepsDefault(t *testing.T) {
	t.Parallel()

	c, err := NewContainer(NewMemoryStore(), "missing", "fallback")
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	c.Hydrate(context.Background())
	if got := c.Get(); got != "fallback" {
		t.Fatalf("Get() = %q, want default", got)
	}
}

func TestContainerHydrateUnparsableKeepsDefault(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Set(context.Background(), "n", []byte("not json")); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c, err := NewContainer(store, "n", 7)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	c.Hydrate(context.Background())
	if got := c.Get(); got != 7 {
		t.Fatalf("Get() = %d, want default 7", got)
	}
}

func TestContainerHydrateReadFailureKeepsDefault(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemoryStore: NewMemoryStore(), getErr: errors.New("store down")}
	c, err := NewContainer(store, "n", 7)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	c.Hydrate(context.Background())
	if got := c.Get(); got != 7 {
		t.Fatalf("Get() = %d, want default 7", got)
	}
}

func TestContainerWritesThroughOnlyAfterHydrate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	c, err := NewContainer(store, "n", 0)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}

	c.Set(ctx, 1)
	if _, err := store.Get(ctx, "n"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("store written before hydration: err = %v", err)
	}

	c.Hydrate(ctx)
	c.Set(ctx, 2)

	doc, err := store.Get(ctx, "n")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(doc) != "2" {
		t.Fatalf("stored document = %s, want 2", doc)
	}
}

func TestContainerStoreFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemoryStore: NewMemoryStore(), setErr: errors.New("quota exceeded")}
	ctx := context.Background()

	c, err := NewContainer(store, "n", 0)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	c.Hydrate(ctx)
	c.Set(ctx, 5)

	if got := c.Get(); got != 5 {
		t.Fatalf("Get() = %d, want in-memory value to survive store failure", got)
	}
}

func TestContainerUpdate(t *testing.T) {
	t.Parallel()

	c, err := NewContainer(NewMemoryStore(), "n", 10)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	ctx := context.Background()
	c.Hydrate(ctx)

	got := c.Update(ctx, func(v int) int { return v + 5 })
	if got != 15 {
		t.Fatalf("Update() = %d, want 15", got)
	}
	if c.Get() != 15 {
		t.Fatalf("Get() = %d, want 15", c.Get())
	}
}

func TestContainerClearResetsAndDeletes(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	c, err := NewContainer(store, "n", 1)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	c.Hydrate(ctx)
	c.Set(ctx, 9)

	c.Clear(ctx)
	if got := c.Get(); got != 1 {
		t.Fatalf("Get() after Clear = %d, want default 1", got)
	}
	if _, err := store.Get(ctx, "n"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("document still present after Clear: err = %v", err)
	}

	// The container keeps persisting after a clear.
	c.Set(ctx, 3)
	doc, err := store.Get(ctx, "n")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(doc) != "3" {
		t.Fatalf("stored document = %s, want 3", doc)
	}
}

func TestContainerRequiresStoreAndKey(t *testing.T) {
	t.Parallel()

	if _, err := NewContainer[int](nil, "k", 0); err == nil {
		t.Fatal("NewContainer(nil store) error = nil, want error")
	}
	if _, err := NewContainer(NewMemoryStore(), "  ", 0); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("NewContainer(empty key) error = %v, want ErrInvalidKey", err)
	}
}
