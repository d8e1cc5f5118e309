package state

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Container is a reactive value backed by a DocumentStore. It initializes in
// two phases: the default value is visible immediately, and Hydrate overlays
// any stored document exactly once. After the hydration attempt every
// mutation is written through to the store; store failures are logged and
// swallowed, never surfaced to the caller.
type Container[T any] struct {
	store DocumentStore
	key   string
	def   T

	mu       sync.Mutex
	cur      T
	hydrated bool
}

func NewContainer[T any](store DocumentStore, key string, def T) (*Container[T], error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}
	return &Container[T]{
		store: store,
		key:   key,
		def:   def,
		cur:   def,
	}, nil
}

// Get returns the current value. Before Hydrate this is the default.
func (c *Container[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Hydrate performs the one-shot overlay of the stored document. Read and
// parse failures keep the current value; either way the container switches
// to write-through mode afterwards. Repeat calls are no-ops.
func (c *Container[T]) Hydrate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hydrated {
		return
	}
	c.hydrated = true

	doc, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrDocumentNotFound) {
			log.Warn().Err(err).Str("key", c.key).Msg("container: load failed, keeping default")
		}
		return
	}

	var loaded T
	if err := json.Unmarshal(doc, &loaded); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("container: stored document unparsable, keeping default")
		return
	}
	c.cur = loaded
}

// Set replaces the value and, once hydrated, writes it through.
func (c *Container[T]) Set(ctx context.Context, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = v
	c.writeThrough(ctx)
}

// Update applies fn to the current value and stores the result atomically
// with respect to other container calls. Returns the new value.
func (c *Container[T]) Update(ctx context.Context, fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = fn(c.cur)
	c.writeThrough(ctx)
	return c.cur
}

// Clear removes the persisted document and resets the value to the default.
// It does not wait for removal confirmation; a failed delete is logged only.
func (c *Container[T]) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.def
	if err := c.store.Delete(ctx, c.key); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("container: delete failed")
	}
}

// writeThrough persists the current value. Callers hold c.mu.
func (c *Container[T]) writeThrough(ctx context.Context) {
	if !c.hydrated {
		return
	}
	doc, err := json.Marshal(c.cur)
	if err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("container: marshal failed, skipping write")
		return
	}
	if err := c.store.Set(ctx, c.key, doc); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("container: write failed")
	}
}
