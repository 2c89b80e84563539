package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Collection is a typed JSON sequence stored as a single blob. Every write
// replaces the whole sequence; there are no per-item updates.
type Collection[T any] struct {
	store Store
	key   string
	mu    sync.Mutex
}

func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Load returns the stored sequence and whether the key has ever been written.
func (c *Collection[T]) Load(ctx context.Context) ([]T, bool, error) {
	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, true, fmt.Errorf("failed to decode collection %q: %w", c.key, err)
		}
	}
	return items, true, nil
}

// Save overwrites the stored sequence.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", c.key, err)
	}
	return c.store.Put(ctx, c.key, data)
}

// Update runs a read-modify-write cycle. fn receives a private copy of the
// current items and returns the sequence to persist. When fn returns
// changed == false or an error, nothing is written.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T, found bool) (next []T, changed bool, err error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, found, err := c.Load(ctx)
	if err != nil {
		return err
	}
	next, changed, err := fn(items, found)
	if err != nil || !changed {
		return err
	}
	return c.save(ctx, next)
}
