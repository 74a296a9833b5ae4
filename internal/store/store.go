// Package store is the record persistence layer: named collections holding ordered JSON records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names.
const (
	Events       = "events"
	Participants = "participants"
	Users        = "users"
)

// ErrUnchanged may be returned from an Update callback to finish without writing.
var ErrUnchanged = errors.New("store: collection unchanged")

// UpdateFunc receives the current records of a collection and returns the records to store.
type UpdateFunc func(records []json.RawMessage) ([]json.RawMessage, error)

// Store reads and writes whole collections. A collection that was never written reads as empty.
// Update runs fn as one atomic read-modify-write relative to other writers of the same collection.
type Store interface {
	Read(ctx context.Context, collection string) ([]json.RawMessage, error)
	Write(ctx context.Context, collection string, records []json.RawMessage) error
	Update(ctx context.Context, collection string, fn UpdateFunc) error
	Close() error
}

// Collection is a typed view over one store collection.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection returns a typed view over the named collection.
func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// All returns every record in stored order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	raw, err := c.store.Read(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}
	return decodeAll[T](c.name, raw)
}

// Replace overwrites the collection with items.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	raw, err := encodeAll(c.name, items)
	if err != nil {
		return err
	}
	if err := c.store.Write(ctx, c.name, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	return nil
}

// Mutate decodes the collection, hands it to fn and stores what fn returns, atomically.
// Errors from fn are returned unchanged; ErrUnchanged skips the write and yields nil.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	err := c.store.Update(ctx, c.name, func(raw []json.RawMessage) ([]json.RawMessage, error) {
		items, err := decodeAll[T](c.name, raw)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return encodeAll(c.name, next)
	})
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	return err
}

func decodeAll[T any](name string, raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", name, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func encodeAll[T any](name string, items []T) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(items))
	for i := range items {
		b, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("encode %s record %d: %w", name, i, err)
		}
		raw = append(raw, b)
	}
	return raw, nil
}

// marshalRecords and unmarshalRecords convert between a collection and its single-blob form,
// used by backends that keep one document per collection.
func marshalRecords(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	return json.Marshal(records)
}

func unmarshalRecords(b []byte) ([]json.RawMessage, error) {
	if len(b) == 0 {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}
