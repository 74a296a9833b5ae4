package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "eventflow:collection:"
	// redisMaxAttempts bounds optimistic retries when another writer touches the key mid-update.
	redisMaxAttempts = 10
)

// Redis keeps each collection as a JSON array string under one key.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a store on an existing client. The client is not closed by Close.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(collection string) string { return redisKeyPrefix + collection }

// Read returns the records of a collection.
func (r *Redis) Read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	body, err := r.client.Get(ctx, redisKey(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalRecords(body)
}

// Write replaces the collection.
func (r *Redis) Write(ctx context.Context, collection string, records []json.RawMessage) error {
	body, err := marshalRecords(records)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(collection), body, 0).Err()
}

// Update applies fn inside a WATCH/MULTI transaction on the collection key.
func (r *Redis) Update(ctx context.Context, collection string, fn UpdateFunc) error {
	key := redisKey(collection)
	txf := func(tx *redis.Tx) error {
		body, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		records, err := unmarshalRecords(body)
		if err != nil {
			return err
		}
		next, err := fn(records)
		if err != nil {
			return err
		}
		out, err := marshalRecords(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}
	for i := 0; i < redisMaxAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too much contention", collection)
}

// Close is a no-op; the owner of the client closes it.
func (r *Redis) Close() error { return nil }
