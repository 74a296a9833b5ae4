package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("unknown collection reads empty", func(t *testing.T) {
		got, err := s.Read(ctx, "never-written")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("write then read keeps order", func(t *testing.T) {
		c := NewCollection[item](s, "ordered")
		in := []item{{ID: 3, Label: "c"}, {ID: 1, Label: "a"}, {ID: 2, Label: "b"}}
		require.NoError(t, c.Replace(ctx, in))
		got, err := c.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("mutate appends", func(t *testing.T) {
		c := NewCollection[item](s, "mutated")
		for i := 0; i < 3; i++ {
			i := i
			require.NoError(t, c.Mutate(ctx, func(items []item) ([]item, error) {
				return append(items, item{ID: i}), nil
			}))
		}
		got, err := c.All(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("mutate error leaves collection untouched", func(t *testing.T) {
		c := NewCollection[item](s, "rollback")
		require.NoError(t, c.Replace(ctx, []item{{ID: 1}}))
		boom := errors.New("boom")
		err := c.Mutate(ctx, func(items []item) ([]item, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		got, err := c.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, []item{{ID: 1}}, got)
	})

	t.Run("unchanged skips write", func(t *testing.T) {
		c := NewCollection[item](s, "unchanged")
		require.NoError(t, c.Replace(ctx, []item{{ID: 7}}))
		err := c.Mutate(ctx, func(items []item) ([]item, error) {
			return nil, ErrUnchanged
		})
		require.NoError(t, err)
		got, err := c.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, []item{{ID: 7}}, got)
	})

	t.Run("concurrent mutations are not lost", func(t *testing.T) {
		c := NewCollection[item](s, "concurrent")
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, c.Mutate(ctx, func(items []item) ([]item, error) {
					return append(items, item{ID: i}), nil
				}))
			}(i)
		}
		wg.Wait()
		got, err := c.All(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 8)
	})
}

func TestMemoryStore(t *testing.T) {
	runContract(t, NewMemory())
}

func TestMemoryReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Write(ctx, "x", []json.RawMessage{json.RawMessage(`{"id":1}`)}))
	got, err := m.Read(ctx, "x")
	require.NoError(t, err)
	got[0][1] = 'X'
	again, err := m.Read(ctx, "x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(again[0]))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	runContract(t, NewRedis(rdb))

	// collections live under a namespaced key
	assert.True(t, mr.Exists(redisKeyPrefix+"ordered"))
}

func TestCollectionDecodeError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Write(ctx, "bad", []json.RawMessage{json.RawMessage(`"not an object"`)}))
	_, err := NewCollection[item](m, "bad").All(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode bad record 0")
}
