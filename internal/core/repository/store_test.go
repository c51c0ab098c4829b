package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/pkg/common"
)

func sampleRecipes(n int) []common.Recipe {
	out := make([]common.Recipe, n)
	for i := range out {
		out[i] = common.Recipe{ID: "r" + strconv.Itoa(i)}
	}
	return out
}

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{MaxSize: 5, TTL: time.Minute})
	defer s.Close()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "goal_weight_loss", sampleRecipes(2)))
	entry, err := s.Get(ctx, "goal_weight_loss")
	require.NoError(t, err)
	assert.Len(t, entry.Recipes, 2)
	assert.False(t, entry.StoredAt.IsZero())

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRatio)
	assert.Equal(t, 1, stats.Size)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{MaxSize: 5, TTL: time.Minute})
	defer s.Close()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Set(ctx, "k", sampleRecipes(1)))

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, int64(1), s.Stats().Evictions)
}

func TestMemoryStoreEvictsLeastUsed(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{MaxSize: 2, TTL: time.Minute})
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", sampleRecipes(1)))
	require.NoError(t, s.Set(ctx, "b", sampleRecipes(1)))
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "c", sampleRecipes(1)))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)

	// 覆寫既有鍵不觸發淘汰
	require.NoError(t, s.Set(ctx, "a", sampleRecipes(3)))
	assert.Equal(t, 2, s.Stats().Size)
}

func TestMemoryStoreClearAndDelete(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{MaxSize: 5})
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", sampleRecipes(1)))
	require.NoError(t, s.Set(ctx, "b", sampleRecipes(1)))
	require.NoError(t, s.Delete(ctx, "a"))

	keys, _ := s.Keys(ctx)
	assert.Equal(t, []string{"b"}, keys)

	require.NoError(t, s.Clear(ctx))
	keys, _ = s.Keys(ctx)
	assert.Empty(t, keys)
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{MaxSize: 1, CleanupInterval: time.Millisecond})
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestTransformBatchesIsolatesFailures(t *testing.T) {
	records := make([]corpus.Record, 25)
	for i := range records {
		records[i] = corpus.Record{SerialID: strconv.Itoa(i)}
	}

	out, stats, err := transformBatches(context.Background(), "test", records, 10, func(rec corpus.Record) common.Recipe {
		if rec.SerialID == "7" {
			panic("boom")
		}
		return common.Recipe{ID: rec.SerialID}
	})
	require.NoError(t, err)
	assert.Equal(t, BatchStats{Batches: 3, OK: 24, Failed: 1}, stats)
	require.Len(t, out, 24)
	assert.Equal(t, "6", out[6].ID)
	assert.Equal(t, "8", out[7].ID)
}

func TestTransformBatchesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, stats, err := transformBatches(ctx, "test", []corpus.Record{{SerialID: "1"}}, 10, func(rec corpus.Record) common.Recipe {
		return common.Recipe{ID: rec.SerialID}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
	assert.Zero(t, stats.Batches)
}

func TestNoopStoreAlwaysMisses(t *testing.T) {
	s := &NoopStore{}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", sampleRecipes(1)))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, int64(1), s.Stats().Misses)
	assert.Equal(t, BackendNone, s.Stats().Backend)
}
