package upstream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	t.Parallel()

	c := NewTTLCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestTTLCacheGetOrLoad(t *testing.T) {
	t.Parallel()

	c := NewTTLCache()
	var calls atomic.Int32

	load := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("loaded"), nil
	}

	got, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []byte("loaded"), got)

	// Second call is served from cache.
	_, err = c.GetOrLoad(context.Background(), "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTTLCacheCoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	c := NewTTLCache()
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("once"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, []byte("once"), got)
		}()
	}

	// Give the goroutines time to stack up behind the single flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestTTLCacheLoadErrorNotCached(t *testing.T) {
	t.Parallel()

	c := NewTTLCache()
	var calls atomic.Int32

	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return nil, assert.AnError
	})
	require.Error(t, err)

	got, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)
	assert.Equal(t, int32(2), calls.Load())
}
