package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sha string

func TestInMemoryCacheManager_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[sha, string]("diffs", DefaultExpiration, DefaultCleanupInterval)

	_, ok := c.Get(ctx, "abc123")
	require.False(t, ok)

	c.Set(ctx, "abc123", "diff --git a/x b/x", time.Minute)
	got, ok := c.Get(ctx, "abc123")
	require.True(t, ok)
	require.Equal(t, "diff --git a/x b/x", got)
	require.Equal(t, 1, c.Len())

	c.Delete(ctx, "abc123")
	_, ok = c.Get(ctx, "abc123")
	require.False(t, ok)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("short", time.Minute, time.Minute)

	c.Set(ctx, "k", 1, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("flush", DefaultExpiration, DefaultCleanupInterval)
	c.Set(ctx, "a", 1, time.Minute)
	c.Set(ctx, "b", 2, time.Minute)
	c.Flush(ctx)
	require.Equal(t, 0, c.Len())
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1)
}

func (m *mockCache) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (string, bool) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) { m.Called(ctx, keys) }
func (m *mockCache) Flush(ctx context.Context)                  { m.Called(ctx) }
func (m *mockCache) Len() int                                   { return m.Called().Int(0) }

func TestReadThroughCache_HitSkipsLoader(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	c.On("Get", ctx, "abc").Return("cached", true).Once()

	r := NewReadThroughCache[string, string, string](c, func(context.Context, string) (string, error) {
		t.Fatal("loader must not run on a hit")
		return "", nil
	}, false)

	got, err := r.Get(ctx, "abc", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", got)
	c.AssertExpectations(t)
}

func TestReadThroughCache_MissLoadsAndStores(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	c.On("Get", ctx, "abc").Return("", false).Once()
	c.On("Set", ctx, "abc", "loaded", time.Minute).Once()

	r := NewReadThroughCache[string, string, string](c, func(_ context.Context, in string) (string, error) {
		require.Equal(t, "abc", in)
		return "loaded", nil
	}, false)

	got, err := r.Get(ctx, "abc", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "loaded", got)
	c.AssertExpectations(t)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	c.On("GetWithRefresh", ctx, "abc", time.Minute).Return("", false).Once()

	boom := errors.New("boom")
	r := NewReadThroughCache[string, string, string](c, func(context.Context, string) (string, error) {
		return "", boom
	}, false)

	_, err := r.GetWithRefresh(ctx, "abc", "abc", time.Minute)
	require.ErrorIs(t, err, boom)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Bypass(t *testing.T) {
	ctx := context.Background()
	c := &mockCache{}
	calls := 0
	r := NewReadThroughCache[string, string, string](c, func(context.Context, string) (string, error) {
		calls++
		return "fresh", nil
	}, true)

	for range 2 {
		got, err := r.Get(ctx, "abc", "abc", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "fresh", got)
	}
	require.Equal(t, 2, calls)
	c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_KeepIf(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, string]("keep", DefaultExpiration, DefaultCleanupInterval)
	r := NewReadThroughCache[string, string, string](c, func(_ context.Context, in string) (string, error) {
		return in, nil
	}, false).KeepIf(func(v string) bool { return v != "" })

	_, err := r.Get(ctx, "empty", "", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())

	_, err = r.Get(ctx, "full", "x", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
}
