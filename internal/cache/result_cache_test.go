package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncology-cds-engine/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestCache(t *testing.T, clock *fakeClock, maxEntries int) *ResultCache {
	t.Helper()
	c, err := NewResultCache(quietLogger(), Options{MaxEntries: maxEntries, Clock: clock.Now})
	require.NoError(t, err)
	return c
}

func TestResultCache_HitWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	out := &domain.DecisionOutput{ConfidenceScore: 90}
	c.Put(ctx, "k1", out)

	clock.Advance(4*time.Minute + 59*time.Second)
	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Same(t, out, got)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestResultCache_ExpiredEntryIsMissAndEvicted(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	c.Put(ctx, "k1", &domain.DecisionOutput{})
	clock.Advance(DefaultTTL)

	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestResultCache_PutOverwrites(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	first := &domain.DecisionOutput{ConfidenceScore: 70}
	second := &domain.DecisionOutput{ConfidenceScore: 85}
	c.Put(ctx, "k", first)
	clock.Advance(3 * time.Minute)
	c.Put(ctx, "k", second)
	clock.Advance(3 * time.Minute)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestResultCache_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	c.Put(ctx, "old-1", &domain.DecisionOutput{})
	c.Put(ctx, "old-2", &domain.DecisionOutput{})
	clock.Advance(4 * time.Minute)
	c.Put(ctx, "fresh", &domain.DecisionOutput{})
	clock.Advance(2 * time.Minute)

	removed := c.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestResultCache_CapacityEviction(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 2)
	ctx := context.Background()

	c.Put(ctx, "a", &domain.DecisionOutput{})
	c.Put(ctx, "b", &domain.DecisionOutput{})
	c.Put(ctx, "c", &domain.DecisionOutput{})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestResultCache_Clear(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	c.Put(ctx, "a", &domain.DecisionOutput{})
	c.Put(ctx, "b", &domain.DecisionOutput{})
	require.NoError(t, c.Clear(ctx))

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Stats().Evictions)
}

func TestResultCache_GetOrCompute(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	calls := 0
	compute := func() (*domain.DecisionOutput, error) {
		calls++
		return &domain.DecisionOutput{ConfidenceScore: 90}, nil
	}

	first, hit, err := c.GetOrCompute(ctx, "k", compute)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.GetOrCompute(ctx, "k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	clock.Advance(DefaultTTL + time.Second)
	third, hit, err := c.GetOrCompute(ctx, "k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, calls)
}

func TestResultCache_GetOrComputeDoesNotCacheFailures(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(ctx, "k", func() (*domain.DecisionOutput, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_ConcurrentCallersComputeOnce(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	compute := func() (*domain.DecisionOutput, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &domain.DecisionOutput{ConfidenceScore: 80}, nil
	}

	var wg sync.WaitGroup
	results := make([]*domain.DecisionOutput, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, _, err := c.GetOrCompute(ctx, "shared", compute)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, out := range results {
		assert.Same(t, results[0], out)
	}
}

func TestResultCache_HitRatio(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestCache(t, clock, 0)
	ctx := context.Background()

	assert.Equal(t, 0.0, c.HitRatio())

	c.Put(ctx, "k", &domain.DecisionOutput{})
	c.Get(ctx, "k")
	c.Get(ctx, "missing")

	assert.InDelta(t, 0.5, c.HitRatio(), 0.0001)
}

type stubRemote struct {
	mu    sync.Mutex
	items map[string]*domain.DecisionOutput
	sets  int
}

func (s *stubRemote) Get(_ context.Context, key string) (*domain.DecisionOutput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.items[key]
	return out, ok
}

func (s *stubRemote) Set(_ context.Context, key string, output *domain.DecisionOutput, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = output
	s.sets++
}

func (s *stubRemote) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *stubRemote) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[string]*domain.DecisionOutput{}
	return nil
}

// blockingRemote holds every Get until release is closed.
type blockingRemote struct {
	stubRemote
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRemote) Get(ctx context.Context, key string) (*domain.DecisionOutput, bool) {
	b.entered <- struct{}{}
	<-b.release
	return b.stubRemote.Get(ctx, key)
}

type failingClearRemote struct {
	stubRemote
}

func (f *failingClearRemote) Clear(context.Context) error {
	return errors.New("redis unavailable")
}

func TestResultCache_RemoteTier(t *testing.T) {
	remote := &stubRemote{items: map[string]*domain.DecisionOutput{}}
	clock := &fakeClock{now: time.Now()}
	c, err := NewResultCache(quietLogger(), Options{Clock: clock.Now, Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	shared := &domain.DecisionOutput{ConfidenceScore: 95}
	remote.items["k"] = shared

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Same(t, shared, got)
	assert.Equal(t, int64(1), c.Stats().RemoteHits)
	assert.Equal(t, 1, c.Len())

	c.Put(ctx, "other", &domain.DecisionOutput{})
	assert.Equal(t, 1, remote.sets)

	c.Invalidate(ctx, "k")
	_, ok = remote.items["k"]
	assert.False(t, ok)
}

func TestResultCache_SlowRemoteDoesNotBlockMemoryHits(t *testing.T) {
	remote := &blockingRemote{
		stubRemote: stubRemote{items: map[string]*domain.DecisionOutput{}},
		entered:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
	clock := &fakeClock{now: time.Now()}
	c, err := NewResultCache(quietLogger(), Options{Clock: clock.Now, Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	hot := &domain.DecisionOutput{ConfidenceScore: 90}
	c.Put(ctx, "hot", hot)

	coldDone := make(chan struct{})
	go func() {
		defer close(coldDone)
		_, ok := c.Get(ctx, "cold")
		assert.False(t, ok)
	}()
	<-remote.entered

	hotDone := make(chan *domain.DecisionOutput, 1)
	go func() {
		out, _ := c.Get(ctx, "hot")
		hotDone <- out
	}()

	select {
	case out := <-hotDone:
		assert.Same(t, hot, out)
	case <-time.After(time.Second):
		t.Fatal("memory hit waited for a pending remote lookup")
	}

	putDone := make(chan struct{})
	go func() {
		c.Put(ctx, "other", &domain.DecisionOutput{})
		close(putDone)
	}()
	select {
	case <-putDone:
	case <-time.After(time.Second):
		t.Fatal("put waited for a pending remote lookup")
	}

	close(remote.release)
	<-coldDone

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestResultCache_ClearIncludesRemoteTier(t *testing.T) {
	remote := &stubRemote{items: map[string]*domain.DecisionOutput{}}
	clock := &fakeClock{now: time.Now()}
	c, err := NewResultCache(quietLogger(), Options{Clock: clock.Now, Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	c.Put(ctx, "k", &domain.DecisionOutput{ConfidenceScore: 80})
	require.NoError(t, c.Clear(ctx))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, remote.items)
}

func TestResultCache_ClearReportsRemoteFailure(t *testing.T) {
	remote := &failingClearRemote{stubRemote{items: map[string]*domain.DecisionOutput{}}}
	c, err := NewResultCache(quietLogger(), Options{Remote: remote})
	require.NoError(t, err)
	ctx := context.Background()

	c.Put(ctx, "k", &domain.DecisionOutput{})
	err = c.Clear(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unavailable")
	assert.Equal(t, 0, c.Len())
}

func TestRedisTier_UnreachableServerIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	tier := NewRedisTierFromClient(client, "", quietLogger())
	defer tier.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, ok := tier.Get(ctx, "k")
		assert.False(t, ok)
	}
	assert.Equal(t, gobreaker.StateOpen, tier.State())

	// Writes with an open breaker are dropped without error
	tier.Set(ctx, "k", &domain.DecisionOutput{}, time.Minute)
	_, ok := tier.Get(ctx, "k")
	assert.False(t, ok)

	assert.Error(t, tier.Clear(ctx))
}
