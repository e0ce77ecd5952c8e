package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ReusesSessions(t *testing.T) {
	var opened int
	var m sync.Mutex
	r := NewRegistry(func(id string) []Option {
		m.Lock()
		opened++
		m.Unlock()
		return []Option{WithPersister(&mockPersister{snap: domain.Snapshot{SessionID: id}})}
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Session(ctx, "user-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ClearCart(t *testing.T) {
	r := NewRegistry(nil)
	s, err := r.Session(ctx, "user-1")
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, lineItem(t, "1", domain.Dollars(10), 5, "", ""), 1)
	require.NoError(t, err)

	require.NoError(t, r.ClearCart(ctx, "user-1"))
	assert.Empty(t, s.CartState().Items)
}

func TestRegistry_Evict(t *testing.T) {
	r := NewRegistry(nil)
	first, err := r.Session(ctx, "user-1")
	require.NoError(t, err)
	r.Evict("user-1")

	second, err := r.Session(ctx, "user-1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistry_EvictIdle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r := NewRegistry(nil)
	r.now = func() time.Time { return now }

	stale, err := r.Session(ctx, "stale")
	require.NoError(t, err)
	_, err = r.Session(ctx, "busy")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = r.Session(ctx, "busy")
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, r.Len())

	reopened, err := r.Session(ctx, "stale")
	require.NoError(t, err)
	assert.NotSame(t, stale, reopened)
}

func TestRegistry_EvictedSessionReloadsSnapshot(t *testing.T) {
	p := &mockPersister{}
	r := NewRegistry(func(string) []Option { return []Option{WithPersister(p)} })

	s, err := r.Session(ctx, "user-1")
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, lineItem(t, "1", domain.Dollars(10), 5, "", ""), 2)
	require.NoError(t, err)

	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, r.EvictIdle(DefaultIdleTTL))

	s, err = r.Session(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.CartState().TotalItems)
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	r := NewRegistry(nil)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- r.Run(runCtx, time.Minute, nil) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

// gatedPersister blocks Load until the gate is closed.
type gatedPersister struct {
	mockPersister
	loading chan struct{}
	gate    chan struct{}
}

func (p *gatedPersister) Load(ctx context.Context) (domain.Snapshot, error) {
	close(p.loading)
	<-p.gate
	return p.mockPersister.Load(ctx)
}

func TestRegistry_SlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	slow := &gatedPersister{loading: make(chan struct{}), gate: make(chan struct{})}
	r := NewRegistry(func(id string) []Option {
		if id == "slow" {
			return []Option{WithPersister(slow)}
		}
		return nil
	})
	_, err := r.Session(ctx, "fast")
	require.NoError(t, err)

	opened := make(chan error, 1)
	go func() {
		_, err := r.Session(ctx, "slow")
		opened <- err
	}()
	<-slow.loading

	others := make(chan error, 2)
	go func() {
		_, err := r.Session(ctx, "fast")
		others <- err
	}()
	go func() {
		_, err := r.Session(ctx, "new")
		others <- err
	}()
	for i := 0; i < 2; i++ {
		select {
		case err := <-others:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			close(slow.gate)
			t.Fatal("lookup blocked behind a slow session load")
		}
	}

	close(slow.gate)
	require.NoError(t, <-opened)
	assert.Equal(t, 3, r.Len())
}
