package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stocktracker/internal/provider"
)

type stubSource struct {
	historyCalls  atomic.Int32
	intradayCalls atomic.Int32
	closes        []provider.Close
	err           error
	gate          chan struct{}
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) History(_ context.Context, _ string, _ int) ([]provider.Close, error) {
	s.historyCalls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.closes, s.err
}

func (s *stubSource) Intraday(_ context.Context, _ string) (decimal.Decimal, bool, error) {
	s.intradayCalls.Add(1)
	return decimal.NewFromInt(7), true, nil
}

func twoCloses() []provider.Close {
	return []provider.Close{{Price: decimal.NewFromInt(1)}, {Price: decimal.NewFromInt(2)}}
}

func TestSource_HistoryCachedUntilTTL(t *testing.T) {
	t.Parallel()

	// Arrange: a controllable clock
	now := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	stub := &stubSource{closes: twoCloses()}
	c := &Source{P: stub, TTL: time.Minute, now: func() time.Time { return now }}

	// Act: two reads inside the TTL, one after it
	_, err := c.History(t.Context(), "AAPL", 5)
	require.NoError(t, err)
	_, err = c.History(t.Context(), "AAPL", 5)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = c.History(t.Context(), "AAPL", 5)
	require.NoError(t, err)

	// Assert
	require.EqualValues(t, 2, stub.historyCalls.Load())
}

func TestSource_WiderLookbackBypassesCache(t *testing.T) {
	t.Parallel()

	stub := &stubSource{closes: twoCloses()}
	c := &Source{P: stub, TTL: time.Minute}

	_, err := c.History(t.Context(), "AAPL", 2)
	require.NoError(t, err)
	_, err = c.History(t.Context(), "AAPL", 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, stub.historyCalls.Load())
}

func TestSource_IntradayNeverCached(t *testing.T) {
	t.Parallel()

	stub := &stubSource{closes: twoCloses()}
	c := &Source{P: stub, TTL: time.Hour}
	for i := 0; i < 3; i++ {
		_, ok, err := c.Intraday(t.Context(), "AAPL")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.EqualValues(t, 3, stub.intradayCalls.Load())
}

func TestSource_ErrorsAndShortHistoriesAreNotCached(t *testing.T) {
	t.Parallel()

	stub := &stubSource{err: errors.New("down")}
	c := &Source{P: stub, TTL: time.Hour}
	_, err := c.History(t.Context(), "AAPL", 5)
	require.Error(t, err)

	stub.err = nil
	stub.closes = twoCloses()[:1]
	got, err := c.History(t.Context(), "AAPL", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	stub.closes = twoCloses()
	got, err = c.History(t.Context(), "AAPL", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.EqualValues(t, 3, stub.historyCalls.Load())
}

func TestSource_ConcurrentMissesShareOneCall(t *testing.T) {
	t.Parallel()

	stub := &stubSource{closes: twoCloses(), gate: make(chan struct{})}
	c := &Source{P: stub, TTL: time.Hour}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.History(context.Background(), "AAPL", 5)
			require.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return stub.historyCalls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(stub.gate)
	wg.Wait()

	require.EqualValues(t, 1, stub.historyCalls.Load())
}

func TestSource_MaxItemsCapsEntries(t *testing.T) {
	t.Parallel()

	stub := &stubSource{closes: twoCloses()}
	c := &Source{P: stub, TTL: time.Hour, MaxItems: 2}
	for _, sym := range []string{"A", "B", "C", "D"} {
		_, err := c.History(t.Context(), sym, 2)
		require.NoError(t, err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	require.LessOrEqual(t, len(c.items), 2)
	require.Contains(t, c.items, "D")
}
