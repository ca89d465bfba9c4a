package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quotegarden/client-core/internal/core/ports"
)

func TestCache_FetchCachesSettledValue(t *testing.T) {
	c := New()
	var calls int32

	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "v1", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(context.Background(), "k", fetch)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if v != "v1" {
			t.Fatalf("unexpected value %v", v)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one upstream call, got %d", n)
	}
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	c := New()
	var calls int32

	fetch := func(ctx context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, context.DeadlineExceeded
		}
		return "v2", nil
	}

	if _, err := c.Fetch(context.Background(), "k", fetch); err == nil {
		t.Fatal("expected fetch error")
	}
	if _, ok := c.Peek("k"); ok {
		t.Fatal("failed fetch left a value behind")
	}

	v, err := c.Fetch(context.Background(), "k", fetch)
	if err != nil || v != "v2" {
		t.Fatalf("retry after failure: %v %v", v, err)
	}
}

func TestCache_ConcurrentFetchesCoalesce(t *testing.T) {
	c := New()
	var calls int32
	gate := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "v", nil
	}

	const readers = 8
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), "k", fetch)
			if err == nil && v != "v" {
				err = context.Canceled
			}
			errs <- err
		}()
	}

	// Let all readers pile onto the in-flight fetch, then release it.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("reader: %v", err)
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected coalesced single upstream call, got %d", n)
	}
}

func TestCache_InvalidateDuringFlightDiscardsStaleResult(t *testing.T) {
	c := New()
	gate := make(chan struct{})
	var calls int32

	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "stale", nil
	}

	done := make(chan any, 1)
	go func() {
		v, _ := c.Fetch(context.Background(), "k", fetch)
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	c.Invalidate("k")
	close(gate)

	// The caller that started the fetch still observes its result once,
	// but the superseded value must not be cached.
	if v := <-done; v != "stale" {
		t.Fatalf("in-flight caller got %v", v)
	}
	if _, ok := c.Peek("k"); ok {
		t.Fatal("stale in-flight result was cached after invalidation")
	}

	fresh := func(ctx context.Context) (any, error) { return "fresh", nil }
	v, err := c.Fetch(context.Background(), "k", fresh)
	if err != nil || v != "fresh" {
		t.Fatalf("refetch after invalidation: %v %v", v, err)
	}
}

func TestCache_SetWinsOverInFlightFetch(t *testing.T) {
	c := New()
	gate := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		<-gate
		return "old", nil
	}

	done := make(chan struct{})
	go func() {
		_, _ = c.Fetch(context.Background(), "k", fetch)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	c.Set("k", "new")
	close(gate)
	<-done

	v, ok := c.Peek("k")
	if !ok || v != "new" {
		t.Fatalf("manual write lost to stale fetch: %v %v", v, ok)
	}
}

func TestCache_InvalidateDropsValue(t *testing.T) {
	c := New()
	c.Set("k", "v")
	c.Invalidate("k")
	if _, ok := c.Peek("k"); ok {
		t.Fatal("value survived invalidation")
	}
}

var _ ports.QueryCache = (*Cache)(nil)
