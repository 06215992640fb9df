package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortuna/victoria/internal/model"
)

type fakeFetcher struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	cached   map[string]bool
	fail     map[string]error
	calls    []string
	delay    time.Duration
}

func (f *fakeFetcher) FetchActa(ctx context.Context, matchID string, _ int) (string, bool, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, cur) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, matchID)
	f.mu.Unlock()

	if err := f.fail[matchID]; err != nil {
		return "", false, err
	}
	return "<table></table>", f.cached[matchID], nil
}

func batch(n int) []model.Match {
	matches := make([]model.Match, n)
	for i := range matches {
		matches[i] = model.Match{MatchID: fmt.Sprintf("%d", 100+i), Competition: 14110}
	}
	return matches
}

func TestSchedulerFetchesAll(t *testing.T) {
	fetcher := &fakeFetcher{cached: map[string]bool{"101": true, "103": true}}
	sched := NewScheduler(fetcher, 4, 0)

	result := sched.FetchActas(context.Background(), batch(6))

	if result.Cancelled {
		t.Fatal("batch must not report cancellation")
	}
	if got := result.Fetched + result.Cached + result.Failed; got != 6 {
		t.Fatalf("accounted for %d of 6 matches", got)
	}
	if result.Cached != 2 || result.Fetched != 4 || result.Failed != 0 {
		t.Errorf("tally = %d fetched / %d cached / %d failed", result.Fetched, result.Cached, result.Failed)
	}
	if len(fetcher.calls) != 6 {
		t.Errorf("fetcher saw %d calls, want 6", len(fetcher.calls))
	}
}

func TestSchedulerHonorsConcurrencyCeiling(t *testing.T) {
	fetcher := &fakeFetcher{delay: 20 * time.Millisecond}
	sched := NewScheduler(fetcher, 3, 0)

	sched.FetchActas(context.Background(), batch(12))

	if peak := atomic.LoadInt32(&fetcher.peak); peak > 3 {
		t.Errorf("observed %d concurrent fetches, ceiling is 3", peak)
	}
}

func TestSchedulerRecordsFailuresWithoutAborting(t *testing.T) {
	boom := errors.New("navigation timeout")
	fetcher := &fakeFetcher{fail: map[string]error{"102": boom}}
	sched := NewScheduler(fetcher, 2, 0)

	result := sched.FetchActas(context.Background(), batch(5))

	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	if !errors.Is(result.Errors["102"], boom) {
		t.Errorf("Errors[102] = %v", result.Errors["102"])
	}
	if result.Fetched != 4 {
		t.Errorf("Fetched = %d, remaining matches must still be fetched", result.Fetched)
	}
}

func TestSchedulerStopsOnCancellation(t *testing.T) {
	fetcher := &fakeFetcher{delay: 50 * time.Millisecond}
	sched := NewScheduler(fetcher, 1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	result := sched.FetchActas(ctx, batch(20))

	if !result.Cancelled {
		t.Fatal("batch must report cancellation")
	}
	if len(fetcher.calls)+result.Failed >= 20 {
		t.Errorf("cancellation did not stop scheduling, %d calls", len(fetcher.calls))
	}
}

func TestNewSchedulerDefaults(t *testing.T) {
	sched := NewScheduler(&fakeFetcher{}, 0, -time.Second)
	if sched.concurrency != DefaultConcurrency {
		t.Errorf("concurrency = %d, want %d", sched.concurrency, DefaultConcurrency)
	}
	if sched.pacing != DefaultPacing {
		t.Errorf("pacing = %v, want %v", sched.pacing, DefaultPacing)
	}
}
