package fetch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/victoria/internal/model"
)

// Crawl defaults: at most four detail fetches in flight, one second of
// pacing after each network fetch before the slot is released.
const (
	DefaultConcurrency = 4
	DefaultPacing      = time.Second
)

// DetailFetcher is the per-match fetch operation driven by the scheduler.
type DetailFetcher interface {
	FetchActa(ctx context.Context, matchID string, competitionID int) (html string, cached bool, err error)
}

// BatchResult aggregates one batch's outcome. A single match's failure
// never aborts the batch; it is recorded here and the match stays
// unenriched.
type BatchResult struct {
	Fetched   int
	Cached    int
	Failed    int
	Cancelled bool

	mu     sync.Mutex
	Errors map[string]error
}

func (r *BatchResult) recordFetch(cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached {
		r.Cached++
	} else {
		r.Fetched++
	}
}

func (r *BatchResult) recordFailure(matchID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed++
	r.Errors[matchID] = err
}

// Scheduler drives many acta fetches concurrently under a fixed ceiling,
// pacing requests so the remote service is never hammered.
type Scheduler struct {
	fetcher     DetailFetcher
	concurrency int
	pacing      time.Duration
}

// NewScheduler applies the crawl defaults for out-of-range settings.
func NewScheduler(fetcher DetailFetcher, concurrency int, pacing time.Duration) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if pacing < 0 {
		pacing = DefaultPacing
	}
	return &Scheduler{fetcher: fetcher, concurrency: concurrency, pacing: pacing}
}

// FetchActas fetches every match's acta. Completion order between matches is
// unspecified; when FetchActas returns, every fetchable match has either a
// cached artifact or a recorded failure. Cancellation stops scheduling at
// task boundaries; cache writes stay atomic per resource, so an abandoned
// batch never leaves corrupt artifacts.
func (s *Scheduler) FetchActas(ctx context.Context, matches []model.Match) *BatchResult {
	result := &BatchResult{Errors: make(map[string]error)}
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range matches {
		m := &matches[i]

		select {
		case <-ctx.Done():
			result.Cancelled = true
			wg.Wait()
			return result
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			_, cached, err := s.fetcher.FetchActa(ctx, m.MatchID, m.Competition)
			if err != nil {
				log.Printf("[crawl] match %s: %v", m.MatchID, err)
				result.recordFailure(m.MatchID, err)
			} else {
				result.recordFetch(cached)
			}

			// Pace real fetches while still holding the slot. Cache hits
			// touch no network and skip the pause.
			if !cached {
				select {
				case <-ctx.Done():
				case <-time.After(s.pacing):
				}
			}
		}()
	}

	wg.Wait()
	return result
}
