// Package fetch retrieves the remote competition resources: the match list
// endpoint, per-match acta pages and standings pages. Acta and standings
// pages are rendered by JavaScript, so those go through a headless browser;
// every browser fetch is guarded by the resource cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fortuna/victoria/internal/cache"
	"github.com/fortuna/victoria/internal/metrics"
	"github.com/fortuna/victoria/internal/model"
)

const (
	// UserAgent for both plain-HTTP and browser requests.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxMatchesPerRequest is the page size asked of the list endpoint; a
	// round-robin group fits in one page.
	maxMatchesPerRequest = 2000

	listTimeout = 30 * time.Second
)

// ActaKey is the cache key of a match's raw acta markup.
func ActaKey(matchID string) string {
	return fmt.Sprintf("actas/acta_%s.html", matchID)
}

// StandingsKey is the cache key of a competition's raw standings markup.
func StandingsKey(competitionID int) string {
	return fmt.Sprintf("standings/standings_%d.html", competitionID)
}

// Client performs one network or browser round-trip per resource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      cache.Store

	navTimeout time.Duration

	// Chromedp allocator shared by all browser fetches.
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient builds the HTTP client and the headless-browser allocator.
func NewClient(baseURL string, store cache.Store, navTimeout time.Duration) *Client {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: listTimeout},
		store:      store,
		navTimeout: navTimeout,
		allocCtx:   allocCtx,
		cancel:     cancel,
	}
}

// Close releases the browser allocator.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchMatchList retrieves one page of match metadata for the group. On
// transport errors it returns the empty-result marker together with the
// error, so the caller can log it and still proceed with zero matches.
func (c *Client) FetchMatchList(ctx context.Context, group model.Group) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/es/competition/loadMatchesDatatable/%d", c.baseURL, group.CompetitionID)
	form := url.Values{
		"start":  {"0"},
		"length": {fmt.Sprint(maxMatchesPerRequest)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return EmptyListPayload, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("list").Inc()
		return EmptyListPayload, fmt.Errorf("fetch match list %d: %w", group.CompetitionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchFailures.WithLabelValues("list").Inc()
		return EmptyListPayload, fmt.Errorf("fetch match list %d: status %d", group.CompetitionID, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("list").Inc()
		return EmptyListPayload, fmt.Errorf("read match list %d: %w", group.CompetitionID, err)
	}

	metrics.FetchesTotal.WithLabelValues("list").Inc()
	return payload, nil
}

// FetchActa retrieves a match's acta markup: cache first, then a browser
// session that opens the detail tab and waits for the results table. The
// boolean reports a cache hit. A missing tab or timeout is a recoverable
// per-match error, never pipeline-fatal.
func (c *Client) FetchActa(ctx context.Context, matchID string, competitionID int) (string, bool, error) {
	key := ActaKey(matchID)
	if data, err := c.store.Read(ctx, key); err == nil {
		metrics.CacheHits.WithLabelValues("acta").Inc()
		return string(data), true, nil
	}

	pageURL := fmt.Sprintf("%s/es/matches/view/%s/c-%d", c.baseURL, matchID, competitionID)

	var html string
	err := c.runBrowser(ctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Click(`a[data-content='summary']`, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitVisible(`li[data-content='summary'] table`, chromedp.ByQuery),
		chromedp.InnerHTML(`li[data-content='summary']`, &html, chromedp.ByQuery),
	)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("acta").Inc()
		return "", false, fmt.Errorf("fetch acta for match %s: %w", matchID, err)
	}
	if html == "" {
		metrics.FetchFailures.WithLabelValues("acta").Inc()
		return "", false, fmt.Errorf("fetch acta for match %s: empty summary tab", matchID)
	}

	metrics.FetchesTotal.WithLabelValues("acta").Inc()

	// A failed cache write only costs a refetch next run.
	if werr := c.store.Write(ctx, key, []byte(html)); werr != nil {
		log.Printf("[fetch] cache write failed for match %s: %v", matchID, werr)
	}
	return html, false, nil
}

// FetchStandings retrieves a competition's standings markup, cache first.
func (c *Client) FetchStandings(ctx context.Context, competitionID int) (string, bool, error) {
	key := StandingsKey(competitionID)
	if data, err := c.store.Read(ctx, key); err == nil {
		metrics.CacheHits.WithLabelValues("standings").Inc()
		return string(data), true, nil
	}

	pageURL := fmt.Sprintf("%s/es/competition/view/%d#standings", c.baseURL, competitionID)

	var html string
	err := c.runBrowser(ctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("div.standings-results", chromedp.ByQuery),
		chromedp.InnerHTML("div.standings-results", &html, chromedp.ByQuery),
	)
	if err != nil {
		metrics.FetchFailures.WithLabelValues("standings").Inc()
		return "", false, fmt.Errorf("fetch standings for competition %d: %w", competitionID, err)
	}
	if html == "" {
		metrics.FetchFailures.WithLabelValues("standings").Inc()
		return "", false, fmt.Errorf("fetch standings for competition %d: container empty", competitionID)
	}

	metrics.FetchesTotal.WithLabelValues("standings").Inc()

	if werr := c.store.Write(ctx, key, []byte(html)); werr != nil {
		log.Printf("[fetch] cache write failed for standings %d: %v", competitionID, werr)
	}
	return html, false, nil
}

// runBrowser executes the actions in a fresh browser context bounded by the
// navigation timeout, so waits never hang indefinitely.
func (c *Client) runBrowser(ctx context.Context, actions ...chromedp.Action) error {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	runCtx, cancelRun := context.WithTimeout(browserCtx, c.navTimeout)
	defer cancelRun()

	// Abandon the browser task when the caller's context is cancelled.
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancelRun()
		<-done
		return ctx.Err()
	}
}
