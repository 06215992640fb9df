// Package pipeline wires the full run per competition group:
// crawl -> parse -> enrich -> rate -> persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/fortuna/victoria/internal/acta"
	"github.com/fortuna/victoria/internal/cache"
	"github.com/fortuna/victoria/internal/config"
	"github.com/fortuna/victoria/internal/events"
	"github.com/fortuna/victoria/internal/fetch"
	"github.com/fortuna/victoria/internal/metrics"
	"github.com/fortuna/victoria/internal/model"
	"github.com/fortuna/victoria/internal/rating"
	"github.com/fortuna/victoria/internal/standings"
	"github.com/fortuna/victoria/internal/store"
)

// Fetcher is the network surface the orchestrator depends on.
type Fetcher interface {
	FetchMatchList(ctx context.Context, group model.Group) ([]byte, error)
	FetchActa(ctx context.Context, matchID string, competitionID int) (string, bool, error)
	FetchStandings(ctx context.Context, competitionID int) (string, bool, error)
}

// Orchestrator runs the pipeline for every configured group. Groups run
// independently: a fatal failure in one does not stop the others.
type Orchestrator struct {
	cfg     *config.Config
	fetcher Fetcher
	sched   *fetch.Scheduler
	cache   cache.Store
	db      *store.Database // nil unless Postgres mirroring is configured
	bus     *events.Bus
}

// New assembles an orchestrator; db may be nil.
func New(cfg *config.Config, fetcher Fetcher, resourceCache cache.Store, db *store.Database, bus *events.Bus) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		fetcher: fetcher,
		sched:   fetch.NewScheduler(fetcher, cfg.Concurrency, cfg.Pacing()),
		cache:   resourceCache,
		db:      db,
		bus:     bus,
	}
}

// Run processes all groups sequentially. The returned error is non-nil only
// when a final output artifact (enriched matches or leaderboard) could not
// be written for at least one group; all other failures are contained and
// logged.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log.Printf("Pipeline run %s starting (%d groups)", runID, len(o.cfg.Groups))
	o.bus.Publish(events.Event{RunID: runID, Type: events.TypeRunStarted})

	var fatal []error
	for _, g := range o.cfg.ModelGroups() {
		if err := ctx.Err(); err != nil {
			fatal = append(fatal, err)
			break
		}
		if err := o.runGroup(ctx, runID, g); err != nil {
			log.Printf("❌ Group %s failed: %v", g.Label, err)
			fatal = append(fatal, fmt.Errorf("group %s: %w", g.Label, err))
		}
	}

	metrics.LastRunTimestamp.SetToCurrentTime()
	o.bus.Publish(events.Event{RunID: runID, Type: events.TypeRunCompleted})
	log.Printf("Pipeline run %s complete", runID)

	return errors.Join(fatal...)
}

// runGroup executes crawl -> enrich -> standings -> rate -> persist for one
// group.
func (o *Orchestrator) runGroup(ctx context.Context, runID string, group model.Group) error {
	log.Printf("═══ %s (competition %d) ═══", group.Label, group.CompetitionID)

	// Step 1: match list. Transport errors degrade to an empty list.
	payload, err := o.fetcher.FetchMatchList(ctx, group)
	if err != nil {
		log.Printf("⚠️  Match list fetch failed for %s: %v (continuing with empty list)", group.Label, err)
	}
	matches := fetch.ExtractGroupMatches(payload, group)
	log.Printf("📦 %d matches retrieved in %s", len(matches), group.Label)

	if err := writeArtifact(o.cfg.DataDir, MatchesFile(group.Label), matches); err != nil {
		// The raw list is resumable from the next run; keep going.
		log.Printf("⚠️  Raw match list not written for %s: %v", group.Label, err)
	}

	// Step 2: concurrent acta crawl for matches the source reports played.
	var candidates []model.Match
	for i := range matches {
		if fetch.IsFinishedCandidate(&matches[i]) {
			candidates = append(candidates, matches[i])
		}
	}
	batch := o.sched.FetchActas(ctx, candidates)
	log.Printf("✓ Acta crawl for %s: %d fetched, %d cached, %d failed",
		group.Label, batch.Fetched, batch.Cached, batch.Failed)

	// Step 3: enrichment. A match is finished only once a non-empty duel
	// list is attached; everything else stays scheduled.
	enriched := 0
	for i := range matches {
		m := &matches[i]
		if !fetch.IsFinishedCandidate(m) {
			continue
		}

		raw, err := o.cache.Read(ctx, fetch.ActaKey(m.MatchID))
		if err != nil {
			continue // recorded as a fetch failure already
		}
		o.bus.Publish(events.Event{RunID: runID, Type: events.TypeActaFetched, Group: group.Label, MatchID: m.MatchID})

		duels := acta.Parse(string(raw), m)
		if len(duels) == 0 {
			log.Printf("⚠️  Match %s: acta could not be reconstructed", m.MatchID)
			continue
		}

		m.Duels = duels
		m.Status = model.StatusFinished
		enriched++
		metrics.DuelsParsed.Add(float64(len(duels)))
		metrics.MatchesEnriched.Inc()
		o.bus.Publish(events.Event{RunID: runID, Type: events.TypeMatchEnriched, Group: group.Label, MatchID: m.MatchID})
	}
	log.Printf("✓ Enriched %d/%d played matches in %s", enriched, len(candidates), group.Label)

	if err := writeArtifact(o.cfg.DataDir, EnrichedFile(group.Label), matches); err != nil {
		return fmt.Errorf("write enriched matches: %w", err)
	}

	// Step 4: standings, best effort.
	o.processStandings(ctx, group)

	// Step 5: rating replay over the enriched history.
	engine := rating.NewEngine()
	engine.Replay(matches)
	board := engine.Leaderboard()
	metrics.PlayersRated.WithLabelValues(group.Label).Set(float64(len(board)))
	log.Printf("🏓 Leaderboard for %s: %d players rated", group.Label, len(board))

	if err := writeArtifact(o.cfg.DataDir, LeaderboardFile(group.Label), board); err != nil {
		return fmt.Errorf("write leaderboard: %w", err)
	}

	// Step 6: optional Postgres mirror; files stay the artifact of record.
	if o.db != nil {
		if err := o.db.SaveMatches(ctx, group.Label, matches); err != nil {
			log.Printf("⚠️  Postgres mirror (matches) failed for %s: %v", group.Label, err)
		}
		if err := o.db.SaveLeaderboard(ctx, group.Label, board); err != nil {
			log.Printf("⚠️  Postgres mirror (leaderboard) failed for %s: %v", group.Label, err)
		}
	}

	o.bus.Publish(events.Event{
		RunID: runID, Type: events.TypeGroupCompleted, Group: group.Label,
		Message: fmt.Sprintf("%d matches, %d enriched, %d players", len(matches), enriched, len(board)),
	})
	return nil
}

func (o *Orchestrator) processStandings(ctx context.Context, group model.Group) {
	html, _, err := o.fetcher.FetchStandings(ctx, group.CompetitionID)
	if err != nil {
		log.Printf("⚠️  Standings fetch failed for %s: %v", group.Label, err)
		return
	}

	records := standings.Parse(html, group.Label)
	if len(records) == 0 {
		log.Printf("⚠️  No standings rows found for %s", group.Label)
	} else {
		log.Printf("✓ Parsed %d standings rows for %s", len(records), group.Label)
	}

	if records == nil {
		records = []model.TeamRecord{}
	}
	if err := writeArtifact(o.cfg.DataDir, StandingsFile(group.Label), records); err != nil {
		log.Printf("⚠️  Standings not written for %s: %v", group.Label, err)
		return
	}

	if o.db != nil {
		if err := o.db.SaveStandings(ctx, group.Label, records); err != nil {
			log.Printf("⚠️  Postgres mirror (standings) failed for %s: %v", group.Label, err)
		}
	}
}
