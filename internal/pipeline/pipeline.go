package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/cache"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/config"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/storage"
	"github.com/heavybluesrocker/scout-ai/internal/reconcile"
	"github.com/heavybluesrocker/scout-ai/internal/resolver"
)

// Pipeline drives one run: clubs, fixtures, per-source observation and
// reconciliation for every input player, with incremental persistence so an
// interrupted run loses at most the player in flight.
type Pipeline struct {
	directory resolver.ClubDirectory
	sources   []resolver.Source
	cache     *cache.Cache
	sink      storage.Sink
	cfg       *config.Config
	output    string
}

// Result summarizes a finished run for logging and notification.
type Result struct {
	Rows          []Row
	FailedPlayers []string
	ConflictRows  int
}

func New(directory resolver.ClubDirectory, sources []resolver.Source, c *cache.Cache, sink storage.Sink, cfg *config.Config, outputPath string) *Pipeline {
	return &Pipeline{
		directory: directory,
		sources:   sources,
		cache:     c,
		sink:      sink,
		cfg:       cfg,
		output:    outputPath,
	}
}

// Run processes every player over the date window. Per-player failures are
// recorded and skipped; only context cancellation aborts the run early, and
// even then the rows produced so far are flushed and returned.
func (p *Pipeline) Run(ctx context.Context, players []Player, start, end time.Time) (Result, error) {
	var result Result

	for i, player := range players {
		if err := ctx.Err(); err != nil {
			p.flush(result.Rows)
			return result, err
		}

		rows, err := p.processPlayer(ctx, player, start, end)
		if err != nil {
			slog.Warn("Player skipped", "player", player.Name, "error", err)
			result.FailedPlayers = append(result.FailedPlayers, player.Name)
			continue
		}
		result.Rows = append(result.Rows, rows...)

		if p.sink != nil && len(rows) > 0 {
			records := make([]models.MatchRecord, 0, len(rows))
			for _, r := range rows {
				records = append(records, r.Record)
			}
			if err := p.sink.StoreRecords(ctx, player.Name, records); err != nil {
				slog.Error("Sink write failed", "player", player.Name, "error", err)
			}
		}

		if (i+1)%p.cfg.Pipeline.FlushEvery == 0 {
			p.flush(result.Rows)
		}
	}

	p.flush(result.Rows)

	for _, row := range result.Rows {
		if len(row.Record.Conflicts) > 0 {
			result.ConflictRows++
		}
	}
	return result, nil
}

// processPlayer resolves the player's clubs, collects the window's fixtures
// and observes each one on every source. A failed source degrades to an
// all-absent observation; only a total entity-resolution failure skips the
// player.
func (p *Pipeline) processPlayer(ctx context.Context, player Player, start, end time.Time) ([]Row, error) {
	clubs := p.resolveClubs(ctx, player, start, end)
	if len(clubs) == 0 {
		return nil, errors.New("no club resolved")
	}

	fixtures := p.collectFixtures(ctx, clubs, start, end)
	slog.Info("Player resolved",
		"player", player.Name,
		"clubs", len(clubs),
		"fixtures", len(fixtures))

	rows := make([]Row, 0, len(fixtures))
	for _, fixture := range fixtures {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		rows = append(rows, Row{
			Player: player.Name,
			Record: p.observeFixture(ctx, fixture, player.Name),
		})
	}
	return rows, nil
}

func (p *Pipeline) resolveClubs(ctx context.Context, player Player, start, end time.Time) []resolver.Club {
	clubs, err := p.directory.PlayerClubs(ctx, player.Name, start, end)
	if err != nil {
		slog.Debug("Profile club lookup failed", "player", player.Name, "error", err)
	}
	if len(clubs) > 0 {
		return clubs
	}

	if player.Team == "" {
		return nil
	}
	club, err := p.directory.SearchClub(ctx, player.Team)
	if err != nil {
		slog.Debug("Club search fallback failed", "player", player.Name, "team", player.Team, "error", err)
		return nil
	}
	return []resolver.Club{club}
}

// collectFixtures gathers every club's fixtures and deduplicates by the
// normalized match key. First occurrence wins: later clubs never overwrite a
// fixture already collected.
func (p *Pipeline) collectFixtures(ctx context.Context, clubs []resolver.Club, start, end time.Time) []resolver.Fixture {
	seen := make(map[string]struct{})
	var fixtures []resolver.Fixture

	for _, club := range clubs {
		clubFixtures, err := p.directory.ClubFixtures(ctx, club, start, end)
		if err != nil {
			slog.Warn("Fixture lookup failed", "club", club.Name, "error", err)
			continue
		}
		for _, f := range clubFixtures {
			key := f.Key.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			fixtures = append(fixtures, f)
		}
	}
	return fixtures
}

// observeFixture fans the locate/observe pair out over every source on a
// bounded pool and merges the results. The record is complete only after all
// sources returned or definitively failed.
func (p *Pipeline) observeFixture(ctx context.Context, fixture resolver.Fixture, playerName string) models.MatchRecord {
	record := models.MatchRecord{
		Key:         fixture.Key,
		Competition: fixture.Competition,
		Score:       fixture.Score,
		URLs:        make(map[string]string, len(p.sources)),
		BySource:    make(map[string]models.Participation, len(p.sources)),
	}

	var mu sync.Mutex
	workers := pool.New().WithMaxGoroutines(p.cfg.Pipeline.FixtureConcurrency)
	for _, src := range p.sources {
		src := src
		workers.Go(func() {
			url, part := p.observeOnSource(ctx, src, fixture.Key, playerName)
			mu.Lock()
			defer mu.Unlock()
			if url != "" {
				record.URLs[src.Name()] = url
			}
			record.BySource[src.Name()] = part
		})
	}
	workers.Wait()

	record.Final, record.Conflicts = reconcile.Merge(record.BySource)
	return record
}

func (p *Pipeline) observeOnSource(ctx context.Context, src resolver.Source, key models.MatchKey, playerName string) (string, models.Participation) {
	url, err := src.LocateMatch(ctx, key)
	if err != nil {
		if !errors.Is(err, resolver.ErrNotFound) {
			slog.Debug("Match lookup failed", "source", src.Name(), "match", key.Key(), "error", err)
		}
		return "", models.NewParticipation()
	}

	part, err := src.Observe(ctx, url, playerName)
	if err != nil {
		slog.Debug("Observation failed", "source", src.Name(), "url", url, "error", err)
		return url, models.NewParticipation()
	}
	return url, part
}

// flush persists the cache and a sorted report snapshot. Failures are logged:
// durability is best-effort mid-run and re-attempted on the next flush.
func (p *Pipeline) flush(rows []Row) {
	if err := p.cache.Save(); err != nil {
		slog.Error("Cache save failed", "error", err)
	}

	snapshot := make([]Row, len(rows))
	copy(snapshot, rows)
	SortRows(snapshot)
	if err := WriteCSV(p.output, snapshot); err != nil {
		slog.Error("Report snapshot failed", "path", p.output, "error", err)
	}
}
