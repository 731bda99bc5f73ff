package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/heavybluesrocker/scout-ai/internal/pkg/config"
	"github.com/heavybluesrocker/scout-ai/internal/pkg/models"
)

// Ensure PostgresSink implements Sink
var _ Sink = (*PostgresSink)(nil)

// PostgresSink stores reconciled participation records in PostgreSQL,
// upserting on (player, match_key) so re-runs stay idempotent.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(cfg *config.PostgresConfig) (*PostgresSink, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresSink{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresSink) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS goalkeeper_matches (
		id SERIAL PRIMARY KEY,
		player VARCHAR(200) NOT NULL,
		match_key VARCHAR(500) NOT NULL,
		match_date DATE NOT NULL,
		home VARCHAR(200) NOT NULL,
		away VARCHAR(200) NOT NULL,
		competition VARCHAR(200) NOT NULL DEFAULT '',
		score VARCHAR(20) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		minutes INTEGER,
		goals_conceded INTEGER,
		clean_sheet BOOLEAN,
		yellow INTEGER,
		red INTEGER,
		rating_mean DECIMAL(4, 2),
		conflicts TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(player, match_key)
	);

	CREATE INDEX IF NOT EXISTS idx_goalkeeper_matches_player ON goalkeeper_matches(player);
	CREATE INDEX IF NOT EXISTS idx_goalkeeper_matches_date ON goalkeeper_matches(match_date);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresSink) StoreRecords(ctx context.Context, player string, records []models.MatchRecord) error {
	const query = `
	INSERT INTO goalkeeper_matches
		(player, match_key, match_date, home, away, competition, score,
		 status, minutes, goals_conceded, clean_sheet, yellow, red, rating_mean, conflicts, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
	ON CONFLICT (player, match_key) DO UPDATE SET
		competition = EXCLUDED.competition,
		score = EXCLUDED.score,
		status = EXCLUDED.status,
		minutes = EXCLUDED.minutes,
		goals_conceded = EXCLUDED.goals_conceded,
		clean_sheet = EXCLUDED.clean_sheet,
		yellow = EXCLUDED.yellow,
		red = EXCLUDED.red,
		rating_mean = EXCLUDED.rating_mean,
		conflicts = EXCLUDED.conflicts,
		updated_at = NOW()`

	for _, rec := range records {
		final := rec.Final
		_, err := s.db.ExecContext(ctx, query,
			player,
			rec.Key.Key(),
			rec.Key.Date,
			rec.Key.Home,
			rec.Key.Away,
			rec.Competition,
			rec.Score,
			string(final.Status),
			final.Minutes,
			final.GoalsConceded,
			final.CleanSheet,
			final.Yellow,
			final.Red,
			final.Rating,
			strings.Join(rec.Conflicts, "; "),
		)
		if err != nil {
			return fmt.Errorf("store record %s: %w", rec.Key.Key(), err)
		}
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
