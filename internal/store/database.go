// Package store mirrors the pipeline's artifacts into PostgreSQL for
// deployments that want queryable history. The JSON files in the data dir
// remain the artifact of record; everything here is best effort.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the PostgreSQL connection used for artifact mirroring.
type Database struct {
	conn *sql.DB
}

// NewDatabase opens and pings the connection.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool tuning; the pipeline writes in short bursts.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{conn: db}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries.
func (db *Database) DB() *sql.DB {
	return db.conn
}

// EnsureSchema creates the mirror tables if they do not exist yet.
func (db *Database) EnsureSchema() error {
	log.Println("Ensuring database schema...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			match_id     TEXT NOT NULL,
			group_label  TEXT NOT NULL,
			competition  INTEGER NOT NULL,
			match_date   TEXT,
			venue        TEXT,
			home_team    TEXT NOT NULL,
			away_team    TEXT NOT NULL,
			score_home   INTEGER NOT NULL DEFAULT 0,
			score_away   INTEGER NOT NULL DEFAULT 0,
			status       TEXT NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (match_id, group_label)
		)`,
		`CREATE TABLE IF NOT EXISTS duels (
			match_id     TEXT NOT NULL,
			group_label  TEXT NOT NULL,
			position     INTEGER NOT NULL,
			home_code    TEXT NOT NULL,
			home_player  TEXT NOT NULL,
			home_score   INTEGER NOT NULL,
			away_code    TEXT NOT NULL,
			away_player  TEXT NOT NULL,
			away_score   INTEGER NOT NULL,
			PRIMARY KEY (match_id, group_label, position)
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			group_label  TEXT NOT NULL,
			player       TEXT NOT NULL,
			elo          INTEGER NOT NULL,
			club         TEXT NOT NULL,
			matches      INTEGER NOT NULL,
			wins         INTEGER NOT NULL,
			win_rate     DOUBLE PRECISION NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (group_label, player)
		)`,
		`CREATE TABLE IF NOT EXISTS standings (
			group_label    TEXT NOT NULL,
			position       INTEGER NOT NULL,
			team           TEXT NOT NULL,
			matches        INTEGER NOT NULL,
			wins           INTEGER NOT NULL,
			losses         INTEGER NOT NULL,
			points_for     INTEGER NOT NULL,
			points_against INTEGER NOT NULL,
			points_diff    INTEGER NOT NULL,
			points         INTEGER NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (group_label, team)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	log.Println("✓ Database schema ready")
	return nil
}
