package store

import (
	"context"
	"fmt"

	"github.com/fortuna/victoria/internal/model"
)

// SaveMatches upserts a group's matches and their duels.
func (db *Database) SaveMatches(ctx context.Context, groupLabel string, matches []model.Match) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin matches tx: %w", err)
	}
	defer tx.Rollback()

	const matchQuery = `
		INSERT INTO matches (match_id, group_label, competition, match_date, venue,
			home_team, away_team, score_home, score_away, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (match_id, group_label) DO UPDATE SET
			score_home = EXCLUDED.score_home,
			score_away = EXCLUDED.score_away,
			status     = EXCLUDED.status,
			updated_at = NOW()`

	const duelQuery = `
		INSERT INTO duels (match_id, group_label, position, home_code, home_player,
			home_score, away_code, away_player, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (match_id, group_label, position) DO UPDATE SET
			home_player = EXCLUDED.home_player,
			home_score  = EXCLUDED.home_score,
			away_player = EXCLUDED.away_player,
			away_score  = EXCLUDED.away_score`

	for i := range matches {
		m := &matches[i]
		if _, err := tx.ExecContext(ctx, matchQuery,
			m.MatchID, groupLabel, m.Competition, m.Date, m.Venue,
			m.HomeTeam, m.AwayTeam, m.ScoreHome, m.ScoreAway, m.Status,
		); err != nil {
			return fmt.Errorf("upsert match %s: %w", m.MatchID, err)
		}

		for pos, d := range m.Duels {
			if _, err := tx.ExecContext(ctx, duelQuery,
				m.MatchID, groupLabel, pos, string(d.HomeCode), d.HomePlayer,
				d.HomeScore, string(d.AwayCode), d.AwayPlayer, d.AwayScore,
			); err != nil {
				return fmt.Errorf("upsert duel %s/%d: %w", m.MatchID, pos, err)
			}
		}
	}

	return tx.Commit()
}

// SaveLeaderboard replaces a group's leaderboard rows.
func (db *Database) SaveLeaderboard(ctx context.Context, groupLabel string, board []model.PlayerRating) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin leaderboard tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard WHERE group_label = $1`, groupLabel); err != nil {
		return fmt.Errorf("clear leaderboard: %w", err)
	}

	const query = `
		INSERT INTO leaderboard (group_label, player, elo, club, matches, wins, win_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	for _, row := range board {
		if _, err := tx.ExecContext(ctx, query,
			groupLabel, row.Player, row.Elo, row.Club, row.Matches, row.Wins, row.WinRate,
		); err != nil {
			return fmt.Errorf("insert leaderboard row %s: %w", row.Player, err)
		}
	}

	return tx.Commit()
}

// SaveStandings replaces a group's standings rows.
func (db *Database) SaveStandings(ctx context.Context, groupLabel string, records []model.TeamRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin standings tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM standings WHERE group_label = $1`, groupLabel); err != nil {
		return fmt.Errorf("clear standings: %w", err)
	}

	const query = `
		INSERT INTO standings (group_label, position, team, matches, wins, losses,
			points_for, points_against, points_diff, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, query,
			groupLabel, rec.Position, rec.Team, rec.Matches, rec.Wins, rec.Losses,
			rec.PointsFor, rec.PointsAgainst, rec.PointsDiff, rec.Points,
		); err != nil {
			return fmt.Errorf("insert standings row %s: %w", rec.Team, err)
		}
	}

	return tx.Commit()
}
