package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// LeaderboardRow is one aggregated line of the win/loss leaderboard.
type LeaderboardRow struct {
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// RecordMatchResult appends one seat's outcome for a finished round. Details
// are stored as JSONB alongside the outcome for later analysis.
func RecordMatchResult(ctx context.Context, displayName, variant, outcome string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal match details: %w", err)
	}

	q := `INSERT INTO match_results (display_name, variant, outcome, details)
	      VALUES ($1, $2, $3, $4)`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, displayName, variant, outcome, payload)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

// FetchTopPlayers aggregates win/loss counts per display name for a variant,
// ordered by wins.
func FetchTopPlayers(ctx context.Context, variant string, limit int) ([]LeaderboardRow, error) {
	q := `
	SELECT display_name,
	       COUNT(*) FILTER (WHERE outcome = 'win')  AS wins,
	       COUNT(*) FILTER (WHERE outcome = 'loss') AS losses
	FROM match_results
	WHERE variant = $1
	GROUP BY display_name
	ORDER BY wins DESC, losses ASC
	LIMIT $2
	`
	rows, err := DB.Query(ctx, q, variant, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.DisplayName, &r.Wins, &r.Losses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
