// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/sankalp/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so counter reads
// can run inside a mutation's transaction or standalone on a read path.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// engagementCounters derives a post's counters from its reaction and
// reply sets. When called on the mutating transaction the counters are
// guaranteed consistent with the mutation.
func engagementCounters(q querier, postID string) (models.EngagementCounters, error) {
	var c models.EngagementCounters

	err := q.QueryRow(`
		SELECT COUNT(*) FROM reaction WHERE post_id = $1 AND kind = 'like'
	`, postID).Scan(&c.Likes)
	if err != nil {
		return c, fmt.Errorf("failed to count likes: %w", err)
	}

	err = q.QueryRow(`
		SELECT COUNT(*) FROM reaction WHERE post_id = $1 AND kind = 'share'
	`, postID).Scan(&c.Shares)
	if err != nil {
		return c, fmt.Errorf("failed to count shares: %w", err)
	}

	err = q.QueryRow(`
		SELECT COUNT(*) FROM reply WHERE post_id = $1
	`, postID).Scan(&c.Comments)
	if err != nil {
		return c, fmt.Errorf("failed to count comments: %w", err)
	}

	return c, nil
}

// pollTally derives the per-option vote counts and display percentages
// for a poll. A zero-vote poll reports 0 percent for every option.
func pollTally(q querier, pollID string) ([]models.OptionTally, int, error) {
	rows, err := q.Query(`
		SELECT idx, label FROM poll_option WHERE poll_id = $1 ORDER BY idx
	`, pollID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var tally []models.OptionTally
	for rows.Next() {
		var t models.OptionTally
		if err := rows.Scan(&t.Index, &t.Label); err != nil {
			return nil, 0, fmt.Errorf("failed to scan option: %w", err)
		}
		tally = append(tally, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read options: %w", err)
	}

	countRows, err := q.Query(`
		SELECT option_idx, COUNT(*) FROM poll_vote WHERE poll_id = $1 GROUP BY option_idx
	`, pollID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query votes: %w", err)
	}
	defer countRows.Close()

	counts := make(map[int]int)
	total := 0
	for countRows.Next() {
		var idx, n int
		if err := countRows.Scan(&idx, &n); err != nil {
			return nil, 0, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[idx] = n
		total += n
	}
	if err := countRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read vote counts: %w", err)
	}

	for i := range tally {
		tally[i].Votes = counts[tally[i].Index]
		if total > 0 {
			tally[i].Percent = float64(tally[i].Votes) / float64(total)
		}
	}

	return tally, total, nil
}
