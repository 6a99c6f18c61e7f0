// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/sankalp/models"
)

// Leaderboard computes the ranked leaderboard page. Rank is never
// stored: the total order is (points desc, user_id asc) recomputed on
// every read, so identical ranking data always yields the same
// sequence.
func Leaderboard(db *sql.DB, page, pageSize int) (models.LeaderboardResponse, error) {
	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_ranking`).Scan(&total); err != nil {
		return models.LeaderboardResponse{}, fmt.Errorf("failed to count rankings: %w", err)
	}

	offset := (page - 1) * pageSize

	rows, err := db.Query(`
		SELECT user_id, points, streak, last_activity_day
		FROM user_ranking
		ORDER BY points DESC, user_id ASC
		LIMIT $1 OFFSET $2
	`, pageSize, offset)
	if err != nil {
		return models.LeaderboardResponse{}, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.UserRanking, 0, pageSize)
	for rows.Next() {
		var entry models.UserRanking
		var lastDay sql.NullString
		if err := rows.Scan(&entry.UserID, &entry.Points, &entry.Streak, &lastDay); err != nil {
			return models.LeaderboardResponse{}, fmt.Errorf("failed to scan ranking: %w", err)
		}
		entry.LastActivityDay = lastDay.String
		entry.Rank = offset + len(entries) + 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return models.LeaderboardResponse{}, fmt.Errorf("failed to read rankings: %w", err)
	}

	for i := range entries {
		badges, err := badgesFor(db, entries[i].UserID)
		if err != nil {
			return models.LeaderboardResponse{}, err
		}
		entries[i].Badges = badges
	}

	return models.LeaderboardResponse{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Entries:  entries,
	}, nil
}

// MemberRanking returns one member's ranking with rank filled in at
// read time. Returns sql.ErrNoRows if the member has no ranking record.
func MemberRanking(db *sql.DB, userID string) (models.UserRanking, error) {
	var entry models.UserRanking
	var lastDay sql.NullString
	err := db.QueryRow(`
		SELECT user_id, points, streak, last_activity_day FROM user_ranking WHERE user_id = $1
	`, userID).Scan(&entry.UserID, &entry.Points, &entry.Streak, &lastDay)
	if err != nil {
		return models.UserRanking{}, err
	}
	entry.LastActivityDay = lastDay.String

	// Position in the (points desc, user_id asc) total order.
	err = db.QueryRow(`
		SELECT COUNT(*) + 1 FROM user_ranking
		WHERE points > $1 OR (points = $2 AND user_id < $3)
	`, entry.Points, entry.Points, entry.UserID).Scan(&entry.Rank)
	if err != nil {
		return models.UserRanking{}, fmt.Errorf("failed to compute rank: %w", err)
	}

	badges, err := badgesFor(db, userID)
	if err != nil {
		return models.UserRanking{}, err
	}
	entry.Badges = badges

	return entry, nil
}

func badgesFor(db *sql.DB, userID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT badge_id FROM user_badge WHERE user_id = $1 ORDER BY earned_at, badge_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	badges := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, id)
	}

	return badges, rows.Err()
}
