// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// MatchesStats returns aggregate metadata for a user's matches: the total
// number of rows and the latest UpdatedAt among those rows and the profiles
// of the other participants, whose public fields the match list embeds.
//
// Return values:
//   - count:        total matches userID takes part in
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func MatchesStats(ctx context.Context, db *gorm.DB, userID int64) (count int64, maxUpdatedAt *time.Time, err error) {
	db = db.WithContext(ctx)
	mine := func() *gorm.DB {
		return db.Model(&domain.Match{}).
			Where("user_a_id = ? OR user_b_id = ?", userID, userID)
	}

	if err = mine().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	matchAt, err := latestUpdate(mine())
	if err != nil {
		return 0, nil, err
	}
	peers := db.Model(&domain.User{}).Where("id IN (?) OR id IN (?)",
		db.Model(&domain.Match{}).Select("user_b_id").Where("user_a_id = ?", userID),
		db.Model(&domain.Match{}).Select("user_a_id").Where("user_b_id = ?", userID),
	)
	peerAt, err := latestUpdate(peers)
	if err != nil {
		return 0, nil, err
	}
	if peerAt.After(matchAt) {
		matchAt = peerAt
	}
	return count, &matchAt, nil
}

// latestUpdate returns the greatest updated_at in q, or the zero time.
// Ordering avoids MAX(), which SQLite hands back as TEXT.
func latestUpdate(q *gorm.DB) (time.Time, error) {
	var row struct {
		UpdatedAt time.Time
	}
	err := q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error
	return row.UpdatedAt, err
}
