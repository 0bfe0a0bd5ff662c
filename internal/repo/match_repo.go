// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Match model.
//
// Overview
//
//   - CreateMatch
//     Inserts a fresh match for a canonical pair (flags false, no schedule).
//     A concurrent insert of the same pair fails with ErrDuplicate.
//
//   - FindMatchByPair / GetMatch / GetMatchWithSlots
//     Lookups returning ErrNotFound when the row is missing.
//
//   - ListMatchesForUser
//     Matches where the user is either participant, newest first.
//
//   - LockMatch
//     Write-first row lock used to serialise submissions for one match.
//
//   - LockPair
//     Transaction-scoped advisory lock on PostgreSQL; a no-op elsewhere.
//
//   - SaveMatchState
//     Persists flags and schedule, including false/nil values.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// CreateMatch inserts a new match for pair.
func CreateMatch(ctx context.Context, db *gorm.DB, pair domain.UserPair) (*domain.Match, error) {
	now := time.Now().UTC()
	m := &domain.Match{
		UserAID:   pair.A,
		UserBID:   pair.B,
		Status:    domain.MatchStatusMatched,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// FindMatchByPair returns the match for the canonical pair, or ErrNotFound.
func FindMatchByPair(ctx context.Context, db *gorm.DB, pair domain.UserPair) (*domain.Match, error) {
	var m domain.Match
	err := db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", pair.A, pair.B).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatch fetches a match by id without its slots.
func GetMatch(ctx context.Context, db *gorm.DB, id int64) (*domain.Match, error) {
	var m domain.Match
	err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatchWithSlots fetches a match and preloads every slot of both
// participants in stored order.
func GetMatchWithSlots(ctx context.Context, db *gorm.DB, id int64) (*domain.Match, error) {
	var m domain.Match
	err := db.WithContext(ctx).
		Preload("Slots", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatchesForUser returns all matches the user takes part in, ordered
// (CreatedAt DESC, ID DESC).
func ListMatchesForUser(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Match, error) {
	var out []domain.Match
	err := db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// LockMatch touches updated_at on the match row. Inside a transaction this
// takes the row lock on PostgreSQL and the database write lock on SQLite, so
// concurrent submitters for the same match queue up behind each other.
// Returns ErrNotFound when no row was affected.
func LockMatch(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Match{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LockPair takes a transaction-scoped advisory lock keyed by the pair on
// PostgreSQL. Other dialects rely on database-level write serialisation.
// Must be called inside a transaction.
func LockPair(ctx context.Context, db *gorm.DB, pair domain.UserPair) error {
	if db.Dialector == nil || db.Dialector.Name() != DriverPostgres {
		return nil
	}
	return db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", pair.LockKey()).Error
}

// SaveMatchState persists the submission flags and the schedule of m.
// A map is used so false and nil are written rather than skipped.
func SaveMatchState(ctx context.Context, db *gorm.DB, m *domain.Match) error {
	m.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Match{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"user_a_availability_submitted": m.UserAAvailabilitySubmitted,
			"user_b_availability_submitted": m.UserBAvailabilitySubmitted,
			"date_scheduled_at":             m.DateScheduledAt,
			"updated_at":                    m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
