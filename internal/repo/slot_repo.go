// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AvailabilitySlot model.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// ReplaceSlots deletes every slot of (matchID, userID) and inserts one row
// per window, in the given order. Windows are expected to be validated and
// normalised by the caller. Should run inside a transaction.
func ReplaceSlots(ctx context.Context, db *gorm.DB, matchID, userID int64, windows []domain.Window) ([]domain.AvailabilitySlot, error) {
	if err := db.WithContext(ctx).
		Where("match_id = ? AND user_id = ?", matchID, userID).
		Delete(&domain.AvailabilitySlot{}).Error; err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []domain.AvailabilitySlot{}, nil
	}

	now := time.Now().UTC()
	rows := make([]domain.AvailabilitySlot, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, domain.AvailabilitySlot{
			MatchID:   matchID,
			UserID:    userID,
			Date:      w.Date,
			StartTime: w.Start,
			EndTime:   w.End,
			CreatedAt: now,
		})
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSlots returns every slot of the match in stored order
// (CreatedAt ASC, ID ASC).
func ListSlots(ctx context.Context, db *gorm.DB, matchID int64) ([]domain.AvailabilitySlot, error) {
	var out []domain.AvailabilitySlot
	err := db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// DeleteSlotsForMatch removes every slot of the match for both participants
// and reports how many rows were deleted.
func DeleteSlotsForMatch(ctx context.Context, db *gorm.DB, matchID int64) (int64, error) {
	res := db.WithContext(ctx).Where("match_id = ?", matchID).Delete(&domain.AvailabilitySlot{})
	return res.RowsAffected, res.Error
}

// GetSlot fetches a slot owned by (matchID, userID), or ErrNotFound.
func GetSlot(ctx context.Context, db *gorm.DB, matchID, userID, slotID int64) (*domain.AvailabilitySlot, error) {
	var s domain.AvailabilitySlot
	err := db.WithContext(ctx).
		Where("id = ? AND match_id = ? AND user_id = ?", slotID, matchID, userID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSlot overwrites the window of a slot owned by (matchID, userID).
// Returns ErrNotFound if no such slot exists.
func UpdateSlot(ctx context.Context, db *gorm.DB, matchID, userID, slotID int64, w domain.Window) (*domain.AvailabilitySlot, error) {
	res := db.WithContext(ctx).
		Model(&domain.AvailabilitySlot{}).
		Where("id = ? AND match_id = ? AND user_id = ?", slotID, matchID, userID).
		Updates(map[string]any{
			"date":       w.Date,
			"start_time": w.Start,
			"end_time":   w.End,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetSlot(ctx, db, matchID, userID, slotID)
}

// DeleteSlot removes a slot owned by (matchID, userID), or returns ErrNotFound.
func DeleteSlot(ctx context.Context, db *gorm.DB, matchID, userID, slotID int64) error {
	res := db.WithContext(ctx).
		Where("id = ? AND match_id = ? AND user_id = ?", slotID, matchID, userID).
		Delete(&domain.AvailabilitySlot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
