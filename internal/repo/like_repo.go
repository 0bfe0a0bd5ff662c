// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Like model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// CreateLike inserts a LIKED edge from -> to. A second insert for the same
// ordered pair fails with ErrDuplicate.
func CreateLike(ctx context.Context, db *gorm.DB, from, to int64) (*domain.Like, error) {
	l := &domain.Like{
		FromUserID: from,
		ToUserID:   to,
		Status:     domain.LikeStatusLiked,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// HasLike reports whether a LIKED edge from -> to exists.
func HasLike(ctx context.Context, db *gorm.DB, from, to int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", from, to, domain.LikeStatusLiked).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// ListLikedUserIDs returns the ids of every user that from has liked, in the
// order the likes were recorded.
func ListLikedUserIDs(ctx context.Context, db *gorm.DB, from int64) ([]int64, error) {
	ids := []int64{}
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("from_user_id = ? AND status = ?", from, domain.LikeStatusLiked).
		Order("created_at ASC, id ASC").
		Pluck("to_user_id", &ids).Error
	return ids, err
}
