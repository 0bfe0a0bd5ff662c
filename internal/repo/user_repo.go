// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read helpers for the User model, which
// the matching engine consults but does not own.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// CreateUser inserts a profile row. Used by seeding and tests; profiles are
// normally written by the profile collaborator.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return translate(db.WithContext(ctx).Create(u).Error)
}

// UserExists reports whether a user row with the given id is present.
func UserExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUsersByIDs loads the given profiles keyed by id. Missing ids are simply
// absent from the result.
func GetUsersByIDs(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.User, error) {
	out := make(map[int64]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}
