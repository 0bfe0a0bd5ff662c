package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// ProfileStore is the narrow view of the profile collaborator the engine
// relies on: existence checks and public profile lookups.
type ProfileStore interface {
	// UserExists reports whether a user with the given id exists.
	UserExists(ctx context.Context, id int64) (bool, error)

	// Profiles loads the given users keyed by id. Unknown ids are omitted.
	Profiles(ctx context.Context, ids []int64) (map[int64]domain.User, error)
}

// DBProfileStore reads profiles from the shared users table.
type DBProfileStore struct {
	DB *gorm.DB
}

// UserExists implements ProfileStore.
func (s DBProfileStore) UserExists(ctx context.Context, id int64) (bool, error) {
	return repo.UserExists(ctx, s.DB, id)
}

// Profiles implements ProfileStore.
func (s DBProfileStore) Profiles(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	return repo.GetUsersByIDs(ctx, s.DB, ids)
}
