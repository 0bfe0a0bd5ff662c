package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-match-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, db, "ann", "bob")

	ok, err := UserExists(ctx, db, u[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = UserExists(ctx, db, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	byID, err := GetUsersByIDs(ctx, db, []int64{u[0].ID, u[1].ID, 9999})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "ann", byID[u[0].ID].Name)

	empty, err := GetUsersByIDs(ctx, db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, CreateUser(ctx, db, &domain.User{Email: "x@example.com", Name: "x"}))
	err := CreateUser(ctx, db, &domain.User{Email: "x@example.com", Name: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
