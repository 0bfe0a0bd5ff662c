package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-backend/internal/domain"
)

// newTestDB opens a private in-memory database. With no models given it
// migrates the full schema; pass models explicitly to get a partial schema.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) == 0 {
		require.NoError(t, AutoMigrate(db))
	} else {
		require.NoError(t, db.AutoMigrate(migrate...))
	}
	return db
}

// emptyDB opens a database with no tables at all.
func emptyDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_empty_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func seedUsers(t *testing.T, db *gorm.DB, names ...string) []domain.User {
	t.Helper()
	out := make([]domain.User, 0, len(names))
	for _, n := range names {
		u := domain.User{Email: n + "@example.com", Name: n}
		require.NoError(t, CreateUser(context.Background(), db, &u))
		out = append(out, u)
	}
	return out
}

func seedMatch(t *testing.T, db *gorm.DB, x, y int64) *domain.Match {
	t.Helper()
	pair, err := domain.NewUserPair(x, y)
	require.NoError(t, err)
	m, err := CreateMatch(context.Background(), db, pair)
	require.NoError(t, err)
	return m
}
