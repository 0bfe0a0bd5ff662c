package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
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
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

// newFileDB opens a WAL-mode file database for tests that run writers in
// parallel; shared-cache memory databases do not honour busy_timeout.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) domain.User {
	t.Helper()
	u := domain.User{Email: uuid.NewString() + "@example.com", Name: name}
	require.NoError(t, repo.CreateUser(context.Background(), db, &u))
	return u
}

func seedMatch(t *testing.T, db *gorm.DB, x, y int64) *domain.Match {
	t.Helper()
	pair, err := domain.NewUserPair(x, y)
	require.NoError(t, err)
	m, err := repo.CreateMatch(context.Background(), db, pair)
	require.NoError(t, err)
	return m
}

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// win builds a window on d between the given hours (UTC).
func win(d time.Time, fromH, toH int) domain.Window {
	return domain.Window{
		Date:  d,
		Start: d.Add(time.Duration(fromH) * time.Hour),
		End:   d.Add(time.Duration(toH) * time.Hour),
	}
}

func slot(id, user int64, w domain.Window) domain.AvailabilitySlot {
	return domain.AvailabilitySlot{ID: id, UserID: user, Date: w.Date, StartTime: w.Start, EndTime: w.End}
}

type stubProfiles struct {
	exists    map[int64]bool
	existsErr error
	users     map[int64]domain.User
	usersErr  error
}

func (s stubProfiles) UserExists(_ context.Context, id int64) (bool, error) {
	return s.exists[id], s.existsErr
}

func (s stubProfiles) Profiles(_ context.Context, ids []int64) (map[int64]domain.User, error) {
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	out := map[int64]domain.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
