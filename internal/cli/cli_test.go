package cli

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-match-backend/internal/config"
	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// isolateEnv unsets keys for the duration of the test. godotenv never
// overrides a variable that exists, even an empty one, so t.Setenv("")
// is not enough here.
func isolateEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, prev)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}
}

func preserveLogger(t *testing.T) {
	t.Helper()
	prev, lvl := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() { log.Logger = prev; zerolog.SetGlobalLevel(lvl) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	preserveLogger(t)
	cmd := NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand("test")
	require.NotNil(t, cmd)
	assert.Equal(t, "matchd", cmd.Use)

	for _, name := range []string{"serve", "migrate", "prune-idempotency"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	f := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, f)
	assert.Equal(t, DefaultEnvFile, f.DefValue)
}

func TestMigrateThenPrune_FromEnvFile(t *testing.T) {
	isolateEnv(t, "DB_DRIVER", "DB_PATH", "AUTH_ALLOW_HEADER", "AUTH_JWT_SECRET", "REDIS_ADDR", "LOG_LEVEL")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "match.db")
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"DB_DRIVER=sqlite\nDB_PATH="+dbPath+"\nAUTH_ALLOW_HEADER=true\nLOG_LEVEL=error\n"), 0o600))

	out, err := execute(t, "--env-file", envFile, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	// Seed one expired and one live record, then prune.
	db, err := repo.OpenSQLite(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = repo.CreateIdempotency(ctx, db, 1, "/api/v1/likes/2", "old", http.StatusCreated, []byte(`{}`), -time.Minute)
	require.NoError(t, err)
	_, err = repo.CreateIdempotency(ctx, db, 1, "/api/v1/likes/3", "new", http.StatusCreated, []byte(`{}`), time.Hour)
	require.NoError(t, err)
	closeDB(db)

	out, err = execute(t, "--env-file", envFile, "prune-idempotency")
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 1 expired idempotency records")

	db, err = repo.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer closeDB(db)
	var left int64
	require.NoError(t, db.Model(&domain.Idempotency{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)
}

func TestEnvFile_MissingExplicitFileFails(t *testing.T) {
	_, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "absent.env"), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.env")
}

func TestLoadEnvFile_MissingDefaultIsIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), DefaultEnvFile), false))
	assert.NoError(t, loadEnvFile("", true))
}

func TestConfigErrorStopsCommand(t *testing.T) {
	isolateEnv(t, "AUTH_ALLOW_HEADER", "AUTH_JWT_SECRET")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := execute(t, "--env-file", "", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
}

func TestOpenRedis(t *testing.T) {
	ctx := context.Background()

	rdb, err := openRedis(ctx, config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	rdb, err = openRedis(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = openRedis(ctx, config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestOpenDB_UnsupportedDriver(t *testing.T) {
	_, err := openDB(config.DBConfig{Driver: "oracle", Path: "x"})
	assert.Error(t, err)
}

func TestNewServer_CopiesTimeouts(t *testing.T) {
	cfg := config.Config{
		Port:              "9090",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      3 * time.Second,
		IdleTimeout:       4 * time.Second,
		MaxHeaderBytes:    1024,
	}
	srv := newServer(cfg, http.NotFoundHandler())
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 3*time.Second, srv.WriteTimeout)
	assert.Equal(t, 4*time.Second, srv.IdleTimeout)
	assert.Equal(t, 1024, srv.MaxHeaderBytes)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	preserveLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- listenAndServe(ctx, srv, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestListenAndServe_ReportsListenError(t *testing.T) {
	preserveLogger(t)
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}
	err := listenAndServe(context.Background(), srv, time.Second)
	assert.Error(t, err)
}
