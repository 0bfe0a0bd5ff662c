package cli

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/config"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// openDB connects to the configured datastore and migrates the schema.
func openDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := cfg.Path
	if cfg.Driver == repo.DriverPostgres {
		dsn = cfg.URL
	}
	db, err := repo.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// openRedis returns nil when Redis is not configured. A configured server
// that does not answer PING is a startup error.
func openRedis(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
