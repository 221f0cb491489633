// Package app wires configuration into the store stack shared by the
// command-line tool and the server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"calendar/internal/config"
	"calendar/internal/store"
	"calendar/internal/store/bunrepo"
	"calendar/internal/store/postgres"
	"calendar/internal/store/redislock"
	"calendar/internal/store/sqlite"
)

// OpenRepository opens the configured database, migrates the schema and
// returns the repository. When a redis address is configured, bookings are
// also serialised through redis. The returned func releases every handle.
func OpenRepository(ctx context.Context, cfg config.Config, log *slog.Logger) (store.AppointmentRepository, func(), error) {
	log.Info("connecting to database", DatabaseLogArgs(cfg.StoreDriver, cfg.DatabaseURL)...)

	var (
		db   *bun.DB
		repo store.AppointmentRepository
		err  error
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err == nil {
			repo = postgres.NewAppointmentRepo(db)
		}
	case config.DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.DatabaseURL)
		if err == nil {
			repo = sqlite.NewAppointmentRepo(db)
		}
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}

	if err := bunrepo.Migrate(ctx, db); err != nil {
		closeDB()
		return nil, nil, err
	}

	if cfg.RedisAddr == "" {
		return repo, closeDB, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		closeDB()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	log.Info("booking lock enabled", slog.String("redis_addr", cfg.RedisAddr), slog.Duration("ttl", cfg.RedisLockTTL))

	closeAll := func() {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close failed", slog.Any("err", err))
		}
		closeDB()
	}
	return redislock.New(repo, rdb, cfg.RedisLockTTL, "", log), closeAll, nil
}

func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabaseLogArgs describes the database without leaking credentials.
func DatabaseLogArgs(driver, databaseURL string) []any {
	args := []any{slog.String("db_driver", driver)}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return append(args, slog.String("db_url", "invalid"))
	}
	if driver == config.DriverSQLite {
		name := u.Opaque
		if name == "" {
			name = u.Path
		}
		if name == "" {
			name = "unknown"
		}
		return append(args, slog.String("db_name", name))
	}

	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return append(args,
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	)
}
