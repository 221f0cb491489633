package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"calendar/internal/store/bunrepo"
)

// Open connects to a SQLite database file (or "file::memory:"). SQLite allows a
// single writer, so the pool is pinned to one connection; that also keeps an
// in-memory database alive for the lifetime of the pool.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// NewAppointmentRepo returns the bun repository configured for SQLite. No
// slot lock is needed: the single connection already serialises transactions.
func NewAppointmentRepo(db *bun.DB) *bunrepo.AppointmentRepo {
	return bunrepo.New(db, bunrepo.Dialect{IsUniqueViolation: isUniqueViolation})
}

func isUniqueViolation(err error) bool {
	var sErr *sqlite.Error
	if !errors.As(err, &sErr) {
		return false
	}
	if sErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Primary code only when extended result codes are off.
	return sErr.Code() == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sErr.Error(), "UNIQUE")
}
