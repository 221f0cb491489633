package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"calendar/internal/store/bunrepo"
)

const uniqueViolation = "23505"

// NewAppointmentRepo returns the bun repository configured for Postgres.
func NewAppointmentRepo(db *bun.DB) *bunrepo.AppointmentRepo {
	return bunrepo.New(db, Dialect())
}

func Dialect() bunrepo.Dialect {
	return bunrepo.Dialect{
		LockSlot:          lockSlot,
		IsUniqueViolation: isUniqueViolation,
	}
}

// lockSlot holds a transaction-scoped advisory lock on the start time, so
// concurrent bookings for one slot run their existence check one at a time.
func lockSlot(ctx context.Context, tx bun.Tx, key string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
