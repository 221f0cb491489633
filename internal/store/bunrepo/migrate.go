package bunrepo

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"calendar/internal/domain"
)

const activeStartIndex = "appointments_active_start_time_key"

// Migrate creates the appointments table and the unique index that makes the
// database the final arbiter of one active appointment per start time.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*domain.Appointment)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create appointments table: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*domain.Appointment)(nil)).
		Index(activeStartIndex).
		Unique().
		IfNotExists().
		Column("start_time").
		Where("is_deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create %s: %w", activeStartIndex, err)
	}
	return nil
}
