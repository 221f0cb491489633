package bunrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"calendar/internal/domain"
	"calendar/internal/store"
)

// Dialect carries the database-specific parts of the repository.
type Dialect struct {
	// LockSlot serialises writers for one start time for the rest of tx.
	// Nil when the database already serialises writers.
	LockSlot func(ctx context.Context, tx bun.Tx, key string) error
	// IsUniqueViolation reports whether err came from the unique index on
	// active start times.
	IsUniqueViolation func(err error) bool
}

type AppointmentRepo struct {
	db      *bun.DB
	dialect Dialect
}

func New(db *bun.DB, dialect Dialect) *AppointmentRepo {
	return &AppointmentRepo{db: db, dialect: dialect}
}

var _ store.AppointmentRepository = (*AppointmentRepo)(nil)

// active is applied to every read; soft-deleted rows never leave the store.
func active(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("is_deleted = ?", false)
}

func (r *AppointmentRepo) ListByDate(ctx context.Context, date time.Time) ([]domain.Appointment, error) {
	if date.IsZero() {
		return nil, store.ErrInvalidArgument
	}

	from, to := store.DayBounds(date)
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Apply(active).
		Where("start_time >= ?", from).
		Where("start_time < ?", to).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) GetByStart(ctx context.Context, start time.Time) (domain.Appointment, error) {
	if start.IsZero() {
		return domain.Appointment{}, store.ErrInvalidArgument
	}
	return getByStart(ctx, r.db, start)
}

func getByStart(ctx context.Context, db bun.IDB, start time.Time) (domain.Appointment, error) {
	from, to := store.MinuteBounds(start)
	var row domain.Appointment
	err := db.NewSelect().
		Model(&row).
		Apply(active).
		Where("start_time >= ?", from).
		Where("start_time < ?", to).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return row, nil
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.StartTime.IsZero() {
		return domain.Appointment{}, store.ErrInvalidArgument
	}

	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if r.dialect.LockSlot != nil {
			if err := r.dialect.LockSlot(ctx, tx, store.SlotKey(appt.StartTime)); err != nil {
				return err
			}
		}

		_, err := getByStart(ctx, tx, appt.StartTime)
		if err == nil {
			return store.ErrConflict
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		m := domain.Appointment{
			ID:         appt.ID,
			StartTime:  appt.StartTime,
			EndTime:    appt.EndTime,
			IsAttended: appt.IsAttended,
		}
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			if r.dialect.IsUniqueViolation != nil && r.dialect.IsUniqueViolation(err) {
				return store.ErrConflict
			}
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.ID == uuid.Nil {
		return domain.Appointment{}, store.ErrInvalidArgument
	}

	m := appt
	res, err := r.db.NewUpdate().
		Model(&m).
		Column("start_time", "end_time", "is_attended", "updated_at").
		WherePK().
		Where("is_deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, appt domain.Appointment) (bool, error) {
	if appt.ID == uuid.Nil {
		return false, store.ErrInvalidArgument
	}

	m := domain.Appointment{ID: appt.ID}
	res, err := r.db.NewUpdate().
		Model(&m).
		Set("is_deleted = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		WherePK().
		Where("is_deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, store.ErrNotFound
	}
	return true, nil
}
