package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = 30 * time.Minute

// Appointment is the persisted row. The ID is assigned by the store and never
// leaves the store/service boundary; callers see AppointmentModel instead.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	StartTime  time.Time `bun:"start_time,notnull,type:timestamp"`
	EndTime    time.Time `bun:"end_time,notnull,type:timestamp"`
	IsAttended *bool     `bun:"is_attended"`
	IsDeleted  bool      `bun:"is_deleted,notnull,default:false"`
	CreatedAt  time.Time `bun:"created_at,notnull,type:timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,type:timestamp"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// Model returns the identity-free view of the row.
func (a Appointment) Model() AppointmentModel {
	return AppointmentModel{
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		IsAttended: a.IsAttended,
		IsDeleted:  a.IsDeleted,
	}
}

// AppointmentModel is what the scheduling service accepts and returns.
type AppointmentModel struct {
	StartTime  time.Time
	EndTime    time.Time
	IsAttended *bool
	IsDeleted  bool
}

// Attended reports whether the attended flag is set and true.
func (m AppointmentModel) Attended() bool {
	return m.IsAttended != nil && *m.IsAttended
}
