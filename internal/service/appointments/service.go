package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"calendar/internal/domain"
	"calendar/internal/store"
)

const timeLayout = "2006-01-02 15:04"

var tracer = otel.Tracer("calendar/service/appointments")

func startSpan(ctx context.Context, name string, at time.Time) (context.Context, trace.Span) {
	return tracer.Start(ctx, "appointments."+name, trace.WithAttributes(
		attribute.String("calendar.time", at.Format(timeLayout)),
	))
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func (e *ValidationError) Unwrap() error {
	return store.ErrInvalidArgument
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Service schedules appointments for a single calendar. The availability
// window is fixed at construction.
type Service struct {
	repo   store.AppointmentRepository
	window domain.AvailabilityWindow
	log    *slog.Logger
}

func NewService(repo store.AppointmentRepository, window domain.AvailabilityWindow, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		window: window,
		log:    log.With(slog.String("component", "service.appointments")),
	}
}

// FindAvailableTimeslots returns the working-hours grid for date minus the
// slots that already have an appointment. The reserved window is not applied.
func (s *Service) FindAvailableTimeslots(ctx context.Context, date time.Time) ([]domain.TimeSlot, error) {
	if date.IsZero() {
		return nil, validationError("date is required")
	}
	ctx, span := startSpan(ctx, "FindAvailableTimeslots", date)
	defer span.End()

	booked, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[int64]struct{}, len(booked))
	for _, a := range booked {
		taken[a.StartTime.UnixNano()] = struct{}{}
	}

	grid := s.window.Slots(date)
	out := make([]domain.TimeSlot, 0, len(grid))
	for _, slot := range grid {
		if _, ok := taken[slot.StartTime.UnixNano()]; ok {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// AddAppointment books the slot starting at candidate.StartTime. A start
// outside the booking rule yields (nil, nil).
func (s *Service) AddAppointment(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error) {
	if candidate == nil {
		return nil, validationError("appointment is required")
	}
	if candidate.StartTime.IsZero() {
		return nil, validationError("start_time is required")
	}
	start := candidate.StartTime
	ctx, span := startSpan(ctx, "AddAppointment", start)
	defer span.End()

	_, err := s.repo.GetByStart(ctx, start)
	switch {
	case err == nil:
		return nil, conflictError(start)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	if !s.window.IsBookable(start) {
		s.log.Info("appointment outside booking hours", slog.Time("start_time", start))
		return nil, nil
	}

	created, err := s.repo.Create(ctx, domain.Appointment{
		StartTime: start,
		EndTime:   start.Add(domain.SlotDuration),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, conflictError(start)
		}
		return nil, err
	}

	s.log.Info("appointment created", slog.Time("start_time", created.StartTime), slog.Time("end_time", created.EndTime))
	m := created.Model()
	return &m, nil
}

// KeepAppointment marks the appointment at start as attended.
func (s *Service) KeepAppointment(ctx context.Context, start time.Time) (domain.AppointmentModel, error) {
	if start.IsZero() {
		return domain.AppointmentModel{}, validationError("start_time is required")
	}
	ctx, span := startSpan(ctx, "KeepAppointment", start)
	defer span.End()

	appt, err := s.load(ctx, start)
	if err != nil {
		return domain.AppointmentModel{}, err
	}

	attended := true
	appt.IsAttended = &attended
	updated, err := s.repo.Update(ctx, appt)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AppointmentModel{}, notFoundError(start)
		}
		return domain.AppointmentModel{}, err
	}

	s.log.Info("appointment attended", slog.Time("start_time", updated.StartTime))
	return updated.Model(), nil
}

// DeleteAppointment soft-deletes the appointment at start. Store failures
// during the delete itself are reported as false, not as an error.
func (s *Service) DeleteAppointment(ctx context.Context, start time.Time) (bool, error) {
	if start.IsZero() {
		return false, validationError("start_time is required")
	}
	ctx, span := startSpan(ctx, "DeleteAppointment", start)
	defer span.End()

	appt, err := s.load(ctx, start)
	if err != nil {
		return false, err
	}

	ok, err := s.repo.Delete(ctx, appt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		s.log.Warn("appointment delete failed", slog.Time("start_time", start), slog.Any("err", err))
		return false, nil
	}

	if ok {
		s.log.Info("appointment deleted", slog.Time("start_time", start))
	}
	return ok, nil
}

func (s *Service) load(ctx context.Context, start time.Time) (domain.Appointment, error) {
	appt, err := s.repo.GetByStart(ctx, start)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Info("appointment not found", slog.Time("start_time", start))
			return domain.Appointment{}, notFoundError(start)
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func conflictError(start time.Time) error {
	return fmt.Errorf("appointment on the given date & time %s already exists: %w", start.Format(timeLayout), store.ErrConflict)
}

func notFoundError(start time.Time) error {
	return fmt.Errorf("appointment for the given date & time %s doesn't exist: %w", start.Format(timeLayout), store.ErrNotFound)
}
