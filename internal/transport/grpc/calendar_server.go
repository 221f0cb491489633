package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"calendar/internal/domain"
	"calendar/internal/service/appointments"
	"calendar/internal/store"
)

type CalendarServer struct {
	svc calendarService
	log *slog.Logger
}

type calendarService interface {
	FindAvailableTimeslots(ctx context.Context, date time.Time) ([]domain.TimeSlot, error)
	AddAppointment(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error)
	KeepAppointment(ctx context.Context, start time.Time) (domain.AppointmentModel, error)
	DeleteAppointment(ctx context.Context, start time.Time) (bool, error)
}

var _ CalendarServiceServer = (*CalendarServer)(nil)

func NewCalendarServer(svc calendarService, log *slog.Logger) *CalendarServer {
	if log == nil {
		log = slog.Default()
	}
	return &CalendarServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.calendar")),
	}
}

func (s *CalendarServer) FindAvailableTimeslots(ctx context.Context, req *timestamppb.Timestamp) (*structpb.ListValue, error) {
	log := s.log.With(slog.String("rpc", "FindAvailableTimeslots"))

	date, err := requestTime(log, req, "date")
	if err != nil {
		return nil, err
	}

	slots, err := s.svc.FindAvailableTimeslots(ctx, date)
	if err != nil {
		return nil, toStatus(log, err)
	}

	items := make([]any, 0, len(slots))
	for _, slot := range slots {
		items = append(items, map[string]any{
			"start_time": formatTime(slot.StartTime),
			"end_time":   formatTime(slot.EndTime),
		})
	}
	out, err := structpb.NewList(items)
	if err != nil {
		log.Error("encode timeslots failed", slog.Any("err", err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (s *CalendarServer) AddAppointment(ctx context.Context, req *timestamppb.Timestamp) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "AddAppointment"))

	start, err := requestTime(log, req, "start_time")
	if err != nil {
		return nil, err
	}

	appt, err := s.svc.AddAppointment(ctx, &domain.AppointmentModel{
		StartTime: start,
		EndTime:   start.Add(domain.SlotDuration),
	})
	if err != nil {
		return nil, toStatus(log, err)
	}
	if appt == nil {
		log.Info("appointment not booked", slog.Time("start_time", start))
		return toStruct(log, false, domain.AppointmentModel{StartTime: start, EndTime: start.Add(domain.SlotDuration)})
	}
	return toStruct(log, true, *appt)
}

func (s *CalendarServer) KeepAppointment(ctx context.Context, req *timestamppb.Timestamp) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "KeepAppointment"))

	start, err := requestTime(log, req, "start_time")
	if err != nil {
		return nil, err
	}

	appt, err := s.svc.KeepAppointment(ctx, start)
	if err != nil {
		return nil, toStatus(log, err)
	}
	return toStruct(log, true, appt)
}

func (s *CalendarServer) DeleteAppointment(ctx context.Context, req *timestamppb.Timestamp) (*wrapperspb.BoolValue, error) {
	log := s.log.With(slog.String("rpc", "DeleteAppointment"))

	start, err := requestTime(log, req, "start_time")
	if err != nil {
		return nil, err
	}

	ok, err := s.svc.DeleteAppointment(ctx, start)
	if err != nil {
		return nil, toStatus(log, err)
	}
	return wrapperspb.Bool(ok), nil
}

// requestTime rejects a missing, default or out-of-range timestamp. Times are
// wall-clock values and are read in UTC.
func requestTime(log *slog.Logger, req *timestamppb.Timestamp, field string) (time.Time, error) {
	if req == nil || (req.GetSeconds() == 0 && req.GetNanos() == 0) {
		log.Warn("invalid request", slog.String("reason", "missing_"+field))
		return time.Time{}, status.Error(codes.InvalidArgument, field+" is required")
	}
	if err := req.CheckValid(); err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_"+field), slog.Any("err", err))
		return time.Time{}, status.Error(codes.InvalidArgument, field+" is invalid")
	}
	return req.AsTime().UTC(), nil
}

func toStatus(log *slog.Logger, err error) error {
	var vErr *appointments.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, store.ErrConflict):
		log.Info("appointment conflict", slog.Any("err", err))
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Info("appointment not found", slog.Any("err", err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request deadline exceeded")
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		log.Error("request failed", slog.Any("err", err))
		return status.Error(codes.Internal, "internal error")
	}
}

func toStruct(log *slog.Logger, booked bool, m domain.AppointmentModel) (*structpb.Struct, error) {
	var attended any
	if m.IsAttended != nil {
		attended = *m.IsAttended
	}
	out, err := structpb.NewStruct(map[string]any{
		"booked":      booked,
		"start_time":  formatTime(m.StartTime),
		"end_time":    formatTime(m.EndTime),
		"is_attended": attended,
	})
	if err != nil {
		log.Error("encode appointment failed", slog.Any("err", err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
