package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/timestamppb"

	"calendar/internal/domain"
	"calendar/internal/service/appointments"
	"calendar/internal/store"
)

type fakeCalendarService struct {
	findFn   func(ctx context.Context, date time.Time) ([]domain.TimeSlot, error)
	addFn    func(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error)
	keepFn   func(ctx context.Context, start time.Time) (domain.AppointmentModel, error)
	deleteFn func(ctx context.Context, start time.Time) (bool, error)
}

func (f *fakeCalendarService) FindAvailableTimeslots(ctx context.Context, date time.Time) ([]domain.TimeSlot, error) {
	if f.findFn == nil {
		panic("FindAvailableTimeslots not configured")
	}
	return f.findFn(ctx, date)
}

func (f *fakeCalendarService) AddAppointment(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error) {
	if f.addFn == nil {
		panic("AddAppointment not configured")
	}
	return f.addFn(ctx, candidate)
}

func (f *fakeCalendarService) KeepAppointment(ctx context.Context, start time.Time) (domain.AppointmentModel, error) {
	if f.keepFn == nil {
		panic("KeepAppointment not configured")
	}
	return f.keepFn(ctx, start)
}

func (f *fakeCalendarService) DeleteAppointment(ctx context.Context, start time.Time) (bool, error) {
	if f.deleteFn == nil {
		panic("DeleteAppointment not configured")
	}
	return f.deleteFn(ctx, start)
}

func TestRequests_RejectMissingTimestamp(t *testing.T) {
	srv := NewCalendarServer(&fakeCalendarService{}, slog.Default())
	ctx := context.Background()

	for _, req := range []*timestamppb.Timestamp{nil, {}, {Seconds: 1, Nanos: -1}} {
		if _, err := srv.FindAvailableTimeslots(ctx, req); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("FindAvailableTimeslots(%v) code = %s, want %s", req, status.Code(err), codes.InvalidArgument)
		}
		if _, err := srv.AddAppointment(ctx, req); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("AddAppointment(%v) code = %s, want %s", req, status.Code(err), codes.InvalidArgument)
		}
		if _, err := srv.KeepAppointment(ctx, req); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("KeepAppointment(%v) code = %s, want %s", req, status.Code(err), codes.InvalidArgument)
		}
		if _, err := srv.DeleteAppointment(ctx, req); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("DeleteAppointment(%v) code = %s, want %s", req, status.Code(err), codes.InvalidArgument)
		}
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "validation", err: &appointments.ValidationError{}, want: codes.InvalidArgument},
		{name: "conflict", err: fmt.Errorf("taken: %w", store.ErrConflict), want: codes.AlreadyExists},
		{name: "not found", err: fmt.Errorf("missing: %w", store.ErrNotFound), want: codes.NotFound},
		{name: "canceled", err: context.Canceled, want: codes.Canceled},
		{name: "deadline", err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
		{name: "infrastructure", err: errors.New("db down"), want: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status.Code(toStatus(slog.Default(), tt.err)); got != tt.want {
				t.Fatalf("code = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAddAppointment_NotBookedIsNotAnError(t *testing.T) {
	srv := NewCalendarServer(&fakeCalendarService{
		addFn: func(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error) {
			return nil, nil
		},
	}, slog.Default())

	start := time.Date(2024, 4, 16, 16, 0, 0, 0, time.UTC)
	out, err := srv.AddAppointment(context.Background(), timestamppb.New(start))
	if err != nil {
		t.Fatalf("AddAppointment error: %v", err)
	}
	fields := out.GetFields()
	if fields["booked"].GetBoolValue() {
		t.Fatalf("booked = true, want false")
	}
	if got := fields["start_time"].GetStringValue(); got != "2024-04-16T16:00:00Z" {
		t.Fatalf("start_time = %q, want %q", got, "2024-04-16T16:00:00Z")
	}
}

func startBufconnServer(t *testing.T, svc calendarService, timeout time.Duration) *CalendarServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(DefaultRequestTimeoutInterceptor(timeout)))
	RegisterCalendarServiceServer(s, NewCalendarServer(svc, slog.Default()))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewCalendarServiceClient(conn)
}

func TestCalendarService_RoundTrip(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	attended := true
	client := startBufconnServer(t, &fakeCalendarService{
		findFn: func(ctx context.Context, date time.Time) ([]domain.TimeSlot, error) {
			return domain.GenerateSlots(date, domain.TimeOfDay{Hour: 9}, domain.TimeOfDay{Hour: 10}), nil
		},
		addFn: func(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error) {
			return candidate, nil
		},
		keepFn: func(ctx context.Context, start time.Time) (domain.AppointmentModel, error) {
			return domain.AppointmentModel{StartTime: start, EndTime: start.Add(domain.SlotDuration), IsAttended: &attended}, nil
		},
		deleteFn: func(ctx context.Context, start time.Time) (bool, error) {
			return false, fmt.Errorf("appointment for the given date & time %s doesn't exist: %w", start.Format("2006-01-02 15:04"), store.ErrNotFound)
		},
	}, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slots, err := client.FindAvailableTimeslots(ctx, timestamppb.New(day))
	if err != nil {
		t.Fatalf("FindAvailableTimeslots error: %v", err)
	}
	if n := len(slots.GetValues()); n != 2 {
		t.Fatalf("len(slots) = %d, want 2", n)
	}
	first := slots.GetValues()[0].GetStructValue().GetFields()
	if got := first["end_time"].GetStringValue(); got != "2024-01-10T09:30:00Z" {
		t.Fatalf("end_time = %q, want %q", got, "2024-01-10T09:30:00Z")
	}

	added, err := client.AddAppointment(ctx, timestamppb.New(day.Add(9*time.Hour)))
	if err != nil {
		t.Fatalf("AddAppointment error: %v", err)
	}
	if !added.GetFields()["booked"].GetBoolValue() {
		t.Fatalf("booked = false, want true")
	}

	kept, err := client.KeepAppointment(ctx, timestamppb.New(day.Add(9*time.Hour)))
	if err != nil {
		t.Fatalf("KeepAppointment error: %v", err)
	}
	if !kept.GetFields()["is_attended"].GetBoolValue() {
		t.Fatalf("is_attended = false, want true")
	}

	_, err = client.DeleteAppointment(ctx, timestamppb.New(day.Add(9*time.Hour)))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("DeleteAppointment code = %s, want %s", status.Code(err), codes.NotFound)
	}
}

func TestDefaultRequestTimeoutInterceptor_AppliesDeadline(t *testing.T) {
	client := startBufconnServer(t, &fakeCalendarService{
		deleteFn: func(ctx context.Context, start time.Time) (bool, error) {
			if _, ok := ctx.Deadline(); !ok {
				return false, errors.New("no deadline")
			}
			<-ctx.Done()
			return false, ctx.Err()
		},
	}, 50*time.Millisecond)

	_, err := client.DeleteAppointment(context.Background(), timestamppb.New(time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)))
	if status.Code(err) != codes.DeadlineExceeded {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.DeadlineExceeded)
	}
}
