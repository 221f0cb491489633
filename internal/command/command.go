// Package command implements the one-shot text front end: it parses a command
// line, calls the scheduling service once and renders the outcome.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"calendar/internal/domain"
	"calendar/internal/service/appointments"
	"calendar/internal/store"
)

const (
	dateLayout     = "2/1"
	clockLayout    = "15:04"
	dayLayout      = "02/01/2006"
	dayMonthLayout = "02/01 15:04"
)

// ErrUsage is returned when the command line is rejected before reaching the
// service.
var ErrUsage = errors.New("usage")

// Scheduler is the subset of the scheduling service the commands use.
type Scheduler interface {
	FindAvailableTimeslots(ctx context.Context, date time.Time) ([]domain.TimeSlot, error)
	AddAppointment(ctx context.Context, candidate *domain.AppointmentModel) (*domain.AppointmentModel, error)
	KeepAppointment(ctx context.Context, start time.Time) (domain.AppointmentModel, error)
	DeleteAppointment(ctx context.Context, start time.Time) (bool, error)
}

type Executor struct {
	svc Scheduler
	out io.Writer
	now func() time.Time
	log *slog.Logger
}

// NewExecutor writes user-facing lines to out. now supplies the current date
// for the year of parsed dates and for KEEP; it defaults to time.Now.
func NewExecutor(svc Scheduler, out io.Writer, now func() time.Time, log *slog.Logger) *Executor {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		svc: svc,
		out: out,
		now: now,
		log: log.With(slog.String("component", "command")),
	}
}

// Run executes args[0] with the remaining positional arguments.
func (e *Executor) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		e.println("Usage: [command] [arguments]")
		return ErrUsage
	}

	name := strings.ToUpper(strings.TrimSpace(args[0]))
	params := args[1:]

	switch name {
	case "FIND":
		if err := e.arity(name, params, 1); err != nil {
			return err
		}
		return e.find(ctx, params[0])
	case "ADD":
		if err := e.arity(name, params, 2); err != nil {
			return err
		}
		return e.add(ctx, params[0], params[1])
	case "DELETE":
		if err := e.arity(name, params, 2); err != nil {
			return err
		}
		return e.delete(ctx, params[0], params[1])
	case "KEEP":
		if err := e.arity(name, params, 1); err != nil {
			return err
		}
		return e.keep(ctx, params[0])
	default:
		e.println("Invalid command.")
		return ErrUsage
	}
}

func (e *Executor) arity(name string, params []string, want int) error {
	if len(params) != want {
		e.printf("Invalid number of arguments for %s command.\n", name)
		return ErrUsage
	}
	return nil
}

func (e *Executor) find(ctx context.Context, rawDate string) error {
	date, err := e.parseDate(rawDate)
	if err != nil {
		e.println("Invalid date format.")
		return ErrUsage
	}

	slots, err := e.svc.FindAvailableTimeslots(ctx, date)
	if err != nil {
		return e.fail(err)
	}
	if len(slots) == 0 {
		e.printf("No timeslots for %s is available.\n", date.Format(dayLayout))
		return nil
	}

	e.printf("Available timeslots for %s are:\n", date.Format(dayLayout))
	for _, s := range slots {
		e.printf("From: %s To: %s\n", s.StartTime.Format(clockLayout), s.EndTime.Format(clockLayout))
	}
	return nil
}

func (e *Executor) add(ctx context.Context, rawDate, rawTime string) error {
	start, err := e.parseDateTime(rawDate, rawTime)
	if err != nil {
		e.println("Invalid date or time format.")
		return ErrUsage
	}
	end := start.Add(domain.SlotDuration)

	appt, err := e.svc.AddAppointment(ctx, &domain.AppointmentModel{StartTime: start, EndTime: end})
	if err != nil {
		return e.fail(err)
	}
	if appt == nil {
		e.printf("Appointment cannot be added From: %s To: %s\n", start.Format(dayMonthLayout), end.Format(dayMonthLayout))
		return nil
	}
	e.printf("Appointment added From: %s To: %s\n", appt.StartTime.Format(dayMonthLayout), appt.EndTime.Format(dayMonthLayout))
	return nil
}

func (e *Executor) delete(ctx context.Context, rawDate, rawTime string) error {
	start, err := e.parseDateTime(rawDate, rawTime)
	if err != nil {
		e.println("Invalid date or time format.")
		return ErrUsage
	}
	end := start.Add(domain.SlotDuration)

	ok, err := e.svc.DeleteAppointment(ctx, start)
	if err != nil {
		return e.fail(err)
	}
	if !ok {
		e.printf("Appointment From: %s To: %s cannot be deleted\n", start.Format(dayMonthLayout), end.Format(dayMonthLayout))
		return nil
	}
	e.printf("Appointment From: %s To: %s is deleted\n", start.Format(dayMonthLayout), end.Format(dayMonthLayout))
	return nil
}

func (e *Executor) keep(ctx context.Context, rawTime string) error {
	clock, err := time.Parse(clockLayout, strings.TrimSpace(rawTime))
	if err != nil {
		e.println("Invalid time format.")
		return ErrUsage
	}
	today := e.now()
	start := time.Date(today.Year(), today.Month(), today.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)

	appt, err := e.svc.KeepAppointment(ctx, start)
	if err != nil {
		return e.fail(err)
	}
	e.printf("Appointment attended successfully at %s\n", appt.StartTime.Format(clockLayout))
	return nil
}

// fail renders a service error as one line and returns it.
func (e *Executor) fail(err error) error {
	var vErr *appointments.ValidationError
	switch {
	case errors.As(err, &vErr):
		e.printf("Invalid argument: %s\n", vErr.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
		e.println(sentence(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.println("Operation cancelled.")
	default:
		e.log.Error("command failed", slog.Any("err", err))
		e.println("Something went wrong, please try again.")
	}
	return err
}

// sentence turns "appointment ... already exists: conflict" into
// "Appointment ... already exists!".
func sentence(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i > 0 {
		msg = msg[:i]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "!"
}

// parseDate reads d/m in the current year. Dates are wall-clock values and
// carry UTC as a neutral location.
func (e *Executor) parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}
	date := time.Date(e.now().Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if date.Day() != d.Day() {
		return time.Time{}, fmt.Errorf("no %s in %d", raw, date.Year())
	}
	return date, nil
}

func (e *Executor) parseDateTime(rawDate, rawTime string) (time.Time, error) {
	date, err := e.parseDate(rawDate)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := time.Parse(clockLayout, strings.TrimSpace(rawTime))
	if err != nil {
		return time.Time{}, err
	}
	return date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

func (e *Executor) println(s string) {
	fmt.Fprintln(e.out, s)
}

func (e *Executor) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}
