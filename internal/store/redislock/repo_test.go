package redislock

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"calendar/internal/domain"
	"calendar/internal/store"
)

type fakeRepo struct {
	store.AppointmentRepository

	createFn    func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	createCalls int
}

func (f *fakeRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	f.createCalls++
	if f.createFn == nil {
		panic("unexpected Create call")
	}
	return f.createFn(ctx, appt)
}

func TestRepo_KeyFormat(t *testing.T) {
	r := New(&fakeRepo{}, nil, 0, "", nil)
	start := time.Date(2024, 1, 10, 10, 30, 45, 0, time.UTC)

	if got, want := r.key(start), "calendar:slot:2024-01-10T10:30"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
	if r.ttl != defaultTTL {
		t.Fatalf("ttl = %v, want %v", r.ttl, defaultTTL)
	}
}

func TestRepo_CreateRejectsZeroStart(t *testing.T) {
	next := &fakeRepo{}
	r := New(next, nil, time.Second, "test", nil)

	_, err := r.Create(context.Background(), domain.Appointment{})
	if !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("err = %v, want %v", err, store.ErrInvalidArgument)
	}
	if next.createCalls != 0 {
		t.Fatalf("createCalls = %d, want 0", next.createCalls)
	}
}

func TestRepo_CreateFailsWhenRedisUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &fakeRepo{}
	r := New(next, rdb, time.Second, "test", nil)
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	_, err := r.Create(context.Background(), domain.Appointment{StartTime: start, EndTime: start.Add(domain.SlotDuration)})
	if err == nil {
		t.Fatalf("expected error")
	}
	if next.createCalls != 0 {
		t.Fatalf("createCalls = %d, want 0", next.createCalls)
	}
}

func TestRedisIntegration_HeldLockConflicts(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("CALENDAR_TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("CALENDAR_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	prefix := "calendar_test:" + time.Now().UTC().Format("20060102150405.000000000")
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	appt := domain.Appointment{StartTime: start, EndTime: start.Add(domain.SlotDuration)}

	var r *Repo
	next := &fakeRepo{}
	next.createFn = func(ctx context.Context, in domain.Appointment) (domain.Appointment, error) {
		// A second writer arriving while the first holds the lock.
		if _, err := r.Create(ctx, in); !errors.Is(err, store.ErrConflict) {
			t.Errorf("nested Create err = %v, want %v", err, store.ErrConflict)
		}
		return in, nil
	}
	r = New(next, rdb, 5*time.Second, prefix, nil)

	if _, err := r.Create(ctx, appt); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if next.createCalls != 1 {
		t.Fatalf("createCalls = %d, want 1", next.createCalls)
	}

	n, err := rdb.Exists(ctx, r.key(start)).Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if n != 0 {
		t.Fatalf("lock key still present after Create")
	}
}
