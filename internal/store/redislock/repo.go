// Package redislock serialises bookings for a start time across processes
// that share one database.
package redislock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"calendar/internal/domain"
	"calendar/internal/store"
)

const (
	defaultPrefix = "calendar:slot"
	defaultTTL    = 5 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another writer is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Repo wraps a repository and takes a short-lived redis lock around Create.
// Every other call goes straight to the wrapped repository.
type Repo struct {
	store.AppointmentRepository

	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

func New(next store.AppointmentRepository, rdb redis.UniversalClient, ttl time.Duration, prefix string, log *slog.Logger) *Repo {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Repo{
		AppointmentRepository: next,
		rdb:                   rdb,
		ttl:                   ttl,
		prefix:                prefix,
		log:                   log.With(slog.String("component", "redislock")),
	}
}

var _ store.AppointmentRepository = (*Repo)(nil)

func (r *Repo) key(start time.Time) string {
	return r.prefix + ":" + store.SlotKey(start)
}

func (r *Repo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.StartTime.IsZero() {
		return domain.Appointment{}, store.ErrInvalidArgument
	}

	key := r.key(appt.StartTime)
	token := uuid.NewString()
	acquired, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("acquire slot lock %s: %w", key, err)
	}
	if !acquired {
		r.log.Info("slot lock held", slog.String("key", key))
		return domain.Appointment{}, store.ErrConflict
	}
	defer r.release(key, token)

	return r.AppointmentRepository.Create(ctx, appt)
}

func (r *Repo) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Err(); err != nil {
		r.log.Warn("release slot lock", slog.String("key", key), slog.Any("err", err))
	}
}
