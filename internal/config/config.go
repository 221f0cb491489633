package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"calendar/internal/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	StoreDriver        string `validate:"oneof=sqlite postgres"`
	DatabaseURL        string `validate:"required"`
	DBMaxOpenConns     int    `validate:"gte=1"`
	DBMaxIdleConns     int    `validate:"gte=0"`
	DBConnMaxLifetime  time.Duration
	DBConnMaxIdleTime  time.Duration
	Hours              Hours
	GRPCHost           string
	GRPCPort           int `validate:"gte=1,lte=65535"`
	GRPCRequestTimeout time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int `validate:"gte=0"`
	RedisLockTTL       time.Duration
	OTelEnabled        bool
	OTelEndpoint       string  `validate:"required_if=OTelEnabled true"`
	OTelSampleRatio    float64 `validate:"gte=0,lte=1"`
	ShutdownTimeout    time.Duration
	LogLevel           string
}

// Hours holds the raw HH:MM boundaries as configured.
type Hours struct {
	WorkStart     string `validate:"required,datetime=15:04"`
	WorkEnd       string `validate:"required,datetime=15:04"`
	ReservedStart string `validate:"required,datetime=15:04"`
	ReservedEnd   string `validate:"required,datetime=15:04"`
}

func (c Config) GRPCAddr() string {
	return net.JoinHostPort(c.GRPCHost, strconv.Itoa(c.GRPCPort))
}

// Window parses the hour boundaries. Load has already validated them.
func (c Config) Window() (domain.AvailabilityWindow, error) {
	var w domain.AvailabilityWindow
	for _, f := range []struct {
		raw string
		dst *domain.TimeOfDay
	}{
		{c.Hours.WorkStart, &w.WorkStart},
		{c.Hours.WorkEnd, &w.WorkEnd},
		{c.Hours.ReservedStart, &w.ReservedStart},
		{c.Hours.ReservedEnd, &w.ReservedEnd},
	} {
		t, err := domain.ParseTimeOfDay(f.raw)
		if err != nil {
			return domain.AvailabilityWindow{}, err
		}
		*f.dst = t
	}
	return w, nil
}

// Load reads .env from the working directory when present, then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CALENDAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("database.url", "file:calendar.db?_pragma=busy_timeout(5000)")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("hours.work_start", "09:00")
	v.SetDefault("hours.work_end", "17:00")
	v.SetDefault("hours.reserved_start", "16:00")
	v.SetDefault("hours.reserved_end", "17:00")
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("grpc.addr", "")
	v.SetDefault("grpc.request_timeout", "10s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "5s")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("shutdown.timeout", "10s")
	v.SetDefault("log.level", "info")

	_ = v.BindEnv("database.url", "CALENDAR_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("grpc.port", "CALENDAR_GRPC_PORT", "GRPC_PORT", "PORT")
	_ = v.BindEnv("grpc.addr", "CALENDAR_GRPC_ADDR", "GRPC_ADDR")
	_ = v.BindEnv("redis.addr", "CALENDAR_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("otel.endpoint", "CALENDAR_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("shutdown.timeout", "CALENDAR_SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("log.level", "CALENDAR_LOG_LEVEL", "LOG_LEVEL")

	durations := map[string]*time.Duration{}
	var cfg Config
	durations["shutdown.timeout"] = &cfg.ShutdownTimeout
	durations["grpc.request_timeout"] = &cfg.GRPCRequestTimeout
	durations["database.conn_max_lifetime"] = &cfg.DBConnMaxLifetime
	durations["database.conn_max_idle_time"] = &cfg.DBConnMaxIdleTime
	durations["redis.lock_ttl"] = &cfg.RedisLockTTL
	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if addr := strings.TrimSpace(v.GetString("grpc.addr")); addr != "" {
		host, portStr, err := net.SplitHostPort(addr)
		if err == nil {
			if host != "" {
				v.Set("grpc.host", host)
			}
			if port, err := strconv.Atoi(portStr); err == nil {
				v.Set("grpc.port", port)
			}
		}
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(v.GetString("store.driver")))
	cfg.DatabaseURL = strings.TrimSpace(v.GetString("database.url"))
	cfg.DBMaxOpenConns = v.GetInt("database.max_open_conns")
	cfg.DBMaxIdleConns = v.GetInt("database.max_idle_conns")
	cfg.Hours = Hours{
		WorkStart:     strings.TrimSpace(v.GetString("hours.work_start")),
		WorkEnd:       strings.TrimSpace(v.GetString("hours.work_end")),
		ReservedStart: strings.TrimSpace(v.GetString("hours.reserved_start")),
		ReservedEnd:   strings.TrimSpace(v.GetString("hours.reserved_end")),
	}
	cfg.GRPCHost = strings.TrimSpace(v.GetString("grpc.host"))
	cfg.GRPCPort = v.GetInt("grpc.port")
	cfg.RedisAddr = strings.TrimSpace(v.GetString("redis.addr"))
	cfg.RedisPassword = v.GetString("redis.password")
	cfg.RedisDB = v.GetInt("redis.db")
	cfg.OTelEnabled = v.GetBool("otel.enabled")
	cfg.OTelEndpoint = strings.TrimSpace(v.GetString("otel.endpoint"))
	cfg.OTelSampleRatio = v.GetFloat64("otel.sample_ratio")
	cfg.LogLevel = v.GetString("log.level")

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
