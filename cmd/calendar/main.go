package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"calendar/internal/app"
	"calendar/internal/command"
	"calendar/internal/config"
	"calendar/internal/service/appointments"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		return 1
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: app.ParseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "calendar"),
	)
	slog.SetDefault(log)

	window, err := cfg.Window()
	if err != nil {
		log.Error("invalid hours", slog.Any("err", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := app.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Error("database connection failed", slog.Any("err", err))
		return 1
	}
	defer closeRepo()

	svc := appointments.NewService(repo, window, log)
	err = command.NewExecutor(svc, os.Stdout, nil, log).Run(ctx, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, command.ErrUsage):
		return 2
	default:
		return 1
	}
}
