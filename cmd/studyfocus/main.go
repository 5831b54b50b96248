package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexanderramin/studyfocus/internal/cli"
	"github.com/alexanderramin/studyfocus/internal/config"
	"github.com/alexanderramin/studyfocus/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	exam, err := cfg.ExamTime(loc)
	if err != nil {
		return err
	}

	ctx := context.Background()
	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ws := service.NewWorkspace(kv, cfg.StateKey,
		service.WithLocation(loc),
		service.WithExamDate(exam),
		service.WithTickInterval(cfg.TickInterval()),
		service.WithCheckpointEvery(cfg.CheckpointTicks),
		service.WithLogger(logger),
		service.WithObserver(service.NewSlogUseCaseObserver(logger)),
	)
	// A failed load leaves the ledger empty and idle, and the store unwritten.
	if err := ws.Load(ctx); err != nil {
		logger.Error("could not load saved study data, starting empty without saving", "store", cfg.Store, "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ws.Close(closeCtx); err != nil {
			logger.Error("saving study data on exit", "error", err)
		}
	}()

	app := &cli.App{
		Study: ws,
		Timer: ws,
		Stats: ws,
		Flush: ws.Flush,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
