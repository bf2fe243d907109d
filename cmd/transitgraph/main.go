package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transitgraph/internal/config"
	"transitgraph/internal/realtime"
	"transitgraph/internal/server"
	"transitgraph/internal/storage"
	"transitgraph/internal/timetable"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	// CLI flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "status server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the GTFS SQLite database")
	flag.StringVar(&cfg.FeedsPath, "feeds", cfg.FeedsPath, "path to the realtime feeds config")
	flag.IntVar(&cfg.ServiceDays, "days", cfg.ServiceDays, "service dates in the search window")
	flag.Parse()

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Build the initial snapshot for a window starting today.
	loader := storage.NewLoader(db, logger)
	today := time.Now().Truncate(24 * time.Hour)
	snap, err := loader.LoadSnapshot(ctx, cfg.FeedID, today, cfg.ServiceDays)
	if err != nil {
		logger.Error("failed to load timetable", "error", err)
		os.Exit(1)
	}
	tt := timetable.New(snap)

	feeds, err := config.LoadFeeds(cfg.FeedsPath)
	if err != nil {
		logger.Error("failed to load feeds config", "error", err)
		os.Exit(1)
	}

	// All mutations funnel through one writer; sinks observe results.
	statusSink := realtime.NewStatusSink()
	sink := realtime.MultiSink{realtime.NewLogSink(logger), statusSink}
	writer := realtime.NewWriter(tt, sink, logger)
	manager := realtime.NewManager(writer, logger)

	for _, f := range feeds {
		sc := realtime.SourceConfig{
			FeedID:          f.FeedID,
			URL:             f.URL,
			PollInterval:    f.PollInterval(),
			ReconnectPeriod: f.ReconnectPeriod(),
			InitialTimeout:  f.InitialTimeout(),
		}
		var src realtime.Source
		switch f.Type {
		case "stream":
			src = realtime.NewStreamSource(sc, logger)
		default:
			src = realtime.NewPollSource(sc, logger)
		}
		var h realtime.Handler
		switch f.Kind {
		case "stop-patches":
			h = realtime.NewStopPatchHandler(f.FeedID, logger)
		default:
			h = realtime.NewTripUpdateHandler(f.FeedID, logger)
		}
		manager.AddFeed(src, h)
	}

	go func() {
		if err := manager.Run(ctx); err != nil {
			logger.Error("realtime manager stopped", "error", err)
		}
	}()

	srv := server.New(cfg.Port, tt, manager, statusSink, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
