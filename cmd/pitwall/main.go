package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pitwall/pitwall/internal/api"
	"github.com/pitwall/pitwall/internal/config"
	"github.com/pitwall/pitwall/internal/monitor"
	"github.com/pitwall/pitwall/internal/obs"
	"github.com/pitwall/pitwall/internal/store"
	"github.com/pitwall/pitwall/internal/telemetry"
	"github.com/pitwall/pitwall/internal/ws"
)

func main() {
	configPath := flag.String("config", "pitwall.yaml", "path to config file")
	replayPath := flag.String("replay", "", "override the telemetry recording to replay")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("pitwall starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *replayPath != "" {
		cfg.Feed.ReplayPath = *replayPath
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"status_ttl", cfg.Server.StatusTTL.Std(),
		"session", cfg.Feed.SessionID,
		"replay", cfg.Feed.ReplayPath,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	obs.Init()

	// Latest-status store with background TTL eviction.
	st := store.New(cfg.Server.StatusTTL.Std())
	go st.Run(ctx)

	// Derived-metrics engine for this session. The engine itself is
	// single-threaded; the mutex serializes the feed loop with config
	// hot-reloads.
	eng := monitor.New(cfg.EngineOptions())
	var engMu sync.Mutex

	// WebSocket hub — pushes statuses on an interval, alerts as they commit.
	hub := ws.New(st, cfg.Server.BroadcastInterval.Std())
	go hub.Run(ctx)

	// Hot-reload: threshold and pit-window changes apply to the running
	// engine; server and feed settings need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			engMu.Lock()
			eng.Retune(updated.EngineOptions())
			engMu.Unlock()
			slog.Info("config hot-reloaded", "thresholds", len(updated.Engine.Thresholds))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Ingest loop: replay the recording through the engine, publishing every
	// computed status to the store, the hub and the metrics registry.
	go func() {
		session := cfg.Feed.SessionID
		feed := telemetry.NewReplayFeed(cfg.Feed.ReplayPath, cfg.Feed.ReplayRate)
		err := feed.Run(ctx, func(s telemetry.Sample) {
			engMu.Lock()
			status := eng.Update(s)
			engMu.Unlock()
			st.Put(session, status)
			obs.RecordStatus(session, status)
			if len(status.Transitions) > 0 {
				obs.RecordTransitions(status.Transitions)
				hub.PublishTransitions(session, status.Transitions)
			}
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("replay feed stopped", "err", err)
		} else {
			slog.Info("replay feed finished", "session", session)
		}
	}()

	// Combined HTTP server: REST API + WebSocket stream + Prometheus scrape.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(st, cfg.Server.Auth))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("pitwall shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
