package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/bootstrap"
	"github.com/meridianfarm/bloomwatch/internal/config"
	"github.com/meridianfarm/bloomwatch/internal/database"
	"github.com/meridianfarm/bloomwatch/internal/engine"
	"github.com/meridianfarm/bloomwatch/internal/scheduler"
	"github.com/meridianfarm/bloomwatch/internal/server"
	"github.com/meridianfarm/bloomwatch/internal/worker"
)

const (
	dbMaxConns    = 10
	dbMaxIdleTime = 5 * time.Minute
	dbMaxLifetime = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	initLogger(cfg)

	dbPool, err := database.NewPool(cfg.GetDBConnString(), dbMaxConns, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	app, err := bootstrap.BuildEngine(cfg, dbPool)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	job := engine.NewRunJob(app.Engine)

	// One worker, queue of one: engine runs never overlap and a tick that
	// lands mid-run is skipped.
	pool := worker.NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	sched := scheduler.New(pool)
	sched.Schedule(cfg.RunInterval, job)
	defer sched.Stop()

	// Kick off the first run immediately rather than waiting an interval.
	pool.TryEnqueue(job)

	srv := server.NewServer(server.Config{
		Port:        cfg.Port,
		APIKey:      cfg.APIKey,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		RasterDir:   cfg.RasterDir,
	}, dbPool, app.Events, app.Alerts, pool, job)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-stop:
		slog.Default().Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Default().Error("Shutdown incomplete", "error", err)
		}
	}
}
