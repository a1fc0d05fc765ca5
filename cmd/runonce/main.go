// Command runonce executes a single engine pass and exits, for cron-style
// deployments and local inspection of a run.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/bootstrap"
	"github.com/meridianfarm/bloomwatch/internal/config"
	"github.com/meridianfarm/bloomwatch/internal/database"
	"github.com/meridianfarm/bloomwatch/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, false))

	dbPool, err := database.NewPool(cfg.GetDBConnString(), 4, time.Minute, 10*time.Minute)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	app, err := bootstrap.BuildEngine(cfg, dbPool)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.WithRunID(ctx, logger.GenerateRunID())

	result, err := app.Engine.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
