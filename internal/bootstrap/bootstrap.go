package bootstrap

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfarm/bloomwatch/internal/calendar"
	"github.com/meridianfarm/bloomwatch/internal/config"
	"github.com/meridianfarm/bloomwatch/internal/database/postgres"
	"github.com/meridianfarm/bloomwatch/internal/detect"
	"github.com/meridianfarm/bloomwatch/internal/engine"
	"github.com/meridianfarm/bloomwatch/internal/notify"
	"github.com/meridianfarm/bloomwatch/internal/raster"
	"github.com/meridianfarm/bloomwatch/internal/repository"
	"github.com/meridianfarm/bloomwatch/internal/targeting"
	"github.com/meridianfarm/bloomwatch/internal/timeseries"
)

// App bundles the wired engine and the repositories the HTTP surface needs.
type App struct {
	Engine *engine.Engine
	Events repository.Event
	Alerts repository.Alert
}

// BuildEngine constructs the full pipeline from configuration. Transport
// channels are only wired when their credentials are present; without any,
// the dispatcher runs in demo mode.
func BuildEngine(cfg *config.Config, db *pgxpool.Pool) (*App, error) {
	eventRepo := postgres.NewEventRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	baseline, err := detect.NewCachedBaseline(eventRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to build baseline provider: %w", err)
	}

	detector := detect.New(detect.Config{
		SmoothingSigma:      cfg.SmoothingSigma,
		ProminenceThreshold: cfg.ProminenceThresh,
		PigmentThreshold:    cfg.PigmentThresh,
		AnomalyThresholdPct: cfg.AnomalyThreshPct,
	}, baseline)

	channels := []notify.Channel{notify.NewDemoChannel()}
	if cfg.SMSWebhookURL != "" {
		channels = append(channels, notify.NewSMSChannel(cfg.SMSWebhookURL, cfg.NotifyTimeout))
	}
	if cfg.DiscordToken != "" {
		discord, err := notify.NewDiscordChannel(cfg.DiscordToken)
		if err != nil {
			return nil, fmt.Errorf("failed to build discord channel: %w", err)
		}
		channels = append(channels, discord)
	}

	dispatcher := notify.NewDispatcher(notify.Config{
		MaxRetries:  cfg.NotifyMaxRetries,
		RetryDelay:  cfg.NotifyRetryDelay,
		SendTimeout: cfg.NotifyTimeout,
		DemoMode:    cfg.DemoMode,
	}, channels...)

	eng := engine.New(
		engine.Config{
			RasterDir:     cfg.RasterDir,
			RegionWorkers: cfg.RegionWorkers,
			RegionTimeout: cfg.RegionTimeout,
			RasterTimeout: cfg.RasterTimeout,
		},
		raster.NewSelector(),
		raster.NewLoader(),
		timeseries.NewExtractor(cfg.MinValidFraction),
		detector,
		calendar.NewValidator(postgres.NewCalendarRepository(db), cfg.CalendarGraceDays),
		targeting.NewTargeter(cfg.DefaultRadiusKm),
		dispatcher,
		engine.Repos{
			Regions: postgres.NewRegionRepository(db),
			Growers: postgres.NewGrowerRepository(db),
			Alerts:  alertRepo,
			Events:  eventRepo,
		},
	)

	return &App{Engine: eng, Events: eventRepo, Alerts: alertRepo}, nil
}
