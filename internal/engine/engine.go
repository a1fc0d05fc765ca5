package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/calendar"
	"github.com/meridianfarm/bloomwatch/internal/detect"
	"github.com/meridianfarm/bloomwatch/internal/domain"
	"github.com/meridianfarm/bloomwatch/internal/logger"
	"github.com/meridianfarm/bloomwatch/internal/metrics"
	"github.com/meridianfarm/bloomwatch/internal/notify"
	"github.com/meridianfarm/bloomwatch/internal/raster"
	"github.com/meridianfarm/bloomwatch/internal/repository"
	"github.com/meridianfarm/bloomwatch/internal/targeting"
	"github.com/meridianfarm/bloomwatch/internal/timeseries"
)

// Config holds the per-run orchestration knobs.
type Config struct {
	RasterDir     string
	RegionWorkers int
	RegionTimeout time.Duration
	RasterTimeout time.Duration
}

// Repos bundles the persistence dependencies.
type Repos struct {
	Regions repository.Region
	Growers repository.Grower
	Alerts  repository.Alert
	Events  repository.Event
}

// RunResult is what one run produced, exposed to the reporting collaborator.
type RunResult struct {
	RunID      string               `json:"runId"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
	Events     []domain.BloomEvent  `json:"events"`
	Records    []domain.AlertRecord `json:"records"`
	Processed  int                  `json:"processed"`
	Skipped    int                  `json:"skipped"`
	Failed     int                  `json:"failed"`
}

// Engine wires the pipeline stages together. All shared inputs (catalog,
// registry, sent index) are snapshotted once per run and passed down, so
// stages stay free of hidden shared state.
type Engine struct {
	cfg        Config
	selector   *raster.Selector
	loader     *raster.Loader
	extractor  *timeseries.Extractor
	detector   *detect.Detector
	validator  *calendar.Validator
	targeter   *targeting.Targeter
	dispatcher *notify.Dispatcher
	repos      Repos
	now        func() time.Time
}

// New creates an engine from fully-constructed stages.
func New(cfg Config, selector *raster.Selector, loader *raster.Loader,
	extractor *timeseries.Extractor, detector *detect.Detector,
	validator *calendar.Validator, targeter *targeting.Targeter,
	dispatcher *notify.Dispatcher, repos Repos) *Engine {
	if cfg.RegionWorkers <= 0 {
		cfg.RegionWorkers = 4
	}
	return &Engine{
		cfg:        cfg,
		selector:   selector,
		loader:     loader,
		extractor:  extractor,
		detector:   detector,
		validator:  validator,
		targeter:   targeter,
		dispatcher: dispatcher,
		repos:      repos,
		now:        time.Now,
	}
}

// lockedSentIndex guards the dedup index across parallel region workers.
type lockedSentIndex struct {
	mu    sync.RWMutex
	index targeting.SentIndex
}

func (l *lockedSentIndex) Contains(growerID string, id domain.EventIdentity) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.Contains(growerID, id)
}

func (l *lockedSentIndex) Add(growerID string, id domain.EventIdentity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.index.Add(growerID, id)
}

// runState carries the per-run snapshots shared read-only by region workers.
type runState struct {
	catalog      *raster.Catalog
	growers      []domain.Grower
	sent         *lockedSentIndex
	registryDown bool
	asOf         time.Time
}

// Run executes one full engine pass. It fails only when the region list or
// raster catalog cannot be read at run start; everything else degrades to
// the smallest affected unit.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	started := e.now().UTC()
	log := logger.FromContext(ctx)
	log.Info("Engine run starting")

	regions, err := e.repos.Regions.ListRegions(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	catalog, err := raster.ScanDir(e.cfg.RasterDir)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to scan raster catalog: %w", err)
	}

	state := &runState{
		catalog: catalog,
		sent:    &lockedSentIndex{index: make(targeting.SentIndex)},
		asOf:    started,
	}

	// Registry unavailability is fatal for targeting and dispatch only:
	// detection still runs and its events are retained.
	state.growers, err = e.repos.Growers.ListGrowers(ctx)
	if err != nil {
		log.Error("Grower registry unavailable, running detection only", "error", err)
		state.registryDown = true
	} else {
		records, err := e.repos.Alerts.ListTerminal(ctx)
		if err != nil {
			log.Error("Alert log unavailable, running detection only", "error", err)
			state.registryDown = true
		} else {
			for _, rec := range records {
				state.sent.Add(rec.GrowerID, rec.Identity())
			}
		}
	}

	result := &RunResult{RunID: runID(ctx), StartedAt: started}
	var mu sync.Mutex

	sem := make(chan struct{}, e.cfg.RegionWorkers)
	var wg sync.WaitGroup

	for _, region := range regions {
		// A cancelled run stops launching new regions; results already
		// persisted for completed regions remain valid.
		if ctx.Err() != nil {
			log.Warn("Run aborted between regions", "error", ctx.Err())
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(region domain.Region) {
			defer wg.Done()
			defer func() { <-sem }()

			regionCtx := ctx
			var cancel context.CancelFunc
			if e.cfg.RegionTimeout > 0 {
				regionCtx, cancel = context.WithTimeout(ctx, e.cfg.RegionTimeout)
				defer cancel()
			}

			events, records, skipped, err := e.processRegion(regionCtx, region, state)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Error("Region failed", "region", region.Name, "error", err)
				result.Failed++
				metrics.RegionsProcessed.WithLabelValues("failed").Inc()
			case skipped:
				result.Skipped++
				metrics.RegionsProcessed.WithLabelValues("skipped").Inc()
			default:
				result.Processed++
				metrics.RegionsProcessed.WithLabelValues("ok").Inc()
			}
			result.Events = append(result.Events, events...)
			result.Records = append(result.Records, records...)
		}(region)
	}
	wg.Wait()

	result.FinishedAt = e.now().UTC()
	metrics.RunDuration.Observe(result.FinishedAt.Sub(started).Seconds())
	metrics.RunsTotal.WithLabelValues("ok").Inc()

	log.Info("Engine run complete",
		"processed", result.Processed, "skipped", result.Skipped, "failed", result.Failed,
		"events", len(result.Events), "alerts", len(result.Records))
	return result, nil
}

// processRegion runs the strictly-sequential pipeline for one region:
// select, extract, detect, validate, persist, target, dispatch.
func (e *Engine) processRegion(ctx context.Context, region domain.Region, state *runState) (events []domain.BloomEvent, records []domain.AlertRecord, skipped bool, err error) {
	log := logger.FromContext(ctx)

	vegSeries, err := e.layerSeries(ctx, region, domain.LayerVegetation, state)
	if err != nil {
		return nil, nil, false, err
	}

	// A missing pigment layer is not fatal: candidates simply fail pigment
	// confirmation and drop to low tier.
	pigmentSeries, err := e.layerSeries(ctx, region, domain.LayerPigment, state)
	if err != nil {
		log.Warn("Pigment layer unavailable", "region", region.Name, "error", err)
		pigmentSeries = domain.RegionTimeSeries{Region: region.Name, Layer: domain.LayerPigment}
	}

	detection, err := e.detector.Detect(ctx, region, vegSeries, pigmentSeries)
	if err != nil {
		return nil, nil, false, err
	}
	if detection.InsufficientData {
		log.Info("Skipping region, insufficient data", "region", region.Name)
		return nil, nil, true, nil
	}

	for _, event := range detection.Events {
		validated, keep, err := e.validator.Validate(ctx, event)
		if err != nil {
			return nil, nil, false, err
		}
		if keep {
			events = append(events, validated)
		}
	}

	if err := e.repos.Events.InsertEvents(ctx, events); err != nil {
		return nil, nil, false, err
	}
	for _, ev := range events {
		metrics.EventsDetected.WithLabelValues(string(ev.Tier)).Inc()
	}

	if state.registryDown {
		return events, nil, false, nil
	}

	for _, event := range events {
		matches := e.targeter.Target(ctx, event, state.growers, state.sent)
		for _, m := range matches {
			record := e.dispatcher.Dispatch(ctx, m.Grower, m.Event)
			if err := e.repos.Alerts.InsertRecord(ctx, record); err != nil {
				if errors.Is(err, domain.ErrDuplicateAlert) {
					// A concurrent writer already delivered this pair.
					continue
				}
				log.Error("Failed to persist alert record",
					"grower", m.Grower.ID, "event", event.ID, "error", err)
				continue
			}
			if record.Status.Terminal() {
				state.sent.Add(record.GrowerID, record.Identity())
			}
			metrics.AlertsDispatched.WithLabelValues(record.Channel, string(record.Status)).Inc()
			records = append(records, record)
		}
	}

	return events, records, false, nil
}

// layerSeries selects the best source for one layer and reduces it to the
// regional time series.
func (e *Engine) layerSeries(ctx context.Context, region domain.Region, layer domain.IndexLayer, state *runState) (domain.RegionTimeSeries, error) {
	selection, err := e.selector.Select(state.catalog, layer, region, state.asOf)
	if err != nil {
		return domain.RegionTimeSeries{}, err
	}

	rasters := selection.Rasters
	if selection.Synthetic {
		metrics.SyntheticFallbacks.WithLabelValues(string(layer)).Inc()
	} else {
		for _, h := range selection.Handles {
			loadCtx := ctx
			var cancel context.CancelFunc
			if e.cfg.RasterTimeout > 0 {
				loadCtx, cancel = context.WithTimeout(ctx, e.cfg.RasterTimeout)
			}
			r, err := e.loader.Load(loadCtx, h)
			if cancel != nil {
				cancel()
			}
			if err != nil {
				logger.FromContext(ctx).Warn("Skipping unreadable grid",
					"path", h.Path, "error", err)
				continue
			}
			rasters = append(rasters, r)
		}
	}

	return e.extractor.Extract(region, rasters), nil
}

func runID(ctx context.Context) string {
	if id, ok := logger.RunIDFromContext(ctx); ok {
		return id
	}
	return logger.GenerateRunID()
}
