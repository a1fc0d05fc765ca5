package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianfarm/bloomwatch/internal/calendar"
	"github.com/meridianfarm/bloomwatch/internal/detect"
	"github.com/meridianfarm/bloomwatch/internal/domain"
	"github.com/meridianfarm/bloomwatch/internal/notify"
	"github.com/meridianfarm/bloomwatch/internal/raster"
	"github.com/meridianfarm/bloomwatch/internal/targeting"
	"github.com/meridianfarm/bloomwatch/internal/timeseries"
)

// In-memory repositories. The alert store enforces the same terminal-record
// uniqueness the database does, so the idempotence path is exercised end to
// end without a live database.

type memRegions struct {
	regions []domain.Region
}

func (m *memRegions) ListRegions(_ context.Context) ([]domain.Region, error) {
	return m.regions, nil
}

type memGrowers struct {
	growers []domain.Grower
	err     error
}

func (m *memGrowers) ListGrowers(_ context.Context) ([]domain.Grower, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.growers, nil
}

type memAlerts struct {
	mu      sync.Mutex
	records []domain.AlertRecord
}

func (m *memAlerts) InsertRecord(_ context.Context, record domain.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.Status.Terminal() {
		for _, r := range m.records {
			if r.Status.Terminal() && r.GrowerID == record.GrowerID && r.Identity() == record.Identity() {
				return domain.ErrDuplicateAlert
			}
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memAlerts) ListTerminal(_ context.Context) ([]domain.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AlertRecord
	for _, r := range m.records {
		if r.Status.Terminal() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAlerts) ListRecords(_ context.Context, limit int) ([]domain.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.records) {
		limit = len(m.records)
	}
	return m.records[len(m.records)-limit:], nil
}

func (m *memAlerts) terminalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.Status.Terminal() {
			n++
		}
	}
	return n
}

type memEvents struct {
	mu        sync.Mutex
	events    []domain.BloomEvent
	baselines map[string]float64 // region -> mean
}

func (m *memEvents) InsertEvents(_ context.Context, events []domain.BloomEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *memEvents) ListEvents(_ context.Context, limit int) ([]domain.BloomEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.events) {
		limit = len(m.events)
	}
	return m.events[len(m.events)-limit:], nil
}

func (m *memEvents) GetBaseline(_ context.Context, region string, _ domain.IndexLayer, _ time.Month) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.baselines[region]; ok {
		return v, nil
	}
	return 0, domain.ErrInsufficientData
}

type memCalendar struct {
	entries map[string]domain.CropCalendarEntry // crop|region
}

func (m *memCalendar) GetEntry(_ context.Context, crop, region string) (domain.CropCalendarEntry, bool, error) {
	e, ok := m.entries[crop+"|"+region]
	return e, ok, nil
}

// okChannel accepts every delivery.
type okChannel struct{ name string }

func (c okChannel) Name() string                              { return c.name }
func (c okChannel) Send(_ context.Context, _, _ string) error { return nil }

func engineTestRegion() domain.Region {
	return domain.Region{
		Name: "valley",
		Crop: "almond",
		Bounds: domain.Bounds{
			MinLat: 40.0, MinLon: 10.0,
			MaxLat: 41.0, MaxLon: 11.0,
		},
	}
}

// constantGrid renders a 4x4 ASCII grid covering the test region bounds.
func constantGrid(v float64) string {
	row := fmt.Sprintf("%.2f %.2f %.2f %.2f\n", v, v, v, v)
	return "ncols 4\nnrows 4\nxllcorner 10.0\nyllcorner 40.0\ncellsize 0.25\nnodata_value -9999\n" +
		row + row + row + row
}

func writeGrid(t *testing.T, dir, tag string, layer domain.IndexLayer, date string, v float64) {
	t.Helper()
	tagDir := filepath.Join(dir, tag)
	require.NoError(t, os.MkdirAll(tagDir, 0o755))
	name := fmt.Sprintf("%s_%s.asc", layer, date)
	require.NoError(t, os.WriteFile(filepath.Join(tagDir, name), []byte(constantGrid(v)), 0o644))
}

// bloomSeason writes a vegetation series with one prominent peak plus a
// pigment series confirming it.
func bloomSeason(t *testing.T, dir string) {
	t.Helper()
	dates := []string{"2025-03-01", "2025-03-06", "2025-03-11", "2025-03-16", "2025-03-21", "2025-03-26", "2025-03-31"}
	veg := []float64{0.3, 0.35, 0.4, 0.75, 0.78, 0.4, 0.35}
	pigment := []float64{0.02, 0.03, 0.05, 0.12, 0.15, 0.06, 0.04}
	for i, d := range dates {
		writeGrid(t, dir, "high-res-5day", domain.LayerVegetation, d, veg[i])
		writeGrid(t, dir, "high-res-5day", domain.LayerPigment, d, pigment[i])
	}
}

type testEnv struct {
	engine  *Engine
	alerts  *memAlerts
	events  *memEvents
	growers *memGrowers
}

func newTestEnv(t *testing.T, rasterDir string, regions []domain.Region, growers *memGrowers) *testEnv {
	t.Helper()

	events := &memEvents{baselines: map[string]float64{"valley": 0.5}}
	alerts := &memAlerts{}

	baseline, err := detect.NewCachedBaseline(events)
	require.NoError(t, err)

	cal := &memCalendar{entries: map[string]domain.CropCalendarEntry{
		"almond|valley": {
			Crop: "almond", Region: "valley",
			StartMonth: time.February, EndMonth: time.April,
		},
	}}

	dispatcher := notify.NewDispatcher(notify.Config{
		MaxRetries: 1, RetryDelay: time.Millisecond, SendTimeout: time.Second,
	}, okChannel{name: notify.ChannelSMS})

	eng := New(
		Config{RasterDir: rasterDir, RegionWorkers: 2, RegionTimeout: 30 * time.Second},
		raster.NewSelector(),
		raster.NewLoader(),
		timeseries.NewExtractor(0),
		detect.New(detect.DefaultConfig(), baseline),
		calendar.NewValidator(cal, 14),
		targeting.NewTargeter(0),
		dispatcher,
		Repos{
			Regions: &memRegions{regions: regions},
			Growers: growers,
			Alerts:  alerts,
			Events:  events,
		},
	)
	return &testEnv{engine: eng, alerts: alerts, events: events, growers: growers}
}

func registeredGrower() domain.Grower {
	return domain.Grower{
		ID:       "g-1",
		Name:     "Rosa",
		Location: domain.LatLon{Lat: 40.5, Lon: 10.5}, // the region centroid
		Crops:    []string{"almond"},
		Channels: []string{notify.ChannelSMS},
		Language: "en",
		Phone:    "+15550100",
	}
}

func TestRun_DetectsAndAlerts(t *testing.T) {
	dir := t.TempDir()
	bloomSeason(t, dir)

	env := newTestEnv(t, dir, []domain.Region{engineTestRegion()},
		&memGrowers{growers: []domain.Grower{registeredGrower()}})

	result, err := env.engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Skipped)
	assert.Zero(t, result.Failed)

	require.Len(t, result.Events, 1)
	event := result.Events[0]
	assert.Equal(t, domain.TierHigh, event.Tier)
	assert.Equal(t, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC), event.Detected)
	assert.True(t, event.Anomalous)
	assert.False(t, event.Synthetic)

	require.Len(t, result.Records, 1)
	record := result.Records[0]
	assert.Equal(t, domain.AlertStatusSent, record.Status)
	assert.Equal(t, "g-1", record.GrowerID)
	assert.Equal(t, "2025-03", record.Month)

	assert.Len(t, env.events.events, 1, "the event is persisted")
	assert.Equal(t, 1, env.alerts.terminalCount())
}

func TestRun_SecondRunDoesNotRealert(t *testing.T) {
	dir := t.TempDir()
	bloomSeason(t, dir)

	env := newTestEnv(t, dir, []domain.Region{engineTestRegion()},
		&memGrowers{growers: []domain.Grower{registeredGrower()}})

	first, err := env.engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Records, 1)

	second, err := env.engine.Run(context.Background())
	require.NoError(t, err)

	// The re-detection is the same logical event; the grower is not alerted
	// again and no second terminal record exists.
	assert.Len(t, second.Events, 1)
	assert.Empty(t, second.Records)
	assert.Equal(t, 1, env.alerts.terminalCount())
}

func TestRun_RegistryDownStillDetects(t *testing.T) {
	dir := t.TempDir()
	bloomSeason(t, dir)

	env := newTestEnv(t, dir, []domain.Region{engineTestRegion()},
		&memGrowers{err: domain.ErrRegistryUnavailable})

	result, err := env.engine.Run(context.Background())
	require.NoError(t, err, "registry unavailability never fails the run")

	assert.Len(t, result.Events, 1, "detection results are retained")
	assert.Empty(t, result.Records)
	assert.Len(t, env.events.events, 1)
}

func TestRun_ShortSeriesSkipsRegion(t *testing.T) {
	dir := t.TempDir()
	writeGrid(t, dir, "high-res-5day", domain.LayerVegetation, "2025-03-01", 0.3)
	writeGrid(t, dir, "high-res-5day", domain.LayerVegetation, "2025-03-06", 0.4)

	env := newTestEnv(t, dir, []domain.Region{engineTestRegion()},
		&memGrowers{growers: []domain.Grower{registeredGrower()}})

	result, err := env.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Events)
}

func TestRun_RegionFailureIsIsolated(t *testing.T) {
	// An empty catalog forces the synthetic fallback; the degenerate region
	// cannot even generate synthetic data and fails alone.
	degenerate := domain.Region{
		Name: "broken",
		Crop: "almond",
		Bounds: domain.Bounds{
			MinLat: 40.0, MinLon: 10.0,
			MaxLat: 40.0, MaxLon: 10.0,
		},
	}

	env := newTestEnv(t, t.TempDir(), []domain.Region{engineTestRegion(), degenerate},
		&memGrowers{growers: []domain.Grower{registeredGrower()}})

	result, err := env.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Processed+result.Skipped)
}

func TestRun_SyntheticEventsAreLabeled(t *testing.T) {
	// No raster exports at all: every series comes from the generator and any
	// resulting event must carry the synthetic marker.
	env := newTestEnv(t, t.TempDir(), []domain.Region{engineTestRegion()},
		&memGrowers{growers: []domain.Grower{registeredGrower()}})

	result, err := env.engine.Run(context.Background())
	require.NoError(t, err)
	for _, ev := range result.Events {
		assert.True(t, ev.Synthetic)
		assert.Equal(t, raster.SyntheticTag, ev.SourceTag)
	}
}
