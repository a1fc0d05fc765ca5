package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetEntry(ctx context.Context, crop, region string) (domain.CropCalendarEntry, bool, error) {
	args := m.Called(ctx, crop, region)
	return args.Get(0).(domain.CropCalendarEntry), args.Bool(1), args.Error(2)
}

func calendarEvent(tier domain.ConfidenceTier, detected time.Time) domain.BloomEvent {
	return domain.BloomEvent{
		ID:       "evt-1",
		Region:   "central",
		Crop:     "almond",
		Detected: detected,
		Tier:     tier,
	}
}

func springWindow() domain.CropCalendarEntry {
	return domain.CropCalendarEntry{
		Crop:       "almond",
		Region:     "central",
		StartMonth: time.February,
		EndMonth:   time.March,
	}
}

func TestValidate_InsideWindowKeepsTier(t *testing.T) {
	src := new(mockSource)
	src.On("GetEntry", mock.Anything, "almond", "central").Return(springWindow(), true, nil)

	v := NewValidator(src, 14)
	event := calendarEvent(domain.TierHigh, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	got, keep, err := v.Validate(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, keep)
	assert.Equal(t, domain.TierHigh, got.Tier)
	src.AssertExpectations(t)
}

func TestValidate_NoEntryPassesThrough(t *testing.T) {
	src := new(mockSource)
	src.On("GetEntry", mock.Anything, "almond", "central").
		Return(domain.CropCalendarEntry{}, false, nil)

	v := NewValidator(src, 14)
	event := calendarEvent(domain.TierMedium, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	got, keep, err := v.Validate(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, keep)
	assert.Equal(t, domain.TierMedium, got.Tier)
}

func TestValidate_OutsideWindowDowngrades(t *testing.T) {
	src := new(mockSource)
	src.On("GetEntry", mock.Anything, "almond", "central").Return(springWindow(), true, nil)

	v := NewValidator(src, 14)
	// July is well outside February-March plus grace.
	event := calendarEvent(domain.TierHigh, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	got, keep, err := v.Validate(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, keep, "confirmed early/late blooms are kept, not dropped")
	assert.Equal(t, domain.TierMedium, got.Tier)
}

func TestValidate_LowTierOutsideWindowDropped(t *testing.T) {
	src := new(mockSource)
	src.On("GetEntry", mock.Anything, "almond", "central").Return(springWindow(), true, nil)

	v := NewValidator(src, 14)
	event := calendarEvent(domain.TierLow, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	_, keep, err := v.Validate(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestValidate_GraceExtendsWindow(t *testing.T) {
	src := new(mockSource)
	src.On("GetEntry", mock.Anything, "almond", "central").Return(springWindow(), true, nil)

	v := NewValidator(src, 14)
	// April 10 is 10 days past the March 31 window end, inside 14-day grace.
	event := calendarEvent(domain.TierHigh, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	got, keep, err := v.Validate(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, keep)
	assert.Equal(t, domain.TierHigh, got.Tier)

	// April 20 is past the grace margin.
	event = calendarEvent(domain.TierHigh, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC))
	got, keep, err = v.Validate(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, keep)
	assert.Equal(t, domain.TierMedium, got.Tier)
}

func TestValidate_SourceError(t *testing.T) {
	src := new(mockSource)
	src.On("GetEntry", mock.Anything, "almond", "central").
		Return(domain.CropCalendarEntry{}, false, domain.ErrCalendarUnavailable)

	v := NewValidator(src, 14)
	_, _, err := v.Validate(context.Background(),
		calendarEvent(domain.TierHigh, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, domain.ErrCalendarUnavailable)
}

func TestWithinGrace_YearWrappingWindow(t *testing.T) {
	// November through February, e.g. southern-hemisphere stone fruit.
	entry := domain.CropCalendarEntry{
		StartMonth: time.November,
		EndMonth:   time.February,
	}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"mid window before new year", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), true},
		{"mid window after new year", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"window end", time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), true},
		{"grace past window end", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"grace before window start", time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), true},
		{"deep off-season", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"past grace after wrap", time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinGrace(entry, tt.t, 14))
		})
	}
}
