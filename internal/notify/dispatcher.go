package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridianfarm/bloomwatch/internal/domain"
	"github.com/meridianfarm/bloomwatch/internal/logger"
)

// Config holds the delivery policy.
type Config struct {
	MaxRetries  int           // retries per channel after the first attempt
	RetryDelay  time.Duration // base delay, scaled linearly per attempt
	SendTimeout time.Duration // bound on one transport call
	DemoMode    bool          // route everything through the demo channel
}

// Dispatcher renders and delivers one alert per (grower, event) pair. It
// walks the grower's channel preferences, retrying each channel before
// falling back to the next, and always produces exactly one terminal
// AlertRecord. Idempotence across runs is enforced upstream by the
// targeting dedup check, not here.
type Dispatcher struct {
	cfg      Config
	channels map[string]Channel
	now      func() time.Time
}

// NewDispatcher creates a dispatcher over the given transports.
func NewDispatcher(cfg Config, channels ...Channel) *Dispatcher {
	m := make(map[string]Channel, len(channels))
	for _, c := range channels {
		m[c.Name()] = c
	}
	return &Dispatcher{cfg: cfg, channels: m, now: time.Now}
}

// Dispatch delivers the alert for one targeted grower and returns the
// terminal record. A failed record is eligible for retry on the next
// scheduled run; it is never silently dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, g domain.Grower, e domain.BloomEvent) domain.AlertRecord {
	log := logger.FromContext(ctx)
	msg := RenderMessage(g.Language, e)
	identity := e.Identity()

	record := domain.AlertRecord{
		ID:        uuid.NewString(),
		GrowerID:  g.ID,
		EventID:   e.ID,
		Region:    identity.Region,
		Crop:      identity.Crop,
		Month:     identity.Month,
		Status:    domain.AlertStatusFailed,
		CreatedAt: d.now().UTC(),
	}

	order := d.channelOrder(g)
	if len(order) == 0 {
		log.Warn("Grower has no usable notification channel", "grower", g.ID)
		return record
	}
	record.Channel = order[0]

	for _, name := range order {
		ch := d.channels[name]
		dest := destinationFor(g, name)

		attempts, err := d.sendWithRetry(ctx, ch, dest, msg)
		record.Attempts += attempts
		if err == nil {
			record.Channel = name
			record.Status = domain.AlertStatusSent
			if name == ChannelDemo {
				record.Status = domain.AlertStatusDemo
			}
			return record
		}

		log.Warn("Channel exhausted, trying fallback",
			"grower", g.ID, "channel", name, "error", err)
		record.Channel = name
	}

	log.Error("All channels failed for alert",
		"grower", g.ID, "event", e.ID, "attempts", record.Attempts)
	return record
}

// channelOrder resolves the grower's preference list against the configured
// transports, keeping only channels the grower can actually receive on.
func (d *Dispatcher) channelOrder(g domain.Grower) []string {
	if d.cfg.DemoMode {
		if _, ok := d.channels[ChannelDemo]; ok {
			return []string{ChannelDemo}
		}
		return nil
	}

	var order []string
	for _, name := range g.Channels {
		if _, ok := d.channels[name]; !ok {
			continue
		}
		if destinationFor(g, name) == "" {
			continue
		}
		order = append(order, name)
	}
	return order
}

// sendWithRetry attempts delivery on one channel with linear backoff,
// returning the number of attempts made.
func (d *Dispatcher) sendWithRetry(ctx context.Context, ch Channel, dest, msg string) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, d.cfg.RetryDelay*time.Duration(attempt)); err != nil {
				return attempt, err
			}
		}

		sendCtx := ctx
		var cancel context.CancelFunc
		if d.cfg.SendTimeout > 0 {
			sendCtx, cancel = context.WithTimeout(ctx, d.cfg.SendTimeout)
		}
		lastErr = ch.Send(sendCtx, dest, msg)
		if cancel != nil {
			cancel()
		}
		if lastErr == nil {
			return attempt + 1, nil
		}
	}
	return d.cfg.MaxRetries + 1, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
