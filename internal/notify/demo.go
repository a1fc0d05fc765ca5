package notify

import (
	"context"

	"github.com/meridianfarm/bloomwatch/internal/logger"
)

// DemoChannel is the no-op transport for environments without live
// credentials. It always succeeds and still produces an alert record (status
// "demo") so deduplication behaves identically in test and production.
type DemoChannel struct{}

// NewDemoChannel creates the demo transport.
func NewDemoChannel() *DemoChannel {
	return &DemoChannel{}
}

// Name implements Channel.
func (c *DemoChannel) Name() string { return ChannelDemo }

// Send logs the message instead of delivering it.
func (c *DemoChannel) Send(ctx context.Context, destination, message string) error {
	logger.FromContext(ctx).Info("Demo delivery",
		"destination", destination, "message", message)
	return nil
}
