package notify

import (
	"context"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// Channel names used in grower preferences and alert records.
const (
	ChannelSMS     = "sms"
	ChannelDiscord = "discord"
	ChannelDemo    = "demo"
)

// Channel delivers one rendered message to one destination. Implementations
// return an error only for transport failures; a nil error means the message
// was accepted by the provider.
type Channel interface {
	Name() string
	Send(ctx context.Context, destination, message string) error
}

// destinationFor resolves the per-channel address for a grower. An empty
// destination means the grower cannot receive on that channel.
func destinationFor(g domain.Grower, channel string) string {
	switch channel {
	case ChannelSMS:
		return g.Phone
	case ChannelDiscord:
		return g.Discord
	case ChannelDemo:
		return g.ID
	default:
		return ""
	}
}
