package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// discordSender is the subset of discordgo.Session used for delivery,
// extracted so tests can substitute a fake.
type discordSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordChannel delivers messages to a grower's Discord channel. Some
// cooperatives run a shared Discord server instead of per-grower phones.
type DiscordChannel struct {
	session discordSender
}

// NewDiscordChannel creates the Discord transport from a bot token.
func NewDiscordChannel(token string) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordChannel{session: session}, nil
}

// Name implements Channel.
func (c *DiscordChannel) Name() string { return ChannelDiscord }

// Send posts the message to the destination channel ID.
func (c *DiscordChannel) Send(ctx context.Context, destination, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if _, err := c.session.ChannelMessageSend(destination, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return nil
}
