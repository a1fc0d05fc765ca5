package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

type fakeSender struct {
	err     error
	gotDest string
	gotMsg  string
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.gotDest = channelID
	f.gotMsg = content
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{}, nil
}

func TestDiscordChannel_Send(t *testing.T) {
	sender := &fakeSender{}
	c := &DiscordChannel{session: sender}

	err := c.Send(context.Background(), "channel-123", "bloom alert")
	require.NoError(t, err)
	assert.Equal(t, "channel-123", sender.gotDest)
	assert.Equal(t, "bloom alert", sender.gotMsg)
}

func TestDiscordChannel_SendFailure(t *testing.T) {
	c := &DiscordChannel{session: &fakeSender{err: errors.New("rate limited")}}
	err := c.Send(context.Background(), "channel-123", "bloom alert")
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestDiscordChannel_CancelledContext(t *testing.T) {
	sender := &fakeSender{}
	c := &DiscordChannel{session: sender}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Send(ctx, "channel-123", "bloom alert")
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Empty(t, sender.gotDest, "no send attempted after cancellation")
}
