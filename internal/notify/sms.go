package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meridianfarm/bloomwatch/internal/domain"
)

// SMSChannel delivers messages through an HTTP SMS gateway webhook.
type SMSChannel struct {
	webhookURL string
	client     *http.Client
}

// NewSMSChannel creates the SMS transport. The timeout bounds each send so a
// slow gateway cannot stall a run.
func NewSMSChannel(webhookURL string, timeout time.Duration) *SMSChannel {
	return &SMSChannel{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name implements Channel.
func (c *SMSChannel) Name() string { return ChannelSMS }

type smsPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send posts the message to the gateway. Any network error or non-2xx
// response is a transport failure eligible for retry.
func (c *SMSChannel) Send(ctx context.Context, destination, message string) error {
	body, err := json.Marshal(smsPayload{To: destination, Message: message})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sms gateway returned %d", domain.ErrTransport, resp.StatusCode)
	}
	return nil
}
