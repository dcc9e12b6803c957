package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client delivers short text notifications.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the JSON body posted to the webhook. The text field is what
// chat webhooks (Slack, Mattermost, Feishu bots) display.
type Message struct {
	Title  string    `json:"title"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client posting to url.
func NewClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &WebhookClient{
		httpClient: restyClient,
		url:        strings.TrimSpace(url),
	}
}

// webhookError captures the common error bodies of chat webhooks.
type webhookError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Send posts the message.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	if c.url == "" {
		return errors.New("notification webhook url is empty")
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	apiErr := new(webhookError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("notification webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
