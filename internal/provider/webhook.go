package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultWebhookTimeout = 10 * time.Second

type webhookRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WebhookTransport posts each notification as JSON to an HTTP endpoint.
type WebhookTransport struct {
	client   *resty.Client
	endpoint string
}

func NewWebhookTransport(endpoint string) (*WebhookTransport, error) {
	client := resty.New()
	client.SetTimeout(defaultWebhookTimeout)

	return NewWebhookTransportWithClient(endpoint, client)
}

func NewWebhookTransportWithClient(endpoint string, client *resty.Client) (*WebhookTransport, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}
	// The dispatcher owns retries.
	client.SetRetryCount(0)

	return &WebhookTransport{client: client, endpoint: trimmed}, nil
}

func (w *WebhookTransport) Channel() string { return "webhook" }

func (w *WebhookTransport) Send(ctx context.Context, destination, subject, body string) error {
	if w == nil || w.client == nil {
		return fmt.Errorf("webhook transport is not initialized")
	}
	if err := requireDestination(destination); err != nil {
		return err
	}

	response, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookRequest{To: destination, Subject: subject, Body: body}).
		Post(w.endpoint)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return transientError("webhook request failed", err)
	}
	if response == nil {
		return transientError("webhook returned empty response", nil)
	}

	status := response.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	return statusError(status, response.String())
}
