package alerting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/plastimar/rolltrack/internal/config"
)

// Client posts waste alerts to the configured operations webhook.
type Client interface {
	SendWasteAlert(ctx context.Context, alert WasteAlert) error
}

// WasteAlert describes one day's waste figure that crossed the alert
// threshold.
type WasteAlert struct {
	Date         string  `json:"date"`
	TotalWasteKg float64 `json:"total_waste_kg"`
	WastePct     float64 `json:"waste_pct"`
	ThresholdPct float64 `json:"threshold_pct"`
	Message      string  `json:"message"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.AlertsConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.WebhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.AuthToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AuthToken))
	}

	return &WebhookClient{httpClient: restyClient}
}

// SendWasteAlert posts the alert payload to the webhook.
func (c *WebhookClient) SendWasteAlert(ctx context.Context, alert WasteAlert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post("")
	if err != nil {
		return fmt.Errorf("send waste alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("waste alert webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
