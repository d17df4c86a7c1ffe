// Package webhook posts shrink summaries to an operator-configured URL.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
)

// Client exposes the outbound notification operations used by the scheduler.
type Client interface {
	PostSummary(ctx context.Context, summary models.DailySummary) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client for the provided endpoint URL.
func NewClient(url string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		url:        url,
	}
}

// PostSummary delivers a daily summary as a JSON POST.
func (c *APIClient) PostSummary(ctx context.Context, summary models.DailySummary) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(summary).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post summary: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("summary webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
