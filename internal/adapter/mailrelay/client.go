package mailrelay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
)

// Client posts serialized mail requests to the dispatch service.
// It implements pipeline.MailDispatcher.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dispatch client with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Dispatch POSTs payload as JSON to endpoint. Connection failures and
// non-2xx responses wrap domain.ErrTransport. There is exactly one attempt.
func (c *Client) Dispatch(ctx context.Context, endpoint string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send mail request: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: send mail request: HTTP %d: %s", domain.ErrTransport, resp.StatusCode, bytes.TrimSpace(body))
	}

	c.logger.Debug("mail request accepted", "endpoint", endpoint, "status", resp.StatusCode)
	return nil
}
