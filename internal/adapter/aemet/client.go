package aemet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

// maxDocumentBytes bounds the body read; locality documents are a few KB.
const maxDocumentBytes = 4 << 20

// Client downloads AEMET locality documents.
// It implements pipeline.DocumentSource.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an AEMET document client with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchDocument GETs the document at url and returns it decoded to UTF-8.
// Connection failures and non-2xx responses wrap domain.ErrTransport.
func (c *Client) FetchDocument(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: download document: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: download document: HTTP %d", domain.ErrTransport, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read document: %v", domain.ErrTransport, err)
	}

	text, err := DecodeLatin9(raw)
	if err != nil {
		return "", err
	}

	c.logger.Debug("document downloaded", "url", url, "bytes", len(raw))
	return text, nil
}

// DecodeLatin9 converts an ISO-8859-15 byte stream to a UTF-8 string.
func DecodeLatin9(raw []byte) (string, error) {
	out, err := charmap.ISO8859_15.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: ISO-8859-15: %v", domain.ErrDecode, err)
	}
	return string(out), nil
}
