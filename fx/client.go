// Package fx fetches live exchange rates over HTTP.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"personal-data-assistant/utils"
)

// ErrRateUnavailable is returned when the response carries no usable rate.
var ErrRateUnavailable = errors.New("fx: rate unavailable")

type latestResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Client queries an exchangerate.host style "latest" endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	retry    *utils.RetryConfig
}

// NewClient creates a Client with a per-request timeout and retries.
func NewClient(endpoint string, timeout time.Duration, maxAttempts int, logger *utils.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   500 * time.Millisecond,
			Logger:      logger,
		},
	}
}

// FetchRate returns how many units of target one unit of base buys.
func (c *Client) FetchRate(ctx context.Context, base, target string) (float64, error) {
	var rate float64
	err := c.retry.Do(ctx, "fx fetch "+base+"/"+target, func(ctx context.Context) error {
		r, err := c.fetchOnce(ctx, base, target)
		if err != nil {
			return err
		}
		rate = r
		return nil
	})
	return rate, err
}

func (c *Client) fetchOnce(ctx context.Context, base, target string) (float64, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("fx: bad endpoint %q: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("base", base)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("fx: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fx: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("fx: unexpected status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("fx: decode response: %w", err)
	}
	rate, ok := body.Rates[target]
	if !ok {
		return 0, fmt.Errorf("%w: no %s rate for base %s", ErrRateUnavailable, target, base)
	}
	return rate, nil
}
