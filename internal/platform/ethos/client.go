// Package ethos implements the Ethos Network reputation oracle client.
package ethos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Ethos v2 API endpoint.
const DefaultBaseURL = "https://api.ethos.network/api/v2"

// Score is a reputation score resolved for a wallet address.
type Score struct {
	Address string `json:"address"`
	Score   int64  `json:"score"`
	Level   string `json:"level"`
}

// Client fetches credibility scores from the Ethos Network API.
type Client struct {
	baseURL      string
	clientHeader string
	httpClient   *http.Client
}

// NewClient creates a new Ethos client. clientHeader is sent as the
// X-Ethos-Client identification header on every request.
func NewClient(baseURL, clientHeader string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientHeader: clientHeader,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchScore returns the Ethos credibility score for a wallet address.
// An address the oracle has never seen resolves to a zero score at the
// "untrusted" level rather than an error.
func (c *Client) FetchScore(ctx context.Context, address string) (Score, error) {
	endpoint := fmt.Sprintf("%s/score/address?address=%s", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Score{}, fmt.Errorf("ethos: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.clientHeader != "" {
		req.Header.Set("X-Ethos-Client", c.clientHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Score{}, fmt.Errorf("ethos: fetch score for %s: %w", address, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Score{}, fmt.Errorf("ethos: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Score{}, fmt.Errorf("ethos: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Score int64  `json:"score"`
		Level string `json:"level"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Score{}, fmt.Errorf("ethos: decode score: %w", err)
	}

	if payload.Level == "" {
		payload.Level = "untrusted"
	}

	return Score{
		Address: address,
		Score:   payload.Score,
		Level:   payload.Level,
	}, nil
}

// DefaultScore is the conservative fallback used when the oracle cannot be
// reached: zero score, which classifies into the highest fee tier. Charging
// the unknown caller the High Risk rate is always safe; undercharging is not.
func DefaultScore(address string) Score {
	return Score{
		Address: address,
		Score:   0,
		Level:   "untrusted",
	}
}
