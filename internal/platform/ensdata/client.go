// Package ensdata resolves ENS names and avatars for wallet addresses via
// the public ensdata.net resolver, with a deterministic DiceBear avatar
// fallback for addresses that have neither.
package ensdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public ensdata.net resolver.
const DefaultBaseURL = "https://api.ensdata.net"

// dicebearBase serves deterministic per-address fallback avatars.
const dicebearBase = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// Client resolves ENS names and avatars.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new ensdata client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ResolveName returns the ENS name for an address, or "" when none is set.
func (c *Client) ResolveName(ctx context.Context, address string) (string, error) {
	body, err := c.get(ctx, "/ens/resolve/"+address)
	if err != nil {
		return "", fmt.Errorf("ensdata: resolve name for %s: %w", address, err)
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("ensdata: decode name: %w", err)
	}
	return payload.Name, nil
}

// ResolveAvatar returns an avatar URL for the address. It tries the ENS
// avatar record first and falls back to a DiceBear avatar seeded by the
// address, so the result is always usable.
func (c *Client) ResolveAvatar(ctx context.Context, address string) string {
	name, err := c.ResolveName(ctx, address)
	if err == nil && name != "" {
		if url, err := c.avatarURL(ctx, name); err == nil && url != "" {
			return url
		}
	}
	return FallbackAvatar(address)
}

// FallbackAvatar returns the deterministic DiceBear avatar URL for an
// address. Pure function of the address; requires no network access.
func FallbackAvatar(address string) string {
	seed := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return dicebearBase + seed
}

func (c *Client) avatarURL(ctx context.Context, ensName string) (string, error) {
	body, err := c.get(ctx, "/avatar/"+ensName)
	if err != nil {
		return "", fmt.Errorf("ensdata: avatar for %s: %w", ensName, err)
	}

	var payload struct {
		Avatar string `json:"avatar"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("ensdata: decode avatar: %w", err)
	}
	return payload.Avatar, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
