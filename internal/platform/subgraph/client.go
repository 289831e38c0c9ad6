// Package subgraph implements a GraphQL client for the TrustTrade subgraph,
// which indexes trade, user, review, and platform-stat entities from the
// escrow contract's events.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
)

// Client is a GraphQL client for the TrustTrade subgraph endpoint.
type Client struct {
	graphqlURL string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new subgraph client. graphqlURL is the hosted subgraph
// endpoint, e.g. "https://api.studio.thegraph.com/query/.../trusttrade/v1".
func NewClient(graphqlURL, apiKey string) *Client {
	return &Client{
		graphqlURL: graphqlURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// graphqlRequest is the standard GraphQL request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const tradeFields = `
	id
	tradeId
	seller { id address }
	buyer { id address }
	token
	tokenAmount
	ethPrice
	feeBasisPoints
	status
	disputed
	createdAt
	executedAt
	completedAt
	escrowDuration
`

// rawTrade mirrors the subgraph Trade entity; BigInt fields arrive as
// decimal strings.
type rawTrade struct {
	ID      string `json:"id"`
	TradeID string `json:"tradeId"`
	Seller  struct {
		Address string `json:"address"`
	} `json:"seller"`
	Buyer *struct {
		Address string `json:"address"`
	} `json:"buyer"`
	Token          string `json:"token"`
	TokenAmount    string `json:"tokenAmount"`
	EthPrice       string `json:"ethPrice"`
	FeeBasisPoints string `json:"feeBasisPoints"`
	Status         string `json:"status"`
	Disputed       bool   `json:"disputed"`
	CreatedAt      string `json:"createdAt"`
	ExecutedAt     string `json:"executedAt"`
	CompletedAt    string `json:"completedAt"`
	EscrowDuration string `json:"escrowDuration"`
}

// FetchActiveTrades returns open trades, newest first.
func (c *Client) FetchActiveTrades(ctx context.Context, first int) ([]domain.Trade, error) {
	query := fmt.Sprintf(`
		query ActiveTrades($first: Int!) {
			trades(
				first: $first
				orderBy: createdAt
				orderDirection: desc
				where: { status: "Active" }
			) {%s}
		}
	`, tradeFields)

	respData, err := c.doQuery(ctx, query, map[string]any{"first": first})
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch active trades: %w", err)
	}
	return decodeTradeList(respData)
}

// FetchUserTrades returns trades where the address is seller or buyer.
func (c *Client) FetchUserTrades(ctx context.Context, address string, first int) ([]domain.Trade, error) {
	query := fmt.Sprintf(`
		query UserTrades($address: String!, $first: Int!) {
			trades(
				first: $first
				orderBy: createdAt
				orderDirection: desc
				where: { or: [{ seller: $address }, { buyer: $address }] }
			) {%s}
		}
	`, tradeFields)

	variables := map[string]any{
		"address": strings.ToLower(address),
		"first":   first,
	}

	respData, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch user trades: %w", err)
	}
	return decodeTradeList(respData)
}

// FetchTrade returns a single trade by its on-chain trade ID. Returns
// domain.ErrNotFound when the subgraph has no such trade.
func (c *Client) FetchTrade(ctx context.Context, tradeID string) (domain.Trade, error) {
	query := fmt.Sprintf(`
		query TradeByID($tradeId: BigInt!) {
			trades(first: 1, where: { tradeId: $tradeId }) {%s}
		}
	`, tradeFields)

	respData, err := c.doQuery(ctx, query, map[string]any{"tradeId": tradeID})
	if err != nil {
		return domain.Trade{}, fmt.Errorf("subgraph: fetch trade %s: %w", tradeID, err)
	}

	trades, err := decodeTradeList(respData)
	if err != nil {
		return domain.Trade{}, err
	}
	if len(trades) == 0 {
		return domain.Trade{}, domain.ErrNotFound
	}
	return trades[0], nil
}

// FetchUser returns the aggregated user entity for an address. Returns
// domain.ErrNotFound for addresses that have never traded.
func (c *Client) FetchUser(ctx context.Context, address string) (domain.User, error) {
	query := `
		query User($id: ID!) {
			user(id: $id) {
				id
				address
				totalTradesVendor
				totalTradesBuyer
				completedTradesVendor
				completedTradesBuyer
				totalVolume
				averageRating
				reviewCount
				createdAt
				updatedAt
			}
		}
	`

	respData, err := c.doQuery(ctx, query, map[string]any{"id": strings.ToLower(address)})
	if err != nil {
		return domain.User{}, fmt.Errorf("subgraph: fetch user %s: %w", address, err)
	}

	var result struct {
		User *struct {
			ID                    string `json:"id"`
			Address               string `json:"address"`
			TotalTradesVendor     string `json:"totalTradesVendor"`
			TotalTradesBuyer      string `json:"totalTradesBuyer"`
			CompletedTradesVendor string `json:"completedTradesVendor"`
			CompletedTradesBuyer  string `json:"completedTradesBuyer"`
			TotalVolume           string `json:"totalVolume"`
			AverageRating         string `json:"averageRating"`
			ReviewCount           string `json:"reviewCount"`
			CreatedAt             string `json:"createdAt"`
			UpdatedAt             string `json:"updatedAt"`
		} `json:"user"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return domain.User{}, fmt.Errorf("subgraph: decode user: %w", err)
	}
	if result.User == nil {
		return domain.User{}, domain.ErrNotFound
	}

	u := result.User
	return domain.User{
		ID:                    u.ID,
		Address:               u.Address,
		TotalTradesVendor:     parseInt(u.TotalTradesVendor),
		TotalTradesBuyer:      parseInt(u.TotalTradesBuyer),
		CompletedTradesVendor: parseInt(u.CompletedTradesVendor),
		CompletedTradesBuyer:  parseInt(u.CompletedTradesBuyer),
		TotalVolume:           u.TotalVolume,
		AverageRating:         parseFloat(u.AverageRating),
		ReviewCount:           parseInt(u.ReviewCount),
		CreatedAt:             unixTime(parseInt(u.CreatedAt)),
		UpdatedAt:             unixTime(parseInt(u.UpdatedAt)),
	}, nil
}

// FetchUserReviews returns reviews left about an address, newest first.
func (c *Client) FetchUserReviews(ctx context.Context, address string, first int) ([]domain.Review, error) {
	query := `
		query UserReviews($subject: String!, $first: Int!) {
			reviews(
				first: $first
				orderBy: createdAt
				orderDirection: desc
				where: { subject: $subject }
			) {
				id
				reviewId
				reviewer { address }
				subject { address }
				rating
				comment
				helpful
				createdAt
			}
		}
	`

	variables := map[string]any{
		"subject": strings.ToLower(address),
		"first":   first,
	}

	respData, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("subgraph: fetch reviews for %s: %w", address, err)
	}

	var result struct {
		Reviews []struct {
			ID       string `json:"id"`
			ReviewID string `json:"reviewId"`
			Reviewer struct {
				Address string `json:"address"`
			} `json:"reviewer"`
			Subject struct {
				Address string `json:"address"`
			} `json:"subject"`
			Rating    string `json:"rating"`
			Comment   string `json:"comment"`
			Helpful   string `json:"helpful"`
			CreatedAt string `json:"createdAt"`
		} `json:"reviews"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode reviews: %w", err)
	}

	reviews := make([]domain.Review, 0, len(result.Reviews))
	for _, r := range result.Reviews {
		reviews = append(reviews, domain.Review{
			ID:        r.ID,
			ReviewID:  parseInt(r.ReviewID),
			Reviewer:  r.Reviewer.Address,
			Subject:   r.Subject.Address,
			Rating:    int(parseInt(r.Rating)),
			Comment:   r.Comment,
			Helpful:   parseInt(r.Helpful),
			CreatedAt: unixTime(parseInt(r.CreatedAt)),
		})
	}
	return reviews, nil
}

// FetchPlatformStats returns the singleton platform aggregate entity.
func (c *Client) FetchPlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	query := `
		query Platform {
			platforms(first: 1) {
				id
				totalTrades
				totalVolume
				totalUsers
				totalReviews
				totalDisputes
				resolvedDisputes
				totalEthCollected
				lastUpdatedBlock
				lastUpdatedTimestamp
			}
		}
	`

	respData, err := c.doQuery(ctx, query, nil)
	if err != nil {
		return domain.PlatformStats{}, fmt.Errorf("subgraph: fetch platform stats: %w", err)
	}

	var result struct {
		Platforms []struct {
			ID                   string `json:"id"`
			TotalTrades          string `json:"totalTrades"`
			TotalVolume          string `json:"totalVolume"`
			TotalUsers           string `json:"totalUsers"`
			TotalReviews         string `json:"totalReviews"`
			TotalDisputes        string `json:"totalDisputes"`
			ResolvedDisputes     string `json:"resolvedDisputes"`
			TotalEthCollected    string `json:"totalEthCollected"`
			LastUpdatedBlock     string `json:"lastUpdatedBlock"`
			LastUpdatedTimestamp string `json:"lastUpdatedTimestamp"`
		} `json:"platforms"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return domain.PlatformStats{}, fmt.Errorf("subgraph: decode platform stats: %w", err)
	}
	if len(result.Platforms) == 0 {
		return domain.PlatformStats{}, domain.ErrNotFound
	}

	p := result.Platforms[0]
	return domain.PlatformStats{
		ID:                   p.ID,
		TotalTrades:          parseInt(p.TotalTrades),
		TotalVolume:          p.TotalVolume,
		TotalUsers:           parseInt(p.TotalUsers),
		TotalReviews:         parseInt(p.TotalReviews),
		TotalDisputes:        parseInt(p.TotalDisputes),
		ResolvedDisputes:     parseInt(p.ResolvedDisputes),
		TotalEthCollected:    p.TotalEthCollected,
		LastUpdatedBlock:     parseInt(p.LastUpdatedBlock),
		LastUpdatedTimestamp: parseInt(p.LastUpdatedTimestamp),
	}, nil
}

// FetchLatestBlock returns the latest block the subgraph has indexed, for
// monitoring indexing lag.
func (c *Client) FetchLatestBlock(ctx context.Context) (int64, error) {
	query := `
		query LatestBlock {
			_meta {
				block {
					number
				}
			}
		}
	`

	respData, err := c.doQuery(ctx, query, nil)
	if err != nil {
		return 0, fmt.Errorf("subgraph: fetch latest block: %w", err)
	}

	var result struct {
		Meta struct {
			Block struct {
				Number int64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return 0, fmt.Errorf("subgraph: decode latest block: %w", err)
	}
	return result.Meta.Block.Number, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doQuery executes a GraphQL query and returns the raw "data" field.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	reqBody := graphqlRequest{
		Query:     query,
		Variables: variables,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

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

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}
