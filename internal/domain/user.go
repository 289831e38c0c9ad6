package domain

import "time"

// Profile holds the optional social handles a user attaches to their address.
type Profile struct {
	Address   string    `json:"address"`
	Twitter   string    `json:"twitter,omitempty"`
	Discord   string    `json:"discord,omitempty"`
	ENSName   string    `json:"ensName,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is the aggregated trading record for an address as indexed by the
// subgraph.
type User struct {
	ID                    string    `json:"id"`
	Address               string    `json:"address"`
	TotalTradesVendor     int64     `json:"totalTradesVendor"`
	TotalTradesBuyer      int64     `json:"totalTradesBuyer"`
	CompletedTradesVendor int64     `json:"completedTradesVendor"`
	CompletedTradesBuyer  int64     `json:"completedTradesBuyer"`
	TotalVolume           string    `json:"totalVolume"` // wei, decimal string
	AverageRating         float64   `json:"averageRating"`
	ReviewCount           int64     `json:"reviewCount"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Review is a post-trade rating left by a counterparty.
type Review struct {
	ID        string    `json:"id"`
	ReviewID  int64     `json:"reviewId"`
	Reviewer  string    `json:"reviewer"`
	Subject   string    `json:"subject"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	Helpful   int64     `json:"helpful"`
	CreatedAt time.Time `json:"createdAt"`
}
