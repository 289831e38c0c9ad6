package domain

import (
	"math/big"
	"time"
)

// StatusModel selects which generation of the TrustTrade contract a
// deployment talks to. The legacy contract exposes a three-state status enum
// (Active/Executed/Cancelled); the current contract exposes five states with
// an explicit escrow phase and dispute flag. The two enums are positionally
// incompatible, so the model is fixed per deployment via configuration and
// never inferred from record contents.
type StatusModel string

const (
	ModelThreeState StatusModel = "three-state"
	ModelFiveState  StatusModel = "five-state"
)

// Valid reports whether the model is one of the supported variants.
func (m StatusModel) Valid() bool {
	return m == ModelThreeState || m == ModelFiveState
}

// DisplayStatus is the human-facing trade lifecycle state derived from the
// raw on-chain status code plus the disputed flag.
type DisplayStatus string

const (
	StatusActive    DisplayStatus = "Active"
	StatusEscrow    DisplayStatus = "Escrow"
	StatusCompleted DisplayStatus = "Completed"
	StatusCancelled DisplayStatus = "Cancelled"
	StatusDisputed  DisplayStatus = "Disputed"
)

// RawTrade is the decoded getTrade(uint256) tuple exactly as the contract
// returns it. It is validated once at the chain boundary; everything past
// that point works with these typed fields and never re-checks shape.
type RawTrade struct {
	ID             *big.Int
	Seller         string
	Buyer          string
	Token          string
	TokenAmount    *big.Int
	EthPrice       *big.Int
	FeeBasisPoints int64
	StatusCode     uint8
	Disputed       bool
	CreatedAt      int64
	ExecutedAt     int64 // zero when the trade never entered escrow
	EscrowDuration int64 // seconds
}

// TradeSnapshot is a processed on-chain trade ready for display and caching.
type TradeSnapshot struct {
	ID             string        `json:"id"`
	Seller         string        `json:"seller"`
	Buyer          string        `json:"buyer"`
	Token          string        `json:"token"`
	TokenSymbol    string        `json:"tokenSymbol"`
	TokenAmount    string        `json:"tokenAmount"` // smallest units, decimal string
	EthPrice       string        `json:"ethPrice"`    // wei, decimal string
	FeeBasisPoints int64         `json:"feeBasisPoints"`
	Status         DisplayStatus `json:"status"`
	Disputed       bool          `json:"disputed"`
	CreatedAt      int64         `json:"createdAt"`
	ExecutedAt     int64         `json:"executedAt,omitempty"`
	EscrowDuration int64         `json:"escrowDuration,omitempty"`
}

// Trade is a trade entity as indexed by the subgraph.
type Trade struct {
	ID             string        `json:"id"`
	TradeID        int64         `json:"tradeId"`
	Seller         string        `json:"seller"`
	Buyer          string        `json:"buyer,omitempty"`
	Token          string        `json:"token"`
	TokenAmount    string        `json:"tokenAmount"`
	EthPrice       string        `json:"ethPrice"`
	FeeBasisPoints int64         `json:"feeBasisPoints"`
	Status         DisplayStatus `json:"status"`
	Disputed       bool          `json:"disputed"`
	CreatedAt      time.Time     `json:"createdAt"`
	ExecutedAt     *time.Time    `json:"executedAt,omitempty"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	EscrowDuration int64         `json:"escrowDuration,omitempty"`
}
