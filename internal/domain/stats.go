package domain

// PlatformStats is the platform-wide aggregate entity from the subgraph.
type PlatformStats struct {
	ID                   string `json:"id"`
	TotalTrades          int64  `json:"totalTrades"`
	TotalVolume          string `json:"totalVolume"` // wei, decimal string
	TotalUsers           int64  `json:"totalUsers"`
	TotalReviews         int64  `json:"totalReviews"`
	TotalDisputes        int64  `json:"totalDisputes"`
	ResolvedDisputes     int64  `json:"resolvedDisputes"`
	TotalEthCollected    string `json:"totalEthCollected"` // protocol fees, wei
	LastUpdatedBlock     int64  `json:"lastUpdatedBlock"`
	LastUpdatedTimestamp int64  `json:"lastUpdatedTimestamp"`
}

// TokenInfo is ERC-20 display metadata for a token address.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}
