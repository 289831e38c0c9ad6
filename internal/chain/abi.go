// Package chain reads the TrustTrade escrow contract and builds the
// transactions that write to it. All amounts cross this boundary as
// smallest-unit big integers; nothing here ever converts to floats.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// trustTradeABIJSON is the read/write surface of the current (five-state)
// TrustTrade contract. The trade tuple carries the escrow timestamps and the
// disputed flag.
const trustTradeABIJSON = `[
	{"inputs":[],"name":"tradeCounter","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"getTrade","outputs":[{"components":[
		{"name":"id","type":"uint256"},
		{"name":"seller","type":"address"},
		{"name":"buyer","type":"address"},
		{"name":"token","type":"address"},
		{"name":"tokenAmount","type":"uint256"},
		{"name":"ethPrice","type":"uint256"},
		{"name":"feeBasisPoints","type":"uint256"},
		{"name":"status","type":"uint8"},
		{"name":"createdAt","type":"uint256"},
		{"name":"executedAt","type":"uint256"},
		{"name":"escrowDuration","type":"uint256"},
		{"name":"disputed","type":"bool"}
	],"name":"","type":"tuple"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"token","type":"address"},{"name":"tokenAmount","type":"uint256"},{"name":"ethPrice","type":"uint256"},{"name":"feeBasisPoints","type":"uint256"}],"name":"createTrade","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"executeTrade","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"cancelTrade","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"releaseFunds","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"disputeTrade","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// legacyTradeABIJSON is the first-generation contract: a three-state status
// enum and no escrow phase, so the trade tuple has no executedAt,
// escrowDuration, or disputed fields.
const legacyTradeABIJSON = `[
	{"inputs":[],"name":"tradeCounter","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"getTrade","outputs":[{"components":[
		{"name":"id","type":"uint256"},
		{"name":"seller","type":"address"},
		{"name":"buyer","type":"address"},
		{"name":"token","type":"address"},
		{"name":"tokenAmount","type":"uint256"},
		{"name":"ethPrice","type":"uint256"},
		{"name":"feeBasisPoints","type":"uint256"},
		{"name":"status","type":"uint8"},
		{"name":"createdAt","type":"uint256"}
	],"name":"","type":"tuple"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"token","type":"address"},{"name":"tokenAmount","type":"uint256"},{"name":"ethPrice","type":"uint256"},{"name":"feeBasisPoints","type":"uint256"}],"name":"createTrade","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"executeTrade","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"tradeId","type":"uint256"}],"name":"cancelTrade","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// erc20ABIJSON is the metadata subset used for token display lookups.
const erc20ABIJSON = `[
	{"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var (
	trustTradeABI  = mustParseABI(trustTradeABIJSON)
	legacyTradeABI = mustParseABI(legacyTradeABIJSON)
	erc20ABI       = mustParseABI(erc20ABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("chain: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
