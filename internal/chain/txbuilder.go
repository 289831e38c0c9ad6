package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/trusttrade/trustd/internal/domain"
)

// Backend is the subset of ethclient.Client the transaction builder needs.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// TxBuilder builds, signs, and submits TrustTrade contract transactions on
// behalf of the relayer account.
//
// The fee basis points passed to CreateTrade and the value attached to
// ExecuteTrade come straight from the pricing engine and are forwarded to
// the contract verbatim: the contract re-runs the same integer fee math, and
// any divergence of even one wei reverts the transaction.
type TxBuilder struct {
	backend  Backend
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	signer   types.Signer
	model    domain.StatusModel
}

// NewTxBuilder creates a TxBuilder signing with key for the contract at
// contractAddr on the given chain.
func NewTxBuilder(backend Backend, contractAddr string, key *ecdsa.PrivateKey, chainID int64, model domain.StatusModel) (*TxBuilder, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("chain: invalid contract address %q", contractAddr)
	}
	if key == nil {
		return nil, fmt.Errorf("chain: txbuilder: %w", domain.ErrSigningFailed)
	}
	if !model.Valid() {
		return nil, fmt.Errorf("chain: status model %q: %w", model, domain.ErrUnknownStatus)
	}
	return &TxBuilder{
		backend:  backend,
		contract: common.HexToAddress(contractAddr),
		key:      key,
		from:     ethcrypto.PubkeyToAddress(key.PublicKey),
		signer:   types.LatestSignerForChainID(big.NewInt(chainID)),
		model:    model,
	}, nil
}

// From returns the relayer address transactions are sent from.
func (b *TxBuilder) From() common.Address { return b.from }

// CreateTrade submits a createTrade transaction listing tokenAmount of token
// at ethPrice wei with the given fee rate. feeBasisPoints must come from
// pricing.ToBasisPoints for the seller's current score.
func (b *TxBuilder) CreateTrade(ctx context.Context, token string, tokenAmount, ethPrice *big.Int, feeBasisPoints int64) (*types.Transaction, error) {
	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("chain: invalid token address %q", token)
	}
	if feeBasisPoints < 0 || feeBasisPoints > 10000 {
		return nil, fmt.Errorf("chain: create trade: %w", domain.ErrInvalidFeeBps)
	}
	if ethPrice == nil || ethPrice.Sign() <= 0 {
		return nil, fmt.Errorf("chain: create trade: %w", domain.ErrInvalidPrice)
	}

	data, err := b.tradeABI().Pack("createTrade",
		common.HexToAddress(token), tokenAmount, ethPrice, big.NewInt(feeBasisPoints))
	if err != nil {
		return nil, fmt.Errorf("chain: pack createTrade: %w", err)
	}
	return b.submit(ctx, data, nil)
}

// ExecuteTrade submits an executeTrade transaction carrying totalCost wei.
// totalCost must be the pricing engine's TotalCost (price plus buyer-side
// fee); sending less reverts with the contract's insufficient-funds error.
func (b *TxBuilder) ExecuteTrade(ctx context.Context, tradeID int64, totalCost *big.Int) (*types.Transaction, error) {
	if totalCost == nil || totalCost.Sign() <= 0 {
		return nil, fmt.Errorf("chain: execute trade: %w", domain.ErrInvalidPrice)
	}

	data, err := b.tradeABI().Pack("executeTrade", big.NewInt(tradeID))
	if err != nil {
		return nil, fmt.Errorf("chain: pack executeTrade: %w", err)
	}
	return b.submit(ctx, data, totalCost)
}

// CancelTrade submits a cancelTrade transaction for an active trade.
func (b *TxBuilder) CancelTrade(ctx context.Context, tradeID int64) (*types.Transaction, error) {
	data, err := b.tradeABI().Pack("cancelTrade", big.NewInt(tradeID))
	if err != nil {
		return nil, fmt.Errorf("chain: pack cancelTrade: %w", err)
	}
	return b.submit(ctx, data, nil)
}

// ReleaseFunds submits a releaseFunds transaction once the escrow hold has
// expired. Five-state contract only.
func (b *TxBuilder) ReleaseFunds(ctx context.Context, tradeID int64) (*types.Transaction, error) {
	if b.model != domain.ModelFiveState {
		return nil, fmt.Errorf("chain: releaseFunds not supported by legacy contract")
	}
	data, err := b.tradeABI().Pack("releaseFunds", big.NewInt(tradeID))
	if err != nil {
		return nil, fmt.Errorf("chain: pack releaseFunds: %w", err)
	}
	return b.submit(ctx, data, nil)
}

// DisputeTrade submits a disputeTrade transaction during the escrow window.
// Five-state contract only.
func (b *TxBuilder) DisputeTrade(ctx context.Context, tradeID int64) (*types.Transaction, error) {
	if b.model != domain.ModelFiveState {
		return nil, fmt.Errorf("chain: disputeTrade not supported by legacy contract")
	}
	data, err := b.tradeABI().Pack("disputeTrade", big.NewInt(tradeID))
	if err != nil {
		return nil, fmt.Errorf("chain: pack disputeTrade: %w", err)
	}
	return b.submit(ctx, data, nil)
}

func (b *TxBuilder) tradeABI() abi.ABI {
	if b.model == domain.ModelFiveState {
		return trustTradeABI
	}
	return legacyTradeABI
}

// submit fills in nonce, gas price, and gas limit, signs, and broadcasts.
func (b *TxBuilder) submit(ctx context.Context, data []byte, value *big.Int) (*types.Transaction, error) {
	nonce, err := b.backend.PendingNonceAt(ctx, b.from)
	if err != nil {
		return nil, fmt.Errorf("chain: pending nonce: %w", err)
	}

	gasPrice, err := b.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: suggest gas price: %w", err)
	}

	if value == nil {
		value = new(big.Int)
	}

	gasLimit, err := b.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  b.from,
		To:    &b.contract,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("chain: estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &b.contract,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, b.signer, b.key)
	if err != nil {
		return nil, fmt.Errorf("chain: sign transaction: %w", domain.ErrSigningFailed)
	}

	if err := b.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("chain: send transaction: %w", err)
	}
	return signed, nil
}
