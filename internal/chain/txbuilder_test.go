package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

const testChainID = 11155111

// fakeBackend returns canned chain state and records every broadcast.
type fakeBackend struct {
	nonce    uint64
	gasPrice *big.Int
	gasLimit uint64
	sent     []*types.Transaction
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.gasLimit, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func newTestBuilder(t *testing.T, model domain.StatusModel) (*TxBuilder, *fakeBackend) {
	t.Helper()
	key, err := ethcrypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	backend := &fakeBackend{
		nonce:    9,
		gasPrice: big.NewInt(2_000_000_000),
		gasLimit: 120_000,
	}
	b, err := NewTxBuilder(backend, testContract, key, testChainID, model)
	require.NoError(t, err)
	return b, backend
}

func TestNewTxBuilder_Validation(t *testing.T) {
	key, err := ethcrypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	_, err = NewTxBuilder(&fakeBackend{}, "not-an-address", key, testChainID, domain.ModelFiveState)
	assert.Error(t, err)

	_, err = NewTxBuilder(&fakeBackend{}, testContract, nil, testChainID, domain.ModelFiveState)
	assert.ErrorIs(t, err, domain.ErrSigningFailed)

	_, err = NewTxBuilder(&fakeBackend{}, testContract, key, testChainID, domain.StatusModel("bogus"))
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestTxBuilder_CreateTrade(t *testing.T) {
	b, backend := newTestBuilder(t, domain.ModelFiveState)

	token := "0x4200000000000000000000000000000000000006"
	tx, err := b.CreateTrade(context.Background(), token, big.NewInt(5_000_000), big.NewInt(1_000_000), 250)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	want, err := trustTradeABI.Pack("createTrade",
		common.HexToAddress(token), big.NewInt(5_000_000), big.NewInt(1_000_000), big.NewInt(250))
	require.NoError(t, err)

	assert.Equal(t, want, tx.Data())
	assert.Equal(t, common.HexToAddress(testContract), *tx.To())
	assert.Equal(t, uint64(9), tx.Nonce())
	assert.Equal(t, uint64(120_000), tx.Gas())
	assert.Zero(t, tx.Value().Sign())

	// The broadcast tx must recover to the relayer address under the
	// configured chain ID.
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(testChainID)), tx)
	require.NoError(t, err)
	assert.Equal(t, b.From(), sender)
}

func TestTxBuilder_CreateTrade_Validation(t *testing.T) {
	b, backend := newTestBuilder(t, domain.ModelFiveState)
	token := "0x4200000000000000000000000000000000000006"

	_, err := b.CreateTrade(context.Background(), "not-a-token", big.NewInt(1), big.NewInt(1), 100)
	assert.Error(t, err)

	_, err = b.CreateTrade(context.Background(), token, big.NewInt(1), big.NewInt(1), 10001)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)

	_, err = b.CreateTrade(context.Background(), token, big.NewInt(1), big.NewInt(1), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)

	_, err = b.CreateTrade(context.Background(), token, big.NewInt(1), big.NewInt(0), 100)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	assert.Empty(t, backend.sent)
}

func TestTxBuilder_ExecuteTrade_CarriesTotalCost(t *testing.T) {
	b, backend := newTestBuilder(t, domain.ModelFiveState)

	totalCost := big.NewInt(1_010_000)
	tx, err := b.ExecuteTrade(context.Background(), 3, totalCost)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	assert.Equal(t, totalCost, tx.Value())

	want, err := trustTradeABI.Pack("executeTrade", big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestTxBuilder_ExecuteTrade_RejectsMissingValue(t *testing.T) {
	b, _ := newTestBuilder(t, domain.ModelFiveState)

	_, err := b.ExecuteTrade(context.Background(), 3, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = b.ExecuteTrade(context.Background(), 3, big.NewInt(0))
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestTxBuilder_CancelTrade(t *testing.T) {
	b, backend := newTestBuilder(t, domain.ModelThreeState)

	tx, err := b.CancelTrade(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	want, err := legacyTradeABI.Pack("cancelTrade", big.NewInt(12))
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
	assert.Zero(t, tx.Value().Sign())
}

func TestTxBuilder_EscrowMethodsRequireFiveState(t *testing.T) {
	legacy, backend := newTestBuilder(t, domain.ModelThreeState)

	_, err := legacy.ReleaseFunds(context.Background(), 1)
	assert.Error(t, err)

	_, err = legacy.DisputeTrade(context.Background(), 1)
	assert.Error(t, err)

	assert.Empty(t, backend.sent)

	current, _ := newTestBuilder(t, domain.ModelFiveState)
	_, err = current.ReleaseFunds(context.Background(), 1)
	assert.NoError(t, err)
	_, err = current.DisputeTrade(context.Background(), 1)
	assert.NoError(t, err)
}
