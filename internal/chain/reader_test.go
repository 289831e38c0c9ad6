package chain

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

const testContract = "0x1111111111111111111111111111111111111111"

// fakeCaller answers CallContract from a map keyed by the 4-byte selector.
type fakeCaller struct {
	responses map[string][]byte
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	sel := hex.EncodeToString(msg.Data[:4])
	resp, ok := f.responses[sel]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return resp, nil
}

func selector(t *testing.T, model domain.StatusModel, method string, args ...any) string {
	t.Helper()
	a := trustTradeABI
	if model == domain.ModelThreeState {
		a = legacyTradeABI
	}
	data, err := a.Pack(method, args...)
	require.NoError(t, err)
	return hex.EncodeToString(data[:4])
}

func TestReader_TradeCounter(t *testing.T) {
	out, err := trustTradeABI.Methods["tradeCounter"].Outputs.Pack(big.NewInt(7))
	require.NoError(t, err)

	caller := &fakeCaller{responses: map[string][]byte{
		selector(t, domain.ModelFiveState, "tradeCounter"): out,
	}}

	r, err := NewReader(caller, testContract, domain.ModelFiveState)
	require.NoError(t, err)

	counter, err := r.TradeCounter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), counter)
}

func TestReader_GetTrade_FiveState(t *testing.T) {
	seller := common.HexToAddress("0x2222222222222222222222222222222222222222")
	buyer := common.HexToAddress("0x3333333333333333333333333333333333333333")
	token := common.HexToAddress("0x4200000000000000000000000000000000000006")

	tuple := fiveStateTrade{
		Id:             big.NewInt(3),
		Seller:         seller,
		Buyer:          buyer,
		Token:          token,
		TokenAmount:    big.NewInt(5_000_000),
		EthPrice:       big.NewInt(1_000_000),
		FeeBasisPoints: big.NewInt(250),
		Status:         1,
		CreatedAt:      big.NewInt(1_700_000_000),
		ExecutedAt:     big.NewInt(1_700_003_600),
		EscrowDuration: big.NewInt(86400),
		Disputed:       false,
	}
	out, err := trustTradeABI.Methods["getTrade"].Outputs.Pack(tuple)
	require.NoError(t, err)

	caller := &fakeCaller{responses: map[string][]byte{
		selector(t, domain.ModelFiveState, "getTrade", big.NewInt(3)): out,
	}}

	r, err := NewReader(caller, testContract, domain.ModelFiveState)
	require.NoError(t, err)

	raw, err := r.GetTrade(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), raw.ID.Int64())
	assert.Equal(t, seller.Hex(), raw.Seller)
	assert.Equal(t, buyer.Hex(), raw.Buyer)
	assert.Equal(t, token.Hex(), raw.Token)
	assert.Equal(t, int64(250), raw.FeeBasisPoints)
	assert.Equal(t, uint8(1), raw.StatusCode)
	assert.Equal(t, int64(1_700_003_600), raw.ExecutedAt)
	assert.Equal(t, int64(86400), raw.EscrowDuration)
	assert.False(t, raw.Disputed)
}

func TestReader_GetTrade_Legacy(t *testing.T) {
	seller := common.HexToAddress("0x2222222222222222222222222222222222222222")
	token := common.HexToAddress("0x4200000000000000000000000000000000000006")

	tuple := legacyTrade{
		Id:             big.NewInt(0),
		Seller:         seller,
		Buyer:          common.Address{},
		Token:          token,
		TokenAmount:    big.NewInt(100),
		EthPrice:       big.NewInt(1_000_000),
		FeeBasisPoints: big.NewInt(100),
		Status:         0,
		CreatedAt:      big.NewInt(1_700_000_000),
	}
	out, err := legacyTradeABI.Methods["getTrade"].Outputs.Pack(tuple)
	require.NoError(t, err)

	caller := &fakeCaller{responses: map[string][]byte{
		selector(t, domain.ModelThreeState, "getTrade", big.NewInt(0)): out,
	}}

	r, err := NewReader(caller, testContract, domain.ModelThreeState)
	require.NoError(t, err)

	raw, err := r.GetTrade(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), raw.StatusCode)
	assert.Zero(t, raw.ExecutedAt)
	assert.Zero(t, raw.EscrowDuration)
	assert.False(t, raw.Disputed)
}

func TestReader_GetTrade_RejectsOutOfRangeStatus(t *testing.T) {
	tuple := legacyTrade{
		Id:             big.NewInt(1),
		Seller:         common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Buyer:          common.Address{},
		Token:          common.HexToAddress("0x4200000000000000000000000000000000000006"),
		TokenAmount:    big.NewInt(100),
		EthPrice:       big.NewInt(1_000_000),
		FeeBasisPoints: big.NewInt(100),
		Status:         3, // valid only under the five-state model
		CreatedAt:      big.NewInt(1_700_000_000),
	}
	out, err := legacyTradeABI.Methods["getTrade"].Outputs.Pack(tuple)
	require.NoError(t, err)

	caller := &fakeCaller{responses: map[string][]byte{
		selector(t, domain.ModelThreeState, "getTrade", big.NewInt(1)): out,
	}}

	r, err := NewReader(caller, testContract, domain.ModelThreeState)
	require.NoError(t, err)

	_, err = r.GetTrade(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestNewReader_Validation(t *testing.T) {
	_, err := NewReader(&fakeCaller{}, "not-an-address", domain.ModelFiveState)
	assert.Error(t, err)

	_, err = NewReader(&fakeCaller{}, testContract, domain.StatusModel("bogus"))
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestReader_TokenInfo(t *testing.T) {
	nameOut, err := erc20ABI.Methods["name"].Outputs.Pack("Wrapped Ether")
	require.NoError(t, err)
	symbolOut, err := erc20ABI.Methods["symbol"].Outputs.Pack("WETH")
	require.NoError(t, err)
	decimalsOut, err := erc20ABI.Methods["decimals"].Outputs.Pack(uint8(18))
	require.NoError(t, err)

	nameData, _ := erc20ABI.Pack("name")
	symbolData, _ := erc20ABI.Pack("symbol")
	decimalsData, _ := erc20ABI.Pack("decimals")

	caller := &fakeCaller{responses: map[string][]byte{
		hex.EncodeToString(nameData[:4]):     nameOut,
		hex.EncodeToString(symbolData[:4]):   symbolOut,
		hex.EncodeToString(decimalsData[:4]): decimalsOut,
	}}

	r, err := NewReader(caller, testContract, domain.ModelFiveState)
	require.NoError(t, err)

	info, err := r.TokenInfo(context.Background(), "0x4200000000000000000000000000000000000006")
	require.NoError(t, err)
	assert.Equal(t, "WETH", info.Symbol)
	assert.Equal(t, "Wrapped Ether", info.Name)
	assert.Equal(t, uint8(18), info.Decimals)
}
