package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/trusttrade/trustd/internal/domain"
)

// maxBatchReads bounds the concurrency of fan-out getTrade calls so a burst
// of reads does not exhaust the RPC provider's rate limit.
const maxBatchReads = 8

// ContractCaller is the subset of ethclient.Client the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader performs read-only calls against the TrustTrade contract and
// ERC-20 token contracts. The decoded tuples are validated here, once, so
// downstream consumers work with typed domain.RawTrade values and never
// defend against malformed fields.
type Reader struct {
	caller   ContractCaller
	contract common.Address
	model    domain.StatusModel
}

// NewReader creates a Reader for the contract at the given address. The
// status model must match the deployed contract generation; it selects both
// the getTrade tuple layout and the status-code range accepted as valid.
func NewReader(caller ContractCaller, contractAddr string, model domain.StatusModel) (*Reader, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("chain: invalid contract address %q", contractAddr)
	}
	if !model.Valid() {
		return nil, fmt.Errorf("chain: status model %q: %w", model, domain.ErrUnknownStatus)
	}
	return &Reader{
		caller:   caller,
		contract: common.HexToAddress(contractAddr),
		model:    model,
	}, nil
}

// Model returns the configured contract status model.
func (r *Reader) Model() domain.StatusModel { return r.model }

// TradeCounter returns the total number of trades ever created.
func (r *Reader) TradeCounter(ctx context.Context) (int64, error) {
	out, err := r.call(ctx, r.contract, r.tradeABI(), "tradeCounter")
	if err != nil {
		return 0, fmt.Errorf("chain: trade counter: %w", err)
	}

	counter, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("chain: trade counter: unexpected type %T", out[0])
	}
	return counter.Int64(), nil
}

// fiveStateTrade matches the current contract's getTrade tuple.
type fiveStateTrade struct {
	Id             *big.Int
	Seller         common.Address
	Buyer          common.Address
	Token          common.Address
	TokenAmount    *big.Int
	EthPrice       *big.Int
	FeeBasisPoints *big.Int
	Status         uint8
	CreatedAt      *big.Int
	ExecutedAt     *big.Int
	EscrowDuration *big.Int
	Disputed       bool
}

// legacyTrade matches the first-generation contract's getTrade tuple.
type legacyTrade struct {
	Id             *big.Int
	Seller         common.Address
	Buyer          common.Address
	Token          common.Address
	TokenAmount    *big.Int
	EthPrice       *big.Int
	FeeBasisPoints *big.Int
	Status         uint8
	CreatedAt      *big.Int
}

// GetTrade reads and validates a single trade by ID.
func (r *Reader) GetTrade(ctx context.Context, tradeID int64) (domain.RawTrade, error) {
	out, err := r.call(ctx, r.contract, r.tradeABI(), "getTrade", big.NewInt(tradeID))
	if err != nil {
		return domain.RawTrade{}, fmt.Errorf("chain: get trade %d: %w", tradeID, err)
	}

	var raw domain.RawTrade
	if r.model == domain.ModelFiveState {
		t := *abi.ConvertType(out[0], new(fiveStateTrade)).(*fiveStateTrade)
		raw = domain.RawTrade{
			ID:             t.Id,
			Seller:         t.Seller.Hex(),
			Buyer:          t.Buyer.Hex(),
			Token:          t.Token.Hex(),
			TokenAmount:    t.TokenAmount,
			EthPrice:       t.EthPrice,
			FeeBasisPoints: t.FeeBasisPoints.Int64(),
			StatusCode:     t.Status,
			Disputed:       t.Disputed,
			CreatedAt:      t.CreatedAt.Int64(),
			ExecutedAt:     t.ExecutedAt.Int64(),
			EscrowDuration: t.EscrowDuration.Int64(),
		}
	} else {
		t := *abi.ConvertType(out[0], new(legacyTrade)).(*legacyTrade)
		raw = domain.RawTrade{
			ID:             t.Id,
			Seller:         t.Seller.Hex(),
			Buyer:          t.Buyer.Hex(),
			Token:          t.Token.Hex(),
			TokenAmount:    t.TokenAmount,
			EthPrice:       t.EthPrice,
			FeeBasisPoints: t.FeeBasisPoints.Int64(),
			StatusCode:     t.Status,
			CreatedAt:      t.CreatedAt.Int64(),
		}
	}

	if err := validateRawTrade(raw, r.model); err != nil {
		return domain.RawTrade{}, fmt.Errorf("chain: trade %d: %w", tradeID, err)
	}
	return raw, nil
}

// GetRecentTrades reads up to limit of the newest trades with bounded
// parallelism, returned oldest first. Individual decode failures fail the
// whole batch; a contract that returns malformed tuples is misconfigured,
// not partially readable.
func (r *Reader) GetRecentTrades(ctx context.Context, limit int) ([]domain.RawTrade, error) {
	counter, err := r.TradeCounter(ctx)
	if err != nil {
		return nil, err
	}
	if counter == 0 {
		return nil, nil
	}

	start := counter - int64(limit)
	if start < 0 {
		start = 0
	}

	var (
		mu     sync.Mutex
		trades = make([]domain.RawTrade, 0, counter-start)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchReads)

	for id := start; id < counter; id++ {
		g.Go(func() error {
			raw, err := r.GetTrade(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			trades = append(trades, raw)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].ID.Cmp(trades[j].ID) < 0
	})
	return trades, nil
}

// TokenInfo reads ERC-20 display metadata for a token contract.
func (r *Reader) TokenInfo(ctx context.Context, tokenAddr string) (domain.TokenInfo, error) {
	if !common.IsHexAddress(tokenAddr) {
		return domain.TokenInfo{}, fmt.Errorf("chain: invalid token address %q", tokenAddr)
	}
	addr := common.HexToAddress(tokenAddr)

	nameOut, err := r.call(ctx, addr, erc20ABI, "name")
	if err != nil {
		return domain.TokenInfo{}, fmt.Errorf("chain: token %s name: %w", tokenAddr, err)
	}
	symbolOut, err := r.call(ctx, addr, erc20ABI, "symbol")
	if err != nil {
		return domain.TokenInfo{}, fmt.Errorf("chain: token %s symbol: %w", tokenAddr, err)
	}
	decimalsOut, err := r.call(ctx, addr, erc20ABI, "decimals")
	if err != nil {
		return domain.TokenInfo{}, fmt.Errorf("chain: token %s decimals: %w", tokenAddr, err)
	}

	return domain.TokenInfo{
		Address:  addr.Hex(),
		Name:     nameOut[0].(string),
		Symbol:   symbolOut[0].(string),
		Decimals: decimalsOut[0].(uint8),
	}, nil
}

func (r *Reader) tradeABI() abi.ABI {
	if r.model == domain.ModelFiveState {
		return trustTradeABI
	}
	return legacyTradeABI
}

func (r *Reader) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	output, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err := contractABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unpack %s: empty output", method)
	}
	return out, nil
}

// validateRawTrade rejects tuples the contract should never produce. The
// status-code range depends on the model; everything else is common.
func validateRawTrade(t domain.RawTrade, model domain.StatusModel) error {
	maxCode := uint8(4)
	if model == domain.ModelThreeState {
		maxCode = 2
	}
	if t.StatusCode > maxCode {
		return fmt.Errorf("status code %d: %w", t.StatusCode, domain.ErrUnknownStatus)
	}
	if t.EthPrice == nil || t.EthPrice.Sign() <= 0 {
		return domain.ErrInvalidPrice
	}
	if t.FeeBasisPoints < 0 || t.FeeBasisPoints > 10000 {
		return domain.ErrInvalidFeeBps
	}
	return nil
}
