// Package watcher reads on-chain treasury balances and values them.
package watcher

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fyclub/treasury-guardian/internal/domain"
)

// DefaultETHPriceUSD is the fixed unit price applied to the native balance.
// A real pricing oracle is out of scope; the constant mirrors the reference
// deployment.
var DefaultETHPriceUSD = decimal.NewFromInt(3500)

var weiPerEther = decimal.NewFromBigInt(big.NewInt(params.Ether), 0)

// balanceReader is the slice of ethclient.Client the watcher needs.
type balanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Service reads a single native-asset balance per scan and converts it into a
// one-position valued snapshot.
type Service struct {
	rpcURL   string
	ethPrice decimal.Decimal

	dialOnce sync.Once
	dialErr  error
	client   balanceReader
}

// New creates a watcher that lazily dials the RPC endpoint on first use.
func New(rpcURL string, ethPriceUSD decimal.Decimal) *Service {
	if ethPriceUSD.LessThanOrEqual(decimal.Zero) {
		ethPriceUSD = DefaultETHPriceUSD
	}
	return &Service{rpcURL: rpcURL, ethPrice: ethPriceUSD}
}

// NewWithClient creates a watcher around an existing balance reader.
func NewWithClient(client balanceReader, ethPriceUSD decimal.Decimal) *Service {
	s := New("", ethPriceUSD)
	s.client = client
	s.dialOnce.Do(func() {})
	return s
}

// Snapshot queries the native balance of address once and returns a snapshot
// with exactly one position. RPC failures propagate to the caller; the
// orchestrator owns the failure boundary, there is no retry here.
func (s *Service) Snapshot(ctx context.Context, address string) (domain.TreasurySnapshot, error) {
	if !common.IsHexAddress(address) {
		return domain.TreasurySnapshot{}, errors.Errorf("invalid treasury address: %s", address)
	}

	client, err := s.dial()
	if err != nil {
		return domain.TreasurySnapshot{}, errors.Wrap(err, "failed to connect to RPC endpoint")
	}

	balanceWei, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return domain.TreasurySnapshot{}, errors.Wrapf(err, "failed to read balance of %s", address)
	}

	balanceEth := decimal.NewFromBigInt(balanceWei, 0).Div(weiPerEther)
	usdValue := balanceEth.Mul(s.ethPrice)

	return domain.NewTreasurySnapshot(address, []domain.Position{
		{
			Token:    "ETH",
			Balance:  balanceEth.InexactFloat64(),
			USDValue: usdValue.InexactFloat64(),
		},
	}), nil
}

// dial initializes the RPC client once and reuses it for every scan.
// ethclient is safe for concurrent use, so concurrent first scans only need
// the once guard.
func (s *Service) dial() (balanceReader, error) {
	s.dialOnce.Do(func() {
		client, err := ethclient.Dial(s.rpcURL)
		if err != nil {
			s.dialErr = err
			return
		}
		s.client = client
	})
	if s.dialErr != nil {
		return nil, s.dialErr
	}
	return s.client, nil
}
