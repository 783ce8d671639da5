package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
	"github.com/AztecProtocol/gregoswap-sub001/pkg/mathutil"
)

// feeMethod is the fee-payment method attached to every submitted tx.
const feeMethod = "fee_juice"

// ContractAddresses lists the deployed contract addresses of the active
// network, read from the config written at deploy time.
type ContractAddresses struct {
	GregoCoin        string `json:"gregoCoin"`
	GregoCoinPremium string `json:"gregoCoinPremium"`
	Amm              string `json:"amm"`
	Pop              string `json:"pop"`
}

// ContractsService lazily registers the contract handles in two independent
// stages and scopes all query and execute operations to them. The base swap
// contracts (gregoCoin, gregoCoinPremium, amm) are set together, the faucet
// contract (pop) on its own.
type ContractsService struct {
	notifier

	registry  ports.ContractRegistry
	addresses ContractAddresses

	mtx              sync.Mutex
	gregoCoin        ports.ContractHandle
	gregoCoinPremium ports.ContractHandle
	amm              ports.ContractHandle
	pop              ports.ContractHandle
	isLoading        bool
}

// NewContractsService returns a contracts service with no registered
// handles.
func NewContractsService(
	registry ports.ContractRegistry, addresses ContractAddresses,
) *ContractsService {
	return &ContractsService{registry: registry, addresses: addresses}
}

// HasBaseContracts reports whether the three base swap handles are set.
func (s *ContractsService) HasBaseContracts() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.gregoCoin != nil && s.gregoCoinPremium != nil && s.amm != nil
}

// HasDripContract reports whether the faucet handle is set.
func (s *ContractsService) HasDripContract() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.pop != nil
}

// IsLoading reports whether a registration stage is in progress.
func (s *ContractsService) IsLoading() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.isLoading
}

// RegisterBaseContracts resolves the gregoCoin, gregoCoinPremium and amm
// handles bound to the given wallet. Re-invocation once registered is a
// no-op. On failure all three stay unset and the error is reported upward,
// never retried internally.
func (s *ContractsService) RegisterBaseContracts(
	ctx context.Context, wallet ports.Wallet,
) error {
	s.mtx.Lock()
	if s.gregoCoin != nil && s.gregoCoinPremium != nil && s.amm != nil {
		s.mtx.Unlock()
		return nil
	}
	s.isLoading = true
	s.mtx.Unlock()
	defer s.endLoading()

	coin, err := s.registry.Register(ctx, wallet, "GregoCoin", s.addresses.GregoCoin)
	if err != nil {
		return fmt.Errorf("registering gregoCoin: %w", err)
	}
	premium, err := s.registry.Register(
		ctx, wallet, "GregoCoinPremium", s.addresses.GregoCoinPremium,
	)
	if err != nil {
		return fmt.Errorf("registering gregoCoinPremium: %w", err)
	}
	amm, err := s.registry.Register(ctx, wallet, "GregoSwapAmm", s.addresses.Amm)
	if err != nil {
		return fmt.Errorf("registering amm: %w", err)
	}

	s.mtx.Lock()
	s.gregoCoin, s.gregoCoinPremium, s.amm = coin, premium, amm
	s.mtx.Unlock()

	log.Debugf("registered base swap contracts for wallet %s", wallet.Address())
	s.notify()
	return nil
}

// RegisterDripContracts resolves the faucet handle, independently of the
// base-contract stage.
func (s *ContractsService) RegisterDripContracts(
	ctx context.Context, wallet ports.Wallet,
) error {
	s.mtx.Lock()
	if s.pop != nil {
		s.mtx.Unlock()
		return nil
	}
	s.isLoading = true
	s.mtx.Unlock()
	defer s.endLoading()

	pop, err := s.registry.Register(ctx, wallet, "GregoPop", s.addresses.Pop)
	if err != nil {
		return fmt.Errorf("registering faucet: %w", err)
	}

	s.mtx.Lock()
	s.pop = pop
	s.mtx.Unlock()

	log.Debugf("registered faucet contract for wallet %s", wallet.Address())
	s.notify()
	return nil
}

// Invalidate drops all handles, typically on a network switch, so no stale
// handle outlives the wallet set it was bound to.
func (s *ContractsService) Invalidate() {
	s.mtx.Lock()
	s.gregoCoin, s.gregoCoinPremium, s.amm, s.pop = nil, nil, nil, nil
	s.mtx.Unlock()
	s.notify()
}

// GetExchangeRate quotes the amm for the output amount of one input unit
// and returns the output/input ratio.
func (s *ContractsService) GetExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	_, _, amm, err := s.baseContracts()
	if err != nil {
		return decimal.Zero, err
	}

	out, err := amm.Simulate(ctx, ports.ContractCall{
		Method: "get_amount_out",
		Args:   []interface{}{mathutil.BigOne},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("quoting exchange rate: %w", err)
	}
	return mathutil.Div(out, mathutil.BigOne), nil
}

// FetchBalances reads both token balances for the given address in one
// batched round trip.
func (s *ContractsService) FetchBalances(
	ctx context.Context, wallet ports.Wallet, address string,
) (uint64, uint64, error) {
	coin, premium, _, err := s.baseContracts()
	if err != nil {
		return 0, 0, err
	}

	balanceOf := ports.ContractCall{
		Method: "balance_of_private",
		Args:   []interface{}{address},
	}
	results, err := s.registry.SimulateBatch(ctx, wallet, []ports.BatchedCall{
		{Contract: coin, Call: balanceOf},
		{Contract: premium, Call: balanceOf},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("fetching balances: %w", err)
	}
	return results[0], results[1], nil
}

// SimulateOnboardingQueries batches the exchange-rate quote and both token
// balances into a single round trip, keeping the wallet approval prompts
// down to one.
func (s *ContractsService) SimulateOnboardingQueries(
	ctx context.Context, wallet ports.Wallet, address string,
) (*domain.SimulationResult, error) {
	coin, premium, amm, err := s.baseContracts()
	if err != nil {
		return nil, err
	}

	balanceOf := ports.ContractCall{
		Method: "balance_of_private",
		Args:   []interface{}{address},
	}
	results, err := s.registry.SimulateBatch(ctx, wallet, []ports.BatchedCall{
		{Contract: amm, Call: ports.ContractCall{
			Method: "get_amount_out",
			Args:   []interface{}{mathutil.BigOne},
		}},
		{Contract: coin, Call: balanceOf},
		{Contract: premium, Call: balanceOf},
	})
	if err != nil {
		return nil, fmt.Errorf("simulating onboarding queries: %w", err)
	}

	return &domain.SimulationResult{
		ExchangeRate:            mathutil.Div(results[0], mathutil.BigOne),
		GregoCoinBalance:        results[1],
		GregoCoinPremiumBalance: results[2],
	}, nil
}

// Swap submits a swap of the given input amount with a 10% slippage
// allowance on the maximum input, authorized by a witness letting the amm
// pull the input tokens on the wallet's behalf.
func (s *ContractsService) Swap(
	ctx context.Context, wallet ports.Wallet, fromUnits uint64,
) (ports.Transaction, error) {
	_, _, amm, err := s.baseContracts()
	if err != nil {
		return nil, err
	}

	maxInput := fromUnits + fromUnits/10
	transfer := ports.ContractCall{
		Method: "transfer_to_public",
		Args:   []interface{}{wallet.Address(), amm.Address(), maxInput},
	}
	witness, err := s.registry.CreateAuthWitness(ctx, wallet, amm.Address(), transfer)
	if err != nil {
		return nil, fmt.Errorf("creating auth witness: %w", err)
	}

	return amm.Send(ctx, ports.ContractCall{
		Method: "swap_exact_input",
		Args:   []interface{}{fromUnits, maxInput},
	}, ports.SendOpts{
		AuthWitnesses: []ports.AuthWitness{witness},
		FeeMethod:     feeMethod,
	})
}

// Drip submits the password-gated faucet claim for the given address.
func (s *ContractsService) Drip(
	ctx context.Context, wallet ports.Wallet, password, address string,
) (ports.Transaction, error) {
	s.mtx.Lock()
	pop := s.pop
	s.mtx.Unlock()
	if pop == nil {
		return nil, ErrDripContractNotRegistered
	}

	return pop.Send(ctx, ports.ContractCall{
		Method: "claim",
		Args:   []interface{}{password, address},
	}, ports.SendOpts{FeeMethod: feeMethod})
}

func (s *ContractsService) baseContracts() (
	ports.ContractHandle, ports.ContractHandle, ports.ContractHandle, error,
) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.gregoCoin == nil || s.gregoCoinPremium == nil || s.amm == nil {
		return nil, nil, nil, ErrContractsNotRegistered
	}
	return s.gregoCoin, s.gregoCoinPremium, s.amm, nil
}

func (s *ContractsService) endLoading() {
	s.mtx.Lock()
	s.isLoading = false
	s.mtx.Unlock()
}
