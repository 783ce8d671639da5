package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
	"github.com/AztecProtocol/gregoswap-sub001/pkg/mathutil"
)

// OnboardingGate is the slice of the orchestrator the swap flow reads to
// decide whether a poll tick must be skipped and whether a swap request has
// to be deferred behind the onboarding flow.
type OnboardingGate interface {
	Active() bool
	Completed() bool
	DripPending() bool
	PendingSwap() bool
	StartOnboardingFlow(pendingSwap bool) error
}

// SwapService manages the linked swap amounts, the polled exchange rate and
// the swap transaction lifecycle.
type SwapService struct {
	notifier

	contracts *ContractsService
	balances  *BalancesService
	wallets   *WalletService

	pollInterval time.Duration
	resetDelay   time.Duration

	mtx           sync.Mutex
	swap          *domain.Swap
	onboarding    OnboardingGate
	isLoadingRate bool
	polling       bool
	stopChan      chan struct{}
}

// NewSwapService returns a swap service with an idle swap and no rate.
func NewSwapService(
	contracts *ContractsService,
	balances *BalancesService,
	wallets *WalletService,
	pollInterval, resetDelay time.Duration,
) *SwapService {
	return &SwapService{
		contracts:    contracts,
		balances:     balances,
		wallets:      wallets,
		pollInterval: pollInterval,
		resetDelay:   resetDelay,
		swap:         domain.NewSwap(),
		stopChan:     make(chan struct{}, 1),
	}
}

// SetOnboarding binds the orchestrator after construction.
func (s *SwapService) SetOnboarding(gate OnboardingGate) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.onboarding = gate
}

// State returns a snapshot of the swap state.
func (s *SwapService) State() domain.Swap {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return *s.swap
}

// IsLoadingRate reports whether a rate fetch for a not-yet-known rate is in
// flight.
func (s *SwapService) IsLoadingRate() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.isLoadingRate
}

// CanSwap reports whether a swap can be submitted right now.
func (s *SwapService) CanSwap() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.swap.HasRate || s.swap.InFlight() || s.swap.Phase.Failed {
		return false
	}
	if _, err := mathutil.ParseAmount(s.swap.FromAmount); err != nil {
		return false
	}
	return s.contracts.HasBaseContracts()
}

// SetFromAmount records the input amount, deriving the output amount.
func (s *SwapService) SetFromAmount(amount string) error {
	s.mtx.Lock()
	err := s.swap.SetFromAmount(amount)
	s.mtx.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetToAmount records the output amount, deriving the input amount.
func (s *SwapService) SetToAmount(amount string) error {
	s.mtx.Lock()
	err := s.swap.SetToAmount(amount)
	s.mtx.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SeedRate installs the exchange rate obtained from the onboarding
// simulation, sparing one poll round trip.
func (s *SwapService) SeedRate(rate decimal.Decimal) {
	s.mtx.Lock()
	s.swap.SetRate(rate)
	s.mtx.Unlock()
	s.notify()
}

// ClearRate drops the cached rate, typically on a network switch.
func (s *SwapService) ClearRate() {
	s.mtx.Lock()
	s.swap.ClearRate()
	s.mtx.Unlock()
	s.notify()
}

// DismissError acknowledges a failed swap and returns to idle, keeping the
// entered amounts for a retry.
func (s *SwapService) DismissError() {
	s.mtx.Lock()
	s.swap.Dismiss()
	s.mtx.Unlock()
	s.notify()
}

// StartPolling spawns the exchange-rate poll loop.
func (s *SwapService) StartPolling() {
	ticker := time.NewTicker(s.pollInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.pollRate()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopPolling terminates the poll loop.
func (s *SwapService) StopPolling() {
	select {
	case s.stopChan <- struct{}{}:
	default:
	}
}

// pollRate fetches a fresh exchange rate unless the tick must be skipped.
// Polling is single-flight: a new poll never starts while one is
// outstanding. A skipped tick is not an error and a failed fetch keeps the
// previous rate. The orchestrator gate is read before taking the swap
// mutex: the orchestrator calls into this service while holding its own
// lock, so querying it the other way around with the swap mutex held would
// invert the lock order.
func (s *SwapService) pollRate() {
	s.mtx.Lock()
	gate := s.onboarding
	s.mtx.Unlock()

	if s.contracts.IsLoading() {
		return
	}
	if gate != nil &&
		(gate.PendingSwap() || gate.DripPending() || gate.Active()) {
		return
	}

	s.mtx.Lock()
	if s.polling || s.swap.InFlight() {
		s.mtx.Unlock()
		return
	}
	s.polling = true
	if !s.swap.HasRate {
		s.isLoadingRate = true
	}
	s.mtx.Unlock()

	rate, err := s.contracts.GetExchangeRate(context.Background())

	s.mtx.Lock()
	s.polling = false
	s.isLoadingRate = false
	if err != nil {
		s.mtx.Unlock()
		log.Warnf("fetching exchange rate: %s", err)
		return
	}
	s.swap.SetRate(rate)
	s.mtx.Unlock()
	s.notify()
}

// ExecuteSwap submits the entered swap. Requested with the embedded wallet
// before onboarding has completed, it instead starts the onboarding flow
// with the pending-swap flag set, deferring execution until completion.
func (s *SwapService) ExecuteSwap(ctx context.Context) error {
	s.mtx.Lock()
	gate := s.onboarding
	s.mtx.Unlock()

	if gate != nil && !gate.Completed() && s.wallets.IsEmbedded() {
		return gate.StartOnboardingFlow(true)
	}
	return s.execute(ctx, nil)
}

// ExecutePendingSwap runs the deferred swap exactly once on behalf of the
// orchestrator; done fires after settlement, success or failure alike.
func (s *SwapService) ExecutePendingSwap(done func()) {
	if err := s.execute(context.Background(), done); err != nil {
		log.Warnf("executing deferred swap: %s", err)
	}
}

// execute validates and submits the swap. When done is non-nil it is
// invoked exactly once after the attempt has settled or failed validation.
func (s *SwapService) execute(ctx context.Context, done func()) error {
	settle := func() {
		if done != nil {
			done()
		}
	}

	if !s.contracts.HasBaseContracts() {
		settle()
		return ErrContractsNotRegistered
	}

	s.mtx.Lock()
	ok, err := s.swap.Sending()
	if !ok {
		s.mtx.Unlock()
		settle()
		return err
	}
	fromAmount := s.swap.FromAmount
	s.mtx.Unlock()
	s.notify()

	units, err := mathutil.ToBaseUnits(fromAmount)
	if err != nil {
		s.failSwap(err)
		settle()
		return err
	}

	go s.run(ctx, units, settle)
	return nil
}

func (s *SwapService) run(ctx context.Context, units uint64, settle func()) {
	defer settle()

	wallet := s.wallets.ActiveWallet()
	tx, err := s.contracts.Swap(ctx, wallet, units)
	if err != nil {
		s.failSwap(err)
		return
	}
	log.Debugf("swap transaction %s submitted", tx.Hash())

	for phase := range tx.Phases() {
		if phase == ports.TxPhaseMining {
			s.mtx.Lock()
			s.swap.Mining()
			s.mtx.Unlock()
			s.notify()
		}
	}
	if err := tx.Err(); err != nil {
		s.failSwap(err)
		return
	}

	s.mtx.Lock()
	s.swap.Settle()
	s.mtx.Unlock()
	s.notify()

	if s.balances != nil {
		go s.balances.Refetch(context.Background())
	}

	time.AfterFunc(s.resetDelay, func() {
		s.mtx.Lock()
		if s.swap.Phase.Code == domain.SwapPhaseCodeSuccess {
			s.swap.Reset()
		}
		s.mtx.Unlock()
		s.notify()
	})
}

func (s *SwapService) failSwap(err error) {
	classified := ClassifyTxError(err)

	s.mtx.Lock()
	s.swap.Fail(classified.Message)
	s.mtx.Unlock()
	s.notify()
}
