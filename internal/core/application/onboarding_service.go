package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

// SwapExecutor is the slice of the swap flow the orchestrator drives: it
// seeds the exchange rate from the simulation result and runs the single
// deferred swap requested before onboarding completed.
type SwapExecutor interface {
	SeedRate(rate decimal.Decimal)
	ExecutePendingSwap(done func())
}

// OnboardingService is the top-level orchestrator. Transitions are
// condition-driven: every dependency change (wallet connects, registration
// resolves, simulation resolves, password submitted, transaction settles)
// kicks the internal event channel and a single evaluation entry point
// advances the attempt as far as its preconditions allow. Stage side
// effects run in goroutines guarded by single-flight flags and report back
// through the same channel, so the machine resumes cleanly after any
// dependency changes out of band.
type OnboardingService struct {
	notifier

	wallets   *WalletService
	contracts *ContractsService
	balances  *BalancesService
	repo      ports.RepoManager
	swapSvc   SwapExecutor

	mtx       sync.Mutex
	state     *domain.Onboarding
	password  string
	simResult *domain.SimulationResult

	registering     bool
	simulating      bool
	registeringDrip bool
	dripping        bool
	swapTriggered   bool
	persisted       bool

	events chan struct{}
	quit   chan struct{}
}

// NewOnboardingService returns an orchestrator observing the given wallet
// service. Start must be called before any flow can progress.
func NewOnboardingService(
	wallets *WalletService,
	contracts *ContractsService,
	balances *BalancesService,
	repo ports.RepoManager,
) *OnboardingService {
	svc := &OnboardingService{
		wallets:   wallets,
		contracts: contracts,
		balances:  balances,
		repo:      repo,
		state:     domain.NewOnboarding(false),
		events:    make(chan struct{}, 1),
		quit:      make(chan struct{}),
	}
	wallets.RegisterObserver(svc.kick)
	contracts.RegisterObserver(svc.kick)
	return svc
}

// SetSwapExecutor binds the swap flow after construction, breaking the
// mutual dependency between the two services.
func (s *OnboardingService) SetSwapExecutor(swapSvc SwapExecutor) {
	s.swapSvc = swapSvc
}

// Start spawns the evaluation loop.
func (s *OnboardingService) Start() {
	go s.listen()
}

// Stop terminates the evaluation loop.
func (s *OnboardingService) Stop() {
	close(s.quit)
}

func (s *OnboardingService) listen() {
	for {
		select {
		case <-s.quit:
			return
		case <-s.events:
			s.evaluate()
		}
	}
}

// kick coalesces dependency-change signals into the event channel.
func (s *OnboardingService) kick() {
	select {
	case s.events <- struct{}{}:
	default:
	}
}

// State returns a snapshot of the current attempt.
func (s *OnboardingService) State() domain.Onboarding {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return *s.state
}

// Status returns the current attempt status.
func (s *OnboardingService) Status() domain.OnboardingStatus {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state.Status
}

// Active reports whether an attempt is in progress.
func (s *OnboardingService) Active() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state.IsActive()
}

// Completed reports whether the current attempt reached completion.
func (s *OnboardingService) Completed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state.IsCompleted()
}

// DripPending reports whether the attempt sits in a faucet stage.
func (s *OnboardingService) DripPending() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state.DripPending()
}

// PendingSwap reports whether a deferred swap awaits completion of the
// flow or of its own settlement.
func (s *OnboardingService) PendingSwap() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state.PendingSwap
}

// StartOnboardingFlow begins a fresh attempt at connecting. A failed or
// completed attempt is replaced, an active one is not. The pendingSwap flag
// requests a single swap execution once the flow completes.
func (s *OnboardingService) StartOnboardingFlow(pendingSwap bool) error {
	s.mtx.Lock()
	if s.state.IsActive() {
		s.mtx.Unlock()
		return ErrOnboardingInProgress
	}
	state := domain.NewOnboarding(pendingSwap)
	if _, err := state.Start(); err != nil {
		s.mtx.Unlock()
		return err
	}
	s.state = state
	s.password = ""
	s.simResult = nil
	s.registering, s.simulating, s.registeringDrip, s.dripping = false, false, false, false
	s.swapTriggered = false
	s.persisted = false
	s.mtx.Unlock()

	log.Infof("onboarding flow started (pending swap: %t)", pendingSwap)
	s.kick()
	s.notify()
	return nil
}

// SubmitDripPassword resumes an attempt suspended in awaiting_drip.
func (s *OnboardingService) SubmitDripPassword(password string) error {
	s.mtx.Lock()
	if s.state.Status.Failed ||
		s.state.Status.Code != domain.OnboardingStatusCodeAwaitingDrip {
		s.mtx.Unlock()
		return domain.ErrOnboardingMustBeAwaitingDrip
	}
	s.password = password
	s.mtx.Unlock()

	s.kick()
	return nil
}

// evaluate advances the attempt until no further precondition holds, then
// publishes the resulting state. After actions returned by step run with
// the mutex released.
func (s *OnboardingService) evaluate() {
	for {
		advanced, after := s.step()
		if after != nil {
			after()
		}
		if !advanced {
			break
		}
	}
	s.notify()
}

// step performs at most one transition. It returns true when one fired so
// the caller can immediately re-evaluate the next stage's precondition.
// Side effects that call into other services are returned as the after
// action and must run outside the lock: those services hold their own
// mutex while querying this one back.
func (s *OnboardingService) step() (advanced bool, after func()) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	state := s.state
	if state.Status.Failed {
		return false, nil
	}

	switch state.Status.Code {
	case domain.OnboardingStatusCodeConnecting:
		address := s.wallets.Address()
		if address == "" || s.wallets.IsEmbedded() {
			return false, nil
		}
		completed, err := s.repo.OnboardingRepository().IsCompleted(
			context.Background(), address,
		)
		if err != nil {
			log.Warnf("reading onboarding marker: %s", err)
		}
		if completed {
			// this account already went through the flow in a past session
			s.persisted = true
			state.AlreadyOnboarded(address)
			return true, nil
		}
		state.Connect(address)
		return true, nil

	case domain.OnboardingStatusCodeRegistering:
		if s.contracts.HasBaseContracts() {
			state.Register()
			return true, nil
		}
		if !s.registering {
			s.registering = true
			go s.registerBase(s.wallets.ConnectedWallet())
		}
		return false, nil

	case domain.OnboardingStatusCodeSimulating:
		if s.simResult != nil {
			result := *s.simResult
			state.Simulate(result)
			return true, func() { s.seedCaches(result) }
		}
		if !s.simulating {
			s.simulating = true
			go s.simulate(s.wallets.ConnectedWallet(), state.Address)
		}
		return false, nil

	case domain.OnboardingStatusCodeRegisteringDrip:
		if s.contracts.HasDripContract() {
			state.RegisterDrip()
			return true, nil
		}
		if !s.registeringDrip {
			s.registeringDrip = true
			go s.registerDrip(s.wallets.ConnectedWallet())
		}
		return false, nil

	case domain.OnboardingStatusCodeAwaitingDrip:
		// suspension point with no timeout, resumed by SubmitDripPassword
		if s.password == "" {
			return false, nil
		}
		state.SubmitPassword()
		if !s.dripping {
			s.dripping = true
			go s.executeDrip(s.wallets.ConnectedWallet(), s.password, state.Address)
		}
		return true, nil

	case domain.OnboardingStatusCodeCompleted:
		return s.completedLocked(), nil
	}
	return false, nil
}

// completedLocked persists the completion marker once and triggers the
// deferred swap exactly once. The pending-swap flag is cleared in a single
// explicit transition inside the swap's settlement callback, never before
// the swap has observed it.
func (s *OnboardingService) completedLocked() bool {
	if !s.persisted {
		s.persisted = true
		if err := s.repo.OnboardingRepository().MarkCompleted(
			context.Background(), s.state.Address,
		); err != nil {
			log.Warnf("persisting onboarding marker: %s", err)
		}
		log.Infof("onboarding completed for %s", s.state.Address)
	}

	if s.state.PendingSwap && !s.swapTriggered && s.swapSvc != nil {
		s.swapTriggered = true
		go s.swapSvc.ExecutePendingSwap(func() {
			s.mtx.Lock()
			s.state.ClearPendingSwap()
			s.mtx.Unlock()
			s.kick()
			s.notify()
		})
	}
	return false
}

func (s *OnboardingService) seedCaches(result domain.SimulationResult) {
	if s.balances != nil {
		s.balances.Seed(&result)
	}
	if s.swapSvc != nil {
		s.swapSvc.SeedRate(result.ExchangeRate)
	}
}

func (s *OnboardingService) registerBase(wallet ports.Wallet) {
	err := s.contracts.RegisterBaseContracts(context.Background(), wallet)

	s.mtx.Lock()
	s.registering = false
	if err != nil {
		s.state.Fail(fmt.Sprintf("registering contracts: %s", err))
	}
	s.mtx.Unlock()
	s.kick()
	s.notify()
}

func (s *OnboardingService) simulate(wallet ports.Wallet, address string) {
	result, err := s.contracts.SimulateOnboardingQueries(
		context.Background(), wallet, address,
	)

	s.mtx.Lock()
	s.simulating = false
	if err != nil {
		s.state.Fail(fmt.Sprintf("simulating balances: %s", err))
	} else {
		s.simResult = result
	}
	s.mtx.Unlock()
	s.kick()
	s.notify()
}

func (s *OnboardingService) registerDrip(wallet ports.Wallet) {
	err := s.contracts.RegisterDripContracts(context.Background(), wallet)

	s.mtx.Lock()
	s.registeringDrip = false
	if err != nil {
		s.state.Fail(fmt.Sprintf("registering faucet: %s", err))
	}
	s.mtx.Unlock()
	s.kick()
	s.notify()
}

func (s *OnboardingService) executeDrip(
	wallet ports.Wallet, password, address string,
) {
	tx, err := s.contracts.Drip(context.Background(), wallet, password, address)
	if err != nil {
		s.failDrip(err)
		return
	}

	for phase := range tx.Phases() {
		if phase == ports.TxPhaseMining {
			s.mtx.Lock()
			s.state.DripMining()
			s.mtx.Unlock()
			s.notify()
		}
	}
	if err := tx.Err(); err != nil {
		s.failDrip(err)
		return
	}

	s.mtx.Lock()
	s.dripping = false
	s.state.Complete()
	s.mtx.Unlock()
	s.kick()
	s.notify()
}

func (s *OnboardingService) failDrip(err error) {
	classified := ClassifyTxError(err)

	s.mtx.Lock()
	s.dripping = false
	s.state.Fail(classified.Message)
	s.mtx.Unlock()
	s.notify()
}
