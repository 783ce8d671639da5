package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OnboardingStatus represents the different statuses an onboarding attempt
// can assume. Failed marks the status as terminal for the attempt.
type OnboardingStatus struct {
	Code   int
	Failed bool
}

// SimulationResult holds the outcome of the batched onboarding simulation,
// fetched in a single round trip to minimize wallet approval prompts.
type SimulationResult struct {
	ExchangeRate            decimal.Decimal
	GregoCoinBalance        uint64
	GregoCoinPremiumBalance uint64
}

// Onboarding is the data structure representing one onboarding attempt.
type Onboarding struct {
	Id          string
	Address     string
	Status      OnboardingStatus
	NeedsDrip   bool
	DripPhase   int
	PendingSwap bool
	Simulation  *SimulationResult
	Error       string
}

// NewOnboarding returns an idle onboarding attempt with a new id. The
// pendingSwap flag requests a single swap execution upon completion.
func NewOnboarding(pendingSwap bool) *Onboarding {
	return &Onboarding{
		Id:          uuid.New().String(),
		Status:      OnboardingStatus{Code: OnboardingStatusCodeIdle},
		PendingSwap: pendingSwap,
	}
}

// Start brings an idle onboarding to the connecting status.
func (o *Onboarding) Start() (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeIdle
	}
	if o.Status.Code >= OnboardingStatusCodeConnecting {
		return true, nil
	}
	o.Status.Code = OnboardingStatusCodeConnecting
	return true, nil
}

// Connect commits the connected wallet address and brings the attempt from
// connecting to registering.
func (o *Onboarding) Connect(address string) (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeConnecting
	}
	if o.Status.Code >= OnboardingStatusCodeRegistering {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeConnecting {
		return false, ErrOnboardingMustBeConnecting
	}
	o.Address = address
	o.Status.Code = OnboardingStatusCodeRegistering
	return true, nil
}

// Register brings the attempt from registering to simulating once the base
// contracts have been resolved.
func (o *Onboarding) Register() (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeRegistering
	}
	if o.Status.Code >= OnboardingStatusCodeSimulating {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeRegistering {
		return false, ErrOnboardingMustBeRegistering
	}
	o.Status.Code = OnboardingStatusCodeSimulating
	return true, nil
}

// Simulate stores the simulation result and advances the attempt. NeedsDrip
// holds if and only if the simulated base balance is zero at this moment:
// a zero balance routes through the faucet stages, any other balance goes
// straight to completed.
func (o *Onboarding) Simulate(result SimulationResult) (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeSimulating
	}
	if o.Status.Code >= OnboardingStatusCodeRegisteringDrip {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeSimulating {
		return false, ErrOnboardingMustBeSimulating
	}
	o.Simulation = &result
	o.NeedsDrip = result.GregoCoinBalance == 0
	if o.NeedsDrip {
		o.Status.Code = OnboardingStatusCodeRegisteringDrip
	} else {
		o.Status.Code = OnboardingStatusCodeCompleted
	}
	return true, nil
}

// RegisterDrip brings the attempt from registering_drip to awaiting_drip
// once the faucet contract has been resolved. The attempt then suspends with
// no timeout until a password is submitted.
func (o *Onboarding) RegisterDrip() (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeRegisteringDrip
	}
	if o.Status.Code >= OnboardingStatusCodeAwaitingDrip {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeRegisteringDrip {
		return false, ErrOnboardingMustBeRegisteringDrip
	}
	o.Status.Code = OnboardingStatusCodeAwaitingDrip
	return true, nil
}

// SubmitPassword brings the attempt from awaiting_drip to executing_drip
// and starts the drip transaction in its sending phase.
func (o *Onboarding) SubmitPassword() (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeAwaitingDrip
	}
	if o.Status.Code >= OnboardingStatusCodeExecutingDrip {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeAwaitingDrip {
		return false, ErrOnboardingMustBeAwaitingDrip
	}
	o.Status.Code = OnboardingStatusCodeExecutingDrip
	o.DripPhase = DripPhaseSending
	return true, nil
}

// DripMining marks the drip transaction as being mined.
func (o *Onboarding) DripMining() (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeExecutingDrip
	}
	if o.DripPhase >= DripPhaseMining {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeExecutingDrip {
		return false, ErrOnboardingMustBeExecutingDrip
	}
	o.DripPhase = DripPhaseMining
	return true, nil
}

// Complete settles the drip transaction and brings the attempt to completed.
func (o *Onboarding) Complete() (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeExecutingDrip
	}
	if o.Status.Code >= OnboardingStatusCodeCompleted {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeExecutingDrip {
		return false, ErrOnboardingMustBeExecutingDrip
	}
	o.DripPhase = DripPhaseSettled
	o.Status.Code = OnboardingStatusCodeCompleted
	return true, nil
}

// AlreadyOnboarded short-circuits an attempt whose address carries a
// persisted completion marker, jumping from connecting to completed.
func (o *Onboarding) AlreadyOnboarded(address string) (bool, error) {
	if o.Status.Failed {
		return false, ErrOnboardingMustBeConnecting
	}
	if o.Status.Code >= OnboardingStatusCodeCompleted {
		return true, nil
	}
	if o.Status.Code != OnboardingStatusCodeConnecting {
		return false, ErrOnboardingMustBeConnecting
	}
	o.Address = address
	o.Status.Code = OnboardingStatusCodeCompleted
	return true, nil
}

// Fail marks the attempt as failed with the given message. Failure is not
// reachable from idle, awaiting_drip or completed, and is terminal: the user
// must restart the flow explicitly.
func (o *Onboarding) Fail(msg string) (bool, error) {
	if o.Status.Failed {
		return true, nil
	}
	switch o.Status.Code {
	case OnboardingStatusCodeIdle,
		OnboardingStatusCodeAwaitingDrip,
		OnboardingStatusCodeCompleted:
		return false, ErrOnboardingNotFailable
	}
	o.Status.Failed = true
	o.Error = msg
	return true, nil
}

// ClearPendingSwap drops the pending swap request. It is invoked only once
// the triggered swap has settled, successfully or not.
func (o *Onboarding) ClearPendingSwap() {
	o.PendingSwap = false
}

// IsActive returns whether the attempt is in progress, that is neither idle,
// completed nor failed.
func (o *Onboarding) IsActive() bool {
	return !o.Status.Failed &&
		o.Status.Code > OnboardingStatusCodeIdle &&
		o.Status.Code < OnboardingStatusCodeCompleted
}

// IsCompleted returns whether the attempt reached the completed status.
func (o *Onboarding) IsCompleted() bool {
	return o.Status.Code == OnboardingStatusCodeCompleted && !o.Status.Failed
}

// IsFailed returns whether the attempt failed.
func (o *Onboarding) IsFailed() bool {
	return o.Status.Failed
}

// DripPending returns whether the attempt sits in any of the faucet stages.
func (o *Onboarding) DripPending() bool {
	return !o.Status.Failed &&
		o.Status.Code >= OnboardingStatusCodeRegisteringDrip &&
		o.Status.Code <= OnboardingStatusCodeExecutingDrip
}
