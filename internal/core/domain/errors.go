package domain

import "errors"

var (
	// ErrOnboardingMustBeIdle ...
	ErrOnboardingMustBeIdle = errors.New(
		"onboarding must be idle to be started",
	)
	// ErrOnboardingMustBeConnecting ...
	ErrOnboardingMustBeConnecting = errors.New(
		"onboarding must be in connecting state for committing a wallet",
	)
	// ErrOnboardingMustBeRegistering ...
	ErrOnboardingMustBeRegistering = errors.New(
		"onboarding must be in registering state for resolving contracts",
	)
	// ErrOnboardingMustBeSimulating ...
	ErrOnboardingMustBeSimulating = errors.New(
		"onboarding must be in simulating state for storing a simulation",
	)
	// ErrOnboardingMustBeRegisteringDrip ...
	ErrOnboardingMustBeRegisteringDrip = errors.New(
		"onboarding must be in registering_drip state for resolving the faucet contract",
	)
	// ErrOnboardingMustBeAwaitingDrip ...
	ErrOnboardingMustBeAwaitingDrip = errors.New(
		"onboarding must be in awaiting_drip state for submitting a password",
	)
	// ErrOnboardingMustBeExecutingDrip ...
	ErrOnboardingMustBeExecutingDrip = errors.New(
		"onboarding must be in executing_drip state for settling the claim",
	)
	// ErrOnboardingNotFailable ...
	ErrOnboardingNotFailable = errors.New(
		"onboarding cannot fail while idle, awaiting a password or completed",
	)

	// ErrConnectionMustBeSelecting ...
	ErrConnectionMustBeSelecting = errors.New(
		"connection must be in selecting state for choosing a wallet",
	)
	// ErrConnectionMustBeVerifying ...
	ErrConnectionMustBeVerifying = errors.New(
		"connection must be in verifying state for storing a pending handshake",
	)
	// ErrConnectionMustBeConnecting ...
	ErrConnectionMustBeConnecting = errors.New(
		"connection must be in connecting state for receiving accounts",
	)
	// ErrConnectionMustBeAccountSelect ...
	ErrConnectionMustBeAccountSelect = errors.New(
		"connection must be in account_select state for committing an account",
	)
	// ErrConnectionNoPending ...
	ErrConnectionNoPending = errors.New(
		"no pending connection with a selected wallet to confirm",
	)
	// ErrProviderNotDiscovered ...
	ErrProviderNotDiscovered = errors.New(
		"wallet provider is not in the discovered list",
	)
	// ErrAccountNotRetrieved ...
	ErrAccountNotRetrieved = errors.New(
		"address does not belong to the retrieved account list",
	)

	// ErrSwapMustBeIdle ...
	ErrSwapMustBeIdle = errors.New(
		"a swap must be idle to be submitted",
	)
	// ErrSwapMustBeSending ...
	ErrSwapMustBeSending = errors.New(
		"a swap must be in sending phase to start mining",
	)
	// ErrSwapMustBeMining ...
	ErrSwapMustBeMining = errors.New(
		"a swap must be in mining phase to settle",
	)
	// ErrSwapMissingAmount ...
	ErrSwapMissingAmount = errors.New(
		"swap input amount must be a positive decimal number",
	)
)
