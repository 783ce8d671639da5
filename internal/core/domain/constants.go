package domain

const (
	OnboardingStatusCodeIdle = iota
	OnboardingStatusCodeConnecting
	OnboardingStatusCodeRegistering
	OnboardingStatusCodeSimulating
	OnboardingStatusCodeRegisteringDrip
	OnboardingStatusCodeAwaitingDrip
	OnboardingStatusCodeExecutingDrip
	OnboardingStatusCodeCompleted
)

const (
	ConnectionStatusCodeIdle = iota
	ConnectionStatusCodeDiscovering
	ConnectionStatusCodeSelecting
	ConnectionStatusCodeVerifying
	ConnectionStatusCodeConnecting
	ConnectionStatusCodeAccountSelect
)

const (
	SwapPhaseCodeIdle = iota
	SwapPhaseCodeSending
	SwapPhaseCodeMining
	SwapPhaseCodeSuccess
)

const (
	DripPhaseNone = iota
	DripPhaseSending
	DripPhaseMining
	DripPhaseSettled
)
