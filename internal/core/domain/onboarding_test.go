package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
)

const testAddress = "0x1234abcd"

func TestOnboardingFlowWithDrip(t *testing.T) {
	t.Parallel()

	onboarding := domain.NewOnboarding(false)
	require.Equal(t, domain.OnboardingStatusCodeIdle, onboarding.Status.Code)
	require.NotEmpty(t, onboarding.Id)
	require.False(t, onboarding.PendingSwap)

	ok, err := onboarding.Start()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = onboarding.Connect(testAddress)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testAddress, onboarding.Address)

	ok, err = onboarding.Register()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = onboarding.Simulate(domain.SimulationResult{
		ExchangeRate:     decimal.NewFromInt(2),
		GregoCoinBalance: 0,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, onboarding.NeedsDrip)
	require.Equal(t, domain.OnboardingStatusCodeRegisteringDrip, onboarding.Status.Code)

	ok, err = onboarding.RegisterDrip()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.OnboardingStatusCodeAwaitingDrip, onboarding.Status.Code)
	require.True(t, onboarding.DripPending())

	ok, err = onboarding.SubmitPassword()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.DripPhaseSending, onboarding.DripPhase)

	ok, err = onboarding.DripMining()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = onboarding.Complete()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.DripPhaseSettled, onboarding.DripPhase)
	require.True(t, onboarding.IsCompleted())
	require.False(t, onboarding.IsActive())
}

func TestOnboardingFlowWithoutDrip(t *testing.T) {
	t.Parallel()

	onboarding := newOnboardingSimulating()

	ok, err := onboarding.Simulate(domain.SimulationResult{
		ExchangeRate:     decimal.NewFromInt(2),
		GregoCoinBalance: 1000,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, onboarding.NeedsDrip)
	require.True(t, onboarding.IsCompleted())
	require.False(t, onboarding.DripPending())
}

func TestOnboardingNeedsDripOnZeroBaseBalanceOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		result    domain.SimulationResult
		needsDrip bool
	}{
		{
			name:      "zero_base_balance",
			result:    domain.SimulationResult{GregoCoinBalance: 0, GregoCoinPremiumBalance: 500},
			needsDrip: true,
		},
		{
			name:      "positive_base_balance",
			result:    domain.SimulationResult{GregoCoinBalance: 1, GregoCoinPremiumBalance: 0},
			needsDrip: false,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			onboarding := newOnboardingSimulating()
			ok, err := onboarding.Simulate(tt.result)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, tt.needsDrip, onboarding.NeedsDrip)
		})
	}
}

func TestOnboardingAlreadyOnboarded(t *testing.T) {
	t.Parallel()

	onboarding := domain.NewOnboarding(true)
	ok, err := onboarding.Start()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = onboarding.AlreadyOnboarded(testAddress)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, onboarding.IsCompleted())
	require.Equal(t, testAddress, onboarding.Address)
	require.False(t, onboarding.NeedsDrip)
	require.True(t, onboarding.PendingSwap)
}

func TestOnboardingTransitionsAreIdempotent(t *testing.T) {
	t.Parallel()

	onboarding := newOnboardingSimulating()

	ok, err := onboarding.Start()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.OnboardingStatusCodeSimulating, onboarding.Status.Code)

	ok, err = onboarding.Connect("0xother")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testAddress, onboarding.Address)
}

func TestFailingOnboardingTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		onboarding  *domain.Onboarding
		transition  func(o *domain.Onboarding) (bool, error)
		expectedErr error
	}{
		{
			name:        "connect_from_idle",
			onboarding:  domain.NewOnboarding(false),
			transition:  func(o *domain.Onboarding) (bool, error) { return o.Connect(testAddress) },
			expectedErr: domain.ErrOnboardingMustBeConnecting,
		},
		{
			name:        "register_from_connecting",
			onboarding:  newOnboardingConnecting(),
			transition:  func(o *domain.Onboarding) (bool, error) { return o.Register() },
			expectedErr: domain.ErrOnboardingMustBeRegistering,
		},
		{
			name:       "simulate_from_connecting",
			onboarding: newOnboardingConnecting(),
			transition: func(o *domain.Onboarding) (bool, error) {
				return o.Simulate(domain.SimulationResult{})
			},
			expectedErr: domain.ErrOnboardingMustBeSimulating,
		},
		{
			name:        "submit_password_from_simulating",
			onboarding:  newOnboardingSimulating(),
			transition:  func(o *domain.Onboarding) (bool, error) { return o.SubmitPassword() },
			expectedErr: domain.ErrOnboardingMustBeAwaitingDrip,
		},
		{
			name:        "complete_from_awaiting_drip",
			onboarding:  newOnboardingAwaitingDrip(),
			transition:  func(o *domain.Onboarding) (bool, error) { return o.Complete() },
			expectedErr: domain.ErrOnboardingMustBeExecutingDrip,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := tt.transition(tt.onboarding)
			require.EqualError(t, err, tt.expectedErr.Error())
			require.False(t, ok)
		})
	}
}

func TestOnboardingFail(t *testing.T) {
	t.Parallel()

	onboarding := newOnboardingSimulating()
	ok, err := onboarding.Fail("simulation failed")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, onboarding.IsFailed())
	require.False(t, onboarding.IsActive())
	require.Equal(t, "simulation failed", onboarding.Error)

	// every guard rejects the failed attempt, including those whose
	// idempotence threshold the status code already passed
	ok, err = onboarding.Register()
	require.EqualError(t, err, domain.ErrOnboardingMustBeRegistering.Error())
	require.False(t, ok)

	ok, err = onboarding.Connect("0xother")
	require.EqualError(t, err, domain.ErrOnboardingMustBeConnecting.Error())
	require.False(t, ok)

	ok, err = onboarding.Start()
	require.EqualError(t, err, domain.ErrOnboardingMustBeIdle.Error())
	require.False(t, ok)
}

func TestFailingOnboardingFail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		onboarding *domain.Onboarding
	}{
		{
			name:       "from_idle",
			onboarding: domain.NewOnboarding(false),
		},
		{
			name:       "from_awaiting_drip",
			onboarding: newOnboardingAwaitingDrip(),
		},
		{
			name:       "from_completed",
			onboarding: newOnboardingCompleted(),
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := tt.onboarding.Fail("whatever")
			require.EqualError(t, err, domain.ErrOnboardingNotFailable.Error())
			require.False(t, ok)
			require.False(t, tt.onboarding.IsFailed())
		})
	}
}

func TestOnboardingClearPendingSwap(t *testing.T) {
	t.Parallel()

	onboarding := domain.NewOnboarding(true)
	require.True(t, onboarding.PendingSwap)

	onboarding.ClearPendingSwap()
	require.False(t, onboarding.PendingSwap)
}

func newOnboardingConnecting() *domain.Onboarding {
	onboarding := domain.NewOnboarding(false)
	onboarding.Start()
	return onboarding
}

func newOnboardingSimulating() *domain.Onboarding {
	onboarding := newOnboardingConnecting()
	onboarding.Connect(testAddress)
	onboarding.Register()
	return onboarding
}

func newOnboardingAwaitingDrip() *domain.Onboarding {
	onboarding := newOnboardingSimulating()
	onboarding.Simulate(domain.SimulationResult{GregoCoinBalance: 0})
	onboarding.RegisterDrip()
	return onboarding
}

func newOnboardingCompleted() *domain.Onboarding {
	onboarding := newOnboardingAwaitingDrip()
	onboarding.SubmitPassword()
	onboarding.Complete()
	return onboarding
}
