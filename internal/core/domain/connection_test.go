package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
)

var (
	providerA = domain.WalletProvider{Id: "wallet-a", Name: "Wallet A"}
	providerB = domain.WalletProvider{Id: "wallet-b", Name: "Wallet B"}
)

func TestConnectionHappyPath(t *testing.T) {
	t.Parallel()

	conn := domain.NewConnection()
	require.Equal(t, domain.ConnectionStatusCodeIdle, conn.Status.Code)

	conn.StartDiscovery()
	require.Equal(t, domain.ConnectionStatusCodeDiscovering, conn.Status.Code)

	require.True(t, conn.AddProvider(providerA))
	require.Equal(t, domain.ConnectionStatusCodeSelecting, conn.Status.Code)
	require.True(t, conn.AddProvider(providerB))
	require.Len(t, conn.Providers, 2)

	ok, err := conn.Select(providerA.Id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.ConnectionStatusCodeVerifying, conn.Status.Code)

	ok, err = conn.Pend([]byte{0x01, 0x02})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, conn.HasPending)

	ok, err = conn.Confirm()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.ConnectionStatusCodeConnecting, conn.Status.Code)

	accounts := []domain.Account{
		{Address: "0xaaa", Alias: "main"},
		{Address: "0xbbb"},
	}
	ok, err = conn.AccountsRetrieved(accounts)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.ConnectionStatusCodeAccountSelect, conn.Status.Code)

	ok, err = conn.CommitAccount("0xbbb")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0xbbb", conn.Address)
	require.Equal(t, domain.ConnectionStatusCodeIdle, conn.Status.Code)
	require.Nil(t, conn.Providers)
	require.False(t, conn.HasPending)
}

func TestConnectionAddProviderDeduplicates(t *testing.T) {
	t.Parallel()

	conn := domain.NewConnection()
	conn.StartDiscovery()

	require.True(t, conn.AddProvider(providerA))
	require.False(t, conn.AddProvider(providerA))
	require.Len(t, conn.Providers, 1)
}

func TestConnectionSelectInvalidatesPending(t *testing.T) {
	t.Parallel()

	conn := newConnectionVerifying()
	ok, err := conn.Pend([]byte{0x01})
	require.NoError(t, err)
	require.True(t, ok)

	// Re-selecting another provider abandons the previous handshake, so an
	// abandoned pending connection can never be confirmed.
	ok, err = conn.Select(providerB.Id)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, conn.HasPending)
	require.Nil(t, conn.VerificationHash)

	ok, err = conn.Confirm()
	require.EqualError(t, err, domain.ErrConnectionNoPending.Error())
	require.False(t, ok)
}

func TestConnectionCancelPending(t *testing.T) {
	t.Parallel()

	conn := newConnectionVerifying()
	conn.Pend([]byte{0x01})

	require.True(t, conn.CancelPending())
	require.Equal(t, domain.ConnectionStatusCodeSelecting, conn.Status.Code)
	require.Len(t, conn.Providers, 1)
	require.Contains(t, conn.CancelledWalletIds, providerA.Id)

	// the cancelled provider is not re-offered within the same attempt
	require.False(t, conn.AddProvider(providerA))

	// cancelling the last remaining provider returns to discovering
	ok, err := conn.Select(providerB.Id)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, conn.CancelPending())
	require.Equal(t, domain.ConnectionStatusCodeDiscovering, conn.Status.Code)
	require.Empty(t, conn.Providers)

	// no-op without a selected provider
	require.False(t, conn.CancelPending())
}

func TestConnectionCancelledIdsSurviveRestartNotReset(t *testing.T) {
	t.Parallel()

	conn := newConnectionVerifying()
	conn.Pend([]byte{0x01})
	conn.CancelPending()

	conn.StartDiscovery()
	require.False(t, conn.AddProvider(providerA))
	require.True(t, conn.AddProvider(providerB))

	// a full reset forgets the cancelled ids: on the next discovery the
	// provider is offered again
	conn.Reset()
	conn.StartDiscovery()
	require.True(t, conn.AddProvider(providerA))
}

func TestFailingConnectionTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		conn        *domain.Connection
		transition  func(c *domain.Connection) (bool, error)
		expectedErr error
	}{
		{
			name:        "select_from_idle",
			conn:        domain.NewConnection(),
			transition:  func(c *domain.Connection) (bool, error) { return c.Select(providerA.Id) },
			expectedErr: domain.ErrConnectionMustBeSelecting,
		},
		{
			name:        "select_unknown_provider",
			conn:        newConnectionSelecting(),
			transition:  func(c *domain.Connection) (bool, error) { return c.Select("unknown") },
			expectedErr: domain.ErrProviderNotDiscovered,
		},
		{
			name:        "pend_from_selecting",
			conn:        newConnectionSelecting(),
			transition:  func(c *domain.Connection) (bool, error) { return c.Pend([]byte{0x01}) },
			expectedErr: domain.ErrConnectionMustBeVerifying,
		},
		{
			name:        "confirm_without_pending",
			conn:        newConnectionVerifying(),
			transition:  func(c *domain.Connection) (bool, error) { return c.Confirm() },
			expectedErr: domain.ErrConnectionNoPending,
		},
		{
			name: "commit_unretrieved_account",
			conn: newConnectionAccountSelect(),
			transition: func(c *domain.Connection) (bool, error) {
				return c.CommitAccount("0xunknown")
			},
			expectedErr: domain.ErrAccountNotRetrieved,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := tt.transition(tt.conn)
			require.EqualError(t, err, tt.expectedErr.Error())
			require.False(t, ok)
		})
	}
}

func TestConnectionFail(t *testing.T) {
	t.Parallel()

	conn := newConnectionSelecting()
	conn.Fail("stream broken")
	require.True(t, conn.Status.Failed)
	require.Equal(t, "stream broken", conn.Error)
	require.False(t, conn.AddProvider(providerB))
}

func newConnectionSelecting() *domain.Connection {
	conn := domain.NewConnection()
	conn.StartDiscovery()
	conn.AddProvider(providerA)
	conn.AddProvider(providerB)
	return conn
}

func newConnectionVerifying() *domain.Connection {
	conn := newConnectionSelecting()
	conn.Select(providerA.Id)
	return conn
}

func newConnectionAccountSelect() *domain.Connection {
	conn := newConnectionVerifying()
	conn.Pend([]byte{0x01})
	conn.Confirm()
	conn.AccountsRetrieved([]domain.Account{{Address: "0xaaa"}})
	return conn
}
