package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
	"github.com/AztecProtocol/gregoswap-sub001/pkg/emojihash"
)

// WalletService drives the wallet connection state machine: it owns the
// single active discovery session, the single pending handshake and the
// resulting connected wallet.
type WalletService struct {
	notifier

	sdk              ports.WalletService
	discoveryTimeout time.Duration

	mtx       sync.Mutex
	conn      *domain.Connection
	session   ports.DiscoverySession
	sessionId string
	pending   ports.PendingHandshake
	wallet    ports.Wallet
}

// NewWalletService returns a wallet service with an idle connection.
func NewWalletService(
	sdk ports.WalletService, discoveryTimeout time.Duration,
) *WalletService {
	return &WalletService{
		sdk:              sdk,
		discoveryTimeout: discoveryTimeout,
		conn:             domain.NewConnection(),
	}
}

// Connection returns a snapshot of the connection state.
func (s *WalletService) Connection() domain.Connection {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return *s.conn
}

// Address returns the committed account address, empty if none.
func (s *WalletService) Address() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.conn.Address
}

// IsEmbedded reports whether the active wallet is the locally instantiated
// one, that is no external wallet has been connected.
func (s *WalletService) IsEmbedded() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.wallet == nil
}

// ActiveWallet returns the connected external wallet, falling back to the
// embedded one.
func (s *WalletService) ActiveWallet() ports.Wallet {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.wallet != nil {
		return s.wallet
	}
	return s.sdk.EmbeddedWallet()
}

// ConnectedWallet returns the connected external wallet, nil if none.
func (s *WalletService) ConnectedWallet() ports.Wallet {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.wallet
}

// VerificationEmoji renders the pending handshake fingerprint as the emoji
// code the user compares with the one shown by the wallet.
func (s *WalletService) VerificationEmoji() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return emojihash.Render(s.conn.VerificationHash)
}

// StartDiscovery cancels any prior session, resets the transient connection
// state preserving the cancelled-provider set, and opens a new discovery
// session whose providers are consumed asynchronously.
func (s *WalletService) StartDiscovery(ctx context.Context) error {
	s.mtx.Lock()
	if s.session != nil {
		s.session.Cancel()
		s.session = nil
		s.sessionId = ""
	}
	s.conn.StartDiscovery()
	s.mtx.Unlock()
	s.notify()

	session, err := s.sdk.Discover(ctx, s.discoveryTimeout)
	if err != nil {
		s.mtx.Lock()
		s.conn.Fail(fmt.Sprintf("wallet discovery: %s", err))
		s.mtx.Unlock()
		s.notify()
		return err
	}

	s.mtx.Lock()
	if s.session != nil {
		s.session.Cancel()
	}
	id := uuid.New().String()
	s.session, s.sessionId = session, id
	s.mtx.Unlock()

	go s.consumeDiscovery(session, id)
	return nil
}

// consumeDiscovery drains the session channel one provider at a time. The
// session-generation guard makes cancellation airtight: once the id no
// longer matches, nothing is appended, so no late delivery can occur.
func (s *WalletService) consumeDiscovery(
	session ports.DiscoverySession, id string,
) {
	for provider := range session.Providers() {
		s.mtx.Lock()
		if s.sessionId != id {
			s.mtx.Unlock()
			return
		}
		added := s.conn.AddProvider(provider)
		s.mtx.Unlock()

		if added {
			log.Debugf("discovered wallet %s", provider.Id)
			s.notify()
		}
	}

	s.mtx.Lock()
	if s.sessionId != id {
		s.mtx.Unlock()
		return
	}
	s.session = nil
	s.sessionId = ""
	// a session ending with zero providers and no transport failure is a
	// plain timeout, the connection stays in discovering
	if err := session.Err(); err != nil {
		s.conn.Fail(fmt.Sprintf("wallet discovery: %s", err))
	}
	s.mtx.Unlock()
	s.notify()
}

// CancelDiscovery cancels the active session if any. Idempotent.
func (s *WalletService) CancelDiscovery() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.session == nil {
		return
	}
	s.session.Cancel()
	s.session = nil
	s.sessionId = ""
}

// SelectWallet picks a discovered provider and initiates the connection
// handshake. Any previously pending handshake is cancelled and never
// confirmed.
func (s *WalletService) SelectWallet(ctx context.Context, providerId string) error {
	s.mtx.Lock()
	oldPending := s.pending
	s.pending = nil
	ok, err := s.conn.Select(providerId)
	if !ok {
		s.pending = oldPending
		s.mtx.Unlock()
		return err
	}
	provider := *s.conn.Selected
	s.mtx.Unlock()

	if oldPending != nil {
		go func() {
			if err := s.sdk.CancelConnection(context.Background(), oldPending); err != nil {
				log.Warnf("cancelling superseded handshake: %s", err)
			}
		}()
	}
	s.notify()

	go s.initiateHandshake(ctx, provider)
	return nil
}

func (s *WalletService) initiateHandshake(
	ctx context.Context, provider domain.WalletProvider,
) {
	pending, err := s.sdk.InitiateConnection(ctx, provider)

	s.mtx.Lock()
	if err != nil {
		s.conn.Fail(fmt.Sprintf("initiating connection: %s", err))
		s.mtx.Unlock()
		s.notify()
		return
	}
	superseded := s.conn.Selected == nil ||
		s.conn.Selected.Id != provider.Id ||
		s.conn.Status.Code != domain.ConnectionStatusCodeVerifying
	if superseded {
		s.mtx.Unlock()
		if err := s.sdk.CancelConnection(context.Background(), pending); err != nil {
			log.Warnf("cancelling superseded handshake: %s", err)
		}
		return
	}
	s.pending = pending
	s.conn.Pend(pending.VerificationHash())
	s.mtx.Unlock()
	s.notify()
}

// ConfirmConnection completes the pending handshake and retrieves the
// account list. Confirming without a pending handshake is a logic error.
func (s *WalletService) ConfirmConnection(ctx context.Context) error {
	s.mtx.Lock()
	if s.pending == nil || s.conn.Selected == nil {
		s.mtx.Unlock()
		return domain.ErrConnectionNoPending
	}
	if ok, err := s.conn.Confirm(); !ok {
		s.mtx.Unlock()
		return err
	}
	pending := s.pending
	s.mtx.Unlock()
	s.notify()

	go s.completeHandshake(ctx, pending)
	return nil
}

func (s *WalletService) completeHandshake(
	ctx context.Context, pending ports.PendingHandshake,
) {
	wallet, err := s.sdk.ConfirmConnection(ctx, pending)
	if err != nil {
		s.fail(fmt.Sprintf("confirming connection: %s", err))
		return
	}
	accounts, err := wallet.GetAccounts(ctx)
	if err != nil {
		s.fail(fmt.Sprintf("retrieving accounts: %s", err))
		return
	}

	s.mtx.Lock()
	s.wallet = wallet
	s.pending = nil
	s.conn.AccountsRetrieved(accounts)
	s.mtx.Unlock()
	s.notify()
}

// CancelConnection aborts the pending handshake, suppressing the selected
// provider from discovery until a full Reset. Idempotent: a call with
// nothing pending is a no-op.
func (s *WalletService) CancelConnection() {
	s.mtx.Lock()
	pending := s.pending
	s.pending = nil
	changed := s.conn.CancelPending()
	s.mtx.Unlock()

	if pending != nil {
		go func() {
			if err := s.sdk.CancelConnection(context.Background(), pending); err != nil {
				log.Warnf("cancelling handshake: %s", err)
			}
		}()
	}
	if changed {
		s.notify()
	}
}

// SelectAccount commits the chosen address and resets the connection
// machine to idle.
func (s *WalletService) SelectAccount(address string) error {
	s.mtx.Lock()
	ok, err := s.conn.CommitAccount(address)
	s.mtx.Unlock()
	if !ok {
		return err
	}
	log.Infof("wallet connected with account %s", address)
	s.notify()
	return nil
}

// Reset cancels discovery and any pending handshake and clears all state,
// including the cancelled-provider set and the connected wallet.
func (s *WalletService) Reset() {
	s.mtx.Lock()
	if s.session != nil {
		s.session.Cancel()
		s.session = nil
		s.sessionId = ""
	}
	pending := s.pending
	s.pending = nil
	s.wallet = nil
	s.conn.Reset()
	s.mtx.Unlock()

	if pending != nil {
		go func() {
			if err := s.sdk.CancelConnection(context.Background(), pending); err != nil {
				log.Warnf("cancelling handshake: %s", err)
			}
		}()
	}
	s.notify()
}

func (s *WalletService) fail(msg string) {
	s.mtx.Lock()
	s.conn.Fail(msg)
	s.mtx.Unlock()
	s.notify()
}
