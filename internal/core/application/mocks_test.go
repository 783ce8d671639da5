package application_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

// mockDiscoverySession feeds providers through a buffered channel the test
// controls directly.
type mockDiscoverySession struct {
	providers chan domain.WalletProvider

	mtx       sync.Mutex
	err       error
	cancelled bool
}

func newMockDiscoverySession() *mockDiscoverySession {
	return &mockDiscoverySession{
		providers: make(chan domain.WalletProvider, 16),
	}
}

func (m *mockDiscoverySession) Providers() <-chan domain.WalletProvider {
	return m.providers
}

func (m *mockDiscoverySession) Cancel() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.cancelled = true
}

func (m *mockDiscoverySession) Err() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.err
}

func (m *mockDiscoverySession) emit(provider domain.WalletProvider) {
	m.providers <- provider
}

func (m *mockDiscoverySession) end(err error) {
	m.mtx.Lock()
	m.err = err
	m.mtx.Unlock()
	close(m.providers)
}

func (m *mockDiscoverySession) isCancelled() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.cancelled
}

type mockPendingHandshake struct {
	providerId string
	hash       []byte
}

func (m *mockPendingHandshake) ProviderId() string       { return m.providerId }
func (m *mockPendingHandshake) VerificationHash() []byte { return m.hash }

type mockWallet struct {
	address     string
	embedded    bool
	accounts    []domain.Account
	accountsErr error
}

func (m *mockWallet) Address() string  { return m.address }
func (m *mockWallet) IsEmbedded() bool { return m.embedded }
func (m *mockWallet) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	return m.accounts, m.accountsErr
}

// mockWalletSDK implements ports.WalletService with a pre-wired session and
// wallet, counting the cancel calls.
type mockWalletSDK struct {
	session    *mockDiscoverySession
	wallet     *mockWallet
	embedded   *mockWallet
	initErr    error
	confirmErr error

	mtx          sync.Mutex
	cancelCount  int
	discoverFail error
}

func newMockWalletSDK() *mockWalletSDK {
	return &mockWalletSDK{
		session: newMockDiscoverySession(),
		wallet: &mockWallet{
			address: "0xaaa",
			accounts: []domain.Account{
				{Address: "0xaaa", Alias: "main"},
				{Address: "0xbbb"},
			},
		},
		embedded: &mockWallet{address: "0xembedded", embedded: true},
	}
}

func (m *mockWalletSDK) Discover(
	ctx context.Context, timeout time.Duration,
) (ports.DiscoverySession, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.discoverFail != nil {
		return nil, m.discoverFail
	}
	return m.session, nil
}

func (m *mockWalletSDK) InitiateConnection(
	ctx context.Context, provider domain.WalletProvider,
) (ports.PendingHandshake, error) {
	if m.initErr != nil {
		return nil, m.initErr
	}
	return &mockPendingHandshake{
		providerId: provider.Id,
		hash:       []byte{0x01, 0x02, 0x03},
	}, nil
}

func (m *mockWalletSDK) ConfirmConnection(
	ctx context.Context, pending ports.PendingHandshake,
) (ports.Wallet, error) {
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return m.wallet, nil
}

func (m *mockWalletSDK) CancelConnection(
	ctx context.Context, pending ports.PendingHandshake,
) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.cancelCount++
	return nil
}

func (m *mockWalletSDK) EmbeddedWallet() ports.Wallet {
	return m.embedded
}

func (m *mockWalletSDK) cancelCalls() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.cancelCount
}

// mockTransaction replays a fixed phase sequence, then exposes err.
type mockTransaction struct {
	hash   string
	phases chan ports.TxPhase
	err    error
}

func newMockTransaction(hash string, err error, phases ...ports.TxPhase) *mockTransaction {
	tx := &mockTransaction{
		hash:   hash,
		phases: make(chan ports.TxPhase, len(phases)),
		err:    err,
	}
	for _, p := range phases {
		tx.phases <- p
	}
	close(tx.phases)
	return tx
}

func (m *mockTransaction) Hash() string                 { return m.hash }
func (m *mockTransaction) Phases() <-chan ports.TxPhase { return m.phases }
func (m *mockTransaction) Err() error                   { return m.err }

// newPendingMockTransaction returns a transaction whose phase channel stays
// open until the finish callback fires, keeping the consumer in flight.
func newPendingMockTransaction(hash string) (*mockTransaction, func(err error, phases ...ports.TxPhase)) {
	tx := &mockTransaction{
		hash:   hash,
		phases: make(chan ports.TxPhase, 8),
	}
	finish := func(err error, phases ...ports.TxPhase) {
		tx.err = err
		for _, p := range phases {
			tx.phases <- p
		}
		close(tx.phases)
	}
	return tx, finish
}

type mockContractHandle struct {
	address string

	mtx           sync.Mutex
	simulateValue uint64
	simulateErr   error
	simulateCalls int
	sendTx        ports.Transaction
	sendErr       error
	sentCalls     []ports.ContractCall
	sentOpts      []ports.SendOpts
}

func (m *mockContractHandle) Address() string { return m.address }

func (m *mockContractHandle) Simulate(
	ctx context.Context, call ports.ContractCall,
) (uint64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.simulateCalls++
	return m.simulateValue, m.simulateErr
}

func (m *mockContractHandle) Send(
	ctx context.Context, call ports.ContractCall, opts ports.SendOpts,
) (ports.Transaction, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sentCalls = append(m.sentCalls, call)
	m.sentOpts = append(m.sentOpts, opts)
	return m.sendTx, nil
}

func (m *mockContractHandle) simulated() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.simulateCalls
}

func (m *mockContractHandle) lastSent() (ports.ContractCall, ports.SendOpts, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if len(m.sentCalls) == 0 {
		return ports.ContractCall{}, ports.SendOpts{}, false
	}
	return m.sentCalls[len(m.sentCalls)-1], m.sentOpts[len(m.sentOpts)-1], true
}

// mockRegistry hands out one mock handle per contract name and lets the test
// script the batched simulation results.
type mockRegistry struct {
	mtx             sync.Mutex
	handles         map[string]*mockContractHandle
	registerErr     error
	batchResults    [][]uint64
	batchErr        error
	witnessErr      error
	witnessRequests []ports.ContractCall
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{handles: map[string]*mockContractHandle{}}
}

func (m *mockRegistry) handle(name string) *mockContractHandle {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	h, ok := m.handles[name]
	if !ok {
		h = &mockContractHandle{address: "0x" + name}
		m.handles[name] = h
	}
	return h
}

func (m *mockRegistry) Register(
	ctx context.Context, wallet ports.Wallet, name, address string,
) (ports.ContractHandle, error) {
	m.mtx.Lock()
	err := m.registerErr
	m.mtx.Unlock()
	if err != nil {
		return nil, err
	}
	return m.handle(name), nil
}

func (m *mockRegistry) Deploy(
	ctx context.Context, name string, args []interface{},
) (string, error) {
	return "0xdeployed-" + name, nil
}

func (m *mockRegistry) SimulateBatch(
	ctx context.Context, wallet ports.Wallet, calls []ports.BatchedCall,
) ([]uint64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if len(m.batchResults) == 0 {
		return nil, errors.New("no scripted batch result")
	}
	results := m.batchResults[0]
	m.batchResults = m.batchResults[1:]
	return results, nil
}

func (m *mockRegistry) CreateAuthWitness(
	ctx context.Context, wallet ports.Wallet, target string, call ports.ContractCall,
) (ports.AuthWitness, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.witnessErr != nil {
		return nil, m.witnessErr
	}
	m.witnessRequests = append(m.witnessRequests, call)
	return ports.AuthWitness{0xca, 0xfe}, nil
}

func (m *mockRegistry) scriptBatch(results ...[]uint64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.batchResults = append(m.batchResults, results...)
}

func (m *mockRegistry) lastWitnessRequest() (ports.ContractCall, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if len(m.witnessRequests) == 0 {
		return ports.ContractCall{}, false
	}
	return m.witnessRequests[len(m.witnessRequests)-1], true
}

// mockRepoManager keeps the repositories in plain maps.
type mockRepoManager struct {
	onboarding *mockOnboardingRepository
	settings   *mockSettingsRepository
}

func newMockRepoManager() *mockRepoManager {
	return &mockRepoManager{
		onboarding: &mockOnboardingRepository{completed: map[string]bool{}},
		settings:   &mockSettingsRepository{},
	}
}

func (m *mockRepoManager) OnboardingRepository() ports.OnboardingRepository {
	return m.onboarding
}

func (m *mockRepoManager) SettingsRepository() ports.SettingsRepository {
	return m.settings
}

func (m *mockRepoManager) Close() {}

type mockOnboardingRepository struct {
	mtx       sync.Mutex
	completed map[string]bool
}

func (m *mockOnboardingRepository) MarkCompleted(
	ctx context.Context, address string,
) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.completed[address] = true
	return nil
}

func (m *mockOnboardingRepository) IsCompleted(
	ctx context.Context, address string,
) (bool, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.completed[address], nil
}

type mockSettingsRepository struct {
	mtx       sync.Mutex
	networkId string
}

func (m *mockSettingsRepository) GetActiveNetworkId(
	ctx context.Context,
) (string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.networkId, nil
}

func (m *mockSettingsRepository) SetActiveNetworkId(
	ctx context.Context, networkId string,
) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.networkId = networkId
	return nil
}

// mockSwapExecutor records the seeded rate and runs the deferred swap's done
// callback synchronously.
type mockSwapExecutor struct {
	mtx      sync.Mutex
	rate     string
	executed int
}

func (m *mockSwapExecutor) SeedRate(rate decimal.Decimal) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.rate = rate.String()
}

func (m *mockSwapExecutor) ExecutePendingSwap(done func()) {
	m.mtx.Lock()
	m.executed++
	m.mtx.Unlock()
	done()
}

func (m *mockSwapExecutor) seededRate() string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.rate
}

func (m *mockSwapExecutor) executions() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.executed
}
