package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
)

// BalancesService is a read-through cache of the two token balances,
// pre-seeded once from the onboarding simulation. It invalidates itself
// whenever the active wallet falls back to the embedded one or the address
// becomes unset, so no stale balance outlives a wallet switch.
type BalancesService struct {
	notifier

	contracts *ContractsService
	wallets   *WalletService

	mtx     sync.Mutex
	base    *uint64
	premium *uint64
	seeded  bool
}

// NewBalancesService returns an empty cache watching the wallet service.
func NewBalancesService(
	contracts *ContractsService, wallets *WalletService,
) *BalancesService {
	svc := &BalancesService{contracts: contracts, wallets: wallets}
	wallets.RegisterObserver(func() {
		if wallets.IsEmbedded() || wallets.Address() == "" {
			svc.Invalidate()
		}
	})
	return svc
}

// Balances returns the cached balances, nil while unknown.
func (s *BalancesService) Balances() (*uint64, *uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.base, s.premium
}

// Seed pre-populates the cache from the onboarding simulation. Only the
// first seeding takes effect.
func (s *BalancesService) Seed(result *domain.SimulationResult) {
	if result == nil {
		return
	}
	s.mtx.Lock()
	if s.seeded {
		s.mtx.Unlock()
		return
	}
	base, premium := result.GregoCoinBalance, result.GregoCoinPremiumBalance
	s.base, s.premium = &base, &premium
	s.seeded = true
	s.mtx.Unlock()
	s.notify()
}

// Refetch reads both balances from the contracts. On failure the cache is
// cleared rather than retaining stale values.
func (s *BalancesService) Refetch(ctx context.Context) error {
	wallet := s.wallets.ConnectedWallet()
	address := s.wallets.Address()
	if wallet == nil || address == "" {
		s.Invalidate()
		return ErrWalletNotConnected
	}

	base, premium, err := s.contracts.FetchBalances(ctx, wallet, address)

	s.mtx.Lock()
	if err != nil {
		s.base, s.premium = nil, nil
		s.mtx.Unlock()
		s.notify()
		log.Warnf("refetching balances: %s", err)
		return err
	}
	s.base, s.premium = &base, &premium
	s.seeded = true
	s.mtx.Unlock()
	s.notify()
	return nil
}

// Invalidate clears the cache.
func (s *BalancesService) Invalidate() {
	s.mtx.Lock()
	s.base, s.premium = nil, nil
	s.seeded = false
	s.mtx.Unlock()
	s.notify()
}
