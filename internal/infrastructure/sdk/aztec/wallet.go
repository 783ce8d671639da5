package aztec

import (
	"context"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
)

// embeddedWallet is the locally instantiated wallet used before any external
// wallet is connected. It has a single implicit account.
type embeddedWallet struct {
	address string
}

func (w *embeddedWallet) Address() string {
	return w.address
}

func (w *embeddedWallet) IsEmbedded() bool {
	return true
}

func (w *embeddedWallet) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	return []domain.Account{{Address: w.address}}, nil
}

// externalWallet is a wallet reached through a confirmed handshake.
type externalWallet struct {
	address  string
	accounts []domain.Account
}

func (w *externalWallet) Address() string {
	return w.address
}

func (w *externalWallet) IsEmbedded() bool {
	return false
}

func (w *externalWallet) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts := make([]domain.Account, len(w.accounts))
	copy(accounts, w.accounts)
	return accounts, nil
}
