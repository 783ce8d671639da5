package aztec

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

type pendingHandshake struct {
	providerId string
	sessionId  string
	hash       []byte
}

func (p *pendingHandshake) ProviderId() string {
	return p.providerId
}

func (p *pendingHandshake) VerificationHash() []byte {
	return p.hash
}

// InitiateConnection implements ports.WalletService: it opens a handshake
// with the provider and returns the pending connection carrying the
// verification fingerprint.
func (s *Service) InitiateConnection(
	ctx context.Context, provider domain.WalletProvider,
) (ports.PendingHandshake, error) {
	body, err := s.post(fmt.Sprintf("%s/connect", s.nodeUrl), map[string]string{
		"providerId":      provider.Id,
		"verificationKey": provider.VerificationKey,
	})
	if err != nil {
		return nil, fmt.Errorf("initiating handshake: %w", err)
	}

	reply := struct {
		SessionId        string `json:"sessionId"`
		VerificationHash string `json:"verificationHash"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("parsing handshake reply: %w", err)
	}
	hash, err := hex.DecodeString(reply.VerificationHash)
	if err != nil {
		return nil, fmt.Errorf("parsing verification hash: %w", err)
	}

	return &pendingHandshake{
		providerId: provider.Id,
		sessionId:  reply.SessionId,
		hash:       hash,
	}, nil
}

// ConfirmConnection implements ports.WalletService: it completes the
// pending handshake and returns the connected wallet.
func (s *Service) ConfirmConnection(
	ctx context.Context, pending ports.PendingHandshake,
) (ports.Wallet, error) {
	handshake, ok := pending.(*pendingHandshake)
	if !ok {
		return nil, fmt.Errorf("unexpected pending handshake type %T", pending)
	}

	body, err := s.post(
		fmt.Sprintf("%s/connect/%s/confirm", s.nodeUrl, handshake.sessionId), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("confirming handshake: %w", err)
	}

	reply := struct {
		Address  string `json:"address"`
		Accounts []struct {
			Address string `json:"address"`
			Alias   string `json:"alias"`
		} `json:"accounts"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("parsing confirm reply: %w", err)
	}

	accounts := make([]domain.Account, 0, len(reply.Accounts))
	for _, a := range reply.Accounts {
		accounts = append(accounts, domain.Account{
			Address: a.Address,
			Alias:   a.Alias,
		})
	}

	return &externalWallet{address: reply.Address, accounts: accounts}, nil
}

// CancelConnection implements ports.WalletService: it aborts the pending
// handshake on the provider side.
func (s *Service) CancelConnection(
	ctx context.Context, pending ports.PendingHandshake,
) error {
	handshake, ok := pending.(*pendingHandshake)
	if !ok {
		return fmt.Errorf("unexpected pending handshake type %T", pending)
	}

	_, err := s.post(
		fmt.Sprintf("%s/connect/%s/cancel", s.nodeUrl, handshake.sessionId), nil,
	)
	return err
}
