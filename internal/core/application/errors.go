package application

import (
	"errors"
	"strings"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

var (
	// ErrWalletNotConnected ...
	ErrWalletNotConnected = errors.New("no external wallet is connected")
	// ErrContractsNotRegistered ...
	ErrContractsNotRegistered = errors.New("base swap contracts are not registered")
	// ErrDripContractNotRegistered ...
	ErrDripContractNotRegistered = errors.New("faucet contract is not registered")
	// ErrOnboardingInProgress ...
	ErrOnboardingInProgress = errors.New("an onboarding attempt is already in progress")
	// ErrDiscoveryNotActive ...
	ErrDiscoveryNotActive = errors.New("no wallet discovery session is active")
)

// ClassifyTxError turns a transaction failure into a classified ports.TxError.
// Adapters returning a structured error pass through untouched; anything else
// is classified by message patterns, the last resort reserved for the true
// SDK boundary. Simulation failures keep their message verbatim since it is
// assumed to carry actionable detail.
func ClassifyTxError(err error) *ports.TxError {
	var txErr *ports.TxError
	if errors.As(err, &txErr) {
		return txErr
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "simulat"):
		return &ports.TxError{Kind: ports.TxErrorSimulationFailed, Message: msg}
	case strings.Contains(lower, "rejected") || strings.Contains(lower, "denied"):
		return &ports.TxError{
			Kind:    ports.TxErrorUserRejected,
			Message: "transaction was rejected in the wallet",
		}
	case strings.Contains(lower, "insufficient"):
		return &ports.TxError{
			Kind:    ports.TxErrorInsufficientBalance,
			Message: "insufficient balance to complete the transaction",
		}
	case strings.Contains(lower, "invalid password") ||
		strings.Contains(lower, "wrong password"):
		return &ports.TxError{
			Kind:    ports.TxErrorInvalidPassword,
			Message: "the provided password is not valid",
		}
	case strings.Contains(lower, "already claimed") ||
		strings.Contains(lower, "nullifier"):
		return &ports.TxError{
			Kind:    ports.TxErrorAlreadyClaimed,
			Message: "tokens have already been claimed by this account",
		}
	default:
		return &ports.TxError{Kind: ports.TxErrorUnknown, Message: msg}
	}
}
