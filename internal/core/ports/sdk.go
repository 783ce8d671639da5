package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
)

// NodeInfo describes the network the node is serving.
type NodeInfo struct {
	ChainId       string
	NodeVersion   string
	RollupVersion uint32
}

// NodeService gives access to the network node.
type NodeService interface {
	GetNodeInfo(ctx context.Context) (*NodeInfo, error)
}

// DiscoverySession is one in-flight, cancelable wallet discovery operation.
// Providers yields discovered wallets lazily until the session times out or
// is cancelled, then the channel is closed. Cancel is idempotent and
// guarantees that no provider is delivered afterwards. Err reports the
// transport failure that terminated the stream, nil for a clean end
// (timeout and cancellation are not errors).
type DiscoverySession interface {
	Providers() <-chan domain.WalletProvider
	Cancel()
	Err() error
}

// PendingHandshake is an in-progress connection handshake with a selected
// provider, carrying the verification fingerprint the user compares
// out-of-band. It is consumed, confirmed or cancelled, exactly once.
type PendingHandshake interface {
	ProviderId() string
	VerificationHash() []byte
}

// Wallet is a connected wallet, either the locally instantiated embedded
// one or an external wallet reached through a confirmed handshake.
type Wallet interface {
	Address() string
	IsEmbedded() bool
	GetAccounts(ctx context.Context) ([]domain.Account, error)
}

// WalletService covers wallet discovery and the connection handshake.
type WalletService interface {
	Discover(ctx context.Context, timeout time.Duration) (DiscoverySession, error)
	InitiateConnection(ctx context.Context, provider domain.WalletProvider) (PendingHandshake, error)
	ConfirmConnection(ctx context.Context, pending PendingHandshake) (Wallet, error)
	CancelConnection(ctx context.Context, pending PendingHandshake) error
	EmbeddedWallet() Wallet
}

// ContractCall is a single method invocation on a contract.
type ContractCall struct {
	Method string
	Args   []interface{}
}

// BatchedCall addresses a call to a specific contract within a batched
// simulation submitted in one round trip.
type BatchedCall struct {
	Contract ContractHandle
	Call     ContractCall
}

// AuthWitness is a delegated-approval credential allowing a contract to act
// on the wallet's behalf for one specific action.
type AuthWitness []byte

// SendOpts carries the witnesses and the fee-payment method attached to a
// transaction submission.
type SendOpts struct {
	AuthWitnesses []AuthWitness
	FeeMethod     string
}

// TxPhase is a transaction lifecycle phase.
type TxPhase int

const (
	TxPhaseSent TxPhase = iota
	TxPhaseMining
	TxPhaseMined
)

// Transaction is a submitted, non-cancelable transaction. Phases emits the
// lifecycle transitions and is closed once the transaction is mined or
// failed; Err is valid after the channel is closed.
type Transaction interface {
	Hash() string
	Phases() <-chan TxPhase
	Err() error
}

// ContractHandle is a registered on-chain contract bound to a wallet.
type ContractHandle interface {
	Address() string
	Simulate(ctx context.Context, call ContractCall) (uint64, error)
	Send(ctx context.Context, call ContractCall, opts SendOpts) (Transaction, error)
}

// ContractRegistry instantiates and deploys contracts and builds the
// credentials attached to their calls.
type ContractRegistry interface {
	Register(ctx context.Context, wallet Wallet, name, address string) (ContractHandle, error)
	Deploy(ctx context.Context, name string, args []interface{}) (string, error)
	SimulateBatch(ctx context.Context, wallet Wallet, calls []BatchedCall) ([]uint64, error)
	CreateAuthWitness(ctx context.Context, wallet Wallet, target string, call ContractCall) (AuthWitness, error)
}

// TxErrorKind classifies a transaction failure into one of the user-facing
// categories.
type TxErrorKind int

const (
	TxErrorUnknown TxErrorKind = iota
	TxErrorSimulationFailed
	TxErrorUserRejected
	TxErrorInsufficientBalance
	TxErrorInvalidPassword
	TxErrorAlreadyClaimed
)

// TxError is a classified transaction failure. Adapters return it directly
// when the SDK reports a structured kind; otherwise the application layer
// derives the kind from the message at the boundary.
type TxError struct {
	Kind    TxErrorKind
	Message string
}

func (e *TxError) Error() string {
	return fmt.Sprintf("transaction error: %s", e.Message)
}
