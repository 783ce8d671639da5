// Package aztec implements the SDK ports over the HTTP and WebSocket
// endpoints of an Aztec-style node.
package aztec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
	"github.com/AztecProtocol/gregoswap-sub001/pkg/circuitbreaker"
	"github.com/AztecProtocol/gregoswap-sub001/pkg/httputil"
)

const requestsPerSecond = 10

// Service talks to a node and implements ports.NodeService,
// ports.WalletService and ports.ContractRegistry.
type Service struct {
	nodeUrl        string
	wsUrl          string
	txPollInterval time.Duration
	cb             *gobreaker.CircuitBreaker
	limiter        ratelimit.Limiter
	embedded       ports.Wallet
}

// NewService returns a service for the node at the given url after a
// successful health check.
func NewService(nodeUrl string, txPollInterval time.Duration) (*Service, error) {
	svc := &Service{
		nodeUrl:        strings.TrimSuffix(nodeUrl, "/"),
		wsUrl:          toWsUrl(strings.TrimSuffix(nodeUrl, "/")),
		txPollInterval: txPollInterval,
		cb:             circuitbreaker.NewCircuitBreaker("aztec node"),
		limiter:        ratelimit.New(requestsPerSecond),
		embedded: &embeddedWallet{
			address: fmt.Sprintf("0xembedded%s", uuid.New().String()[:8]),
		},
	}

	if err := svc.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return svc, nil
}

func (s *Service) healthCheck() error {
	_, err := s.get(fmt.Sprintf("%s/info", s.nodeUrl))
	return err
}

// GetNodeInfo implements ports.NodeService.
func (s *Service) GetNodeInfo(ctx context.Context) (*ports.NodeInfo, error) {
	body, err := s.get(fmt.Sprintf("%s/info", s.nodeUrl))
	if err != nil {
		return nil, fmt.Errorf("fetching node info: %w", err)
	}

	info := &ports.NodeInfo{}
	if err := json.Unmarshal([]byte(body), info); err != nil {
		return nil, fmt.Errorf("parsing node info: %w", err)
	}
	return info, nil
}

// EmbeddedWallet implements ports.WalletService.
func (s *Service) EmbeddedWallet() ports.Wallet {
	return s.embedded
}

// get wraps a GET request with the rate limiter and the circuit breaker.
func (s *Service) get(url string) (string, error) {
	s.limiter.Take()
	body, err := s.cb.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest("GET", url, "", nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, parseApiError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	return body.(string), nil
}

// post wraps a POST request with the rate limiter and the circuit breaker.
func (s *Service) post(url string, payload interface{}) (string, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	s.limiter.Take()
	body, err := s.cb.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest("POST", url, string(buf), nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, parseApiError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	return body.(string), nil
}

type apiError struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseApiError maps a structured node error onto a classified
// ports.TxError, falling back to the raw body.
func parseApiError(body string) error {
	parsed := apiError{}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil ||
		parsed.Error.Message == "" {
		return errors.New(body)
	}
	return &ports.TxError{
		Kind:    txErrorKind(parsed.Error.Kind),
		Message: parsed.Error.Message,
	}
}

func txErrorKind(kind string) ports.TxErrorKind {
	switch kind {
	case "simulation_failed":
		return ports.TxErrorSimulationFailed
	case "user_rejected":
		return ports.TxErrorUserRejected
	case "insufficient_balance":
		return ports.TxErrorInsufficientBalance
	case "invalid_password":
		return ports.TxErrorInvalidPassword
	case "already_claimed":
		return ports.TxErrorAlreadyClaimed
	default:
		return ports.TxErrorUnknown
	}
}

func toWsUrl(nodeUrl string) string {
	if strings.HasPrefix(nodeUrl, "https://") {
		return "wss://" + strings.TrimPrefix(nodeUrl, "https://")
	}
	return "ws://" + strings.TrimPrefix(nodeUrl, "http://")
}
