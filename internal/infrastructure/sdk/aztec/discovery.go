package aztec

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/domain"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

// Discover implements ports.WalletService: it opens the wallet discovery
// stream and returns a session yielding provider announcements until the
// given timeout elapses, the stream fails, or the session is cancelled.
func (s *Service) Discover(
	ctx context.Context, timeout time.Duration,
) (ports.DiscoverySession, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(
		ctx, fmt.Sprintf("%s/wallet-discovery", s.wsUrl), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("opening discovery stream: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting discovery stream deadline: %w", err)
	}

	session := &discoverySession{
		conn:      conn,
		providers: make(chan domain.WalletProvider),
		quit:      make(chan struct{}),
	}
	go session.read()
	return session, nil
}

type providerAnnouncement struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	IconUrl         string `json:"iconUrl"`
	VerificationKey string `json:"verificationKey"`
}

type discoverySession struct {
	conn      *websocket.Conn
	providers chan domain.WalletProvider
	quit      chan struct{}
	once      sync.Once

	mtx sync.Mutex
	err error
}

func (s *discoverySession) Providers() <-chan domain.WalletProvider {
	return s.providers
}

// Cancel terminates the stream. Idempotent, and no provider is delivered
// after it returns: the read loop bails out on the closed quit channel
// before any further send.
func (s *discoverySession) Cancel() {
	s.once.Do(func() {
		close(s.quit)
		s.conn.Close()
	})
}

// Err reports the transport failure that terminated the stream. Timeout and
// cancellation end the stream cleanly with a nil error.
func (s *discoverySession) Err() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.err
}

func (s *discoverySession) read() {
	defer close(s.providers)
	defer s.conn.Close()

	for {
		announcement := providerAnnouncement{}
		if err := s.conn.ReadJSON(&announcement); err != nil {
			if s.cancelled() || isCleanStreamEnd(err) {
				return
			}
			s.mtx.Lock()
			s.err = err
			s.mtx.Unlock()
			return
		}

		provider := domain.WalletProvider{
			Id:              announcement.Id,
			Name:            announcement.Name,
			IconUrl:         announcement.IconUrl,
			VerificationKey: announcement.VerificationKey,
		}
		select {
		case s.providers <- provider:
		case <-s.quit:
			return
		}
	}
}

func (s *discoverySession) cancelled() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func isCleanStreamEnd(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
