package domain

// WalletProvider identifies a discoverable external wallet. Immutable once
// discovered, unique by id.
type WalletProvider struct {
	Id              string
	Name            string
	IconUrl         string
	VerificationKey string
}

// Account is an address with an optional alias, returned after a successful
// connection handshake.
type Account struct {
	Address string
	Alias   string
}

// ConnectionStatus represents the different statuses of the wallet
// connection state machine.
type ConnectionStatus struct {
	Code   int
	Failed bool
}

// Connection is the data structure backing the wallet connection state
// machine: discovered providers, the rejected-provider set, the selected
// provider and its single pending handshake, and the committed address.
type Connection struct {
	Status             ConnectionStatus
	Providers          []WalletProvider
	CancelledWalletIds map[string]struct{}
	Selected           *WalletProvider
	HasPending         bool
	VerificationHash   []byte
	Accounts           []Account
	Address            string
	Error              string
}

// NewConnection returns an idle connection.
func NewConnection() *Connection {
	return &Connection{
		Status:             ConnectionStatus{Code: ConnectionStatusCodeIdle},
		CancelledWalletIds: map[string]struct{}{},
	}
}

// StartDiscovery resets the transient state and enters discovering. The
// cancelled-provider set survives so a wallet rejected earlier in the
// attempt is not immediately re-offered.
func (c *Connection) StartDiscovery() {
	c.Status = ConnectionStatus{Code: ConnectionStatusCodeDiscovering}
	c.Providers = nil
	c.Selected = nil
	c.HasPending = false
	c.VerificationHash = nil
	c.Accounts = nil
	c.Error = ""
}

// AddProvider appends a newly observed provider unless it is already known
// or was cancelled during this attempt. The first addition moves the machine
// from discovering to selecting. It reports whether the provider was added.
func (c *Connection) AddProvider(provider WalletProvider) bool {
	if c.Status.Failed || c.Status.Code < ConnectionStatusCodeDiscovering {
		return false
	}
	if _, ok := c.CancelledWalletIds[provider.Id]; ok {
		return false
	}
	for _, p := range c.Providers {
		if p.Id == provider.Id {
			return false
		}
	}
	c.Providers = append(c.Providers, provider)
	if c.Status.Code == ConnectionStatusCodeDiscovering {
		c.Status.Code = ConnectionStatusCodeSelecting
	}
	return true
}

// Select picks a discovered provider and enters verifying. Any previously
// pending handshake is invalidated: at most one pending connection exists at
// a time and an abandoned one is never confirmed.
func (c *Connection) Select(providerId string) (bool, error) {
	if c.Status.Code == ConnectionStatusCodeVerifying &&
		c.Selected != nil && c.Selected.Id == providerId {
		return true, nil
	}
	if c.Status.Failed || c.Status.Code != ConnectionStatusCodeSelecting &&
		c.Status.Code != ConnectionStatusCodeVerifying {
		return false, ErrConnectionMustBeSelecting
	}

	var selected *WalletProvider
	for i := range c.Providers {
		if c.Providers[i].Id == providerId {
			selected = &c.Providers[i]
			break
		}
	}
	if selected == nil {
		return false, ErrProviderNotDiscovered
	}

	c.Selected = selected
	c.HasPending = false
	c.VerificationHash = nil
	c.Status.Code = ConnectionStatusCodeVerifying
	return true, nil
}

// Pend stores the verification fingerprint of the initiated handshake for
// out-of-band comparison by the user.
func (c *Connection) Pend(verificationHash []byte) (bool, error) {
	if c.Status.Failed || c.Status.Code != ConnectionStatusCodeVerifying ||
		c.Selected == nil {
		return false, ErrConnectionMustBeVerifying
	}
	c.HasPending = true
	c.VerificationHash = verificationHash
	return true, nil
}

// Confirm consumes the pending handshake and enters connecting. Confirming
// without a pending handshake and a selected provider is a logic error.
func (c *Connection) Confirm() (bool, error) {
	if c.Status.Code == ConnectionStatusCodeConnecting {
		return true, nil
	}
	if c.Status.Failed || !c.HasPending || c.Selected == nil {
		return false, ErrConnectionNoPending
	}
	c.Status.Code = ConnectionStatusCodeConnecting
	return true, nil
}

// AccountsRetrieved stores the account list and enters account_select.
func (c *Connection) AccountsRetrieved(accounts []Account) (bool, error) {
	if c.Status.Code == ConnectionStatusCodeAccountSelect {
		return true, nil
	}
	if c.Status.Failed || c.Status.Code != ConnectionStatusCodeConnecting {
		return false, ErrConnectionMustBeConnecting
	}
	c.Accounts = accounts
	c.Status.Code = ConnectionStatusCodeAccountSelect
	return true, nil
}

// CancelPending aborts the in-progress handshake. The selected provider is
// excluded from the discovered list and recorded in CancelledWalletIds so it
// will not reappear before a full Reset. The machine returns to selecting
// when other wallets remain discovered, to discovering otherwise. Calling it
// with nothing selected is a no-op.
func (c *Connection) CancelPending() bool {
	if c.Selected == nil {
		return false
	}

	cancelledId := c.Selected.Id
	c.CancelledWalletIds[cancelledId] = struct{}{}

	remaining := make([]WalletProvider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.Id != cancelledId {
			remaining = append(remaining, p)
		}
	}
	c.Providers = remaining
	c.Selected = nil
	c.HasPending = false
	c.VerificationHash = nil

	if len(c.Providers) > 0 {
		c.Status.Code = ConnectionStatusCodeSelecting
	} else {
		c.Status.Code = ConnectionStatusCodeDiscovering
	}
	return true
}

// CommitAccount commits the chosen address and resets the machine to idle.
// The cancelled-provider set survives until a full Reset.
func (c *Connection) CommitAccount(address string) (bool, error) {
	if c.Status.Failed || c.Status.Code != ConnectionStatusCodeAccountSelect {
		return false, ErrConnectionMustBeAccountSelect
	}
	found := false
	for _, a := range c.Accounts {
		if a.Address == address {
			found = true
			break
		}
	}
	if !found {
		return false, ErrAccountNotRetrieved
	}

	c.Address = address
	c.Status = ConnectionStatus{Code: ConnectionStatusCodeIdle}
	c.Providers = nil
	c.Selected = nil
	c.HasPending = false
	c.VerificationHash = nil
	c.Accounts = nil
	c.Error = ""
	return true, nil
}

// Fail marks the connection as failed with the given message.
func (c *Connection) Fail(msg string) {
	c.Status.Failed = true
	c.Error = msg
}

// Reset clears all state, including the cancelled-provider set and the
// committed address.
func (c *Connection) Reset() {
	*c = *NewConnection()
}
