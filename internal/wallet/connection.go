package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/core-coin/go-core/v2/common"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

const defaultBalancePoll = 30 * time.Second

// Connection owns the wallet session. It tracks the active account, chain
// and native balance, and keeps them current from provider events and a
// periodic balance poll. At most one provider subscription is live at a
// time: connecting again tears down the previous one first.
type Connection struct {
	logger       *logger.Logger
	provider     models.WalletProvider
	balances     models.BalanceReader
	pollInterval time.Duration

	mu       sync.Mutex
	session  *models.WalletSession
	sub      models.WalletSubscription
	stopPoll chan struct{}
}

func NewConnection(provider models.WalletProvider, balances models.BalanceReader, pollInterval time.Duration, log *logger.Logger) *Connection {
	if pollInterval <= 0 {
		pollInterval = defaultBalancePoll
	}
	return &Connection{
		logger:       log,
		provider:     provider,
		balances:     balances,
		pollInterval: pollInterval,
		session:      &models.WalletSession{State: models.Disconnected},
	}
}

// Connect requests wallet access and initializes the session from the first
// returned account. Provider refusals pass through already classified. A
// failed attempt leaves any existing session and its event subscription
// untouched.
func (c *Connection) Connect(ctx context.Context) (*models.WalletSession, error) {
	if c.provider == nil {
		return nil, models.ErrWalletNotFound
	}

	c.mu.Lock()
	prior := c.session
	c.session = &models.WalletSession{State: models.Connecting}
	c.mu.Unlock()

	restore := func() {
		c.mu.Lock()
		c.session = prior
		c.mu.Unlock()
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		restore()
		return nil, err
	}
	if len(accounts) == 0 {
		restore()
		return nil, fmt.Errorf("%w: wallet returned no accounts", models.ErrNotConnected)
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		restore()
		return nil, fmt.Errorf("failed to get wallet chain id: %w", err)
	}

	balance := c.fetchBalance(ctx, accounts[0])

	c.mu.Lock()
	c.session = &models.WalletSession{
		Address:       accounts[0],
		ChainID:       chainID,
		NativeBalance: balance,
		State:         models.Connected,
	}
	c.teardownLocked()
	sub, events, err := c.provider.SubscribeEvents()
	if err != nil {
		c.session = &models.WalletSession{State: models.Disconnected}
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to subscribe to wallet events: %w", err)
	}
	c.sub = sub
	c.stopPoll = make(chan struct{})
	stopPoll := c.stopPoll
	session := c.session.Clone()
	c.mu.Unlock()

	go c.eventLoop(events)
	go c.pollBalance(stopPoll)

	c.logger.Info("Wallet connected ", "account ", accounts[0].Hex(), " chain ", chainID)
	return session, nil
}

// Disconnect clears the session and stops event delivery and polling.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.teardownLocked()
	c.session = &models.WalletSession{State: models.Disconnected}
	c.mu.Unlock()
	c.logger.Info("Wallet disconnected")
}

// teardownLocked stops the live subscription and poll loop. Caller holds mu.
func (c *Connection) teardownLocked() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	if c.stopPoll != nil {
		close(c.stopPoll)
		c.stopPoll = nil
	}
}

// Session returns a copy of the current session.
func (c *Connection) Session() *models.WalletSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// RefreshBalance re-reads the native balance for the active account. A read
// failure keeps the previous value.
func (c *Connection) RefreshBalance(ctx context.Context) {
	c.mu.Lock()
	if c.session.State != models.Connected {
		c.mu.Unlock()
		return
	}
	addr := c.session.Address
	c.mu.Unlock()

	balance := c.fetchBalance(ctx, addr)
	if balance == nil {
		return
	}

	c.mu.Lock()
	if c.session.State == models.Connected && c.session.Address == addr {
		c.session.NativeBalance = balance
	}
	c.mu.Unlock()
}

func (c *Connection) fetchBalance(ctx context.Context, addr common.Address) *big.Int {
	if c.balances == nil {
		return nil
	}
	balance, err := c.balances.NativeBalance(ctx, addr)
	if err != nil {
		c.logger.Warn("Failed to refresh native balance ", "account ", addr.Hex(), " error ", err)
		return nil
	}
	return balance
}

func (c *Connection) eventLoop(events <-chan models.WalletEvent) {
	for event := range events {
		switch event.Kind {
		case models.AccountsChanged:
			c.handleAccountsChanged(event.Accounts)
		case models.ChainChanged:
			c.handleChainChanged(event.ChainID)
		}
	}
}

// handleAccountsChanged re-keys the session to the new primary account, or
// tears the session down when the wallet revoked access entirely.
func (c *Connection) handleAccountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		c.logger.Info("Wallet revoked account access")
		c.Disconnect()
		return
	}

	c.mu.Lock()
	if c.session.State != models.Connected || c.session.Address == accounts[0] {
		c.mu.Unlock()
		return
	}
	c.session.Address = accounts[0]
	c.session.NativeBalance = nil
	c.mu.Unlock()

	c.logger.Info("Wallet account changed ", "account ", accounts[0].Hex())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.RefreshBalance(ctx)
}

func (c *Connection) handleChainChanged(chainID *big.Int) {
	c.mu.Lock()
	if c.session.State != models.Connected {
		c.mu.Unlock()
		return
	}
	c.session.ChainID = chainID
	c.mu.Unlock()

	c.logger.Info("Wallet chain changed ", "chain ", chainID)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.RefreshBalance(ctx)
}

func (c *Connection) pollBalance(stop <-chan struct{}) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			c.RefreshBalance(ctx)
			cancel()
		}
	}
}
