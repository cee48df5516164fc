package wallet

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/core-coin/go-core/v2/common"
	"github.com/stretchr/testify/assert"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

type stubSubscription struct {
	mu           sync.Mutex
	events       chan models.WalletEvent
	unsubscribed bool
}

func (s *stubSubscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unsubscribed {
		s.unsubscribed = true
		close(s.events)
	}
}

func (s *stubSubscription) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

// stubProvider is a scriptable wallet provider. Each SubscribeEvents call
// hands out a fresh subscription whose channel the test pushes events into.
type stubProvider struct {
	accounts   []common.Address
	chainID    *big.Int
	requestErr error

	mu   sync.Mutex
	subs []*stubSubscription
}

func (p *stubProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return p.accounts, nil
}

func (p *stubProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return p.accounts, nil
}

func (p *stubProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.chainID, nil
}

func (p *stubProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	return nil
}

func (p *stubProvider) AddChain(ctx context.Context, network *models.NetworkDescriptor) error {
	return nil
}

func (p *stubProvider) SendTransaction(ctx context.Context, req *models.TxRequest) (common.Hash, error) {
	return common.Hash{}, nil
}

func (p *stubProvider) SubscribeEvents() (models.WalletSubscription, <-chan models.WalletEvent, error) {
	sub := &stubSubscription{events: make(chan models.WalletEvent, 8)}
	p.mu.Lock()
	p.subs = append(p.subs, sub)
	p.mu.Unlock()
	return sub, sub.events, nil
}

func (p *stubProvider) lastSub() *stubSubscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.subs) == 0 {
		return nil
	}
	return p.subs[len(p.subs)-1]
}

type stubBalances struct {
	balance *big.Int
}

func (b *stubBalances) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return b.balance, nil
}

func testAddress(last byte) common.Address {
	var addr common.Address
	addr[common.AddressLength-1] = last
	return addr
}

func TestConnectInitializesSession(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, &stubBalances{balance: big.NewInt(500)}, time.Hour, logger.NewNop())

	session, err := conn.Connect(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.Connected, session.State)
	assert.Equal(t, testAddress(1), session.Address)
	assert.Equal(t, int64(2810), session.ChainID.Int64())
	assert.Equal(t, int64(500), session.NativeBalance.Int64())
}

func TestConnectWithoutProvider(t *testing.T) {
	conn := NewConnection(nil, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
	assert.Equal(t, models.Disconnected, conn.Session().State)
}

func TestConnectRejected(t *testing.T) {
	provider := &stubProvider{requestErr: models.ErrUserRejected}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.ErrorIs(t, err, models.ErrUserRejected)
	assert.Equal(t, models.Disconnected, conn.Session().State)
}

func TestConnectWithNoAccounts(t *testing.T) {
	provider := &stubProvider{chainID: big.NewInt(2810)}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.ErrorIs(t, err, models.ErrNotConnected)
	assert.Equal(t, models.Disconnected, conn.Session().State)
}

func TestDisconnectTearsDownSubscription(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.NoError(t, err)

	conn.Disconnect()
	assert.Equal(t, models.Disconnected, conn.Session().State)
	assert.True(t, provider.lastSub().done())
}

func TestReconnectReplacesSubscription(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.NoError(t, err)
	_, err = conn.Connect(context.Background())
	assert.NoError(t, err)

	// The first subscription must be gone; only the second stays live
	assert.Len(t, provider.subs, 2)
	assert.True(t, provider.subs[0].done())
	assert.False(t, provider.subs[1].done())
}

func TestRejectedReconnectKeepsSession(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.NoError(t, err)

	provider.requestErr = models.ErrUserRejected
	_, err = conn.Connect(context.Background())
	assert.ErrorIs(t, err, models.ErrUserRejected)

	// The refused attempt must not disturb the live session
	session := conn.Session()
	assert.Equal(t, models.Connected, session.State)
	assert.Equal(t, testAddress(1), session.Address)
	assert.Len(t, provider.subs, 1)
	assert.False(t, provider.subs[0].done())

	provider.subs[0].events <- models.WalletEvent{
		Kind:    models.ChainChanged,
		ChainID: big.NewInt(11155111),
	}
	assert.Eventually(t, func() bool {
		current := conn.Session()
		return current.ChainID != nil && current.ChainID.Int64() == 11155111
	}, time.Second, 10*time.Millisecond)
}

func TestAccountChangeReKeysSession(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, &stubBalances{balance: big.NewInt(7)}, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.NoError(t, err)

	provider.lastSub().events <- models.WalletEvent{
		Kind:     models.AccountsChanged,
		Accounts: []common.Address{testAddress(2)},
	}

	assert.Eventually(t, func() bool {
		session := conn.Session()
		return session.State == models.Connected && session.Address == testAddress(2)
	}, time.Second, 10*time.Millisecond)
}

func TestAccountRevocationDisconnects(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.NoError(t, err)

	provider.lastSub().events <- models.WalletEvent{Kind: models.AccountsChanged}

	assert.Eventually(t, func() bool {
		return conn.Session().State == models.Disconnected
	}, time.Second, 10*time.Millisecond)
	assert.True(t, provider.lastSub().done())
}

func TestChainChangeUpdatesSession(t *testing.T) {
	provider := &stubProvider{
		accounts: []common.Address{testAddress(1)},
		chainID:  big.NewInt(2810),
	}
	conn := NewConnection(provider, nil, time.Hour, logger.NewNop())

	_, err := conn.Connect(context.Background())
	assert.NoError(t, err)

	provider.lastSub().events <- models.WalletEvent{
		Kind:    models.ChainChanged,
		ChainID: big.NewInt(11155111),
	}

	assert.Eventually(t, func() bool {
		session := conn.Session()
		return session.ChainID != nil && session.ChainID.Int64() == 11155111
	}, time.Second, 10*time.Millisecond)
}
