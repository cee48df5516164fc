package marketplace

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/core-coin/go-core/v2/common"
	"github.com/stretchr/testify/assert"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

func testAddress(last byte) common.Address {
	var addr common.Address
	addr[common.AddressLength-1] = last
	return addr
}

func testHash(last byte) common.Hash {
	var h common.Hash
	h[common.HashLength-1] = last
	return h
}

type fakeSession struct {
	session *models.WalletSession
}

func (f *fakeSession) Session() *models.WalletSession {
	return f.session
}

func connectedSession(addr common.Address) *fakeSession {
	return &fakeSession{session: &models.WalletSession{
		Address: addr,
		ChainID: big.NewInt(2810),
		State:   models.Connected,
	}}
}

type mockTx struct {
	hash    common.Hash
	waitErr error
	block   chan struct{}
}

func (t *mockTx) Hash() common.Hash {
	return t.hash
}

func (t *mockTx) Wait(ctx context.Context) error {
	if t.block != nil {
		<-t.block
	}
	return t.waitErr
}

// mockGateway is a scripted in-memory ledger. Writes are recorded by name
// and mutate the scripted state the way the real contracts would.
type mockGateway struct {
	mu sync.Mutex

	factory  common.Address
	services []*models.SubscriptionService
	listings []*models.MarketListing
	holdings map[common.Address][]*models.SubscriptionHolding
	balances map[common.Address]*big.Int
	hasValid map[common.Address]bool
	owners   map[string]common.Address

	enumerateErr   error
	approveWaitErr error
	actionWaitErr  error
	faucetErr      error
	approveBlock   chan struct{}

	writes []string
	txSeq  byte
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		factory:  testAddress(0xFA),
		holdings: make(map[common.Address][]*models.SubscriptionHolding),
		balances: make(map[common.Address]*big.Int),
		hasValid: make(map[common.Address]bool),
		owners:   make(map[string]common.Address),
	}
}

func ownerKey(contract common.Address, tokenID *big.Int) string {
	return fmt.Sprintf("%s/%s", contract.Hex(), tokenID)
}

func (g *mockGateway) record(name string) common.Hash {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes = append(g.writes, name)
	g.txSeq++
	return testHash(g.txSeq)
}

func (g *mockGateway) recordedWrites() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.writes))
	copy(out, g.writes)
	return out
}

func (g *mockGateway) EnumerateServices(ctx context.Context) ([]*models.SubscriptionService, []*models.ServiceFailure, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enumerateErr != nil {
		return nil, nil, g.enumerateErr
	}
	out := make([]*models.SubscriptionService, len(g.services))
	copy(out, g.services)
	return out, nil, nil
}

func (g *mockGateway) ServiceInfo(ctx context.Context, contract common.Address) (*models.SubscriptionService, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, svc := range g.services {
		if svc.Contract == contract {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("unknown service %s", contract.Hex())
}

func (g *mockGateway) TokensOf(ctx context.Context, contract, owner common.Address) ([]*models.SubscriptionHolding, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*models.SubscriptionHolding
	for _, holding := range g.holdings[owner] {
		if holding.Contract == contract {
			out = append(out, holding)
		}
	}
	return out, nil
}

func (g *mockGateway) HasValidSubscription(ctx context.Context, contract, owner common.Address) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasValid[contract], nil
}

func (g *mockGateway) OwnerOf(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, ok := g.owners[ownerKey(contract, tokenID)]
	if !ok {
		return common.Address{}, fmt.Errorf("token %s does not exist", tokenID)
	}
	return owner, nil
}

func (g *mockGateway) MarketListings(ctx context.Context) ([]*models.MarketListing, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*models.MarketListing, len(g.listings))
	for i, listing := range g.listings {
		copied := *listing
		out[i] = &copied
	}
	return out, nil
}

func (g *mockGateway) StableBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	balance, ok := g.balances[owner]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(balance), nil
}

func (g *mockGateway) StableAllowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (g *mockGateway) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (g *mockGateway) ApproveStable(ctx context.Context, from, spender common.Address, amount *big.Int) (models.PendingTx, error) {
	hash := g.record("approve_stable")
	return &mockTx{hash: hash, waitErr: g.approveWaitErr, block: g.approveBlock}, nil
}

func (g *mockGateway) MintSubscription(ctx context.Context, from, contract common.Address) (models.PendingTx, error) {
	hash := g.record("mint")
	return &mockTx{hash: hash, waitErr: g.actionWaitErr}, nil
}

func (g *mockGateway) ApproveToken(ctx context.Context, from, contract, operator common.Address, tokenID *big.Int) (models.PendingTx, error) {
	hash := g.record("approve_token")
	return &mockTx{hash: hash, waitErr: g.approveWaitErr}, nil
}

func (g *mockGateway) ListSubscription(ctx context.Context, from, contract common.Address, tokenID, price *big.Int) (models.PendingTx, error) {
	hash := g.record("list")
	if g.actionWaitErr == nil {
		g.mu.Lock()
		g.txSeq++
		g.listings = append(g.listings, &models.MarketListing{
			ListingID:           testHash(g.txSeq),
			Seller:              from,
			Contract:            contract,
			TokenID:             tokenID,
			PriceMinorUnits:     price,
			ExpirationTimestamp: time.Now().Add(time.Hour).Unix(),
			Active:              true,
			ListedAt:            time.Now().Unix(),
		})
		g.mu.Unlock()
	}
	return &mockTx{hash: hash, waitErr: g.actionWaitErr}, nil
}

func (g *mockGateway) setListingActive(listingID common.Hash, active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, listing := range g.listings {
		if listing.ListingID == listingID {
			listing.Active = active
		}
	}
}

func (g *mockGateway) BuyListing(ctx context.Context, from common.Address, listingID common.Hash) (models.PendingTx, error) {
	hash := g.record("buy")
	if g.actionWaitErr == nil {
		g.setListingActive(listingID, false)
	}
	return &mockTx{hash: hash, waitErr: g.actionWaitErr}, nil
}

func (g *mockGateway) CancelListing(ctx context.Context, from common.Address, listingID common.Hash) (models.PendingTx, error) {
	hash := g.record("cancel")
	if g.actionWaitErr == nil {
		g.setListingActive(listingID, false)
	}
	return &mockTx{hash: hash, waitErr: g.actionWaitErr}, nil
}

func (g *mockGateway) CreateService(ctx context.Context, from common.Address, name, symbol string, price *big.Int, durationSeconds int64) (models.PendingTx, error) {
	hash := g.record("create_service")
	if g.actionWaitErr == nil {
		g.mu.Lock()
		g.txSeq++
		g.services = append(g.services, &models.SubscriptionService{
			Contract:        testAddress(g.txSeq),
			Name:            name,
			Symbol:          symbol,
			PriceMinorUnits: price,
			DurationSeconds: durationSeconds,
			Provider:        from,
			Active:          true,
			CreatedAt:       time.Now().Unix(),
		})
		g.mu.Unlock()
	}
	return &mockTx{hash: hash, waitErr: g.actionWaitErr}, nil
}

func (g *mockGateway) RequestFaucet(ctx context.Context, from common.Address) (models.PendingTx, error) {
	if g.faucetErr != nil {
		return nil, g.faucetErr
	}
	hash := g.record("faucet")
	return &mockTx{hash: hash}, nil
}

func (g *mockGateway) FactoryAddress() common.Address {
	return g.factory
}

func (g *mockGateway) StableDecimals() int {
	return 6
}

type fakeHistory struct {
	mu      sync.Mutex
	records []*models.TransferRecord
}

func (h *fakeHistory) SaveRecord(record *models.TransferRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *fakeHistory) ListRecords(account string, limit int) ([]*models.TransferRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*models.TransferRecord, len(h.records))
	copy(out, h.records)
	return out, nil
}

func (h *fakeHistory) Close() error {
	return nil
}

func (h *fakeHistory) last() *models.TransferRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		return nil
	}
	return h.records[len(h.records)-1]
}

func buyer() common.Address {
	return testAddress(0xB1)
}

func seller() common.Address {
	return testAddress(0x5E)
}

func serviceContract() common.Address {
	return testAddress(0xC0)
}

func withService(g *mockGateway, price int64) {
	g.services = append(g.services, &models.SubscriptionService{
		Contract:        serviceContract(),
		Name:            "Streaming Plus",
		Symbol:          "STRM",
		PriceMinorUnits: big.NewInt(price),
		DurationSeconds: 30 * 24 * 3600,
		Provider:        seller(),
		Active:          true,
	})
}

func newTestOrchestrator(g *mockGateway, from common.Address) (*Orchestrator, *fakeHistory) {
	history := &fakeHistory{}
	return NewOrchestrator(g, connectedSession(from), history, nil, logger.NewNop()), history
}

func TestPurchaseHappyPath(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	g.balances[buyer()] = big.NewInt(15000000)
	o, history := newTestOrchestrator(g, buyer())

	w, err := o.Purchase(context.Background(), serviceContract())
	assert.NoError(t, err)
	assert.Equal(t, models.Settled, w.State())
	assert.Equal(t, []string{"approve_stable", "mint"}, g.recordedWrites())
	assert.NotEqual(t, common.Hash{}, w.ApproveTx())
	assert.NotEqual(t, common.Hash{}, w.ActionTx())

	// Both phases show up in the state history
	assert.Equal(t, []models.WorkflowState{
		models.Idle,
		models.Submitting, models.AwaitingConfirmation,
		models.Submitting, models.AwaitingConfirmation,
		models.Settled,
	}, w.History())

	record := history.last()
	assert.NotNil(t, record)
	assert.Equal(t, models.RecordStatusCompleted, record.Status)
	assert.Equal(t, "purchase", record.Kind)
	assert.Equal(t, "Streaming Plus", record.ServiceName)
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	g.balances[buyer()] = big.NewInt(14999999)
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.Purchase(context.Background(), serviceContract())
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	assert.Equal(t, models.Failed, w.State())

	// The check runs before any transaction is submitted
	assert.Empty(t, g.recordedWrites())
}

func TestPurchaseExactBalanceSucceeds(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	g.balances[buyer()] = big.NewInt(15000000)
	o, _ := newTestOrchestrator(g, buyer())

	_, err := o.Purchase(context.Background(), serviceContract())
	assert.NoError(t, err)
}

func TestPurchaseAlreadySubscribed(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	g.balances[buyer()] = big.NewInt(100000000)
	g.hasValid[serviceContract()] = true
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.Purchase(context.Background(), serviceContract())
	assert.ErrorIs(t, err, models.ErrAlreadySubscribed)
	assert.Equal(t, models.Failed, w.State())
	assert.Empty(t, g.recordedWrites())
}

func TestPurchaseApproveSettledActionReverted(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	g.balances[buyer()] = big.NewInt(15000000)
	g.actionWaitErr = models.ErrReverted
	o, history := newTestOrchestrator(g, buyer())

	w, err := o.Purchase(context.Background(), serviceContract())
	assert.ErrorIs(t, err, models.ErrReverted)
	assert.Equal(t, models.Failed, w.State())

	// The approve settled and its hash is retained; the failure is visibly
	// in the second phase
	assert.Equal(t, []string{"approve_stable", "mint"}, g.recordedWrites())
	assert.NotEqual(t, common.Hash{}, w.ApproveTx())
	assert.Equal(t, []models.WorkflowState{
		models.Idle,
		models.Submitting, models.AwaitingConfirmation,
		models.Submitting, models.AwaitingConfirmation,
		models.Failed,
	}, w.History())

	record := history.last()
	assert.NotNil(t, record)
	assert.Equal(t, models.RecordStatusFailed, record.Status)
}

func TestPurchaseRequiresConnection(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	o := NewOrchestrator(g, &fakeSession{session: &models.WalletSession{State: models.Disconnected}}, nil, nil, logger.NewNop())

	w, err := o.Purchase(context.Background(), serviceContract())
	assert.ErrorIs(t, err, models.ErrNotConnected)
	assert.Nil(t, w)
}

func TestListForSaleRequiresOwnership(t *testing.T) {
	g := newMockGateway()
	tokenID := big.NewInt(7)
	g.owners[ownerKey(serviceContract(), tokenID)] = seller()
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.ListForSale(context.Background(), serviceContract(), tokenID, big.NewInt(5000000))
	assert.ErrorIs(t, err, models.ErrNotTokenOwner)
	assert.Equal(t, models.Failed, w.State())
	assert.Empty(t, g.recordedWrites())
}

func TestListForSaleHappyPath(t *testing.T) {
	g := newMockGateway()
	tokenID := big.NewInt(7)
	g.owners[ownerKey(serviceContract(), tokenID)] = seller()
	o, _ := newTestOrchestrator(g, seller())

	w, err := o.ListForSale(context.Background(), serviceContract(), tokenID, big.NewInt(5000000))
	assert.NoError(t, err)
	assert.Equal(t, models.Settled, w.State())
	assert.Equal(t, []string{"approve_token", "list"}, g.recordedWrites())

	// The new listing shows up in the active view
	listings, err := o.Listings(context.Background(), false, true)
	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, seller(), listings[0].Seller)
	assert.True(t, listings[0].Active)
}

func TestListForSaleRejectsNonPositivePrice(t *testing.T) {
	g := newMockGateway()
	o, _ := newTestOrchestrator(g, seller())

	_, err := o.ListForSale(context.Background(), serviceContract(), big.NewInt(7), big.NewInt(0))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.Empty(t, g.recordedWrites())
}

func withListing(g *mockGateway, id common.Hash, expiry time.Time) {
	g.listings = append(g.listings, &models.MarketListing{
		ListingID:           id,
		Seller:              seller(),
		Contract:            serviceContract(),
		TokenID:             big.NewInt(7),
		PriceMinorUnits:     big.NewInt(5000000),
		ExpirationTimestamp: expiry.Unix(),
		Active:              true,
		ListedAt:            time.Now().Unix(),
		ServiceName:         "Streaming Plus",
	})
}

func TestBuyFromMarketHappyPath(t *testing.T) {
	g := newMockGateway()
	id := testHash(0xAA)
	withListing(g, id, time.Now().Add(time.Hour))
	g.balances[buyer()] = big.NewInt(5000000)
	o, history := newTestOrchestrator(g, buyer())

	w, err := o.BuyFromMarket(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, models.Settled, w.State())
	assert.Equal(t, []string{"approve_stable", "buy"}, g.recordedWrites())

	record := history.last()
	assert.NotNil(t, record)
	assert.Equal(t, seller().Hex(), record.ToAddress)

	// The listing flips to inactive but stays in the full set
	active, err := o.Listings(context.Background(), false, true)
	assert.NoError(t, err)
	assert.Empty(t, active)
	all, err := o.Listings(context.Background(), true, false)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.False(t, all[0].Active)
}

func TestBuyFromMarketInactiveListing(t *testing.T) {
	g := newMockGateway()
	id := testHash(0xAA)
	withListing(g, id, time.Now().Add(time.Hour))
	g.balances[buyer()] = big.NewInt(5000000)
	g.setListingActive(id, false)
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.BuyFromMarket(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrListingInactive)
	assert.Equal(t, models.Failed, w.State())
	assert.Empty(t, g.recordedWrites())
}

func TestBuyFromMarketExpiredUnderlying(t *testing.T) {
	g := newMockGateway()
	id := testHash(0xAA)
	withListing(g, id, time.Now().Add(-time.Hour))
	g.balances[buyer()] = big.NewInt(5000000)
	o, _ := newTestOrchestrator(g, buyer())

	_, err := o.BuyFromMarket(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrListingExpired)
	assert.Empty(t, g.recordedWrites())
}

func TestBuyFromMarketUnknownListing(t *testing.T) {
	g := newMockGateway()
	o, _ := newTestOrchestrator(g, buyer())

	_, err := o.BuyFromMarket(context.Background(), testHash(0xFF))
	assert.ErrorIs(t, err, models.ErrListingNotFound)
}

func TestCancelListingOnlySeller(t *testing.T) {
	g := newMockGateway()
	id := testHash(0xAA)
	withListing(g, id, time.Now().Add(time.Hour))
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.CancelListing(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotSeller)
	assert.Equal(t, models.Failed, w.State())
	assert.Empty(t, g.recordedWrites())
}

func TestCancelListingRoundTrip(t *testing.T) {
	g := newMockGateway()
	id := testHash(0xAA)
	withListing(g, id, time.Now().Add(time.Hour))
	o, _ := newTestOrchestrator(g, seller())

	w, err := o.CancelListing(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, models.Settled, w.State())
	assert.Equal(t, []string{"cancel"}, g.recordedWrites())

	// A second cancel finds the listing already inactive and submits nothing
	_, err = o.CancelListing(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrListingInactive)
	assert.Equal(t, []string{"cancel"}, g.recordedWrites())
}

func TestCreateService(t *testing.T) {
	g := newMockGateway()
	o, _ := newTestOrchestrator(g, seller())

	_, err := o.CreateService(context.Background(), "Cloud Vault", "CVLT", big.NewInt(0), 3600)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	w, err := o.CreateService(context.Background(), "Cloud Vault", "CVLT", big.NewInt(9000000), 3600)
	assert.NoError(t, err)
	assert.Equal(t, models.Settled, w.State())
	assert.Equal(t, []string{"create_service"}, g.recordedWrites())

	services, err := o.Services(context.Background(), true)
	assert.NoError(t, err)
	assert.Len(t, services, 1)
	assert.Equal(t, "Cloud Vault", services[0].Name)
}

func TestRequestTestTokens(t *testing.T) {
	g := newMockGateway()
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.RequestTestTokens(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.Settled, w.State())
	assert.Equal(t, []string{"faucet"}, g.recordedWrites())
}

func TestRequestTestTokensAlreadyClaimed(t *testing.T) {
	g := newMockGateway()
	g.faucetErr = models.ErrFaucetClaimed
	o, _ := newTestOrchestrator(g, buyer())

	w, err := o.RequestTestTokens(context.Background())
	assert.ErrorIs(t, err, models.ErrFaucetClaimed)
	assert.Equal(t, models.Failed, w.State())
}

func TestServicesServeStaleSnapshotOnRefreshFailure(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	o, _ := newTestOrchestrator(g, buyer())

	services, err := o.Services(context.Background(), false)
	assert.NoError(t, err)
	assert.Len(t, services, 1)

	g.mu.Lock()
	g.enumerateErr = fmt.Errorf("rpc unavailable")
	g.mu.Unlock()

	// The previous snapshot survives the failed refresh
	services, err = o.Services(context.Background(), true)
	assert.NoError(t, err)
	assert.Len(t, services, 1)
}

func TestSubscriptionStatusResolvesToken(t *testing.T) {
	g := newMockGateway()
	g.hasValid[serviceContract()] = true
	g.holdings[buyer()] = []*models.SubscriptionHolding{
		{Contract: serviceContract(), TokenID: big.NewInt(1), ExpirationTimestamp: time.Now().Add(-time.Hour).Unix(), ServiceName: "Streaming Plus"},
		{Contract: serviceContract(), TokenID: big.NewInt(2), ExpirationTimestamp: time.Now().Add(time.Hour).Unix(), ServiceName: "Streaming Plus"},
	}
	o, _ := newTestOrchestrator(g, buyer())

	status, err := o.SubscriptionStatus(context.Background(), serviceContract())
	assert.NoError(t, err)
	assert.True(t, status.HasActiveSubscription)
	assert.Equal(t, int64(2), status.TokenID.Int64())
}

func TestBusyDuringWorkflow(t *testing.T) {
	g := newMockGateway()
	withService(g, 15000000)
	g.balances[buyer()] = big.NewInt(15000000)
	g.approveBlock = make(chan struct{})
	o, _ := newTestOrchestrator(g, buyer())

	entity := serviceContract().Hex()
	assert.False(t, o.Busy(entity))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Purchase(context.Background(), serviceContract())
	}()

	assert.Eventually(t, func() bool {
		return o.Busy(entity)
	}, time.Second, 10*time.Millisecond)

	close(g.approveBlock)
	<-done
	assert.False(t, o.Busy(entity))
}
