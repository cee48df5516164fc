package http_api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/core-coin/go-core/v2/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/internal/network"
	"github.com/unisub/unisub/pkg/logger"
)

type stubConnector struct {
	mu      sync.Mutex
	session *models.WalletSession
}

func (c *stubConnector) Connect(ctx context.Context) (*models.WalletSession, error) {
	return c.Session(), nil
}

func (c *stubConnector) Disconnect() {}

func (c *stubConnector) Session() *models.WalletSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

func (c *stubConnector) RefreshBalance(ctx context.Context) {}

func (c *stubConnector) setChain(chainID *big.Int) {
	c.mu.Lock()
	c.session.ChainID = chainID
	c.mu.Unlock()
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

// switchingProvider applies SwitchChain to the connector's session, the way
// a real wallet's chain-changed event would.
type switchingProvider struct {
	connector *stubConnector
}

func (p *switchingProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return nil, nil
}

func (p *switchingProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return nil, nil
}

func (p *switchingProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.connector.Session().ChainID, nil
}

func (p *switchingProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	p.connector.setChain(new(big.Int).Set(chainID))
	return nil
}

func (p *switchingProvider) AddChain(ctx context.Context, network *models.NetworkDescriptor) error {
	return nil
}

func (p *switchingProvider) SendTransaction(ctx context.Context, req *models.TxRequest) (common.Hash, error) {
	return common.Hash{}, nil
}

func (p *switchingProvider) SubscribeEvents() (models.WalletSubscription, <-chan models.WalletEvent, error) {
	return noopSubscription{}, make(chan models.WalletEvent), nil
}

func newTestServer(t *testing.T, connector *stubConnector, provider models.WalletProvider) *HTTPServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, ok := NewHTTPServer(nil, connector, provider, network.NewPolicy(logger.NewNop()), nil, 6, 0, logger.NewNop()).(*HTTPServer)
	assert.True(t, ok)
	return srv
}

func getSessionView(t *testing.T, srv *HTTPServer) SessionResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionReportsUnsupportedNetwork(t *testing.T) {
	connector := &stubConnector{session: &models.WalletSession{
		State:   models.Connected,
		ChainID: big.NewInt(999),
	}}
	srv := newTestServer(t, connector, &switchingProvider{connector: connector})

	resp := getSessionView(t, srv)
	assert.Equal(t, models.Connected.String(), resp.State)
	assert.Equal(t, "999", resp.ChainID)
	assert.False(t, resp.NetworkSupported)
}

func TestSessionNetworkFlagAfterSwitch(t *testing.T) {
	connector := &stubConnector{session: &models.WalletSession{
		State:   models.Connected,
		ChainID: big.NewInt(999),
	}}
	srv := newTestServer(t, connector, &switchingProvider{connector: connector})

	assert.False(t, getSessionView(t, srv).NetworkSupported)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/network/switch", strings.NewReader(`{"chain_id":2810}`))
	req.Header.Set("Content-Type", "application/json")
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := getSessionView(t, srv)
	assert.Equal(t, "2810", resp.ChainID)
	assert.True(t, resp.NetworkSupported)
}

func TestSessionFlagFalseWhileDisconnected(t *testing.T) {
	connector := &stubConnector{session: &models.WalletSession{State: models.Disconnected}}
	srv := newTestServer(t, connector, &switchingProvider{connector: connector})

	resp := getSessionView(t, srv)
	assert.Equal(t, models.Disconnected.String(), resp.State)
	assert.Empty(t, resp.Address)
	assert.False(t, resp.NetworkSupported)
}
