package http_api

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/core-coin/go-core/v2/common"
	"github.com/gin-gonic/gin"

	"github.com/unisub/unisub/internal/gateway"
	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/validation"
)

// SessionResponse is the client's view of the wallet session.
type SessionResponse struct {
	State            string `json:"state"`
	Address          string `json:"address,omitempty"`
	ChainID          string `json:"chain_id,omitempty"`
	NativeBalance    string `json:"native_balance,omitempty"`
	NetworkSupported bool   `json:"network_supported"`
}

// WorkflowResponse reports a finished workflow instance, including the
// intermediate states it went through.
type WorkflowResponse struct {
	Success   bool     `json:"success"`
	Kind      string   `json:"kind"`
	Entity    string   `json:"entity"`
	State     string   `json:"state"`
	History   []string `json:"history"`
	ApproveTx string   `json:"approve_tx,omitempty"`
	ActionTx  string   `json:"action_tx,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// SwitchNetworkRequest represents the JSON body for a network switch.
type SwitchNetworkRequest struct {
	ChainID uint64 `json:"chain_id" binding:"required"`
}

// CreateServiceRequest represents the JSON body for registering a service.
type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Symbol          string `json:"symbol" binding:"required"`
	Price           string `json:"price" binding:"required"`
	DurationSeconds int64  `json:"duration_seconds" binding:"required,gt=0"`
}

// ListForSaleRequest represents the JSON body for creating a listing.
type ListForSaleRequest struct {
	Contract string `json:"contract" binding:"required"`
	TokenID  string `json:"token_id" binding:"required"`
	Price    string `json:"price" binding:"required"`
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrWalletNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrUserRejected),
		errors.Is(err, models.ErrRequestPending):
		return http.StatusConflict
	case errors.Is(err, models.ErrChainUnsupported),
		errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrNotTokenOwner),
		errors.Is(err, models.ErrNotSeller),
		errors.Is(err, models.ErrListingInactive),
		errors.Is(err, models.ErrListingExpired),
		errors.Is(err, models.ErrAlreadySubscribed),
		errors.Is(err, models.ErrFaucetClaimed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrReverted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func workflowResponse(w *models.Workflow) WorkflowResponse {
	history := w.History()
	states := make([]string, len(history))
	for i, state := range history {
		states[i] = state.String()
	}
	resp := WorkflowResponse{
		Success: w.State() == models.Settled,
		Kind:    w.Kind.String(),
		Entity:  w.Entity,
		State:   w.State().String(),
		History: states,
	}
	if w.ApproveTx() != (common.Hash{}) {
		resp.ApproveTx = w.ApproveTx().Hex()
	}
	if w.ActionTx() != (common.Hash{}) {
		resp.ActionTx = w.ActionTx().Hex()
	}
	if w.Err() != nil {
		resp.Error = w.Err().Error()
	}
	return resp
}

// respondWorkflow reports a workflow outcome. A failed workflow still
// carries its history, so the caller can see how far it got.
func (s *HTTPServer) respondWorkflow(c *gin.Context, w *models.Workflow, err error) {
	if err != nil && w == nil {
		s.respondError(c, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	c.JSON(status, workflowResponse(w))
}

func (s *HTTPServer) sessionResponse(session *models.WalletSession) SessionResponse {
	resp := SessionResponse{State: session.State.String()}
	if session.State != models.Connected {
		return resp
	}
	resp.Address = session.Address.Hex()
	if session.ChainID != nil {
		resp.ChainID = session.ChainID.String()
		resp.NetworkSupported = session.ChainID.IsUint64() && s.policy.IsSupported(session.ChainID.Uint64())
	}
	if session.NativeBalance != nil {
		resp.NativeBalance = session.NativeBalance.String()
	}
	return resp
}

func (s *HTTPServer) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessionResponse(s.connection.Session()))
}

// connect requests wallet access and reports the resulting session. When
// the wallet sits on an unsupported chain the session still connects; the
// network_supported flag tells the view to prompt for a switch.
func (s *HTTPServer) connect(c *gin.Context) {
	session, err := s.connection.Connect(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionResponse(session))
}

func (s *HTTPServer) disconnect(c *gin.Context) {
	s.connection.Disconnect()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) getNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"networks":  s.policy.Supported(),
		"preferred": s.policy.Preferred().ChainID,
	})
}

func (s *HTTPServer) switchNetwork(c *gin.Context) {
	var req SwitchNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := s.policy.SwitchTo(c.Request.Context(), s.provider, req.ChainID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) getServices(c *gin.Context) {
	refresh := c.Query("refresh") == "1"
	services, err := s.market.Services(c.Request.Context(), refresh)
	if err != nil {
		s.respondError(c, err)
		return
	}

	type serviceView struct {
		*models.SubscriptionService
		Price string `json:"price"`
	}
	views := make([]serviceView, len(services))
	for i, svc := range services {
		views[i] = serviceView{
			SubscriptionService: svc,
			Price:               gateway.FormatUnits(svc.PriceMinorUnits, s.stableDecimals),
		}
	}
	c.JSON(http.StatusOK, gin.H{"services": views})
}

func (s *HTTPServer) createService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}
	price, err := gateway.ParseUnits(req.Price, s.stableDecimals)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid price: " + err.Error()})
		return
	}

	w, err := s.market.CreateService(c.Request.Context(), req.Name, req.Symbol, price, req.DurationSeconds)
	s.respondWorkflow(c, w, err)
}

func (s *HTTPServer) getSubscriptionStatus(c *gin.Context) {
	contract, err := validation.ParseAddress(c.Param("contract"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid contract address: " + err.Error()})
		return
	}

	status, err := s.market.SubscriptionStatus(c.Request.Context(), contract)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *HTTPServer) purchase(c *gin.Context) {
	contract, err := validation.ParseAddress(c.Param("contract"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid contract address: " + err.Error()})
		return
	}

	w, err := s.market.Purchase(c.Request.Context(), contract)
	s.respondWorkflow(c, w, err)
}

func (s *HTTPServer) getListings(c *gin.Context) {
	includeInactive := c.Query("all") == "1"
	refresh := c.Query("refresh") == "1"
	listings, err := s.market.Listings(c.Request.Context(), includeInactive, refresh)
	if err != nil {
		s.respondError(c, err)
		return
	}

	now := time.Now()
	type listingView struct {
		*models.MarketListing
		Price       string `json:"price"`
		Purchasable bool   `json:"purchasable"`
	}
	views := make([]listingView, len(listings))
	for i, listing := range listings {
		views[i] = listingView{
			MarketListing: listing,
			Price:         gateway.FormatUnits(listing.PriceMinorUnits, s.stableDecimals),
			Purchasable:   listing.Purchasable(now),
		}
	}
	c.JSON(http.StatusOK, gin.H{"listings": views})
}

func (s *HTTPServer) listForSale(c *gin.Context) {
	var req ListForSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}
	contract, err := validation.ParseAddress(req.Contract)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid contract address: " + err.Error()})
		return
	}
	tokenID, ok := new(big.Int).SetString(req.TokenID, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid token id"})
		return
	}
	price, err := gateway.ParseUnits(req.Price, s.stableDecimals)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid price: " + err.Error()})
		return
	}

	w, err := s.market.ListForSale(c.Request.Context(), contract, tokenID, price)
	s.respondWorkflow(c, w, err)
}

func (s *HTTPServer) listingID(c *gin.Context) (common.Hash, bool) {
	id := c.Param("id")
	if err := validation.ValidateListingID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid listing id: " + err.Error()})
		return common.Hash{}, false
	}
	return common.HexToHash(id), true
}

func (s *HTTPServer) buyListing(c *gin.Context) {
	id, ok := s.listingID(c)
	if !ok {
		return
	}
	w, err := s.market.BuyFromMarket(c.Request.Context(), id)
	s.respondWorkflow(c, w, err)
}

func (s *HTTPServer) cancelListing(c *gin.Context) {
	id, ok := s.listingID(c)
	if !ok {
		return
	}
	w, err := s.market.CancelListing(c.Request.Context(), id)
	s.respondWorkflow(c, w, err)
}

func (s *HTTPServer) getHoldings(c *gin.Context) {
	refresh := c.Query("refresh") == "1"
	holdings, err := s.market.Holdings(c.Request.Context(), refresh)
	if err != nil {
		s.respondError(c, err)
		return
	}

	now := time.Now()
	type holdingView struct {
		*models.SubscriptionHolding
		Expired bool `json:"expired"`
	}
	views := make([]holdingView, len(holdings))
	for i, holding := range holdings {
		views[i] = holdingView{
			SubscriptionHolding: holding,
			Expired:             holding.Expired(now),
		}
	}
	c.JSON(http.StatusOK, gin.H{"holdings": views})
}

func (s *HTTPServer) getBalance(c *gin.Context) {
	balance, err := s.market.StableBalance(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_minor_units": balance.String(),
		"balance":             gateway.FormatUnits(balance, s.stableDecimals),
	})
}

func (s *HTTPServer) requestFaucet(c *gin.Context) {
	w, err := s.market.RequestTestTokens(c.Request.Context())
	s.respondWorkflow(c, w, err)
}

func (s *HTTPServer) getBusy(c *gin.Context) {
	entity := c.Query("entity")
	if entity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "entity is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"busy": s.market.Busy(entity)})
}

// TransferRequest represents the JSON body for recording a demo transfer.
type TransferRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// recordTransfer appends a simulated transfer to the local history log. No
// ledger transaction is submitted; the record exists for demonstration and
// display only.
func (s *HTTPServer) recordTransfer(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "history is not configured"})
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}
	if err := validation.ValidateAddress(req.To); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid destination address: " + err.Error()})
		return
	}
	amount, err := gateway.ParseUnits(req.Amount, s.stableDecimals)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid amount: " + err.Error()})
		return
	}

	session := s.connection.Session()
	if session.State != models.Connected {
		s.respondError(c, models.ErrNotConnected)
		return
	}

	record := &models.TransferRecord{
		Account:   session.Address.Hex(),
		Kind:      "transfer",
		Amount:    amount.String(),
		Status:    models.RecordStatusCompleted,
		ToAddress: req.To,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.history.SaveRecord(record); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "record": record})
}

func (s *HTTPServer) getHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "history is not configured"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid limit"})
			return
		}
		limit = parsed
	}
	account := c.Query("account")
	if account != "" {
		if err := validation.ValidateAddress(account); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid account: " + err.Error()})
			return
		}
	}

	records, err := s.history.ListRecords(account, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *HTTPServer) getDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"failures": s.market.Diagnostics()})
}
