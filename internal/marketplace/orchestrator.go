package marketplace

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

// SessionSource exposes the current wallet session to the engine.
type SessionSource interface {
	Session() *models.WalletSession
}

// Orchestrator implements models.Marketplace. It sequences the multi-step
// contract workflows, keeps wholesale snapshots of the marketplace state,
// and writes terminal workflow outcomes to the history log and notifier.
type Orchestrator struct {
	logger   *logger.Logger
	gateway  models.ContractGateway
	sessions SessionSource
	history  models.HistoryRepository
	notifier models.NotificationService

	mu       sync.Mutex
	busy     map[string]int
	services []*models.SubscriptionService
	failures []*models.ServiceFailure
	listings []*models.MarketListing
	holdings []*models.SubscriptionHolding

	servicesLoaded bool
	listingsLoaded bool
	holdingsLoaded bool
	holdingsOwner  common.Address
}

func NewOrchestrator(gateway models.ContractGateway, sessions SessionSource, history models.HistoryRepository, notifier models.NotificationService, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		logger:   log,
		gateway:  gateway,
		sessions: sessions,
		history:  history,
		notifier: notifier,
		busy:     make(map[string]int),
	}
}

// account returns the connected account or ErrNotConnected.
func (o *Orchestrator) account() (common.Address, error) {
	session := o.sessions.Session()
	if session == nil || session.State != models.Connected {
		return common.Address{}, models.ErrNotConnected
	}
	return session.Address, nil
}

func (o *Orchestrator) beginBusy(entity string) {
	o.mu.Lock()
	o.busy[entity]++
	o.mu.Unlock()
}

func (o *Orchestrator) endBusy(entity string) {
	o.mu.Lock()
	o.busy[entity]--
	if o.busy[entity] <= 0 {
		delete(o.busy, entity)
	}
	o.mu.Unlock()
}

// Busy reports whether any workflow for the entity is still in flight.
func (o *Orchestrator) Busy(entity string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy[entity] > 0
}

// Diagnostics returns the per-item failures from the last service
// enumeration.
func (o *Orchestrator) Diagnostics() []*models.ServiceFailure {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.ServiceFailure, len(o.failures))
	copy(out, o.failures)
	return out
}

// Services returns the service catalog. The snapshot is replaced wholesale
// on refresh; a failed refresh keeps the previous snapshot and is only
// fatal when there is nothing to fall back to.
func (o *Orchestrator) Services(ctx context.Context, refresh bool) ([]*models.SubscriptionService, error) {
	o.mu.Lock()
	loaded := o.servicesLoaded
	o.mu.Unlock()

	if !loaded || refresh {
		services, failures, err := o.gateway.EnumerateServices(ctx)
		if err != nil {
			if !loaded {
				return nil, err
			}
			o.logger.Warn("Service refresh failed, serving previous snapshot ", "error ", err)
		} else {
			o.mu.Lock()
			o.services = services
			o.failures = failures
			o.servicesLoaded = true
			o.mu.Unlock()
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.SubscriptionService, len(o.services))
	copy(out, o.services)
	return out, nil
}

// Listings returns market listings. The full set, inactive entries
// included, is cached; the includeInactive flag only filters the view.
func (o *Orchestrator) Listings(ctx context.Context, includeInactive, refresh bool) ([]*models.MarketListing, error) {
	o.mu.Lock()
	loaded := o.listingsLoaded
	o.mu.Unlock()

	if !loaded || refresh {
		listings, err := o.gateway.MarketListings(ctx)
		if err != nil {
			if !loaded {
				return nil, err
			}
			o.logger.Warn("Listing refresh failed, serving previous snapshot ", "error ", err)
		} else {
			o.mu.Lock()
			o.listings = listings
			o.listingsLoaded = true
			o.mu.Unlock()
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.MarketListing, 0, len(o.listings))
	for _, listing := range o.listings {
		if includeInactive || listing.Active {
			out = append(out, listing)
		}
	}
	return out, nil
}

// Holdings returns the connected account's subscriptions across every known
// service. A single unreadable service is skipped, not fatal.
func (o *Orchestrator) Holdings(ctx context.Context, refresh bool) ([]*models.SubscriptionHolding, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	loaded := o.holdingsLoaded && o.holdingsOwner == from
	o.mu.Unlock()

	if !loaded || refresh {
		services, err := o.Services(ctx, false)
		if err != nil {
			return nil, err
		}
		holdings := make([]*models.SubscriptionHolding, 0)
		for _, svc := range services {
			tokens, err := o.gateway.TokensOf(ctx, svc.Contract, from)
			if err != nil {
				o.logger.Warn("Skipping holdings of unreadable service ", "contract ", svc.Contract.Hex(), " error ", err)
				continue
			}
			holdings = append(holdings, tokens...)
		}
		o.mu.Lock()
		o.holdings = holdings
		o.holdingsLoaded = true
		o.holdingsOwner = from
		o.mu.Unlock()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.SubscriptionHolding, len(o.holdings))
	copy(out, o.holdings)
	return out, nil
}

// SubscriptionStatus answers whether the connected account holds a valid
// subscription to one service, with the backing token resolved when it does.
func (o *Orchestrator) SubscriptionStatus(ctx context.Context, service common.Address) (*models.SubscriptionStatus, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}

	valid, err := o.gateway.HasValidSubscription(ctx, service, from)
	if err != nil {
		return nil, err
	}
	status := &models.SubscriptionStatus{
		HasActiveSubscription: valid,
		ServiceContract:       service,
	}
	if !valid {
		return status, nil
	}

	tokens, err := o.gateway.TokensOf(ctx, service, from)
	if err != nil {
		o.logger.Warn("Failed to resolve subscription token ", "contract ", service.Hex(), " error ", err)
		return status, nil
	}
	now := time.Now()
	for _, token := range tokens {
		if token.Expired(now) {
			continue
		}
		if token.ExpirationTimestamp > status.ExpirationTimestamp {
			status.TokenID = token.TokenID
			status.ExpirationTimestamp = token.ExpirationTimestamp
			status.ServiceName = token.ServiceName
		}
	}
	return status, nil
}

func (o *Orchestrator) StableBalance(ctx context.Context) (*big.Int, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}
	return o.gateway.StableBalance(ctx, from)
}

// refreshAfter re-reads the snapshots a settled workflow invalidated.
// Best effort: the next explicit refresh picks up anything missed.
func (o *Orchestrator) refreshAfter(ctx context.Context, kind models.WorkflowKind) {
	switch kind {
	case models.PurchaseWorkflow:
		if _, err := o.Holdings(ctx, true); err != nil {
			o.logger.Warn("Post-settlement holdings refresh failed ", "error ", err)
		}
	case models.ListForSaleWorkflow, models.BuyFromMarketWorkflow, models.CancelListingWorkflow:
		if _, err := o.Listings(ctx, true, true); err != nil {
			o.logger.Warn("Post-settlement listing refresh failed ", "error ", err)
		}
		if _, err := o.Holdings(ctx, true); err != nil {
			o.logger.Warn("Post-settlement holdings refresh failed ", "error ", err)
		}
	case models.CreateServiceWorkflow:
		if _, err := o.Services(ctx, true); err != nil {
			o.logger.Warn("Post-settlement service refresh failed ", "error ", err)
		}
	}
}

// conclude writes the terminal workflow outcome to the history log and the
// notifier. Both sinks are optional and must never fail the workflow.
func (o *Orchestrator) conclude(w *models.Workflow, from common.Address, serviceName, tokenID, toAddress string) {
	status := models.RecordStatusCompleted
	if w.State() == models.Failed {
		status = models.RecordStatusFailed
	}
	txHash := ""
	if w.ActionTx() != (common.Hash{}) {
		txHash = w.ActionTx().Hex()
	} else if w.ApproveTx() != (common.Hash{}) {
		txHash = w.ApproveTx().Hex()
	}

	if o.history != nil {
		record := &models.TransferRecord{
			Account:     from.Hex(),
			Kind:        w.Kind.String(),
			ServiceName: serviceName,
			TokenID:     tokenID,
			Status:      status,
			ToAddress:   toAddress,
			TxHash:      txHash,
			CreatedAt:   time.Now().Unix(),
		}
		if err := o.history.SaveRecord(record); err != nil {
			o.logger.Error("Failed to save history record ", "error ", err)
		}
	}

	if o.notifier != nil {
		body := fmt.Sprintf("account %s, status %s", from.Hex(), status)
		if serviceName != "" {
			body = fmt.Sprintf("%s, service %s", body, serviceName)
		}
		if w.Err() != nil {
			body = fmt.Sprintf("%s, error: %v", body, w.Err())
		}
		o.notifier.SendNotification(&models.Notification{
			Title: w.Kind.String(),
			Body:  body,
		})
	}
}
