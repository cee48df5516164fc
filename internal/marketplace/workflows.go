package marketplace

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/core-coin/go-core/v2/common"

	"github.com/unisub/unisub/internal/models"
)

// fail records err on the workflow and returns both, so callers can inspect
// how far the instance got before it failed.
func (o *Orchestrator) fail(w *models.Workflow, err error) (*models.Workflow, error) {
	w.Fail(err)
	o.logger.Error("Workflow failed ", "kind ", w.Kind.String(), " entity ", w.Entity, " error ", err)
	return w, err
}

// step runs one submit-and-confirm phase of a workflow: transition to
// Submitting, hand the transaction to the wallet, record its hash, then
// block on confirmation in AwaitingConfirmation.
func (o *Orchestrator) step(ctx context.Context, w *models.Workflow, record func(common.Hash), submit func() (models.PendingTx, error)) error {
	w.Transition(models.Submitting)
	tx, err := submit()
	if err != nil {
		return err
	}
	record(tx.Hash())
	w.Transition(models.AwaitingConfirmation)
	return tx.Wait(ctx)
}

// Purchase buys a fresh subscription directly from the service: an exact
// stable-token approval to the service contract, then the mint. The balance
// and existing-subscription checks run before any transaction is submitted.
func (o *Orchestrator) Purchase(ctx context.Context, service common.Address) (*models.Workflow, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}

	w := models.NewWorkflow(models.PurchaseWorkflow, service.Hex())
	o.beginBusy(w.Entity)
	defer o.endBusy(w.Entity)

	serviceName := ""
	defer func() { o.conclude(w, from, serviceName, "", "") }()

	svc, err := o.gateway.ServiceInfo(ctx, service)
	if err != nil {
		return o.fail(w, err)
	}
	serviceName = svc.Name

	valid, err := o.gateway.HasValidSubscription(ctx, service, from)
	if err != nil {
		return o.fail(w, err)
	}
	if valid {
		return o.fail(w, fmt.Errorf("%w: %s", models.ErrAlreadySubscribed, svc.Name))
	}

	balance, err := o.gateway.StableBalance(ctx, from)
	if err != nil {
		return o.fail(w, err)
	}
	if balance.Cmp(svc.PriceMinorUnits) < 0 {
		return o.fail(w, models.ErrInsufficientBalance)
	}

	if err := o.step(ctx, w, w.SetApproveTx, func() (models.PendingTx, error) {
		return o.gateway.ApproveStable(ctx, from, service, svc.PriceMinorUnits)
	}); err != nil {
		return o.fail(w, err)
	}

	if err := o.step(ctx, w, w.SetActionTx, func() (models.PendingTx, error) {
		return o.gateway.MintSubscription(ctx, from, service)
	}); err != nil {
		return o.fail(w, err)
	}

	w.Transition(models.Settled)
	o.refreshAfter(ctx, w.Kind)
	return w, nil
}

// ListForSale puts an owned subscription token on the market: a per-token
// transfer approval to the marketplace, then the listing itself.
func (o *Orchestrator) ListForSale(ctx context.Context, contract common.Address, tokenID, priceMinorUnits *big.Int) (*models.Workflow, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}
	if tokenID == nil || priceMinorUnits == nil || priceMinorUnits.Sign() <= 0 {
		return nil, models.ErrInvalidAmount
	}

	w := models.NewWorkflow(models.ListForSaleWorkflow, fmt.Sprintf("%s/%s", contract.Hex(), tokenID))
	o.beginBusy(w.Entity)
	defer o.endBusy(w.Entity)
	defer func() { o.conclude(w, from, "", tokenID.String(), "") }()

	owner, err := o.gateway.OwnerOf(ctx, contract, tokenID)
	if err != nil {
		return o.fail(w, err)
	}
	if owner != from {
		return o.fail(w, models.ErrNotTokenOwner)
	}

	marketplace := o.gateway.FactoryAddress()
	if err := o.step(ctx, w, w.SetApproveTx, func() (models.PendingTx, error) {
		return o.gateway.ApproveToken(ctx, from, contract, marketplace, tokenID)
	}); err != nil {
		return o.fail(w, err)
	}

	if err := o.step(ctx, w, w.SetActionTx, func() (models.PendingTx, error) {
		return o.gateway.ListSubscription(ctx, from, contract, tokenID, priceMinorUnits)
	}); err != nil {
		return o.fail(w, err)
	}

	w.Transition(models.Settled)
	o.refreshAfter(ctx, w.Kind)
	return w, nil
}

// lookupListing fetches the current listing set and finds one entry. It
// deliberately bypasses the snapshot cache: purchase decisions must be made
// against fresh state.
func (o *Orchestrator) lookupListing(ctx context.Context, listingID common.Hash) (*models.MarketListing, error) {
	listings, err := o.gateway.MarketListings(ctx)
	if err != nil {
		return nil, err
	}
	for _, listing := range listings {
		if listing.ListingID == listingID {
			return listing, nil
		}
	}
	return nil, models.ErrListingNotFound
}

// BuyFromMarket purchases a second-hand subscription from a listing. The
// listing is re-fetched and re-validated immediately before submission, so
// a concurrent cancel or buy fails here instead of on-chain.
func (o *Orchestrator) BuyFromMarket(ctx context.Context, listingID common.Hash) (*models.Workflow, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}

	w := models.NewWorkflow(models.BuyFromMarketWorkflow, listingID.Hex())
	o.beginBusy(w.Entity)
	defer o.endBusy(w.Entity)

	serviceName := ""
	tokenID := ""
	seller := ""
	defer func() { o.conclude(w, from, serviceName, tokenID, seller) }()

	listing, err := o.lookupListing(ctx, listingID)
	if err != nil {
		return o.fail(w, err)
	}
	serviceName = listing.ServiceName
	tokenID = listing.TokenID.String()
	seller = listing.Seller.Hex()

	if !listing.Active {
		return o.fail(w, models.ErrListingInactive)
	}
	if !listing.Purchasable(time.Now()) {
		return o.fail(w, models.ErrListingExpired)
	}

	balance, err := o.gateway.StableBalance(ctx, from)
	if err != nil {
		return o.fail(w, err)
	}
	if balance.Cmp(listing.PriceMinorUnits) < 0 {
		return o.fail(w, models.ErrInsufficientBalance)
	}

	marketplace := o.gateway.FactoryAddress()
	if err := o.step(ctx, w, w.SetApproveTx, func() (models.PendingTx, error) {
		return o.gateway.ApproveStable(ctx, from, marketplace, listing.PriceMinorUnits)
	}); err != nil {
		return o.fail(w, err)
	}

	if err := o.step(ctx, w, w.SetActionTx, func() (models.PendingTx, error) {
		return o.gateway.BuyListing(ctx, from, listingID)
	}); err != nil {
		return o.fail(w, err)
	}

	w.Transition(models.Settled)
	o.refreshAfter(ctx, w.Kind)
	return w, nil
}

// CancelListing withdraws the caller's own listing. Only the seller may
// cancel, and only while the listing is still active.
func (o *Orchestrator) CancelListing(ctx context.Context, listingID common.Hash) (*models.Workflow, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}

	w := models.NewWorkflow(models.CancelListingWorkflow, listingID.Hex())
	o.beginBusy(w.Entity)
	defer o.endBusy(w.Entity)

	serviceName := ""
	tokenID := ""
	defer func() { o.conclude(w, from, serviceName, tokenID, "") }()

	listing, err := o.lookupListing(ctx, listingID)
	if err != nil {
		return o.fail(w, err)
	}
	serviceName = listing.ServiceName
	tokenID = listing.TokenID.String()

	if !listing.Active {
		return o.fail(w, models.ErrListingInactive)
	}
	if listing.Seller != from {
		return o.fail(w, models.ErrNotSeller)
	}

	if err := o.step(ctx, w, w.SetActionTx, func() (models.PendingTx, error) {
		return o.gateway.CancelListing(ctx, from, listingID)
	}); err != nil {
		return o.fail(w, err)
	}

	w.Transition(models.Settled)
	o.refreshAfter(ctx, w.Kind)
	return w, nil
}

// CreateService registers a new subscription offering through the factory.
func (o *Orchestrator) CreateService(ctx context.Context, name, symbol string, priceMinorUnits *big.Int, durationSeconds int64) (*models.Workflow, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}
	if name == "" || symbol == "" {
		return nil, fmt.Errorf("service name and symbol are required")
	}
	if priceMinorUnits == nil || priceMinorUnits.Sign() <= 0 || durationSeconds <= 0 {
		return nil, models.ErrInvalidAmount
	}

	w := models.NewWorkflow(models.CreateServiceWorkflow, "factory")
	o.beginBusy(w.Entity)
	defer o.endBusy(w.Entity)
	defer func() { o.conclude(w, from, name, "", "") }()

	if err := o.step(ctx, w, w.SetActionTx, func() (models.PendingTx, error) {
		return o.gateway.CreateService(ctx, from, name, symbol, priceMinorUnits, durationSeconds)
	}); err != nil {
		return o.fail(w, err)
	}

	w.Transition(models.Settled)
	o.refreshAfter(ctx, w.Kind)
	return w, nil
}

// RequestTestTokens claims testnet stable tokens for the connected account.
func (o *Orchestrator) RequestTestTokens(ctx context.Context) (*models.Workflow, error) {
	from, err := o.account()
	if err != nil {
		return nil, err
	}

	w := models.NewWorkflow(models.FaucetWorkflow, from.Hex())
	o.beginBusy(w.Entity)
	defer o.endBusy(w.Entity)
	defer func() { o.conclude(w, from, "", "", "") }()

	if err := o.step(ctx, w, w.SetActionTx, func() (models.PendingTx, error) {
		return o.gateway.RequestFaucet(ctx, from)
	}); err != nil {
		return o.fail(w, err)
	}

	w.Transition(models.Settled)
	return w, nil
}
