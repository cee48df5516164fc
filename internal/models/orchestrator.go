package models

import (
	"context"
	"math/big"

	"github.com/core-coin/go-core/v2/common"
)

// Marketplace is the business-logic engine consumed by the view layer.
// Workflow methods block until the instance reaches a terminal state and
// return the instance itself alongside the classified error, so the caller
// can inspect intermediate history (e.g. approve settled, action failed).
// State queries serve from a snapshot cache unless refresh is set; a failed
// refresh leaves the previous snapshot in place rather than clearing it.
type Marketplace interface {
	Purchase(ctx context.Context, service common.Address) (*Workflow, error)
	ListForSale(ctx context.Context, contract common.Address, tokenID, priceMinorUnits *big.Int) (*Workflow, error)
	BuyFromMarket(ctx context.Context, listingID common.Hash) (*Workflow, error)
	CancelListing(ctx context.Context, listingID common.Hash) (*Workflow, error)
	CreateService(ctx context.Context, name, symbol string, priceMinorUnits *big.Int, durationSeconds int64) (*Workflow, error)
	RequestTestTokens(ctx context.Context) (*Workflow, error)

	Services(ctx context.Context, refresh bool) ([]*SubscriptionService, error)
	Listings(ctx context.Context, includeInactive, refresh bool) ([]*MarketListing, error)
	Holdings(ctx context.Context, refresh bool) ([]*SubscriptionHolding, error)
	SubscriptionStatus(ctx context.Context, service common.Address) (*SubscriptionStatus, error)
	StableBalance(ctx context.Context) (*big.Int, error)

	// Busy reports whether any workflow instance for the entity is in
	// Submitting or AwaitingConfirmation. Feeds button disabling in views.
	Busy(entity string) bool
	// Diagnostics exposes the per-item failures from the last service
	// enumeration.
	Diagnostics() []*ServiceFailure
}
