package models

import (
	"math/big"
	"time"

	"github.com/core-coin/go-core/v2/common"
)

// SubscriptionService is a purchasable subscription offering, sourced by
// enumerating service contracts registered in the factory. Price and
// duration are fixed at creation.
type SubscriptionService struct {
	Contract        common.Address `json:"contract"`
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	PriceMinorUnits *big.Int       `json:"price_minor_units"`
	DurationSeconds int64          `json:"duration_seconds"`
	Provider        common.Address `json:"provider"`
	Active          bool           `json:"active"`
	CreatedAt       int64          `json:"created_at"`
}

// SubscriptionHolding is a subscription NFT owned by the connected account,
// derived per session by querying each known service contract.
type SubscriptionHolding struct {
	Contract            common.Address `json:"contract"`
	TokenID             *big.Int       `json:"token_id"`
	ExpirationTimestamp int64          `json:"expiration_timestamp"`
	ServiceName         string         `json:"service_name"`
}

// Expired reports whether the underlying subscription has lapsed as judged
// against local time at read time.
func (h *SubscriptionHolding) Expired(now time.Time) bool {
	return h.ExpirationTimestamp <= now.Unix()
}

// MarketListing is a standing sale offer. ExpirationTimestamp is the
// underlying subscription's expiry, not a listing TTL: an expired-underlying
// listing is surfaced but not purchasable. Listings are never deleted, only
// flagged inactive, so the full set doubles as an audit trail.
type MarketListing struct {
	ListingID           common.Hash    `json:"listing_id"`
	Seller              common.Address `json:"seller"`
	Contract            common.Address `json:"contract"`
	TokenID             *big.Int       `json:"token_id"`
	PriceMinorUnits     *big.Int       `json:"price_minor_units"`
	ExpirationTimestamp int64          `json:"expiration_timestamp"`
	Active              bool           `json:"active"`
	ListedAt            int64          `json:"listed_at"`
	ServiceName         string         `json:"service_name"`
	ServiceSymbol       string         `json:"service_symbol"`
}

// Purchasable reports whether the listing can still be bought: it must be
// active and its underlying subscription must not have expired.
func (l *MarketListing) Purchasable(now time.Time) bool {
	return l.Active && l.ExpirationTimestamp > now.Unix()
}

// SubscriptionStatus is the per-service answer to "does this account hold a
// currently-valid subscription here".
type SubscriptionStatus struct {
	HasActiveSubscription bool           `json:"has_active_subscription"`
	TokenID               *big.Int       `json:"token_id,omitempty"`
	ExpirationTimestamp   int64          `json:"expiration_timestamp,omitempty"`
	ServiceName           string         `json:"service_name,omitempty"`
	ServiceContract       common.Address `json:"service_contract,omitempty"`
}

// ServiceFailure records a per-item enumeration failure. Enumeration is a
// fold that collects successes and failures separately: one malformed
// service contract must not break browsing for everyone.
type ServiceFailure struct {
	Contract common.Address `json:"contract"`
	Err      error          `json:"-"`
	Reason   string         `json:"reason"`
}
