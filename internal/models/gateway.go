package models

import (
	"context"
	"math/big"

	"github.com/core-coin/go-core/v2/common"
)

// PendingTx is a confirmation handle for a submitted write. Wait blocks
// until the transaction is mined and returns nil on success, ErrReverted on
// an on-chain revert, or the underlying RPC error when confirmation could
// not be observed at all.
type PendingTx interface {
	Hash() common.Hash
	Wait(ctx context.Context) error
}

// ContractGateway is the only component that issues raw ledger calls. Reads
// are side-effect-free and safe to call concurrently; writes require the
// wallet and return a confirmation handle. The gateway never auto-chains
// approve with the dependent action: that sequencing, and its partial
// failures, belong to the orchestrator.
type ContractGateway interface {
	// EnumerateServices lists every service contract registered in the
	// factory. Per-item metadata failures are collected, not fatal.
	EnumerateServices(ctx context.Context) ([]*SubscriptionService, []*ServiceFailure, error)
	ServiceInfo(ctx context.Context, contract common.Address) (*SubscriptionService, error)
	// TokensOf returns the holdings of owner in a single service contract,
	// with each token's expiration resolved.
	TokensOf(ctx context.Context, contract, owner common.Address) ([]*SubscriptionHolding, error)
	HasValidSubscription(ctx context.Context, contract, owner common.Address) (bool, error)
	OwnerOf(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error)
	// MarketListings returns the full listing set, inactive entries
	// included; callers filter by Active for "available to buy" views.
	MarketListings(ctx context.Context) ([]*MarketListing, error)
	StableBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	StableAllowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)

	// ApproveStable grants spender exactly amount, never an unbounded
	// allowance.
	ApproveStable(ctx context.Context, from, spender common.Address, amount *big.Int) (PendingTx, error)
	MintSubscription(ctx context.Context, from, contract common.Address) (PendingTx, error)
	// ApproveToken grants the operator transfer rights over one token.
	ApproveToken(ctx context.Context, from, contract, operator common.Address, tokenID *big.Int) (PendingTx, error)
	ListSubscription(ctx context.Context, from, contract common.Address, tokenID, price *big.Int) (PendingTx, error)
	BuyListing(ctx context.Context, from common.Address, listingID common.Hash) (PendingTx, error)
	CancelListing(ctx context.Context, from common.Address, listingID common.Hash) (PendingTx, error)
	CreateService(ctx context.Context, from common.Address, name, symbol string, price *big.Int, durationSeconds int64) (PendingTx, error)
	// RequestFaucet asks the testnet stable token for test funds; fails with
	// ErrFaucetClaimed when the address already claimed.
	RequestFaucet(ctx context.Context, from common.Address) (PendingTx, error)

	// FactoryAddress is the marketplace/spender address used for approvals.
	FactoryAddress() common.Address
	// StableDecimals is the stable token's fixed decimal precision.
	StableDecimals() int
}
