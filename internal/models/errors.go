package models

import "errors"

// Error taxonomy. Classification happens at the component that can tell the
// cases apart (wallet provider for user-facing wallet errors, gateway for
// ledger errors, orchestrator for preconditions); everyone else matches with
// errors.Is.
var (
	// Environment errors: user-actionable, not retryable by software.
	ErrWalletNotFound = errors.New("wallet provider not available")

	// User-declined errors: recoverable, no state change.
	ErrUserRejected   = errors.New("user rejected the wallet request")
	ErrRequestPending = errors.New("wallet request already pending")

	// Network negotiation errors.
	ErrUnknownChain     = errors.New("chain unknown to the wallet")
	ErrChainUnsupported = errors.New("chain not in the supported registry")
	ErrAddChainFailed   = errors.New("wallet refused to add the chain")
	ErrSwitchFailed     = errors.New("wallet failed to switch chain")

	// Precondition errors: detected locally, before any wallet prompt.
	ErrNotConnected        = errors.New("wallet is not connected")
	ErrInsufficientBalance = errors.New("insufficient stable-token balance")
	ErrNotTokenOwner       = errors.New("caller does not own the token")
	ErrNotSeller           = errors.New("caller is not the listing's seller")
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingInactive     = errors.New("listing is no longer active")
	ErrListingExpired      = errors.New("listing's underlying subscription has expired")
	ErrAlreadySubscribed   = errors.New("account already holds an active subscription for this service")
	ErrInvalidAmount       = errors.New("invalid amount")

	// Ledger rejection errors: detected only after submission.
	ErrReverted      = errors.New("transaction reverted on-chain")
	ErrFaucetClaimed = errors.New("faucet already claimed for this address")

	// Gateway boundary errors.
	ErrBadResult = errors.New("malformed contract call result")
)
