package models

import (
	"context"
	"math/big"

	"github.com/core-coin/go-core/v2/common"
)

// WalletEventKind distinguishes the wallet's change notifications.
type WalletEventKind int

const (
	AccountsChanged WalletEventKind = iota
	ChainChanged
)

// WalletEvent is a change notification from the wallet. Accounts is set for
// AccountsChanged (may be empty: the user disconnected every account);
// ChainID is set for ChainChanged.
type WalletEvent struct {
	Kind     WalletEventKind
	Accounts []common.Address
	ChainID  *big.Int
}

// WalletSubscription is a handle on a live wallet event stream.
type WalletSubscription interface {
	Unsubscribe()
}

// TxRequest is an unsigned transaction handed to the wallet for signing and
// submission. Data is ABI-packed calldata; Value is native currency and nil
// for token operations.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// WalletProvider is the external wallet boundary: account access, network
// negotiation and transaction signing/submission all belong to the wallet,
// never to this client.
type WalletProvider interface {
	// Accounts returns the already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// RequestAccounts prompts the user for account access. Fails with
	// ErrUserRejected or ErrRequestPending.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	// SwitchChain asks the wallet to change its active network. Fails with
	// ErrUnknownChain when the wallet does not know the chain, in which case
	// the caller falls back to AddChain.
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, desc *NetworkDescriptor) error
	// SendTransaction submits tx for signing; the returned hash identifies
	// the submitted (not yet confirmed) transaction.
	SendTransaction(ctx context.Context, tx *TxRequest) (common.Hash, error)
	// SubscribeEvents opens the account/chain change stream. Implementations
	// must support re-subscription after Unsubscribe.
	SubscribeEvents() (WalletSubscription, <-chan WalletEvent, error)
}

// BalanceReader reads the native-currency balance of an address.
type BalanceReader interface {
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
}
