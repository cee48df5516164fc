package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/common/hexutil"
	"github.com/core-coin/go-core/v2/rpc"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

const (
	// Provider error codes defined by EIP-1193 and EIP-3085.
	codeUserRejected   = 4001
	codeUnknownChain   = 4902
	codeRequestPending = -32002

	// eventPollInterval drives account and chain change detection for
	// providers that expose no push channel.
	eventPollInterval = 2 * time.Second
)

// RemoteProvider talks JSON-RPC to a browser wallet bridge. The wallet keeps
// custody of keys: this side only requests accounts, chain operations and
// transaction submission, and maps the provider's error codes onto the
// package sentinels.
type RemoteProvider struct {
	logger *logger.Logger
	client *rpc.Client
}

func NewRemoteProvider(url string, log *logger.Logger) (*RemoteProvider, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the wallet service: %w", err)
	}
	return &RemoteProvider{logger: log, client: client}, nil
}

func (p *RemoteProvider) Close() {
	p.client.Close()
}

// classify maps provider error codes onto sentinels so callers can branch
// with errors.Is instead of parsing messages.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var coded rpc.Error
	if errors.As(err, &coded) {
		switch coded.ErrorCode() {
		case codeUserRejected:
			return fmt.Errorf("%w: %v", models.ErrUserRejected, err)
		case codeRequestPending:
			return fmt.Errorf("%w: %v", models.ErrRequestPending, err)
		case codeUnknownChain:
			return fmt.Errorf("%w: %v", models.ErrUnknownChain, err)
		}
	}
	return err
}

func (p *RemoteProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

// RequestAccounts prompts the wallet for access. A rejection comes back as
// ErrUserRejected, a prompt that is already open as ErrRequestPending.
func (p *RemoteProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

func (p *RemoteProvider) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := p.client.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return nil, classify(err)
	}
	return (*big.Int)(&result), nil
}

type switchChainArg struct {
	ChainID string `json:"chainId"`
}

func (p *RemoteProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	arg := switchChainArg{ChainID: hexutil.EncodeBig(chainID)}
	return classify(p.client.CallContext(ctx, nil, "wallet_switchEthereumChain", arg))
}

type addChainCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type addChainArg struct {
	ChainID           string           `json:"chainId"`
	ChainName         string           `json:"chainName"`
	RPCURLs           []string         `json:"rpcUrls"`
	BlockExplorerURLs []string         `json:"blockExplorerUrls,omitempty"`
	NativeCurrency    addChainCurrency `json:"nativeCurrency"`
}

func (p *RemoteProvider) AddChain(ctx context.Context, network *models.NetworkDescriptor) error {
	arg := addChainArg{
		ChainID:   hexutil.EncodeBig(new(big.Int).SetUint64(network.ChainID)),
		ChainName: network.DisplayName,
		RPCURLs:   network.RPCEndpoints,
		NativeCurrency: addChainCurrency{
			Name:     network.NativeCurrency.Name,
			Symbol:   network.NativeCurrency.Symbol,
			Decimals: network.NativeCurrency.Decimals,
		},
	}
	if network.BlockExplorerURL != "" {
		arg.BlockExplorerURLs = []string{network.BlockExplorerURL}
	}
	return classify(p.client.CallContext(ctx, nil, "wallet_addEthereumChain", arg))
}

type sendTxArg struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

// SendTransaction asks the wallet to sign and broadcast. The returned hash
// identifies the submission; confirmation is the caller's business.
func (p *RemoteProvider) SendTransaction(ctx context.Context, req *models.TxRequest) (common.Hash, error) {
	arg := sendTxArg{
		From: req.From,
		Data: req.Data,
	}
	to := req.To
	arg.To = &to
	if req.Value != nil {
		arg.Value = (*hexutil.Big)(req.Value)
	}
	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, classify(err)
	}
	return hash, nil
}

type remoteSubscription struct {
	stop chan struct{}
	once sync.Once
}

func (s *remoteSubscription) Unsubscribe() {
	s.once.Do(func() { close(s.stop) })
}

// SubscribeEvents polls the provider for account and chain changes and
// forwards them as events. The channel closes when Unsubscribe is called.
func (p *RemoteProvider) SubscribeEvents() (models.WalletSubscription, <-chan models.WalletEvent, error) {
	sub := &remoteSubscription{stop: make(chan struct{})}
	events := make(chan models.WalletEvent, 8)

	go func() {
		defer close(events)

		var lastAccounts []common.Address
		var lastChain *big.Int
		primed := false
		ticker := time.NewTicker(eventPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-sub.stop:
				return
			case <-ticker.C:
			}

			ctx, cancel := context.WithTimeout(context.Background(), eventPollInterval)
			accounts, accErr := p.Accounts(ctx)
			chainID, chainErr := p.ChainID(ctx)
			cancel()
			if accErr != nil || chainErr != nil {
				p.logger.Debug("Wallet poll failed ", "accounts error ", accErr, " chain error ", chainErr)
				continue
			}

			// The first poll seeds the baseline without emitting, so that
			// subscribing does not replay the current state as a change.
			if !primed {
				primed = true
				lastAccounts = accounts
				lastChain = chainID
				continue
			}

			if !sameAccounts(lastAccounts, accounts) {
				lastAccounts = accounts
				select {
				case events <- models.WalletEvent{Kind: models.AccountsChanged, Accounts: accounts}:
				case <-sub.stop:
					return
				}
			}
			if lastChain.Cmp(chainID) != 0 {
				lastChain = chainID
				select {
				case events <- models.WalletEvent{Kind: models.ChainChanged, ChainID: chainID}:
				case <-sub.stop:
					return
				}
			}
		}
	}()

	return sub, events, nil
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
