package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/core-coin/go-core/v2"
	"github.com/core-coin/go-core/v2/accounts/abi"
	"github.com/core-coin/go-core/v2/accounts/abi/bind"
	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"
	"github.com/core-coin/go-core/v2/xcbclient"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

const (
	// callTimeout bounds every read against the node.
	callTimeout = 10 * time.Second
	// receiptPollInterval is how often a pending transaction is checked for
	// a receipt while waiting for confirmation.
	receiptPollInterval = 3 * time.Second
)

// Gateway is the typed facade over the factory, subscription-NFT and
// stable-token contracts. Reads go straight to the node; writes are packed
// here and submitted through the wallet, which owns signing.
type Gateway struct {
	logger *logger.Logger
	wallet models.WalletProvider
	client *xcbclient.Client

	factoryAddr    common.Address
	stableAddr     common.Address
	stableDecimals int

	factoryABI abi.ABI
	subABI     abi.ABI
	stableABI  abi.ABI

	factory *bind.BoundContract
	stable  *bind.BoundContract
}

func New(rpcURL string, factoryAddr, stableAddr common.Address, stableDecimals int, wallet models.WalletProvider, log *logger.Logger) (*Gateway, error) {
	client, err := xcbclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the RPC server: %w", err)
	}

	factoryABI, err := abi.JSON(strings.NewReader(FactoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}
	subABI, err := abi.JSON(strings.NewReader(SubscriptionABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse subscription ABI: %w", err)
	}
	stableABI, err := abi.JSON(strings.NewReader(StableTokenABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stable token ABI: %w", err)
	}

	return &Gateway{
		logger:         log,
		wallet:         wallet,
		client:         client,
		factoryAddr:    factoryAddr,
		stableAddr:     stableAddr,
		stableDecimals: stableDecimals,
		factoryABI:     factoryABI,
		subABI:         subABI,
		stableABI:      stableABI,
		factory:        bind.NewBoundContract(factoryAddr, factoryABI, client, client, client),
		stable:         bind.NewBoundContract(stableAddr, stableABI, client, client, client),
	}, nil
}

func (g *Gateway) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *Gateway) FactoryAddress() common.Address {
	return g.factoryAddr
}

func (g *Gateway) StableDecimals() int {
	return g.stableDecimals
}

// subscription builds a binding for one service contract.
func (g *Gateway) subscription(addr common.Address) *bind.BoundContract {
	return bind.NewBoundContract(addr, g.subABI, g.client, g.client, g.client)
}

func (g *Gateway) call(ctx context.Context, contract *bind.BoundContract, results *[]interface{}, method string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return contract.Call(&bind.CallOpts{Context: ctx}, results, method, args...)
}

// EnumerateServices lists every registered service contract. A single
// malformed entry must not break browsing: per-item metadata failures are
// logged and collected separately from the successes.
func (g *Gateway) EnumerateServices(ctx context.Context) ([]*models.SubscriptionService, []*models.ServiceFailure, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.factory, &results, "getAllCollections"); err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate service contracts: %w", err)
	}
	addrs, err := asAddressSlice(results, 0)
	if err != nil {
		return nil, nil, err
	}

	services := make([]*models.SubscriptionService, 0, len(addrs))
	var failures []*models.ServiceFailure
	for _, addr := range addrs {
		svc, err := g.ServiceInfo(ctx, addr)
		if err != nil {
			g.logger.Warn("Skipping service contract ", "contract ", addr.Hex(), " error ", err)
			failures = append(failures, &models.ServiceFailure{Contract: addr, Err: err, Reason: err.Error()})
			continue
		}
		services = append(services, svc)
	}
	return services, failures, nil
}

// ServiceInfo reads one service's metadata from the factory record and the
// service contract itself.
func (g *Gateway) ServiceInfo(ctx context.Context, contract common.Address) (*models.SubscriptionService, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.factory, &results, "getCollectionInfo", contract); err != nil {
		return nil, fmt.Errorf("failed to get collection info for %s: %w", contract.Hex(), err)
	}
	info, err := asCollectionInfo(results, 0)
	if err != nil {
		return nil, err
	}

	sub := g.subscription(contract)
	results = []interface{}{}
	if err := g.call(ctx, sub, &results, "getContractInfo"); err != nil {
		return nil, fmt.Errorf("failed to get contract info for %s: %w", contract.Hex(), err)
	}
	name, err := asString(results, 0)
	if err != nil {
		return nil, err
	}
	price, err := asBigInt(results, 1)
	if err != nil {
		return nil, err
	}
	duration, err := asBigInt(results, 2)
	if err != nil {
		return nil, err
	}

	return &models.SubscriptionService{
		Contract:        contract,
		Name:            name,
		Symbol:          info.Symbol,
		PriceMinorUnits: price,
		DurationSeconds: duration.Int64(),
		Provider:        info.Owner,
		Active:          info.IsActive,
		CreatedAt:       info.CreatedAt.Int64(),
	}, nil
}

// TokensOf returns the owner's holdings in one service contract, with each
// token's expiration resolved.
func (g *Gateway) TokensOf(ctx context.Context, contract, owner common.Address) ([]*models.SubscriptionHolding, error) {
	sub := g.subscription(contract)

	results := []interface{}{}
	if err := g.call(ctx, sub, &results, "getUserTokens", owner); err != nil {
		return nil, fmt.Errorf("failed to get tokens of %s in %s: %w", owner.Hex(), contract.Hex(), err)
	}
	tokenIDs, err := asBigIntSlice(results, 0)
	if err != nil {
		return nil, err
	}
	if len(tokenIDs) == 0 {
		return nil, nil
	}

	results = []interface{}{}
	serviceName := ""
	if err := g.call(ctx, sub, &results, "name"); err == nil {
		serviceName, _ = asString(results, 0)
	}

	holdings := make([]*models.SubscriptionHolding, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		results = []interface{}{}
		if err := g.call(ctx, sub, &results, "getExpiryTime", tokenID); err != nil {
			return nil, fmt.Errorf("failed to get expiry time of token %s: %w", tokenID, err)
		}
		expiry, err := asBigInt(results, 0)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, &models.SubscriptionHolding{
			Contract:            contract,
			TokenID:             tokenID,
			ExpirationTimestamp: expiry.Int64(),
			ServiceName:         serviceName,
		})
	}
	return holdings, nil
}

func (g *Gateway) HasValidSubscription(ctx context.Context, contract, owner common.Address) (bool, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.subscription(contract), &results, "hasValidSubscription", owner); err != nil {
		return false, fmt.Errorf("failed to check subscription of %s in %s: %w", owner.Hex(), contract.Hex(), err)
	}
	return asBool(results, 0)
}

func (g *Gateway) OwnerOf(ctx context.Context, contract common.Address, tokenID *big.Int) (common.Address, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.subscription(contract), &results, "ownerOf", tokenID); err != nil {
		return common.Address{}, fmt.Errorf("failed to get owner of token %s: %w", tokenID, err)
	}
	return asAddress(results, 0)
}

// MarketListings returns the full listing set, inactive entries included.
// Service name lookups are best-effort: a metadata failure leaves the names
// empty instead of dropping the listing.
func (g *Gateway) MarketListings(ctx context.Context) ([]*models.MarketListing, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.factory, &results, "getMarketListings"); err != nil {
		return nil, fmt.Errorf("failed to get market listings: %w", err)
	}
	raw, err := asListings(results, 0)
	if err != nil {
		return nil, err
	}

	listings := make([]*models.MarketListing, 0, len(raw))
	for _, entry := range raw {
		listing := &models.MarketListing{
			ListingID:           common.Hash(entry.ListingId),
			Seller:              entry.Seller,
			Contract:            entry.Collection,
			TokenID:             entry.TokenId,
			PriceMinorUnits:     entry.Price,
			ExpirationTimestamp: entry.ExpiryTime.Int64(),
			Active:              entry.IsActive,
			ListedAt:            entry.ListedAt.Int64(),
		}

		sub := g.subscription(entry.Collection)
		nameResults := []interface{}{}
		if err := g.call(ctx, sub, &nameResults, "name"); err == nil {
			listing.ServiceName, _ = asString(nameResults, 0)
		} else {
			g.logger.Warn("Failed to resolve listing service name ", "contract ", entry.Collection.Hex(), " error ", err)
		}
		nameResults = []interface{}{}
		if err := g.call(ctx, sub, &nameResults, "symbol"); err == nil {
			listing.ServiceSymbol, _ = asString(nameResults, 0)
		}

		listings = append(listings, listing)
	}
	return listings, nil
}

func (g *Gateway) StableBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.stable, &results, "balanceOf", owner); err != nil {
		return nil, fmt.Errorf("failed to get stable token balance: %w", err)
	}
	return asBigInt(results, 0)
}

func (g *Gateway) StableAllowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	results := []interface{}{}
	if err := g.call(ctx, g.stable, &results, "allowance", owner, spender); err != nil {
		return nil, fmt.Errorf("failed to get stable token allowance: %w", err)
	}
	return asBigInt(results, 0)
}

func (g *Gateway) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	balance, err := g.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance: %w", err)
	}
	return balance, nil
}

// submit packs a contract call and hands it to the wallet for signing and
// submission.
func (g *Gateway) submit(ctx context.Context, from, to common.Address, contractABI abi.ABI, method string, args ...interface{}) (models.PendingTx, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	hash, err := g.wallet.SendTransaction(ctx, &models.TxRequest{From: from, To: to, Data: data})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Transaction submitted ", "method ", method, " tx ", hash.Hex())
	return &pendingTx{hash: hash, client: g.client}, nil
}

// ApproveStable grants spender exactly amount. Unbounded approvals are
// deliberately not supported.
func (g *Gateway) ApproveStable(ctx context.Context, from, spender common.Address, amount *big.Int) (models.PendingTx, error) {
	return g.submit(ctx, from, g.stableAddr, g.stableABI, "approve", spender, amount)
}

func (g *Gateway) MintSubscription(ctx context.Context, from, contract common.Address) (models.PendingTx, error) {
	return g.submit(ctx, from, contract, g.subABI, "mintSubscription")
}

func (g *Gateway) ApproveToken(ctx context.Context, from, contract, operator common.Address, tokenID *big.Int) (models.PendingTx, error) {
	return g.submit(ctx, from, contract, g.subABI, "approve", operator, tokenID)
}

func (g *Gateway) ListSubscription(ctx context.Context, from, contract common.Address, tokenID, price *big.Int) (models.PendingTx, error) {
	return g.submit(ctx, from, g.factoryAddr, g.factoryABI, "listSubscription", contract, tokenID, price)
}

func (g *Gateway) BuyListing(ctx context.Context, from common.Address, listingID common.Hash) (models.PendingTx, error) {
	return g.submit(ctx, from, g.factoryAddr, g.factoryABI, "buySubscription", [32]byte(listingID))
}

func (g *Gateway) CancelListing(ctx context.Context, from common.Address, listingID common.Hash) (models.PendingTx, error) {
	return g.submit(ctx, from, g.factoryAddr, g.factoryABI, "cancelListing", [32]byte(listingID))
}

func (g *Gateway) CreateService(ctx context.Context, from common.Address, name, symbol string, price *big.Int, durationSeconds int64) (models.PendingTx, error) {
	return g.submit(ctx, from, g.factoryAddr, g.factoryABI, "createSubscriptionCollection", name, symbol, price, big.NewInt(durationSeconds))
}

// RequestFaucet asks the testnet stable token for test funds. Wallets often
// reject the submission during estimation when the address has already
// claimed; that condition is surfaced as ErrFaucetClaimed.
func (g *Gateway) RequestFaucet(ctx context.Context, from common.Address) (models.PendingTx, error) {
	tx, err := g.submit(ctx, from, g.stableAddr, g.stableABI, "faucet", from)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "claim") {
			return nil, fmt.Errorf("%w: %v", models.ErrFaucetClaimed, err)
		}
		return nil, err
	}
	return tx, nil
}

// pendingTx is the confirmation handle for a submitted write. Wait polls
// for the receipt; a mined-but-reverted transaction reports ErrReverted,
// distinguishable from a confirmation that could not be observed at all.
type pendingTx struct {
	hash   common.Hash
	client *xcbclient.Client
}

func (p *pendingTx) Hash() common.Hash {
	return p.hash
}

func (p *pendingTx) Wait(ctx context.Context) error {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := p.client.TransactionReceipt(ctx, p.hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return nil
			}
			return models.ErrReverted
		case !errors.Is(err, core.NotFound):
			return fmt.Errorf("failed to get transaction receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
