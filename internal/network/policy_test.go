package network

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/core-coin/go-core/v2/common"
	"github.com/stretchr/testify/assert"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

// fakeProvider is a scriptable wallet provider for switch negotiation tests.
type fakeProvider struct {
	switchErr error
	addErr    error

	switchCalls []*big.Int
	addCalls    []*models.NetworkDescriptor
}

func (f *fakeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return nil, nil
}

func (f *fakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return nil, nil
}

func (f *fakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(int64(PreferredChainID)), nil
}

func (f *fakeProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	f.switchCalls = append(f.switchCalls, chainID)
	return f.switchErr
}

func (f *fakeProvider) AddChain(ctx context.Context, network *models.NetworkDescriptor) error {
	f.addCalls = append(f.addCalls, network)
	return f.addErr
}

func (f *fakeProvider) SendTransaction(ctx context.Context, req *models.TxRequest) (common.Hash, error) {
	return common.Hash{}, nil
}

func (f *fakeProvider) SubscribeEvents() (models.WalletSubscription, <-chan models.WalletEvent, error) {
	return nil, nil, nil
}

func TestRegistryLookups(t *testing.T) {
	policy := NewPolicy(logger.NewNop())

	assert.True(t, policy.IsSupported(MorphHoleskyChainID))
	assert.True(t, policy.IsSupported(SepoliaChainID))
	assert.False(t, policy.IsSupported(999))

	desc, err := policy.Descriptor(MorphHoleskyChainID)
	assert.NoError(t, err)
	assert.Equal(t, MorphHoleskyChainID, desc.ChainID)
	assert.NotEmpty(t, desc.RPCEndpoints)

	_, err = policy.Descriptor(999)
	assert.ErrorIs(t, err, models.ErrChainUnsupported)

	assert.Equal(t, PreferredChainID, policy.Preferred().ChainID)
	assert.Len(t, policy.Supported(), 2)
}

func TestSwitchToSuccess(t *testing.T) {
	policy := NewPolicy(logger.NewNop())
	provider := &fakeProvider{}

	err := policy.SwitchTo(context.Background(), provider, MorphHoleskyChainID)
	assert.NoError(t, err)
	assert.Len(t, provider.switchCalls, 1)
	assert.Equal(t, int64(MorphHoleskyChainID), provider.switchCalls[0].Int64())
	assert.Empty(t, provider.addCalls)
}

func TestSwitchToUnsupportedChain(t *testing.T) {
	policy := NewPolicy(logger.NewNop())
	provider := &fakeProvider{}

	// Chains outside the registry are refused locally, without a prompt
	err := policy.SwitchTo(context.Background(), provider, 999)
	assert.ErrorIs(t, err, models.ErrChainUnsupported)
	assert.Empty(t, provider.switchCalls)
}

func TestSwitchToAddsUnknownChain(t *testing.T) {
	policy := NewPolicy(logger.NewNop())
	provider := &fakeProvider{switchErr: models.ErrUnknownChain}

	err := policy.SwitchTo(context.Background(), provider, MorphHoleskyChainID)
	assert.NoError(t, err)
	assert.Len(t, provider.addCalls, 1)
	assert.Equal(t, MorphHoleskyChainID, provider.addCalls[0].ChainID)
}

func TestSwitchToAddChainRejected(t *testing.T) {
	policy := NewPolicy(logger.NewNop())

	// User rejection of the add prompt passes through unchanged
	provider := &fakeProvider{switchErr: models.ErrUnknownChain, addErr: models.ErrUserRejected}
	err := policy.SwitchTo(context.Background(), provider, MorphHoleskyChainID)
	assert.ErrorIs(t, err, models.ErrUserRejected)

	// Any other add failure is classified
	provider = &fakeProvider{switchErr: models.ErrUnknownChain, addErr: errors.New("bridge offline")}
	err = policy.SwitchTo(context.Background(), provider, MorphHoleskyChainID)
	assert.ErrorIs(t, err, models.ErrAddChainFailed)
}

func TestSwitchToClassification(t *testing.T) {
	policy := NewPolicy(logger.NewNop())

	provider := &fakeProvider{switchErr: models.ErrUserRejected}
	err := policy.SwitchTo(context.Background(), provider, SepoliaChainID)
	assert.ErrorIs(t, err, models.ErrUserRejected)
	assert.Empty(t, provider.addCalls)

	provider = &fakeProvider{switchErr: errors.New("bridge offline")}
	err = policy.SwitchTo(context.Background(), provider, SepoliaChainID)
	assert.ErrorIs(t, err, models.ErrSwitchFailed)
}
