package network

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/pkg/logger"
)

// Policy holds the closed set of supported networks and negotiates the
// wallet onto one of them. It never switches silently: SwitchTo is only
// invoked after a user-visible prompt in the view layer.
type Policy struct {
	logger    *logger.Logger
	registry  map[uint64]*models.NetworkDescriptor
	preferred uint64
}

func NewPolicy(logger *logger.Logger) *Policy {
	return &Policy{
		logger:    logger,
		registry:  defaultRegistry(),
		preferred: PreferredChainID,
	}
}

// IsSupported is a pure lookup against the static registry.
func (p *Policy) IsSupported(chainID uint64) bool {
	_, ok := p.registry[chainID]
	return ok
}

// Descriptor returns the registry entry for chainID.
func (p *Policy) Descriptor(chainID uint64) (*models.NetworkDescriptor, error) {
	desc, ok := p.registry[chainID]
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", chainID, models.ErrChainUnsupported)
	}
	return desc, nil
}

// Preferred returns the descriptor of the preferred default network.
func (p *Policy) Preferred() *models.NetworkDescriptor {
	return p.registry[p.preferred]
}

// Supported returns every registry entry, for presentation.
func (p *Policy) Supported() []*models.NetworkDescriptor {
	out := make([]*models.NetworkDescriptor, 0, len(p.registry))
	for _, desc := range p.registry {
		out = append(out, desc)
	}
	return out
}

// SwitchTo asks the wallet to switch to chainID. When the wallet does not
// know the chain it falls back to an add-chain request with the full
// descriptor; a successful add implies the switch. Failures are classified
// as ErrUserRejected, ErrAddChainFailed or ErrSwitchFailed.
func (p *Policy) SwitchTo(ctx context.Context, provider models.WalletProvider, chainID uint64) error {
	desc, err := p.Descriptor(chainID)
	if err != nil {
		return err
	}

	err = provider.SwitchChain(ctx, new(big.Int).SetUint64(chainID))
	if err == nil {
		p.logger.Info("Switched network ", "chain ", desc.DisplayName)
		return nil
	}

	switch {
	case errors.Is(err, models.ErrUnknownChain):
		p.logger.Debug("Chain unknown to wallet, requesting add ", "chain ", desc.DisplayName)
		if addErr := provider.AddChain(ctx, desc); addErr != nil {
			if errors.Is(addErr, models.ErrUserRejected) {
				return addErr
			}
			return fmt.Errorf("%w: %v", models.ErrAddChainFailed, addErr)
		}
		p.logger.Info("Added and switched network ", "chain ", desc.DisplayName)
		return nil
	case errors.Is(err, models.ErrUserRejected):
		return err
	default:
		return fmt.Errorf("%w: %v", models.ErrSwitchFailed, err)
	}
}
