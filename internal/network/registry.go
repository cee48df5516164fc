package network

import "github.com/unisub/unisub/internal/models"

// Chain ids of the supported networks. The set is closed and known at build
// time; adding a chain means shipping a new registry.
const (
	MorphHoleskyChainID uint64 = 2810
	SepoliaChainID      uint64 = 11155111
)

// PreferredChainID is the single network the product steers users toward.
const PreferredChainID = MorphHoleskyChainID

// Descriptor looks one chain up in the built-in registry.
func Descriptor(chainID uint64) (*models.NetworkDescriptor, bool) {
	desc, ok := defaultRegistry()[chainID]
	return desc, ok
}

func defaultRegistry() map[uint64]*models.NetworkDescriptor {
	return map[uint64]*models.NetworkDescriptor{
		MorphHoleskyChainID: {
			ChainID:     MorphHoleskyChainID,
			DisplayName: "Morph Holesky Testnet",
			RPCEndpoints: []string{
				"https://rpc-quicknode-holesky.morphl2.io",
				"https://rpc-holesky.morphl2.io",
			},
			BlockExplorerURL: "https://explorer-holesky.morphl2.io",
			NativeCurrency: models.NativeCurrency{
				Name:     "ETH",
				Symbol:   "ETH",
				Decimals: 18,
			},
		},
		SepoliaChainID: {
			ChainID:     SepoliaChainID,
			DisplayName: "Sepolia Testnet",
			RPCEndpoints: []string{
				"https://sepolia.infura.io/v3/",
			},
			BlockExplorerURL: "https://sepolia.etherscan.io",
			NativeCurrency: models.NativeCurrency{
				Name:     "ETH",
				Symbol:   "ETH",
				Decimals: 18,
			},
		},
	}
}
