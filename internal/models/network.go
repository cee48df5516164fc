package models

// NativeCurrency describes the chain's native asset as wallets expect it.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// NetworkDescriptor is an immutable registry entry for a supported chain.
// RPCEndpoints is ordered: the first entry is the primary node, the rest
// are fallbacks handed to the wallet on an add-chain request.
type NetworkDescriptor struct {
	ChainID          uint64         `json:"chain_id"`
	DisplayName      string         `json:"display_name"`
	RPCEndpoints     []string       `json:"rpc_endpoints"`
	BlockExplorerURL string         `json:"block_explorer_url"`
	NativeCurrency   NativeCurrency `json:"native_currency"`
}
