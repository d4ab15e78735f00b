package config

// Network is one entry of the endpoint allow-list.
type Network struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	ChainID     int64  `yaml:"chain_id" json:"chain_id" validate:"gte=0"`
	RPCURL      string `yaml:"rpc_url" json:"rpc_url" validate:"required,url"`
	ExplorerURL string `yaml:"explorer_url" json:"explorer_url,omitempty" validate:"omitempty,url"`
}

// DefaultNetworks is the allow-list used when the config file has none.
// All endpoints are public and keyless.
func DefaultNetworks() []Network {
	return []Network{
		{Name: "ethereum", ChainID: 1, RPCURL: "https://ethereum-rpc.publicnode.com", ExplorerURL: "https://etherscan.io"},
		{Name: "sepolia", ChainID: 11155111, RPCURL: "https://ethereum-sepolia-rpc.publicnode.com", ExplorerURL: "https://sepolia.etherscan.io"},
		{Name: "holesky", ChainID: 17000, RPCURL: "https://ethereum-holesky-rpc.publicnode.com", ExplorerURL: "https://holesky.etherscan.io"},
		{Name: "bsc", ChainID: 56, RPCURL: "https://bsc-dataseed.bnbchain.org", ExplorerURL: "https://bscscan.com"},
		{Name: "polygon", ChainID: 137, RPCURL: "https://polygon-rpc.com", ExplorerURL: "https://polygonscan.com"},
		{Name: "arbitrum", ChainID: 42161, RPCURL: "https://arb1.arbitrum.io/rpc", ExplorerURL: "https://arbiscan.io"},
		{Name: "optimism", ChainID: 10, RPCURL: "https://mainnet.optimism.io", ExplorerURL: "https://optimistic.etherscan.io"},
		{Name: "base", ChainID: 8453, RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org"},
	}
}

// TxURL links to the transaction on the network's block explorer.
func (n Network) TxURL(txHash string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return n.ExplorerURL + "/tx/" + txHash
}
