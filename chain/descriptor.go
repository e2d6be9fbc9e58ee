package chain

import (
	"strconv"
)

// Currency describes a chain's native currency as wallets expect it.
type Currency struct {
	Name     string `json:"name" mapstructure:"name" validate:"required"`
	Symbol   string `json:"symbol" mapstructure:"symbol" validate:"required,min=2,max=6"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals" validate:"required"`
}

// Descriptor is the full description of the required chain, used both for
// comparison with the wallet's active chain and for registering the chain
// with wallets that do not know it.
type Descriptor struct {
	ID           uint64   `json:"id" mapstructure:"id" validate:"required"`
	Name         string   `json:"name" mapstructure:"name" validate:"required"`
	Currency     Currency `json:"currency" mapstructure:"currency"`
	RPCURLs      []string `json:"rpc_urls" mapstructure:"rpc_urls" validate:"min=1,dive,url"`
	ExplorerURLs []string `json:"explorer_urls" mapstructure:"explorer_urls" validate:"min=1,dive,url"`
}

// Sepolia is the default required chain.
func Sepolia() Descriptor {
	return Descriptor{
		ID:   11155111,
		Name: "Sepolia",
		Currency: Currency{
			Name:     "Sepolia Ether",
			Symbol:   "ETH",
			Decimals: 18,
		},
		RPCURLs:      []string{"https://rpc.sepolia.org"},
		ExplorerURLs: []string{"https://sepolia.etherscan.io"},
	}
}

// HexID returns the chain id as a 0x-prefixed hex quantity.
func (d Descriptor) HexID() string {
	return "0x" + strconv.FormatUint(d.ID, 16)
}

// AddChainParams is the wallet_addEthereumChain parameter object.
type AddChainParams struct {
	ChainID           string           `json:"chainId"`
	ChainName         string           `json:"chainName"`
	NativeCurrency    NativeCurrencyJS `json:"nativeCurrency"`
	RPCURLs           []string         `json:"rpcUrls"`
	BlockExplorerURLs []string         `json:"blockExplorerUrls"`
}

// NativeCurrencyJS is the nativeCurrency member of AddChainParams.
type NativeCurrencyJS struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// AddChainParams builds the registration request payload for d.
func (d Descriptor) AddChainParams() AddChainParams {
	return AddChainParams{
		ChainID:   d.HexID(),
		ChainName: d.Name,
		NativeCurrency: NativeCurrencyJS{
			Name:     d.Currency.Name,
			Symbol:   d.Currency.Symbol,
			Decimals: d.Currency.Decimals,
		},
		RPCURLs:           append([]string(nil), d.RPCURLs...),
		BlockExplorerURLs: append([]string(nil), d.ExplorerURLs...),
	}
}

// SwitchChainParams is the wallet_switchEthereumChain parameter object.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// NameFor returns the display name of id if it is the described chain,
// or a generic label otherwise.
func (d Descriptor) NameFor(id uint64) string {
	if id == d.ID {
		return d.Name
	}
	return "chain-" + strconv.FormatUint(id, 10)
}
