package rpc

import "github.com/kbukum/chaincounter/provider"

// Endpoint is one configured wallet bridge.
type Endpoint struct {
	// Name identifies the endpoint in logs and selection.
	Name string `yaml:"name" mapstructure:"name" json:"name" validate:"required"`
	// URL is the JSON-RPC HTTP endpoint.
	URL string `yaml:"url" mapstructure:"url" json:"url" validate:"required,url"`
	// Flags are the capability flags the endpoint advertises, e.g. "isMetaMask".
	Flags []string `yaml:"flags" mapstructure:"flags" json:"flags,omitempty"`
}

// Descriptor returns the provider descriptor for the endpoint.
func (e Endpoint) Descriptor() provider.Descriptor {
	return provider.Descriptor{Name: e.Name, Flags: append([]string(nil), e.Flags...)}
}
