package provider

// JSON-RPC methods used by the client.
const (
	MethodChainID            = "eth_chainId"
	MethodRequestAccounts    = "eth_requestAccounts"
	MethodAccounts           = "eth_accounts"
	MethodSwitchChain        = "wallet_switchEthereumChain"
	MethodAddChain           = "wallet_addEthereumChain"
	MethodCall               = "eth_call"
	MethodSendTransaction    = "eth_sendTransaction"
	MethodTransactionReceipt = "eth_getTransactionReceipt"
	MethodGasPrice           = "eth_gasPrice"
	MethodBlockNumber        = "eth_blockNumber"
)

// BlockLatest is the block tag for eth_call against the head state.
const BlockLatest = "latest"

var idempotent = map[string]bool{
	MethodChainID:            true,
	MethodAccounts:           true,
	MethodCall:               true,
	MethodTransactionReceipt: true,
	MethodGasPrice:           true,
	MethodBlockNumber:        true,
}

// IsIdempotent reports whether re-sending method has no side effects.
// Wallet prompts and transaction submission are never idempotent.
func IsIdempotent(method string) bool {
	return idempotent[method]
}
