package ledger

import "math/big"

// DefaultNetwork is used when a chain ID has no known symbolic name.
const DefaultNetwork = "localhost"

// networkNames maps chain IDs to the symbolic network names that select
// deployment records. Read-only at runtime.
var networkNames = map[int64]string{
	1:     "mainnet",
	3:     "ropsten",
	4:     "rinkeby",
	5:     "goerli",
	42:    "kovan",
	1337:  "localhost",
	31337: "hardhat",
}

// NetworkName resolves a chain ID to its symbolic network name, falling
// back to DefaultNetwork for unknown chains.
func NetworkName(chainID *big.Int) string {
	if chainID == nil {
		return DefaultNetwork
	}
	if name, ok := networkNames[chainID.Int64()]; ok {
		return name
	}
	return DefaultNetwork
}
