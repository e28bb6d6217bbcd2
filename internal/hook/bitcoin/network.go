// Package bitcoin decodes raw transactions and derives output descriptors from locking scripts.
package bitcoin

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// ChainParams resolves the address encoding parameters of a network name.
// BSV shares Bitcoin's mainnet address prefixes.
func ChainParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "main", "mainnet", "bitcoin", "bsv":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3", "bsv-testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}
