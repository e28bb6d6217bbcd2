package bitcoin

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

// Descriptor strategy names accepted by NewStrategySet.
const (
	StrategyAddress    = "address"
	StrategyScriptHash = "scripthash"
	StrategyScript     = "script"
	StrategyOutpoint   = "outpoint"
)

type outputStrategy func(script []byte) []string

// StrategySet derives every descriptor a transaction can be matched by.
type StrategySet struct {
	names    []string
	outputs  []outputStrategy
	outpoint bool
}

// NewStrategySet builds the derivation strategies named in names, in order.
func NewStrategySet(names []string, network string) (*StrategySet, error) {
	if len(names) == 0 {
		names = []string{StrategyAddress}
	}

	set := &StrategySet{}
	var params *chaincfg.Params
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case StrategyAddress:
			if params == nil {
				p, err := ChainParams(network)
				if err != nil {
					return nil, err
				}
				params = p
			}
			set.outputs = append(set.outputs, addressDescriptors(params))
		case StrategyScriptHash:
			set.outputs = append(set.outputs, scriptHashDescriptors)
		case StrategyScript:
			set.outputs = append(set.outputs, scriptDescriptors)
		case StrategyOutpoint:
			set.outpoint = true
		default:
			return nil, fmt.Errorf("unknown descriptor strategy %q", raw)
		}
		set.names = append(set.names, name)
	}
	return set, nil
}

// Names lists the configured strategies.
func (s *StrategySet) Names() []string {
	return append([]string(nil), s.names...)
}

// Descriptors returns the distinct descriptors of tx in output order.
// Outputs whose script cannot be parsed are skipped.
// The outpoint strategy yields "txid:vout" of every spent input.
func (s *StrategySet) Descriptors(tx model.Transaction) []string {
	seen := make(map[string]struct{})
	var result []string
	add := func(d string) {
		if d == "" {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		result = append(result, d)
	}

	for _, out := range tx.Outputs {
		script, err := hex.DecodeString(out.Script)
		if err != nil || len(script) == 0 {
			continue
		}
		for _, derive := range s.outputs {
			for _, d := range derive(script) {
				add(d)
			}
		}
	}
	if s.outpoint {
		for _, in := range tx.Inputs {
			if in.PrevTxID == "" {
				continue
			}
			add(Outpoint(in.PrevTxID, in.PrevVout))
		}
	}
	return result
}

// Outpoint formats an outpoint descriptor.
func Outpoint(txid string, vout uint32) string {
	return fmt.Sprintf("%s:%d", txid, vout)
}

func addressDescriptors(params *chaincfg.Params) outputStrategy {
	return func(script []byte) []string {
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, params)
		if err != nil {
			return nil
		}
		result := make([]string, 0, len(addrs))
		for _, addr := range addrs {
			result = append(result, addr.EncodeAddress())
		}
		return result
	}
}

// scriptHashDescriptors uses the electrum convention: sha256 of the script, byte-reversed hex.
func scriptHashDescriptors(script []byte) []string {
	return []string{chainhash.HashH(script).String()}
}

func scriptDescriptors(script []byte) []string {
	return []string{hex.EncodeToString(script)}
}
