package bitcoin

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/pkg/safe"
)

// SDKDecoder decodes BSV transactions, which may exceed the size limits enforced by btcd.
type SDKDecoder struct{}

// NewSDKDecoder returns a decoder backed by the BSV SDK.
func NewSDKDecoder() *SDKDecoder {
	return &SDKDecoder{}
}

// Decode parses raw transaction bytes.
func (d *SDKDecoder) Decode(raw []byte) (model.Transaction, error) {
	if len(raw) == 0 {
		return model.Transaction{}, errors.New("empty transaction")
	}

	parsed, err := transaction.NewTransactionFromBytes(raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse transaction: %w", err)
	}

	tx := model.Transaction{
		Hash:     parsed.TxID().String(),
		Version:  parsed.Version,
		LockTime: parsed.LockTime,
		Inputs:   make([]model.TransactionInput, 0, len(parsed.Inputs)),
		Outputs:  make([]model.TransactionOutput, 0, len(parsed.Outputs)),
		Raw:      hex.EncodeToString(raw),
	}
	for _, in := range parsed.Inputs {
		input := model.TransactionInput{
			PrevVout: in.SourceTxOutIndex,
			Sequence: in.SequenceNumber,
			Script:   scriptHex(in.UnlockingScript),
		}
		if in.SourceTXID != nil {
			input.PrevTxID = in.SourceTXID.String()
		}
		tx.Inputs = append(tx.Inputs, input)
	}
	for idx, out := range parsed.Outputs {
		index, err := safe.Uint32(idx)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("tx %s output index: %w", tx.Hash, err)
		}
		tx.Outputs = append(tx.Outputs, model.TransactionOutput{
			Index:    index,
			Satoshis: out.Satoshis,
			Script:   scriptHex(out.LockingScript),
		})
	}
	return tx, nil
}

func scriptHex(s *script.Script) string {
	if s == nil {
		return ""
	}
	return hex.EncodeToString(s.Bytes())
}
