package bitcoin

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/pkg/safe"
)

// WireDecoder decodes transactions with the btcd wire format, including segwit.
type WireDecoder struct{}

// NewWireDecoder returns a decoder for BTC-family serialization.
func NewWireDecoder() *WireDecoder {
	return &WireDecoder{}
}

// Decode parses raw transaction bytes.
func (d *WireDecoder) Decode(raw []byte) (model.Transaction, error) {
	if len(raw) == 0 {
		return model.Transaction{}, errors.New("empty transaction")
	}

	msg := wire.NewMsgTx(wire.TxVersion)
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return model.Transaction{}, fmt.Errorf("deserialize transaction: %w", err)
	}

	version, err := safe.Uint32(msg.Version)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction version: %w", err)
	}

	tx := model.Transaction{
		Hash:     msg.TxHash().String(),
		Version:  version,
		LockTime: msg.LockTime,
		Inputs:   make([]model.TransactionInput, 0, len(msg.TxIn)),
		Outputs:  make([]model.TransactionOutput, 0, len(msg.TxOut)),
		Raw:      hex.EncodeToString(raw),
	}
	for _, in := range msg.TxIn {
		tx.Inputs = append(tx.Inputs, model.TransactionInput{
			PrevTxID: in.PreviousOutPoint.Hash.String(),
			PrevVout: in.PreviousOutPoint.Index,
			Sequence: in.Sequence,
			Script:   hex.EncodeToString(in.SignatureScript),
		})
	}
	for idx, out := range msg.TxOut {
		index, err := safe.Uint32(idx)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("tx %s output index: %w", tx.Hash, err)
		}
		value, err := safe.Uint64(out.Value)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("tx %s output %d value: %w", tx.Hash, idx, err)
		}
		tx.Outputs = append(tx.Outputs, model.TransactionOutput{
			Index:    index,
			Satoshis: value,
			Script:   hex.EncodeToString(out.PkScript),
		})
	}
	return tx, nil
}
