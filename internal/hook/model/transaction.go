package model

// EventSource tells which upstream stream produced a transaction event.
type EventSource string

var (
	SourceMempool EventSource = "mempool"
	SourceBlock   EventSource = "block"
)

// BlockRef locates a transaction inside a mined block.
type BlockRef struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash,omitempty"`
	Index  uint64 `json:"index"`
}

// TxEvent is a single transaction observed on the upstream source.
// When Raw is empty the payload was too large to inline and must be fetched from RawURL.
type TxEvent struct {
	Source EventSource
	TxID   string
	Raw    []byte
	RawURL string
	Block  *BlockRef
}

// BlockEvent groups every filtered transaction of one mined block.
type BlockEvent struct {
	Height       uint64
	Hash         string
	Transactions []TxEvent
}

// Transaction is the decoded form delivered to callback endpoints.
type Transaction struct {
	Hash     string              `json:"hash"`
	Version  uint32              `json:"version"`
	LockTime uint32              `json:"lock_time"`
	Inputs   []TransactionInput  `json:"inputs"`
	Outputs  []TransactionOutput `json:"outputs"`
	Raw      string              `json:"raw,omitempty"`
	Source   EventSource         `json:"source,omitempty"`
	Block    *BlockRef           `json:"block,omitempty"`
}

// TransactionInput references a previous output.
type TransactionInput struct {
	PrevTxID string `json:"prev_txid"`
	PrevVout uint32 `json:"prev_vout"`
	Sequence uint32 `json:"sequence"`
	Script   string `json:"script"`
}

// TransactionOutput is a single output with its locking script in hex.
type TransactionOutput struct {
	Index    uint32 `json:"index"`
	Satoshis uint64 `json:"satoshis"`
	Script   string `json:"script"`
}
