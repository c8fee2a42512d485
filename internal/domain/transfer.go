package domain

// Direction of a classified transfer relative to the wallet.
type Direction string

const (
	// DirectionSent is a wallet→vault transfer.
	DirectionSent Direction = "sent"
	// DirectionReceived is a vault→wallet transfer.
	DirectionReceived Direction = "received"
)

// Transfer is one classified wallet↔vault token transfer. Value object:
// created once by classification, never mutated.
type Transfer struct {
	Signature string    `json:"signature"`
	Timestamp int64     `json:"timestamp"` // blockTime, or capture time when the node does not know
	Direction Direction `json:"type"`
	Amount    float64   `json:"amount"` // ui units, always positive
	From      string    `json:"from"`
	To        string    `json:"to"`
	BlockTime *int64    `json:"blockTime"`
}

// ArchivedTransfer is a Transfer annotated with its reconciliation context,
// as written to the transfer archive.
type ArchivedTransfer struct {
	WalletAddress string
	VaultAddress  string
	Mint          string
	Signature     string
	Direction     Direction
	Amount        float64
	BlockTime     *int64
	ArchivedAt    int64 // Unix seconds
}
