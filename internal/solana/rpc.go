package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the dashboard.
type RPCClient interface {
	// GetBalance retrieves the native balance of an address in lamports.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetTokenAccountsByOwner retrieves parsed SPL token accounts owned by an address.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccount, error)

	// GetSignaturesForAddress retrieves signatures for an address, newest first.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetTransaction retrieves a parsed transaction by signature.
	// Returns (nil, nil) if the signature does not resolve.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetAccountInfo retrieves raw account info by public key.
	// Returns (nil, nil) if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// Transaction represents a parsed Solana transaction with token balance meta.
type Transaction struct {
	Slot              int64
	Signature         string
	BlockTime         *int64 // Unix seconds, nil when the node does not know
	AccountKeys       []string
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	Err               interface{}
}

// TokenBalance is one entry of meta.preTokenBalances / meta.postTokenBalances.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	Decimals     int
	UIAmount     float64 // decoded from uiAmountString
}

// TokenAccount is one parsed SPL token account from getTokenAccountsByOwner.
type TokenAccount struct {
	Pubkey         string
	Mint           string
	Owner          string
	Decimals       int
	Amount         string // raw amount in smallest units
	UIAmount       float64
	UIAmountString string
}
