package storage

import (
	"context"

	"solana-wallet-dashboard/internal/domain"
)

// TokenMetadataStore caches resolved token metadata across requests.
type TokenMetadataStore interface {
	// Upsert inserts or replaces metadata for a mint.
	Upsert(ctx context.Context, m *domain.TokenMetadata) error

	// GetByMint retrieves metadata by mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.TokenMetadata, error)
}

// TransferArchiveStore is an append-only archive of classified transfers.
type TransferArchiveStore interface {
	// InsertBatch appends a batch of archived transfers.
	InsertBatch(ctx context.Context, transfers []*domain.ArchivedTransfer) error

	// GetByWallet retrieves archived transfers for a wallet, newest first.
	GetByWallet(ctx context.Context, walletAddress string, limit int) ([]*domain.ArchivedTransfer, error)
}
