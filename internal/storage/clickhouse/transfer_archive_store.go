package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/storage"
)

// TransferArchiveStore implements storage.TransferArchiveStore using ClickHouse.
// The backing table is a ReplacingMergeTree keyed by
// (wallet_address, vault_address, signature): re-archiving a signature is
// absorbed on merge, and reads select FINAL.
type TransferArchiveStore struct {
	conn *Conn
}

// NewTransferArchiveStore creates a new TransferArchiveStore.
func NewTransferArchiveStore(conn *Conn) *TransferArchiveStore {
	return &TransferArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransferArchiveStore = (*TransferArchiveStore)(nil)

// InsertBatch appends a batch of archived transfers.
func (s *TransferArchiveStore) InsertBatch(ctx context.Context, transfers []*domain.ArchivedTransfer) error {
	if len(transfers) == 0 {
		return nil
	}
	for _, tr := range transfers {
		if tr == nil || tr.Signature == "" || tr.WalletAddress == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transfer_archive (
			wallet_address, vault_address, mint, signature,
			direction, amount, block_time, archived_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tr := range transfers {
		err = batch.Append(
			tr.WalletAddress, tr.VaultAddress, tr.Mint, tr.Signature,
			string(tr.Direction), tr.Amount, tr.BlockTime, tr.ArchivedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByWallet retrieves archived transfers for a wallet, newest first.
// Transfers without a block time sort oldest.
func (s *TransferArchiveStore) GetByWallet(ctx context.Context, walletAddress string, limit int) ([]*domain.ArchivedTransfer, error) {
	if walletAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT wallet_address, vault_address, mint, signature,
		       direction, amount, block_time, archived_at
		FROM transfer_archive FINAL
		WHERE wallet_address = ?
		ORDER BY coalesce(block_time, 0) DESC, signature ASC
	`
	args := []interface{}{walletAddress}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transfer archive: %w", err)
	}
	defer rows.Close()

	var result []*domain.ArchivedTransfer
	for rows.Next() {
		var (
			tr        domain.ArchivedTransfer
			direction string
		)
		err := rows.Scan(
			&tr.WalletAddress, &tr.VaultAddress, &tr.Mint, &tr.Signature,
			&direction, &tr.Amount, &tr.BlockTime, &tr.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer archive row: %w", err)
		}
		tr.Direction = domain.Direction(direction)
		result = append(result, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer archive rows: %w", err)
	}

	return result, nil
}
