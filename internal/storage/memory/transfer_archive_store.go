package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/storage"
)

// TransferArchiveStore is an in-memory implementation of storage.TransferArchiveStore.
type TransferArchiveStore struct {
	mu        sync.RWMutex
	transfers []*domain.ArchivedTransfer
	seen      map[string]struct{} // wallet|vault|signature
}

// NewTransferArchiveStore creates a new in-memory transfer archive store.
func NewTransferArchiveStore() *TransferArchiveStore {
	return &TransferArchiveStore{
		seen: make(map[string]struct{}),
	}
}

var _ storage.TransferArchiveStore = (*TransferArchiveStore)(nil)

// InsertBatch appends a batch of archived transfers. Re-archiving the same
// signature for the same wallet/vault pair is a no-op, so repeated
// reconciliation runs do not inflate the archive.
func (s *TransferArchiveStore) InsertBatch(_ context.Context, transfers []*domain.ArchivedTransfer) error {
	for _, tr := range transfers {
		if tr == nil || tr.Signature == "" || tr.WalletAddress == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tr := range transfers {
		key := tr.WalletAddress + "|" + tr.VaultAddress + "|" + tr.Signature
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}

		trCopy := *tr
		s.transfers = append(s.transfers, &trCopy)
	}
	return nil
}

// GetByWallet retrieves archived transfers for a wallet, newest first.
func (s *TransferArchiveStore) GetByWallet(_ context.Context, walletAddress string, limit int) ([]*domain.ArchivedTransfer, error) {
	if walletAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ArchivedTransfer
	for _, tr := range s.transfers {
		if tr.WalletAddress == walletAddress {
			trCopy := *tr
			result = append(result, &trCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		ti, tj := archivedBlockTime(result[i]), archivedBlockTime(result[j])
		if ti != tj {
			return ti > tj
		}
		return result[i].Signature < result[j].Signature
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func archivedBlockTime(tr *domain.ArchivedTransfer) int64 {
	if tr.BlockTime == nil {
		return 0
	}
	return *tr.BlockTime
}
