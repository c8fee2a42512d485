package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/storage"
)

const (
	testWallet = "FvwEAhmxKfeiG8SnEvq42hc6whRyY3EFYAvebMqDNDGCgxN5Z"
	testVault  = "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH"
	testMint   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestTransferArchiveStore_InsertBatchAndGetByWallet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferArchiveStore(conn)
	ctx := context.Background()

	transfers := []*domain.ArchivedTransfer{
		{
			WalletAddress: testWallet,
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     "sig-older",
			Direction:     domain.DirectionReceived,
			Amount:        3.25,
			BlockTime:     ptr(int64(1000)),
			ArchivedAt:    5000,
		},
		{
			WalletAddress: testWallet,
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     "sig-newer",
			Direction:     domain.DirectionSent,
			Amount:        10.5,
			BlockTime:     ptr(int64(2000)),
			ArchivedAt:    5000,
		},
	}

	err := store.InsertBatch(ctx, transfers)
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, testWallet, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest block time first
	assert.Equal(t, "sig-newer", got[0].Signature)
	assert.Equal(t, testWallet, got[0].WalletAddress)
	assert.Equal(t, testVault, got[0].VaultAddress)
	assert.Equal(t, testMint, got[0].Mint)
	assert.Equal(t, domain.DirectionSent, got[0].Direction)
	assert.Equal(t, 10.5, got[0].Amount)
	require.NotNil(t, got[0].BlockTime)
	assert.Equal(t, int64(2000), *got[0].BlockTime)
	assert.Equal(t, int64(5000), got[0].ArchivedAt)

	assert.Equal(t, "sig-older", got[1].Signature)
	assert.Equal(t, domain.DirectionReceived, got[1].Direction)
	assert.Equal(t, 3.25, got[1].Amount)
}

func TestTransferArchiveStore_ReinsertCollapses(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferArchiveStore(conn)
	ctx := context.Background()

	first := &domain.ArchivedTransfer{
		WalletAddress: testWallet,
		VaultAddress:  testVault,
		Mint:          testMint,
		Signature:     "sig-dup",
		Direction:     domain.DirectionSent,
		Amount:        10.0,
		BlockTime:     ptr(int64(1500)),
		ArchivedAt:    5000,
	}
	err := store.InsertBatch(ctx, []*domain.ArchivedTransfer{first})
	require.NoError(t, err)

	// Same signature archived again by a later run
	second := *first
	second.ArchivedAt = 6000
	err = store.InsertBatch(ctx, []*domain.ArchivedTransfer{&second})
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, testWallet, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sig-dup", got[0].Signature)
	assert.Equal(t, int64(6000), got[0].ArchivedAt)
}

func TestTransferArchiveStore_NilBlockTimeSortsOldest(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferArchiveStore(conn)
	ctx := context.Background()

	transfers := []*domain.ArchivedTransfer{
		{
			WalletAddress: testWallet,
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     "sig-unconfirmed",
			Direction:     domain.DirectionSent,
			Amount:        1.0,
			BlockTime:     nil,
			ArchivedAt:    5000,
		},
		{
			WalletAddress: testWallet,
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     "sig-confirmed",
			Direction:     domain.DirectionSent,
			Amount:        2.0,
			BlockTime:     ptr(int64(100)),
			ArchivedAt:    5000,
		},
	}
	err := store.InsertBatch(ctx, transfers)
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, testWallet, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sig-confirmed", got[0].Signature)
	assert.Equal(t, "sig-unconfirmed", got[1].Signature)
	assert.Nil(t, got[1].BlockTime)
}

func TestTransferArchiveStore_GetByWallet_Limit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferArchiveStore(conn)
	ctx := context.Background()

	var transfers []*domain.ArchivedTransfer
	for i := 0; i < 5; i++ {
		transfers = append(transfers, &domain.ArchivedTransfer{
			WalletAddress: testWallet,
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     string(rune('a'+i)) + "-sig",
			Direction:     domain.DirectionSent,
			Amount:        float64(i + 1),
			BlockTime:     ptr(int64(1000 * (i + 1))),
			ArchivedAt:    5000,
		})
	}
	err := store.InsertBatch(ctx, transfers)
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, testWallet, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e-sig", got[0].Signature)
	assert.Equal(t, "d-sig", got[1].Signature)
}

func TestTransferArchiveStore_GetByWallet_OtherWalletExcluded(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferArchiveStore(conn)
	ctx := context.Background()

	err := store.InsertBatch(ctx, []*domain.ArchivedTransfer{
		{
			WalletAddress: testWallet,
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     "sig-mine",
			Direction:     domain.DirectionSent,
			Amount:        1.0,
			BlockTime:     ptr(int64(1000)),
			ArchivedAt:    5000,
		},
		{
			WalletAddress: "SomeOtherWalletAddress",
			VaultAddress:  testVault,
			Mint:          testMint,
			Signature:     "sig-theirs",
			Direction:     domain.DirectionSent,
			Amount:        2.0,
			BlockTime:     ptr(int64(2000)),
			ArchivedAt:    5000,
		},
	})
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, testWallet, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sig-mine", got[0].Signature)
}

func TestTransferArchiveStore_InsertBatch_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferArchiveStore(conn)
	ctx := context.Background()

	// Empty batch is a no-op
	err := store.InsertBatch(ctx, nil)
	require.NoError(t, err)

	err = store.InsertBatch(ctx, []*domain.ArchivedTransfer{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertBatch(ctx, []*domain.ArchivedTransfer{
		{WalletAddress: testWallet, Signature: ""},
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetByWallet(ctx, "", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
