package reconcile

import (
	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/solana"
)

// Classification tolerances, in ui units of the asset.
//
// epsilon separates a genuine balance move from parsing noise.
// deltaTolerance bounds how far the two sides of a transfer may diverge
// before the pair is rejected as coincidental unrelated moves; it absorbs
// rounding drift in ui-amount-string parsing and must stay well above
// epsilon so zero-sum transfers are still accepted.
const (
	epsilon        = 1e-6
	deltaTolerance = 1e-2
)

// accountPair is the resolved per-request context for classification.
type accountPair struct {
	WalletAddress      string
	VaultAddress       string
	Mint               string
	WalletTokenAccount string
	VaultTokenAccount  string
}

// classifyTransfer decides whether tx is a direct transfer between the
// pair's two token accounts. Pure function of the transaction content:
// it pairs the balance deltas of the two account indices and accepts only
// near-cancelling opposite moves. Returns nil when tx is not a transfer
// between the two parties. Emits at most one transfer per transaction.
func classifyTransfer(tx *solana.Transaction, pair accountPair, captureTime int64) *domain.Transfer {
	if tx == nil {
		return nil
	}

	// Both token accounts must appear among the transaction's account keys.
	walletIdx := indexOf(tx.AccountKeys, pair.WalletTokenAccount)
	vaultIdx := indexOf(tx.AccountKeys, pair.VaultTokenAccount)
	if walletIdx < 0 || vaultIdx < 0 {
		return nil
	}

	walletPre := balanceAt(tx.PreTokenBalances, walletIdx, pair.Mint)
	walletPost := balanceAt(tx.PostTokenBalances, walletIdx, pair.Mint)
	vaultPre := balanceAt(tx.PreTokenBalances, vaultIdx, pair.Mint)
	vaultPost := balanceAt(tx.PostTokenBalances, vaultIdx, pair.Mint)

	walletDelta := walletPost - walletPre
	vaultDelta := vaultPost - vaultPre

	timestamp := captureTime
	if tx.BlockTime != nil {
		timestamp = *tx.BlockTime
	}

	// Wallet decreases while vault increases by (nearly) the same amount:
	// wallet → vault.
	if walletDelta < -epsilon && vaultDelta > epsilon && abs(walletDelta+vaultDelta) < deltaTolerance {
		return &domain.Transfer{
			Signature: tx.Signature,
			Timestamp: timestamp,
			Direction: domain.DirectionSent,
			Amount:    abs(walletDelta),
			From:      pair.WalletAddress,
			To:        pair.VaultAddress,
			BlockTime: tx.BlockTime,
		}
	}

	// Mirrored condition: vault → wallet.
	if vaultDelta < -epsilon && walletDelta > epsilon && abs(vaultDelta+walletDelta) < deltaTolerance {
		return &domain.Transfer{
			Signature: tx.Signature,
			Timestamp: timestamp,
			Direction: domain.DirectionReceived,
			Amount:    abs(vaultDelta),
			From:      pair.VaultAddress,
			To:        pair.WalletAddress,
			BlockTime: tx.BlockTime,
		}
	}

	return nil
}

// balanceAt returns the ui amount of the given mint at an account index,
// or 0 when no entry exists (the account held no balance of the asset).
// First matching entry wins.
func balanceAt(balances []solana.TokenBalance, accountIndex int, mint string) float64 {
	for _, b := range balances {
		if b.AccountIndex == accountIndex && b.Mint == mint {
			return b.UIAmount
		}
	}
	return 0
}

func indexOf(keys []string, addr string) int {
	for i, k := range keys {
		if k == addr {
			return i
		}
	}
	return -1
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
