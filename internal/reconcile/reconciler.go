// Package reconcile reconstructs wallet↔vault token transfer history from
// raw on-chain transaction records. Transactions carry no explicit transfer
// event for SPL tokens, only pre/post balance snapshots per account index;
// the reconciler pairs the balance deltas of the two parties' token
// accounts and keeps only near-cancelling opposite moves.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/observability"
	"solana-wallet-dashboard/internal/solana"
	"solana-wallet-dashboard/internal/storage"
)

// Top-level failures. Everything below these (single history fetch,
// single detail fetch, archive write) is recovered locally.
var (
	// ErrInvalidAddress indicates a syntactically invalid input address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUpstream indicates the RPC data source failed during account discovery.
	ErrUpstream = errors.New("upstream rpc failure")
)

// Default configuration values.
const (
	DefaultSignatureLimit = 100
	DefaultFetchTimeout   = 15 * time.Second
)

// Config configures a Reconciler.
type Config struct {
	// Mint is the fixed fungible asset to reconcile.
	Mint string
	// SignatureLimit bounds the history page fetched per token account.
	SignatureLimit int
	// FetchTimeout bounds the whole history+detail fetch phase.
	FetchTimeout time.Duration
}

// Option configures optional Reconciler collaborators.
type Option func(*Reconciler)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithArchive sets the transfer archive store. Writes are best-effort.
func WithArchive(store storage.TransferArchiveStore) Option {
	return func(r *Reconciler) {
		r.archive = store
	}
}

// Reconciler locates the wallet's and vault's token accounts for one mint
// and classifies their shared transaction history into directed transfers.
// Stateless across requests; safe for concurrent use.
type Reconciler struct {
	rpc     solana.RPCClient
	cfg     Config
	logger  *log.Logger
	archive storage.TransferArchiveStore
	now     func() time.Time
}

// New creates a Reconciler.
func New(rpc solana.RPCClient, cfg Config, opts ...Option) *Reconciler {
	if cfg.Mint == "" {
		cfg.Mint = solana.USDCMint
	}
	if cfg.SignatureLimit <= 0 {
		cfg.SignatureLimit = DefaultSignatureLimit
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	r := &Reconciler{
		rpc:    rpc,
		cfg:    cfg,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Transfers        []domain.Transfer
	TotalSentToVault float64

	// WalletTokenAccount and VaultTokenAccount echo the resolved token
	// accounts; empty when the owner holds no account for the mint.
	WalletTokenAccount string
	VaultTokenAccount  string

	// Partial is true when the fetch deadline expired before all detail
	// fetches resolved; the transfers that did classify are kept.
	Partial bool

	// Message explains an empty result.
	Message string
}

// Reconcile classifies the transfer history between a wallet and a vault.
func (r *Reconciler) Reconcile(ctx context.Context, walletAddress, vaultAddress string) (*Result, error) {
	start := r.now()

	if err := solana.ValidatePubkey(walletAddress); err != nil {
		observability.RecordReconcileRun("invalid_input", 0)
		return nil, fmt.Errorf("%w: wallet: %v", ErrInvalidAddress, err)
	}
	if err := solana.ValidatePubkey(vaultAddress); err != nil {
		observability.RecordReconcileRun("invalid_input", 0)
		return nil, fmt.Errorf("%w: vault: %v", ErrInvalidAddress, err)
	}

	// Resolve both token accounts concurrently: independent reads.
	var (
		walletAccount, vaultAccount string
		walletErr, vaultErr         error
		wg                          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		walletAccount, walletErr = r.findTokenAccount(ctx, walletAddress)
	}()
	go func() {
		defer wg.Done()
		vaultAccount, vaultErr = r.findTokenAccount(ctx, vaultAddress)
	}()
	wg.Wait()

	if walletErr != nil {
		observability.RecordReconcileRun("upstream_error", r.now().Sub(start).Seconds())
		return nil, fmt.Errorf("%w: resolve wallet token account: %v", ErrUpstream, walletErr)
	}
	if vaultErr != nil {
		observability.RecordReconcileRun("upstream_error", r.now().Sub(start).Seconds())
		return nil, fmt.Errorf("%w: resolve vault token account: %v", ErrUpstream, vaultErr)
	}

	result := &Result{
		WalletTokenAccount: walletAccount,
		VaultTokenAccount:  vaultAccount,
	}

	// A transfer between the two parties requires both token accounts to
	// exist; with either side missing classification can never succeed, so
	// return before paying for any history fetch.
	if walletAccount == "" || vaultAccount == "" {
		result.Transfers = []domain.Transfer{}
		result.Message = missingAccountMessage(walletAccount, vaultAccount)
		observability.RecordReconcileRun("no_accounts", r.now().Sub(start).Seconds())
		return result, nil
	}

	pair := accountPair{
		WalletAddress:      walletAddress,
		VaultAddress:       vaultAddress,
		Mint:               r.cfg.Mint,
		WalletTokenAccount: walletAccount,
		VaultTokenAccount:  vaultAccount,
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	// The seen-set is shared by both scans: a signature discovered via both
	// account histories is fetched and classified exactly once.
	var (
		mu         sync.Mutex
		seen       = make(map[string]struct{})
		classified []domain.Transfer
	)

	var scanWG sync.WaitGroup
	for _, tokenAccount := range []string{walletAccount, vaultAccount} {
		scanWG.Add(1)
		go func(acc string) {
			defer scanWG.Done()
			r.scanAccount(fetchCtx, acc, pair, &mu, seen, &classified)
		}(tokenAccount)
	}
	scanWG.Wait()

	result.Partial = errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
	if result.Partial {
		observability.RecordPartialRun()
	}

	result.Transfers = dedupeAndSort(classified)
	result.TotalSentToVault = totalSent(result.Transfers, vaultAddress)

	r.archiveTransfers(ctx, pair, result.Transfers)

	observability.RecordReconcileRun("success", r.now().Sub(start).Seconds())
	return result, nil
}

// findTokenAccount resolves the owner's token account for the configured
// mint. Returns "" when the owner holds none. When the owner holds several,
// the canonical associated token account is preferred; otherwise the first
// match wins.
func (r *Reconciler) findTokenAccount(ctx context.Context, owner string) (string, error) {
	accounts, err := r.rpc.GetTokenAccountsByOwner(ctx, owner, solana.TokenProgramID)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, acc := range accounts {
		if acc.Mint == r.cfg.Mint {
			matches = append(matches, acc.Pubkey)
		}
	}
	if len(matches) == 0 {
		return "", nil
	}

	if ata, err := solana.FindAssociatedTokenAddress(owner, r.cfg.Mint); err == nil {
		for _, m := range matches {
			if m == ata {
				return ata, nil
			}
		}
	}
	return matches[0], nil
}

// scanAccount fetches one account's signature page and classifies each
// unseen signature. Detail fetches for the page run concurrently; a failed
// fetch drops that signature only.
func (r *Reconciler) scanAccount(ctx context.Context, tokenAccount string, pair accountPair, mu *sync.Mutex, seen map[string]struct{}, out *[]domain.Transfer) {
	sigs, err := r.rpc.GetSignaturesForAddress(ctx, tokenAccount, &solana.SignaturesOpts{Limit: r.cfg.SignatureLimit})
	if err != nil {
		r.logger.Printf("signature history for %s: %v", tokenAccount, err)
		return
	}

	captureTime := r.now().Unix()

	var wg sync.WaitGroup
	for _, sig := range sigs {
		mu.Lock()
		if _, dup := seen[sig.Signature]; dup {
			mu.Unlock()
			continue
		}
		seen[sig.Signature] = struct{}{}
		mu.Unlock()

		observability.RecordSignatureScanned()

		wg.Add(1)
		go func(signature string) {
			defer wg.Done()

			tx, err := r.rpc.GetTransaction(ctx, signature)
			if err != nil {
				observability.RecordDetailFetchFailure()
				r.logger.Printf("fetch transaction %s: %v", signature, err)
				return
			}
			if tx == nil {
				// Signature no longer resolves; skip, don't retry.
				return
			}

			if tr := classifyTransfer(tx, pair, captureTime); tr != nil {
				observability.RecordTransferClassified(string(tr.Direction))
				mu.Lock()
				*out = append(*out, *tr)
				mu.Unlock()
			}
		}(sig.Signature)
	}
	wg.Wait()
}

// dedupeAndSort collapses transfers by signature and orders them newest
// first, treating an unknown blockTime as oldest.
func dedupeAndSort(transfers []domain.Transfer) []domain.Transfer {
	bySignature := make(map[string]domain.Transfer, len(transfers))
	for _, tr := range transfers {
		if _, exists := bySignature[tr.Signature]; !exists {
			bySignature[tr.Signature] = tr
		}
	}

	unique := make([]domain.Transfer, 0, len(bySignature))
	for _, tr := range bySignature {
		unique = append(unique, tr)
	}

	sort.Slice(unique, func(i, j int) bool {
		ti, tj := blockTimeKey(unique[i]), blockTimeKey(unique[j])
		if ti != tj {
			return ti > tj
		}
		return unique[i].Signature < unique[j].Signature
	})
	return unique
}

func blockTimeKey(tr domain.Transfer) int64 {
	if tr.BlockTime == nil {
		return 0
	}
	return *tr.BlockTime
}

// totalSent sums the amounts of wallet→vault transfers.
func totalSent(transfers []domain.Transfer, vaultAddress string) float64 {
	var total float64
	for _, tr := range transfers {
		if tr.Direction == domain.DirectionSent && tr.To == vaultAddress {
			total += tr.Amount
		}
	}
	return total
}

// archiveTransfers appends the run's transfers to the archive store.
// Best-effort: failures are logged, never surfaced.
func (r *Reconciler) archiveTransfers(ctx context.Context, pair accountPair, transfers []domain.Transfer) {
	if r.archive == nil || len(transfers) == 0 {
		return
	}

	archivedAt := r.now().Unix()
	records := make([]*domain.ArchivedTransfer, len(transfers))
	for i, tr := range transfers {
		records[i] = &domain.ArchivedTransfer{
			WalletAddress: pair.WalletAddress,
			VaultAddress:  pair.VaultAddress,
			Mint:          pair.Mint,
			Signature:     tr.Signature,
			Direction:     tr.Direction,
			Amount:        tr.Amount,
			BlockTime:     tr.BlockTime,
			ArchivedAt:    archivedAt,
		}
	}

	if err := r.archive.InsertBatch(ctx, records); err != nil {
		observability.RecordArchiveError()
		r.logger.Printf("archive transfers: %v", err)
		return
	}
	observability.RecordTransfersArchived(len(records))
}

func missingAccountMessage(walletAccount, vaultAccount string) string {
	switch {
	case walletAccount == "" && vaultAccount == "":
		return "no token accounts found for wallet or vault"
	case walletAccount == "":
		return "no token account found for wallet"
	default:
		return "no token account found for vault"
	}
}
