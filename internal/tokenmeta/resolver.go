package tokenmeta

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/observability"
	"solana-wallet-dashboard/internal/storage"
)

// DefaultCacheTTL is how long a cached metadata record stays fresh.
const DefaultCacheTTL = 24 * time.Hour

// Resolver resolves token metadata for a mint through a chain of sources:
// store cache, builtin table, CoinGecko, SolanaFM. Network results are
// written back to the store. Resolution failure is not an error: an
// unknown mint resolves to nil.
type Resolver struct {
	store     storage.TokenMetadataStore
	coingecko *CoinGeckoClient
	solanafm  *SolanaFMClient
	cacheTTL  time.Duration
	logger    *log.Logger
	now       func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithCacheTTL sets how long cached records stay fresh.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cacheTTL = ttl
	}
}

// NewResolver creates a Resolver. The store may be nil, in which case
// nothing is cached across calls.
func NewResolver(store storage.TokenMetadataStore, coingecko *CoinGeckoClient, solanafm *SolanaFMClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:     store,
		coingecko: coingecko,
		solanafm:  solanafm,
		cacheTTL:  DefaultCacheTTL,
		logger:    log.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns metadata for a mint, or nil when no source knows it.
func (r *Resolver) Resolve(ctx context.Context, mint string) *domain.TokenMetadata {
	if cached := r.fromCache(ctx, mint); cached != nil {
		observability.RecordMetadataLookup(SourceCache, "hit")
		return cached
	}

	if meta, ok := lookupBuiltin(mint); ok {
		observability.RecordMetadataLookup(SourceBuiltin, "hit")
		return meta
	}

	if meta := r.fromCoinGecko(ctx, mint); meta != nil {
		r.writeBack(ctx, meta)
		return meta
	}

	if meta := r.fromSolanaFM(ctx, mint); meta != nil {
		r.writeBack(ctx, meta)
		return meta
	}

	return nil
}

func (r *Resolver) fromCache(ctx context.Context, mint string) *domain.TokenMetadata {
	if r.store == nil {
		return nil
	}

	cached, err := r.store.GetByMint(ctx, mint)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Printf("metadata cache read for %s: %v", mint, err)
		}
		return nil
	}
	if r.now().Unix()-cached.FetchedAt > int64(r.cacheTTL.Seconds()) {
		return nil
	}
	return cached
}

func (r *Resolver) fromCoinGecko(ctx context.Context, mint string) *domain.TokenMetadata {
	if r.coingecko == nil {
		return nil
	}

	lookup, err := r.coingecko.TokenByContract(ctx, mint)
	if err != nil {
		if errors.Is(err, ErrUnknownToken) {
			observability.RecordMetadataLookup(SourceCoinGecko, "miss")
		} else {
			observability.RecordMetadataLookup(SourceCoinGecko, "error")
			r.logger.Printf("coingecko lookup for %s: %v", mint, err)
		}
		return nil
	}

	observability.RecordMetadataLookup(SourceCoinGecko, "hit")
	return &domain.TokenMetadata{
		Mint:      mint,
		Symbol:    lookup.Symbol,
		Name:      lookup.Name,
		Price:     lookup.PriceUSD,
		ImageURL:  lookup.ImageURL,
		Source:    SourceCoinGecko,
		FetchedAt: r.now().Unix(),
	}
}

func (r *Resolver) fromSolanaFM(ctx context.Context, mint string) *domain.TokenMetadata {
	if r.solanafm == nil {
		return nil
	}

	record, err := r.solanafm.TokenByMint(ctx, mint)
	if err != nil {
		if errors.Is(err, ErrUnknownToken) {
			observability.RecordMetadataLookup(SourceSolanaFM, "miss")
		} else {
			observability.RecordMetadataLookup(SourceSolanaFM, "error")
			r.logger.Printf("solanafm lookup for %s: %v", mint, err)
		}
		return nil
	}

	observability.RecordMetadataLookup(SourceSolanaFM, "hit")
	return &domain.TokenMetadata{
		Mint:      mint,
		Symbol:    record.Symbol,
		Name:      record.Name,
		ImageURL:  record.ImageURL,
		Source:    SourceSolanaFM,
		FetchedAt: r.now().Unix(),
	}
}

func (r *Resolver) writeBack(ctx context.Context, meta *domain.TokenMetadata) {
	if r.store == nil {
		return
	}

	record := *meta
	record.CreatedAt = r.now().Unix()
	if err := r.store.Upsert(ctx, &record); err != nil {
		r.logger.Printf("metadata cache write for %s: %v", meta.Mint, err)
	}
}
