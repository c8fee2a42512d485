// Package portfolio builds a wallet's holdings view: fungible tokens,
// liquidity pool tokens, and NFT-backed concentrated-liquidity positions,
// enriched with display metadata and USD values.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/solana"
	"solana-wallet-dashboard/internal/tokenmeta"
)

var (
	// ErrInvalidAddress indicates a syntactically invalid wallet address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUpstream indicates the RPC data source failed.
	ErrUpstream = errors.New("upstream rpc failure")
)

// Snapshot is one wallet's portfolio view.
type Snapshot struct {
	LiquidityPositions []domain.LiquidityPosition
	RegularTokens      []domain.TokenHolding
	TotalValueUSD      float64
	Message            string
}

// Service resolves wallet portfolios. Safe for concurrent use.
type Service struct {
	rpc      solana.RPCClient
	resolver *tokenmeta.Resolver
	logger   *log.Logger

	lpTokenMints map[string]struct{}
	positionNFTs map[string]*domain.PositionData
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a portfolio Service. The resolver may be nil, in which
// case holdings carry no display metadata.
func NewService(rpc solana.RPCClient, resolver *tokenmeta.Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		rpc:          rpc,
		resolver:     resolver,
		logger:       log.Default(),
		lpTokenMints: knownLPTokenMints,
		positionNFTs: knownPositionNFTs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot builds the portfolio view for a wallet.
func (s *Service) Snapshot(ctx context.Context, owner string) (*Snapshot, error) {
	if err := solana.ValidatePubkey(owner); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	accounts, err := s.rpc.GetTokenAccountsByOwner(ctx, owner, solana.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: token accounts: %v", ErrUpstream, err)
	}

	var (
		lpHoldings  []domain.TokenHolding
		fungible    []domain.TokenHolding
		nftMints    []string
		seenNFTMint = make(map[string]struct{})
	)
	for _, acc := range accounts {
		if isNFT(acc) || s.isPositionNFT(acc.Mint) {
			if _, dup := seenNFTMint[acc.Mint]; !dup {
				seenNFTMint[acc.Mint] = struct{}{}
				nftMints = append(nftMints, acc.Mint)
			}
			continue
		}
		if acc.UIAmount <= 0 {
			continue
		}

		holding := domain.TokenHolding{
			Mint:           acc.Mint,
			Balance:        acc.Amount,
			Decimals:       acc.Decimals,
			UIAmount:       acc.UIAmount,
			AccountAddress: acc.Pubkey,
		}
		if _, isLP := s.lpTokenMints[acc.Mint]; isLP {
			holding.IsLiquidityPool = true
			lpHoldings = append(lpHoldings, holding)
		} else {
			fungible = append(fungible, holding)
		}
	}

	// Known position NFTs may live in accounts the owner scan missed, for
	// example after a token account migration. Probe them directly.
	for mint := range s.positionNFTs {
		if _, found := seenNFTMint[mint]; found {
			continue
		}
		info, err := s.rpc.GetAccountInfo(ctx, mint)
		if err != nil {
			s.logger.Printf("probe position nft %s: %v", mint, err)
			continue
		}
		if info != nil {
			seenNFTMint[mint] = struct{}{}
			nftMints = append(nftMints, mint)
		}
	}

	s.enrichHoldings(ctx, fungible)

	snapshot := &Snapshot{
		LiquidityPositions: s.buildPositions(lpHoldings, nftMints),
		RegularTokens:      fungible,
	}
	snapshot.TotalValueUSD = totalValueUSD(snapshot)

	if len(snapshot.LiquidityPositions) == 0 {
		snapshot.Message = "no liquidity pool positions found"
	} else {
		snapshot.Message = fmt.Sprintf("found %d liquidity pool positions", len(snapshot.LiquidityPositions))
	}
	return snapshot, nil
}

// isNFT reports whether a token account looks like an NFT holding.
func isNFT(acc solana.TokenAccount) bool {
	return acc.Decimals == 0 && acc.Amount == "1"
}

func (s *Service) isPositionNFT(mint string) bool {
	_, ok := s.positionNFTs[mint]
	return ok
}

// buildPositions combines LP token holdings with NFT-backed positions.
// NFTs without a known position record are dropped: without real position
// data there is nothing truthful to show.
func (s *Service) buildPositions(lpHoldings []domain.TokenHolding, nftMints []string) []domain.LiquidityPosition {
	positions := make([]domain.LiquidityPosition, 0, len(lpHoldings)+len(nftMints))

	for _, h := range lpHoldings {
		positions = append(positions, domain.LiquidityPosition{
			Mint:           h.Mint,
			Balance:        h.UIAmount,
			Decimals:       h.Decimals,
			UIAmount:       h.UIAmount,
			AccountAddress: h.AccountAddress,
		})
	}

	for _, mint := range nftMints {
		data, known := s.positionNFTs[mint]
		if !known {
			continue
		}
		positions = append(positions, domain.LiquidityPosition{
			Mint:           mint,
			Balance:        1,
			Decimals:       0,
			UIAmount:       1,
			AccountAddress: mint,
			IsNFTPosition:  true,
			PositionData:   data,
		})
	}

	return positions
}

// enrichHoldings attaches display metadata to holdings, concurrently and
// best-effort.
func (s *Service) enrichHoldings(ctx context.Context, holdings []domain.TokenHolding) {
	if s.resolver == nil {
		return
	}

	var wg sync.WaitGroup
	for i := range holdings {
		wg.Add(1)
		go func(h *domain.TokenHolding) {
			defer wg.Done()

			meta := s.resolver.Resolve(ctx, h.Mint)
			if meta == nil {
				return
			}
			h.TokenInfo = &domain.TokenInfo{
				Symbol: meta.Symbol,
				Name:   meta.Name,
				Price:  meta.Price,
				Image:  meta.ImageURL,
			}
		}(&holdings[i])
	}
	wg.Wait()
}

// totalValueUSD sums priced holdings and position values. Decimal
// arithmetic keeps the sum stable regardless of holding order.
func totalValueUSD(snapshot *Snapshot) float64 {
	total := decimal.Zero

	for _, h := range snapshot.RegularTokens {
		if h.TokenInfo == nil || h.TokenInfo.Price == nil {
			continue
		}
		value := decimal.NewFromFloat(*h.TokenInfo.Price).Mul(decimal.NewFromFloat(h.UIAmount))
		total = total.Add(value)
	}

	for _, p := range snapshot.LiquidityPositions {
		if p.PositionData != nil {
			total = total.Add(decimal.NewFromFloat(p.PositionData.TotalValue))
		}
	}

	return total.InexactFloat64()
}
