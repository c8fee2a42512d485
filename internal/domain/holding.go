package domain

// TokenInfo is best-effort display metadata for a token.
type TokenInfo struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Price  *float64 `json:"price"` // USD, nil when no price source resolved
	Image  string   `json:"image,omitempty"`
}

// TokenHolding is one fungible token position of a wallet.
type TokenHolding struct {
	Mint            string     `json:"mint"`
	Balance         string     `json:"balance"` // raw amount in smallest units
	Decimals        int        `json:"decimals"`
	UIAmount        float64    `json:"uiAmount"`
	AccountAddress  string     `json:"accountAddress"`
	IsLiquidityPool bool       `json:"isLiquidityPool"`
	TokenInfo       *TokenInfo `json:"tokenInfo,omitempty"`
}

// PositionData describes a concentrated-liquidity position held as an NFT.
type PositionData struct {
	Token0       string     `json:"token0,omitempty"`
	Token1       string     `json:"token1,omitempty"`
	Token0Symbol string     `json:"token0Symbol,omitempty"`
	Token1Symbol string     `json:"token1Symbol,omitempty"`
	Liquidity    string     `json:"liquidity,omitempty"`
	TickLower    int        `json:"tickLower,omitempty"`
	TickUpper    int        `json:"tickUpper,omitempty"`
	FeeBps       int        `json:"fee,omitempty"`
	PoolAddress  string     `json:"poolAddress,omitempty"`
	Token0Amount float64    `json:"token0Amount,omitempty"`
	Token1Amount float64    `json:"token1Amount,omitempty"`
	TotalValue   float64    `json:"totalValue,omitempty"`
	PriceRange   *TickRange `json:"priceRange,omitempty"`
}

// TickRange is the price range of a concentrated-liquidity position.
type TickRange struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Current float64 `json:"current"`
}

// LiquidityPosition is one detected LP position, either an LP token holding
// or an NFT-backed concentrated position.
type LiquidityPosition struct {
	Mint           string        `json:"mint"`
	Balance        float64       `json:"balance"`
	Decimals       int           `json:"decimals"`
	UIAmount       float64       `json:"uiAmount"`
	AccountAddress string        `json:"accountAddress"`
	IsNFTPosition  bool          `json:"isNftPosition"`
	PositionData   *PositionData `json:"positionData,omitempty"`
}
