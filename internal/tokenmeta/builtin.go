package tokenmeta

import "solana-wallet-dashboard/internal/domain"

const tokenListAssetBase = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/"

type builtinToken struct {
	Symbol string
	Name   string
}

// builtinTokens covers the common mainnet mints so the hot path skips
// external lookups entirely.
var builtinTokens = map[string]builtinToken{
	"So11111111111111111111111111111111111111112":  {Symbol: "SOL", Name: "Solana"},
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {Symbol: "USDC", Name: "USD Coin"},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {Symbol: "USDT", Name: "Tether USD"},
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {Symbol: "BONK", Name: "Bonk"},
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  {Symbol: "mSOL", Name: "Marinade SOL"},
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs": {Symbol: "ETH", Name: "Ether"},
	"A9mUU4qviSctJVPJdBJWkb28deg915LYJKrzQ19ji3FM": {Symbol: "USDCet", Name: "USD Coin (Wormhole)"},
	"5XZw2LKTyrfvfiskJ78AMpackRjPcyCif1WhUsPDuVqQ": {Symbol: "WBTC", Name: "Wrapped Bitcoin"},
	"4qQeZ5LwSz6HuupUu8jCtgXyW1mYQcNbFAW1sWZp89HL": {Symbol: "CAKE", Name: "PancakeSwap"},
}

// lookupBuiltin resolves a mint against the builtin table.
func lookupBuiltin(mint string) (*domain.TokenMetadata, bool) {
	token, ok := builtinTokens[mint]
	if !ok {
		return nil, false
	}
	return &domain.TokenMetadata{
		Mint:     mint,
		Symbol:   token.Symbol,
		Name:     token.Name,
		ImageURL: tokenListAssetBase + mint + "/logo.png",
		Source:   SourceBuiltin,
	}, true
}
