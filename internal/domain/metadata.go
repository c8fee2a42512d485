package domain

// TokenMetadata is a cached symbol/name/price record for a mint.
// Corresponds to the token_metadata table in PostgreSQL.
type TokenMetadata struct {
	Mint      string
	Symbol    string
	Name      string
	Price     *float64 // USD, nullable
	ImageURL  string
	Source    string // which lookup resolved it: builtin, coingecko, solanafm
	FetchedAt int64  // when metadata was fetched (unix seconds)
	CreatedAt int64  // record creation timestamp (unix seconds)
}
