package tokenmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Metadata sources, recorded on resolved records and in metrics.
const (
	SourceCache     = "cache"
	SourceBuiltin   = "builtin"
	SourceCoinGecko = "coingecko"
	SourceSolanaFM  = "solanafm"
)

// ErrUnknownToken is returned when a source has no record for the mint.
var ErrUnknownToken = errors.New("unknown token")

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient queries the public CoinGecko API for Solana token metadata
// and spot prices. No API key: the free tier rate limits aggressively, so
// callers should cache results.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

// CoinGeckoOption configures a CoinGeckoClient.
type CoinGeckoOption func(*CoinGeckoClient)

// WithCoinGeckoBaseURL overrides the API base URL.
func WithCoinGeckoBaseURL(baseURL string) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCoinGeckoHTTPClient sets a custom HTTP client.
func WithCoinGeckoHTTPClient(client *http.Client) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		c.httpClient = client
	}
}

// NewCoinGeckoClient creates a CoinGecko API client.
func NewCoinGeckoClient(opts ...CoinGeckoOption) *CoinGeckoClient {
	c := &CoinGeckoClient{
		baseURL:    defaultCoinGeckoBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type coinGeckoContractResponse struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice struct {
			USD *float64 `json:"usd"`
		} `json:"current_price"`
	} `json:"market_data"`
	Image struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
	} `json:"image"`
}

// contractLookup is the decoded result of a contract metadata call.
type contractLookup struct {
	Symbol   string
	Name     string
	PriceUSD *float64
	ImageURL string
}

// TokenByContract looks up metadata for a Solana mint address.
// Returns ErrUnknownToken when CoinGecko does not list the token.
func (c *CoinGeckoClient) TokenByContract(ctx context.Context, mint string) (*contractLookup, error) {
	url := fmt.Sprintf("%s/coins/solana/contract/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko contract lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var decoded coinGeckoContractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode coingecko response: %w", err)
	}
	if decoded.Symbol == "" || decoded.Name == "" {
		return nil, ErrUnknownToken
	}

	image := decoded.Image.Small
	if image == "" {
		image = decoded.Image.Thumb
	}

	return &contractLookup{
		Symbol:   strings.ToUpper(decoded.Symbol),
		Name:     decoded.Name,
		PriceUSD: decoded.MarketData.CurrentPrice.USD,
		ImageURL: image,
	}, nil
}

// SolPriceUSD returns the current SOL spot price in USD.
func (c *CoinGeckoClient) SolPriceUSD(ctx context.Context) (float64, error) {
	url := c.baseURL + "/simple/price?ids=solana&vs_currencies=usd"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("coingecko price lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var decoded map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decode coingecko response: %w", err)
	}

	price, ok := decoded["solana"]["usd"]
	if !ok {
		return 0, fmt.Errorf("coingecko response missing solana usd price")
	}
	return price, nil
}
