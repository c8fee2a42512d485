package tokenmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultSolanaFMBaseURL = "https://api.solana.fm"

// SolanaFMClient queries the SolanaFM token registry. It knows symbols and
// names for long-tail mints CoinGecko does not list, but carries no prices.
type SolanaFMClient struct {
	baseURL    string
	httpClient *http.Client
}

// SolanaFMOption configures a SolanaFMClient.
type SolanaFMOption func(*SolanaFMClient)

// WithSolanaFMBaseURL overrides the API base URL.
func WithSolanaFMBaseURL(baseURL string) SolanaFMOption {
	return func(c *SolanaFMClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithSolanaFMHTTPClient sets a custom HTTP client.
func WithSolanaFMHTTPClient(client *http.Client) SolanaFMOption {
	return func(c *SolanaFMClient) {
		c.httpClient = client
	}
}

// NewSolanaFMClient creates a SolanaFM API client.
func NewSolanaFMClient(opts ...SolanaFMOption) *SolanaFMClient {
	c := &SolanaFMClient{
		baseURL:    defaultSolanaFMBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type solanaFMTokenResponse struct {
	Result struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Image  string `json:"image"`
	} `json:"result"`
}

// tokenRecord is the decoded result of a token lookup.
type tokenRecord struct {
	Symbol   string
	Name     string
	ImageURL string
}

// TokenByMint looks up registry metadata for a mint.
// Returns ErrUnknownToken when the registry has no symbol for it.
func (c *SolanaFMClient) TokenByMint(ctx context.Context, mint string) (*tokenRecord, error) {
	url := fmt.Sprintf("%s/v0/tokens/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solanafm token lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("solanafm returned status %d", resp.StatusCode)
	}

	var decoded solanaFMTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode solanafm response: %w", err)
	}
	if decoded.Result.Symbol == "" {
		return nil, ErrUnknownToken
	}

	name := decoded.Result.Name
	if name == "" {
		name = decoded.Result.Symbol
	}

	return &tokenRecord{
		Symbol:   decoded.Result.Symbol,
		Name:     name,
		ImageURL: decoded.Result.Image,
	}, nil
}
