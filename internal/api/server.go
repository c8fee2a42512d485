// Package api is the HTTP surface of the dashboard: JSON endpoints backing
// the browser UI plus health, status and metrics.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"solana-wallet-dashboard/internal/domain"
	"solana-wallet-dashboard/internal/observability"
	"solana-wallet-dashboard/internal/portfolio"
	"solana-wallet-dashboard/internal/reconcile"
	"solana-wallet-dashboard/internal/solana"
	"solana-wallet-dashboard/internal/storage"
	"solana-wallet-dashboard/internal/tokenmeta"
)

// Server wires the domain services into HTTP handlers.
type Server struct {
	rpc        solana.RPCClient
	ws         solana.WSClient
	reconciler *reconcile.Reconciler
	portfolio  *portfolio.Service
	prices     *tokenmeta.CoinGeckoClient
	archive    storage.TransferArchiveStore
	logger     *log.Logger
	started    time.Time
}

// ServerOption configures optional Server collaborators.
type ServerOption func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithWSClient enables the live balance stream.
func WithWSClient(ws solana.WSClient) ServerOption {
	return func(s *Server) {
		s.ws = ws
	}
}

// WithPriceClient enables the SOL price endpoint.
func WithPriceClient(prices *tokenmeta.CoinGeckoClient) ServerOption {
	return func(s *Server) {
		s.prices = prices
	}
}

// WithTransferArchive enables the archived transfer history endpoint.
func WithTransferArchive(archive storage.TransferArchiveStore) ServerOption {
	return func(s *Server) {
		s.archive = archive
	}
}

// NewServer creates an API server.
func NewServer(rpc solana.RPCClient, reconciler *reconcile.Reconciler, portfolioSvc *portfolio.Service, opts ...ServerOption) *Server {
	s := &Server{
		rpc:        rpc,
		reconciler: reconciler,
		portfolio:  portfolioSvc,
		logger:     log.Default(),
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/solana/balance", s.instrument("balance", s.handleBalance))
	mux.HandleFunc("/api/solana/positions", s.instrument("positions", s.handlePositions))
	mux.HandleFunc("/api/solana/usdc-transfers", s.instrument("usdc_transfers", s.handleTransfers))
	mux.HandleFunc("/api/solana/transfer-history", s.instrument("transfer_history", s.handleTransferHistory))
	mux.HandleFunc("/api/solana/price", s.instrument("price", s.handlePrice))

	mux.HandleFunc("/ws/balance", s.handleBalanceStream)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", observability.Handler())

	return mux
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		observability.RecordHTTPRequest(route, statusClass(recorder.status), time.Since(start).Seconds())
	}
}

type balanceResponse struct {
	Lamports uint64  `json:"lamports"`
	Sol      float64 `json:"sol"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}
	if err := solana.ValidatePubkey(address); err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	lamports, err := s.rpc.GetBalance(r.Context(), address)
	if err != nil {
		s.logger.Printf("balance for %s: %v", address, err)
		writeError(w, http.StatusBadGateway, "upstream error: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Lamports: lamports,
		Sol:      float64(lamports) / float64(solana.LamportsPerSOL),
	})
}

type positionsResponse struct {
	LiquidityPositions []domain.LiquidityPosition `json:"liquidityPositions"`
	RegularTokens      []domain.TokenHolding      `json:"regularTokens"`
	TotalPositions     int                        `json:"totalPositions"`
	TotalTokens        int                        `json:"totalTokens"`
	TotalValueUSD      float64                    `json:"totalValueUsd"`
	Message            string                     `json:"message,omitempty"`
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	snapshot, err := s.portfolio.Snapshot(r.Context(), address)
	if err != nil {
		s.logger.Printf("positions for %s: %v", address, err)
		writeError(w, statusForError(err), "%v", err)
		return
	}

	positions := snapshot.LiquidityPositions
	if positions == nil {
		positions = []domain.LiquidityPosition{}
	}
	tokens := snapshot.RegularTokens
	if tokens == nil {
		tokens = []domain.TokenHolding{}
	}

	writeJSON(w, http.StatusOK, positionsResponse{
		LiquidityPositions: positions,
		RegularTokens:      tokens,
		TotalPositions:     len(positions),
		TotalTokens:        len(tokens),
		TotalValueUSD:      snapshot.TotalValueUSD,
		Message:            snapshot.Message,
	})
}

type transfersDebug struct {
	WalletUSDCAddress string `json:"walletUSDCAddress"`
	VaultUSDCAddress  string `json:"vaultUSDCAddress"`
	HasWalletAccount  bool   `json:"hasWalletAccount"`
	HasVaultAccount   bool   `json:"hasVaultAccount"`
}

type transfersResponse struct {
	Transactions     []domain.Transfer `json:"transactions"`
	TotalSentToVault float64           `json:"totalSentToVault"`
	Count            int               `json:"count"`
	Partial          bool              `json:"partial"`
	Message          string            `json:"message,omitempty"`
	Debug            transfersDebug    `json:"debug"`
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	walletAddress := query.Get("walletAddress")
	vaultAddress := query.Get("vaultAddress")
	if walletAddress == "" || vaultAddress == "" {
		writeError(w, http.StatusBadRequest, "missing walletAddress or vaultAddress")
		return
	}

	result, err := s.reconciler.Reconcile(r.Context(), walletAddress, vaultAddress)
	if err != nil {
		s.logger.Printf("reconcile %s -> %s: %v", walletAddress, vaultAddress, err)
		writeError(w, statusForError(err), "%v", err)
		return
	}

	transfers := result.Transfers
	if transfers == nil {
		transfers = []domain.Transfer{}
	}

	writeJSON(w, http.StatusOK, transfersResponse{
		Transactions:     transfers,
		TotalSentToVault: result.TotalSentToVault,
		Count:            len(transfers),
		Partial:          result.Partial,
		Message:          result.Message,
		Debug: transfersDebug{
			WalletUSDCAddress: result.WalletTokenAccount,
			VaultUSDCAddress:  result.VaultTokenAccount,
			HasWalletAccount:  result.WalletTokenAccount != "",
			HasVaultAccount:   result.VaultTokenAccount != "",
		},
	})
}

type transferHistoryResponse struct {
	Transfers []*domain.ArchivedTransfer `json:"transfers"`
	Count     int                        `json:"count"`
}

// handleTransferHistory serves previously archived transfers, so the UI can
// show history even when the RPC node is unreachable.
func (s *Server) handleTransferHistory(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "transfer archive not configured")
		return
	}

	query := r.URL.Query()
	walletAddress := query.Get("walletAddress")
	if walletAddress == "" {
		writeError(w, http.StatusBadRequest, "missing walletAddress")
		return
	}
	if err := solana.ValidatePubkey(walletAddress); err != nil {
		writeError(w, http.StatusBadRequest, "invalid walletAddress")
		return
	}

	limit := 100
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	transfers, err := s.archive.GetByWallet(r.Context(), walletAddress, limit)
	if err != nil {
		s.logger.Printf("transfer history for %s: %v", walletAddress, err)
		writeError(w, http.StatusInternalServerError, "archive read failed")
		return
	}
	if transfers == nil {
		transfers = []*domain.ArchivedTransfer{}
	}

	writeJSON(w, http.StatusOK, transferHistoryResponse{
		Transfers: transfers,
		Count:     len(transfers),
	})
}

type priceResponse struct {
	USD float64 `json:"usd"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if s.prices == nil {
		writeError(w, http.StatusNotFound, "price source not configured")
		return
	}

	price, err := s.prices.SolPriceUSD(r.Context())
	if err != nil {
		s.logger.Printf("sol price: %v", err)
		writeError(w, http.StatusBadGateway, "upstream error: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{USD: price})
}

// statusResponse is the JSON response for the /status endpoint.
type statusResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	LiveBalanceWS bool   `json:"live_balance_ws"`
	ArchiveActive bool   `json:"archive_active"`
	PriceSource   bool   `json:"price_source"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		LiveBalanceWS: s.ws != nil,
		ArchiveActive: s.archive != nil,
		PriceSource:   s.prices != nil,
	})
}
