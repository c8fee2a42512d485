package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"solana-wallet-dashboard/internal/observability"
	"solana-wallet-dashboard/internal/solana"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard UI is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const streamWriteTimeout = 10 * time.Second

// balanceUpdate is one frame of the live balance stream.
type balanceUpdate struct {
	Pubkey   string  `json:"pubkey"`
	Lamports uint64  `json:"lamports"`
	Sol      float64 `json:"sol"`
	Slot     int64   `json:"slot,omitempty"`
}

// handleBalanceStream upgrades the connection and forwards upstream account
// notifications for the requested address until the client disconnects.
func (s *Server) handleBalanceStream(w http.ResponseWriter, r *http.Request) {
	if s.ws == nil {
		writeError(w, http.StatusNotFound, "live balance stream not configured")
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}
	if err := solana.ValidatePubkey(address); err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	notifications, cancel, err := s.ws.SubscribeAccount(r.Context(), address)
	if err != nil {
		s.logger.Printf("subscribe balance for %s: %v", address, err)
		writeError(w, http.StatusBadGateway, "upstream subscription failed")
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade wrote its own error response.
		s.logger.Printf("upgrade balance stream: %v", err)
		return
	}
	defer conn.Close()

	observability.StreamSubscriberConnected()
	defer observability.StreamSubscriberDisconnected()

	// The browser never sends data frames; the read loop only notices the
	// close handshake (or a dead peer) and ends the stream.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Opening frame with the current balance, so the UI renders without
	// waiting for the first on-chain change.
	if lamports, err := s.rpc.GetBalance(r.Context(), address); err == nil {
		if err := s.writeUpdate(conn, balanceUpdate{
			Pubkey:   address,
			Lamports: lamports,
			Sol:      float64(lamports) / float64(solana.LamportsPerSOL),
		}); err != nil {
			return
		}
	}

	for {
		select {
		case <-clientGone:
			return
		case notification, ok := <-notifications:
			if !ok {
				return
			}
			update := balanceUpdate{
				Pubkey:   notification.Pubkey,
				Lamports: notification.Lamports,
				Sol:      float64(notification.Lamports) / float64(solana.LamportsPerSOL),
				Slot:     notification.Slot,
			}
			if err := s.writeUpdate(conn, update); err != nil {
				s.logger.Printf("write balance update for %s: %v", address, err)
				return
			}
		}
	}
}

func (s *Server) writeUpdate(conn *websocket.Conn, update balanceUpdate) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(update)
}
