package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeAccount subscribes to lamports changes of an account.
	// The returned cancel func unsubscribes and closes the channel.
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, func(), error)

	// Close closes the WebSocket connection.
	Close() error
}

// AccountNotification is one accountSubscribe update.
type AccountNotification struct {
	Pubkey   string
	Lamports uint64
	Slot     int64
}
