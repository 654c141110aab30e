package domain

// AlertConfig is a subscriber's watch on one wallet. Owned by the chat-bot
// collaborator; the core only reads it when matching buys.
// Corresponds to the alert_configs table.
type AlertConfig struct {
	ID          int64
	SubscriberID string // external subscriber identity (chat user id)
	Wallet      string  // wallet address being watched
	Destination string  // delivery address for the channel (chat id)
	MinScore    float64 // minimum performance score
	MinBuySOL   float64 // minimum buy amount in SOL
	Active      bool
	CreatedAt   int64 // unix seconds
}

// Alert is one enqueued notification. Created by the alert trigger with
// status queued; the delivery worker claims it into sending and moves it
// to sent or failed. Corresponds to the alert_history table.
type Alert struct {
	ID       int64
	ConfigID int64
	Wallet   string
	TradeID  int64
	QueuedAt int64 // unix seconds
	Status   string
}

// Alert delivery status constants
const (
	AlertQueued  = "queued"
	AlertSending = "sending"
	AlertSent    = "sent"
	AlertFailed  = "failed"
)
