// Package notify delivers alert messages to external channels.
package notify

import "context"

// Sender delivers a message to a destination. The destination format is
// channel-specific (for Telegram it is the chat ID).
type Sender interface {
	Send(ctx context.Context, destination, message string) error
	Name() string
}
