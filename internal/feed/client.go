// Package feed streams raw token-launch trade events from the upstream
// WebSocket data feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/observability"
)

// Config configures feed client behavior.
type Config struct {
	// Endpoint is the WebSocket URL of the data feed.
	Endpoint string
	// Methods are the subscription methods sent after connecting
	// (e.g. "subscribeNewToken", "subscribeTokenTrade").
	Methods []string
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default feed configuration.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:          endpoint,
		Methods:           []string{"subscribeNewToken", "subscribeTokenTrade"},
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Client maintains a subscription to the feed, reconnecting with exponential
// backoff. Decoded messages go to the channel passed to Run; malformed
// frames are skipped.
type Client struct {
	config Config
	logger *log.Logger
}

// NewClient creates a Client. Call Run to start streaming.
func NewClient(config Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{config: config, logger: logger}
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Keys   []string `json:"keys,omitempty"`
}

// Run streams messages into out until ctx is cancelled. It owns the
// connection lifecycle; a dropped connection retries forever with capped
// exponential backoff. Sends to out block, so a slow consumer applies
// backpressure to the socket rather than dropping events.
func (c *Client) Run(ctx context.Context, out chan<- domain.RawTrade) error {
	delay := c.config.ReconnectDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.logger.Printf("WARN feed dial failed: %v (retrying in %s)", err, delay)
			observability.RecordFeedReconnect()
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = backoff(delay, c.config.MaxReconnectDelay)
			continue
		}

		c.logger.Printf("feed connected to %s", c.config.Endpoint)
		delay = c.config.ReconnectDelay

		err = c.readLoop(ctx, conn, out)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Printf("WARN feed connection lost: %v (reconnecting in %s)", err, delay)
		observability.RecordFeedReconnect()
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = backoff(delay, c.config.MaxReconnectDelay)
	}
}

// dial connects and sends the subscription requests.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.config.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	for _, method := range c.config.Methods {
		conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		if err := conn.WriteJSON(subscribeRequest{Method: method}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("write subscribe %s: %w", method, err)
		}
	}
	return conn, nil
}

// readLoop reads frames until the connection fails or ctx is cancelled.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- domain.RawTrade) error {
	for {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		observability.RecordFeedMessage()

		raw, ok := Decode(message)
		if !ok {
			continue
		}

		select {
		case out <- raw:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Decode parses one feed frame into a RawTrade. Frames without a signature
// (subscription acks, status messages) are skipped.
func Decode(message []byte) (domain.RawTrade, bool) {
	var raw domain.RawTrade
	if err := json.Unmarshal(message, &raw); err != nil {
		return domain.RawTrade{}, false
	}
	if raw.Signature == "" {
		return domain.RawTrade{}, false
	}
	return raw, true
}

func backoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
