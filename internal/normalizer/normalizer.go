// Package normalizer validates raw feed messages and shapes them into
// canonical trade events. Rejection is "not applicable", not an error: the
// feed carries message types this system does not track.
package normalizer

import (
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"smart-money-tracker/internal/domain"
)

// Normalizer is a pure transform from RawTrade to TradeEvent. The only
// ambient input is the clock, used when a message carries no timestamp.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer using the real clock.
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a Normalizer with an injected clock for tests.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize shapes a raw message into a TradeEvent. The second return is
// false when the message is not a trackable trade: wrong tx type, missing or
// malformed addresses, or non-positive SOL amount.
func (n *Normalizer) Normalize(raw domain.RawTrade) (*domain.TradeEvent, bool) {
	if raw.TxType != domain.ActionBuy && raw.TxType != domain.ActionSell {
		return nil, false
	}
	if raw.Signature == "" || raw.SolAmount <= 0 {
		return nil, false
	}
	if !validTraderKey(raw.TraderPublicKey) || !validMint(raw.Mint) {
		return nil, false
	}

	// Price is informational; a zero token amount keeps the trade but zeroes
	// the price instead of dividing by zero.
	price := 0.0
	if raw.TokenAmount > 0 {
		price = raw.SolAmount / raw.TokenAmount
	}

	ts := raw.TimestampMs / 1000
	if raw.TimestampMs == 0 {
		ts = n.now().Unix()
	}

	return &domain.TradeEvent{
		Wallet:       raw.TraderPublicKey,
		Token:        raw.Mint,
		TokenName:    raw.Name,
		TokenSymbol:  raw.Symbol,
		Action:       raw.TxType,
		AmountSOL:    raw.SolAmount,
		AmountTokens: raw.TokenAmount,
		Timestamp:    ts,
		Price:        price,
		Signature:    raw.Signature,
	}, true
}

// validTraderKey checks that a trader address is a base58-encoded ed25519
// point. Wallet keys are always on the curve; program-derived addresses are
// not wallets.
func validTraderKey(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// validMint checks that a mint address decodes to 32 bytes. Mints may be
// program-derived, so no curve check here.
func validMint(addr string) bool {
	decoded, err := base58.Decode(addr)
	return err == nil && len(decoded) == 32
}
