package domain

// TradeEvent is a canonical trade produced by the normalizer from a raw feed
// message. It is a pure value; nothing downstream mutates it.
type TradeEvent struct {
	Wallet       string  // trader public key (base58)
	Token        string  // token mint address (base58)
	TokenName    string
	TokenSymbol  string
	Action       string  // "buy" | "sell"
	AmountSOL    float64 // SOL side of the swap
	AmountTokens float64 // token side of the swap
	Timestamp    int64   // unix seconds
	Price        float64 // SOL per token, 0 when AmountTokens is 0
	Signature    string  // transaction signature, globally unique
}

// Trade is an immutable stored trade fact.
// Corresponds to the trades table.
type Trade struct {
	ID           int64  // BIGSERIAL primary key
	Wallet       string
	Token        string
	TokenName    string
	TokenSymbol  string
	Action       string // "buy" | "sell"
	AmountSOL    float64
	AmountTokens float64
	Timestamp    int64 // unix seconds
	Price        float64
	Signature    string // unique; duplicate inserts are no-ops
	CreatedAt    int64  // record creation timestamp (unix seconds)
}

// Trade action constants
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)
