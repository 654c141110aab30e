package domain

// Position is one open-to-close lot of a token held by a wallet, matched FIFO
// between a buy and a later sell. Created on buy, mutated exactly once
// (open → closed) on a matching sell, never deleted.
// Corresponds to the positions table.
type Position struct {
	ID          int64 // BIGSERIAL primary key
	Wallet      string
	Token       string
	TokenName   string
	TokenSymbol string

	// Entry (set on open, immutable)
	EntryTradeID      int64
	EntryTimestamp    int64 // unix seconds
	EntryPrice        float64
	EntryAmountSOL    float64
	EntryAmountTokens float64

	Status string // "open" | "closed"

	// Exit (set on close; zero values while open)
	ExitTradeID   int64
	ExitTimestamp int64 // unix seconds
	ExitPrice     float64
	ExitAmountSOL float64
	ProfitSOL     float64 // exit SOL - entry SOL
	ProfitPercent float64 // 0 when entry SOL is 0
	HoldTimeMins  int64   // floor((exit - entry) / 60)
}

// Position status constants
const (
	PositionOpen   = "open"
	PositionClosed = "closed"
)

// Closed reports whether the lot has been closed by a sell.
func (p *Position) Closed() bool {
	return p.Status == PositionClosed
}
