package domain

// Wallet is the per-address aggregate row. Created on first observed trade,
// mutated after every trade touching it, never deleted.
// Corresponds to the wallets table.
type Wallet struct {
	Address    string // base58 public key, primary key
	FirstSeen  int64  // unix seconds
	LastActive int64  // unix seconds, monotonically non-decreasing

	// All-time aggregates recomputed from trades and closed positions.
	TotalTrades      int
	Wins             int
	Losses           int
	TotalProfitSOL   float64
	AvgHoldTimeMins  float64

	// Trailing windows anchored at recompute time.
	Volume24h float64 // SOL bought in last 24h
	Volume7d  float64 // SOL bought in last 7d
	ROI24h    float64 // percent, closed positions exiting in last 24h
	ROI7d     float64 // percent, closed positions exiting in last 7d

	PerformanceScore float64 // [0,100]
	Tracked          bool    // at least one active alert config watches it
}

// Metrics is the slice of wallet state the scoring engine reads.
type Metrics struct {
	TotalTrades int
	Wins        int
	ROI7d       float64
	Volume7d    float64
	LastActive  int64 // unix seconds
}

// Metrics extracts the scoring inputs from a wallet row.
func (w *Wallet) Metrics() Metrics {
	return Metrics{
		TotalTrades: w.TotalTrades,
		Wins:        w.Wins,
		ROI7d:       w.ROI7d,
		Volume7d:    w.Volume7d,
		LastActive:  w.LastActive,
	}
}
