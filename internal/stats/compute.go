package stats

import "smart-money-tracker/internal/domain"

// Window lengths in seconds.
const (
	day  = int64(86400)
	week = int64(604800)
)

// Summary holds the derived wallet fields recomputed after every trade.
// Every field is overwritten on recompute; nothing is incrementally updated,
// so recomputation is idempotent and order-independent given the same rows.
type Summary struct {
	TotalTrades     int
	Wins            int
	Losses          int
	TotalProfitSOL  float64
	AvgHoldTimeMins float64
	Volume24h       float64
	Volume7d        float64
	ROI24h          float64
	ROI7d           float64
}

// Compute derives a Summary from a wallet's trades and positions. The
// windows are anchored at now, which callers set to the timestamp of the
// trade that triggered the recompute.
//
// Counting rules:
//   - total trades counts Trade rows, not positions
//   - a closed position with profit > 0 is a win; profit <= 0 is a loss
//     (zero-profit closes count as losses, not washes)
//   - volume counts buy trades only
//   - windowed ROI covers positions closed within the window
func Compute(trades []*domain.Trade, positions []*domain.Position, now int64) Summary {
	s := Summary{TotalTrades: len(trades)}

	dayAgo := now - day
	weekAgo := now - week

	for _, t := range trades {
		if t.Action != domain.ActionBuy {
			continue
		}
		if t.Timestamp >= dayAgo {
			s.Volume24h += t.AmountSOL
		}
		if t.Timestamp >= weekAgo {
			s.Volume7d += t.AmountSOL
		}
	}

	var (
		closed    int
		holdTotal int64

		dayProfit, dayEntry   float64
		weekProfit, weekEntry float64
	)
	for _, p := range positions {
		if !p.Closed() {
			continue
		}
		closed++
		holdTotal += p.HoldTimeMins
		s.TotalProfitSOL += p.ProfitSOL
		if p.ProfitSOL > 0 {
			s.Wins++
		} else {
			s.Losses++
		}

		if p.ExitTimestamp >= dayAgo {
			dayProfit += p.ProfitSOL
			dayEntry += p.EntryAmountSOL
		}
		if p.ExitTimestamp >= weekAgo {
			weekProfit += p.ProfitSOL
			weekEntry += p.EntryAmountSOL
		}
	}

	if closed > 0 {
		s.AvgHoldTimeMins = float64(holdTotal) / float64(closed)
	}
	s.ROI24h = roi(dayProfit, dayEntry)
	s.ROI7d = roi(weekProfit, weekEntry)

	return s
}

// roi returns profit/entry as a percentage, 0 when the denominator is 0.
func roi(profit, entry float64) float64 {
	if entry == 0 {
		return 0
	}
	return profit / entry * 100
}
