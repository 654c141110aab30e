// Package scoring derives the bounded [0,100] wallet performance score.
package scoring

import "smart-money-tracker/internal/domain"

// Component weights. They sum to 1.0, which bounds the score to [0,100]
// by construction since every component is clamped to [0,100] first.
const (
	winRateWeight = 0.40
	roiWeight     = 0.30
	volumeWeight  = 0.15
	recencyWeight = 0.15
)

// Saturation points for normalization.
const (
	minTrades     = 3      // below this the sample is too small to score
	roiSaturation = 10.0   // roi_7d of 1000% maps to 100
	volSaturation = 50.0   // 50 SOL weekly volume maps to 100
	daySeconds    = 86400
	weekSeconds   = 604800
)

// Score computes the performance score from wallet metrics, anchored at now
// (unix seconds). Wallets with fewer than three trades score 0 regardless of
// other metrics, so one lucky trade cannot rank a wallet.
func Score(m domain.Metrics, now int64) float64 {
	if m.TotalTrades < minTrades {
		return 0
	}

	winRate := float64(m.Wins) / float64(m.TotalTrades) * 100
	winComponent := winRate * winRateWeight

	roiComponent := clamp(m.ROI7d/roiSaturation, 0, 100) * roiWeight

	volComponent := clamp(m.Volume7d/volSaturation*100, 0, 100) * volumeWeight

	var recencyComponent float64
	switch {
	case m.LastActive >= now-daySeconds:
		recencyComponent = 100 * recencyWeight
	case m.LastActive >= now-weekSeconds:
		recencyComponent = 50 * recencyWeight
	}

	return winComponent + roiComponent + volComponent + recencyComponent
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
