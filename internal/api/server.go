// Package api exposes read-only HTTP endpoints over the tracker state.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	lbcache "smart-money-tracker/internal/cache/redis"
	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/observability"
	"smart-money-tracker/internal/storage"
)

const (
	// leaderboardMinTrades filters out wallets without enough history to rank.
	leaderboardMinTrades = 5
	defaultLimit         = 20
	maxLimit             = 100
	recentTradeLimit     = 50
)

// Server serves the JSON API.
type Server struct {
	ledger storage.Ledger
	cache  *lbcache.LeaderboardCache // optional, nil disables caching
	logger *log.Logger
}

// NewServer creates a Server. cache may be nil.
func NewServer(ledger storage.Ledger, cache *lbcache.LeaderboardCache, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{ledger: ledger, cache: cache, logger: logger}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/wallets/", s.handleWallet)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.Handle("/metrics", observability.Handler())
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// LeaderboardEntry is one row of the leaderboard response.
type LeaderboardEntry struct {
	Address        string  `json:"address"`
	Score          float64 `json:"score"`
	TotalTrades    int     `json:"total_trades"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"win_rate"`
	TotalProfitSOL float64 `json:"total_profit_sol"`
	ROI7d          float64 `json:"roi_7d"`
	Volume7d       float64 `json:"volume_7d"`
	LastActive     int64   `json:"last_active"`
	Tracked        bool    `json:"tracked"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	wallets, err := s.leaderboard(r.Context(), limit)
	if err != nil {
		s.logger.Printf("ERROR leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	entries := make([]LeaderboardEntry, 0, len(wallets))
	for _, wl := range wallets {
		entries = append(entries, toEntry(wl))
	}
	writeJSON(w, map[string]any{"leaderboard": entries})
}

// leaderboard reads through the cache when one is configured. Cache errors
// degrade to a direct store read.
func (s *Server) leaderboard(ctx context.Context, limit int) ([]*domain.Wallet, error) {
	if s.cache != nil {
		wallets, err := s.cache.Get(ctx, leaderboardMinTrades, limit)
		if err == nil {
			return wallets, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("WARN leaderboard cache read: %v", err)
		}
	}

	wallets, err := s.ledger.Wallets().Leaderboard(ctx, leaderboardMinTrades, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardMinTrades, limit, wallets); err != nil {
			s.logger.Printf("WARN leaderboard cache write: %v", err)
		}
	}
	return wallets, nil
}

// WalletResponse is the /api/wallets/{address} payload.
type WalletResponse struct {
	LeaderboardEntry
	FirstSeen       int64             `json:"first_seen"`
	AvgHoldTimeMins float64           `json:"avg_hold_time_mins"`
	Volume24h       float64           `json:"volume_24h"`
	ROI24h          float64           `json:"roi_24h"`
	RecentTrades    []TradeResponse   `json:"recent_trades"`
	OpenPositions   []PositionSummary `json:"open_positions"`
}

// TradeResponse is one trade in the wallet detail payload.
type TradeResponse struct {
	Token       string  `json:"token"`
	TokenSymbol string  `json:"token_symbol,omitempty"`
	Action      string  `json:"action"`
	AmountSOL   float64 `json:"amount_sol"`
	Timestamp   int64   `json:"timestamp"`
	Signature   string  `json:"signature"`
}

// PositionSummary is one open position in the wallet detail payload.
type PositionSummary struct {
	Token          string  `json:"token"`
	EntryAmountSOL float64 `json:"entry_amount_sol"`
	EntryTimestamp int64   `json:"entry_timestamp"`
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimPrefix(r.URL.Path, "/api/wallets/")
	if address == "" || strings.Contains(address, "/") {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	wallet, err := s.ledger.Wallets().Get(r.Context(), address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "wallet not found")
			return
		}
		s.logger.Printf("ERROR wallet %s: %v", address, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	trades, err := s.ledger.Trades().Recent(r.Context(), address, recentTradeLimit)
	if err != nil {
		s.logger.Printf("ERROR wallet trades %s: %v", address, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	positions, err := s.ledger.Positions().GetByWallet(r.Context(), address)
	if err != nil {
		s.logger.Printf("ERROR wallet positions %s: %v", address, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := WalletResponse{
		LeaderboardEntry: toEntry(wallet),
		FirstSeen:        wallet.FirstSeen,
		AvgHoldTimeMins:  wallet.AvgHoldTimeMins,
		Volume24h:        wallet.Volume24h,
		ROI24h:           wallet.ROI24h,
		RecentTrades:     make([]TradeResponse, 0, len(trades)),
		OpenPositions:    make([]PositionSummary, 0),
	}
	for _, t := range trades {
		resp.RecentTrades = append(resp.RecentTrades, TradeResponse{
			Token:       t.Token,
			TokenSymbol: t.TokenSymbol,
			Action:      t.Action,
			AmountSOL:   t.AmountSOL,
			Timestamp:   t.Timestamp,
			Signature:   t.Signature,
		})
	}
	for _, p := range positions {
		if p.Closed() {
			continue
		}
		resp.OpenPositions = append(resp.OpenPositions, PositionSummary{
			Token:          p.Token,
			EntryAmountSOL: p.EntryAmountSOL,
			EntryTimestamp: p.EntryTimestamp,
		})
	}
	writeJSON(w, resp)
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	Wallets      int `json:"wallets"`
	Trades       int `json:"trades"`
	AlertsQueued int `json:"alerts_queued"`
	AlertsSent   int `json:"alerts_sent"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.ledger.Wallets().Count(r.Context())
	if err != nil {
		s.logger.Printf("ERROR stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	trades, err := s.ledger.Trades().Count(r.Context())
	if err != nil {
		s.logger.Printf("ERROR stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	queued, err := s.ledger.Alerts().CountByStatus(r.Context(), domain.AlertQueued)
	if err != nil {
		s.logger.Printf("ERROR stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sent, err := s.ledger.Alerts().CountByStatus(r.Context(), domain.AlertSent)
	if err != nil {
		s.logger.Printf("ERROR stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, StatsResponse{
		Wallets:      wallets,
		Trades:       trades,
		AlertsQueued: queued,
		AlertsSent:   sent,
	})
}

func toEntry(w *domain.Wallet) LeaderboardEntry {
	winRate := 0.0
	if w.TotalTrades > 0 {
		winRate = float64(w.Wins) / float64(w.TotalTrades) * 100
	}
	return LeaderboardEntry{
		Address:        w.Address,
		Score:          w.PerformanceScore,
		TotalTrades:    w.TotalTrades,
		Wins:           w.Wins,
		Losses:         w.Losses,
		WinRate:        winRate,
		TotalProfitSOL: w.TotalProfitSOL,
		ROI7d:          w.ROI7d,
		Volume7d:       w.Volume7d,
		LastActive:     w.LastActive,
		Tracked:        w.Tracked,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
