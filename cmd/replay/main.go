// Command replay feeds a capture file of raw feed frames through the full
// processing pipeline against an isolated in-memory store, then prints the
// resulting leaderboard. One frame per line, exactly as received from the
// feed. Useful for re-scoring historical captures after a scoring or
// normalization change.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"smart-money-tracker/internal/alerting"
	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/engine"
	"smart-money-tracker/internal/feed"
	"smart-money-tracker/internal/normalizer"
	"smart-money-tracker/internal/positions"
	"smart-money-tracker/internal/scoring"
	"smart-money-tracker/internal/stats"
	"smart-money-tracker/internal/storage/memory"
)

func main() {
	captureFile := flag.String("capture", "", "Capture file, one raw feed frame per line (required)")
	topN := flag.Int("top", 20, "Leaderboard size to print")
	minTrades := flag.Int("min-trades", 3, "Minimum trades for a wallet to rank")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	if *captureFile == "" {
		logger.Fatal("--capture is required")
	}

	f, err := os.Open(*captureFile)
	if err != nil {
		logger.Fatalf("open capture: %v", err)
	}
	defer f.Close()

	ledger := memory.NewLedger()
	processor := engine.NewProcessor(
		ledger,
		normalizer.New(),
		positions.NewTracker(logger),
		stats.NewAggregator(scoring.Score),
		alerting.NewTrigger(logger),
		nil,
		logger,
	)

	counts, err := run(f, processor)
	if err != nil {
		logger.Fatalf("replay: %v", err)
	}
	logger.Printf("replayed %d frames: %d processed, %d duplicate, %d rejected, %d failed",
		counts.frames, counts.processed, counts.duplicate, counts.rejected, counts.failed)

	wallets, err := ledger.Wallets().Leaderboard(context.Background(), *minTrades, *topN)
	if err != nil {
		logger.Fatalf("leaderboard: %v", err)
	}
	report(os.Stdout, wallets, *outputJSON)
}

type replayCounts struct {
	frames    int
	processed int
	duplicate int
	rejected  int
	failed    int
}

// run decodes frames line by line and applies them in file order. Capture
// files preserve arrival order, so replays are deterministic.
func run(r io.Reader, processor *engine.Processor) (replayCounts, error) {
	var c replayCounts
	ctx := context.Background()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		c.frames++

		raw, ok := feed.Decode(line)
		if !ok {
			c.rejected++
			continue
		}
		result, _ := processor.Process(ctx, raw)
		switch result {
		case engine.ResultProcessed:
			c.processed++
		case engine.ResultDuplicate:
			c.duplicate++
		case engine.ResultRejected:
			c.rejected++
		default:
			c.failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return c, fmt.Errorf("read capture: %w", err)
	}
	return c, nil
}

type rankedWallet struct {
	Rank        int     `json:"rank"`
	Address     string  `json:"address"`
	Score       float64 `json:"score"`
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	ProfitSOL   float64 `json:"profit_sol"`
}

func report(w io.Writer, wallets []*domain.Wallet, asJSON bool) {
	ranked := make([]rankedWallet, 0, len(wallets))
	for i, wl := range wallets {
		ranked = append(ranked, rankedWallet{
			Rank:        i + 1,
			Address:     wl.Address,
			Score:       wl.PerformanceScore,
			TotalTrades: wl.TotalTrades,
			Wins:        wl.Wins,
			ProfitSOL:   wl.TotalProfitSOL,
		})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(ranked)
		return
	}

	fmt.Fprintf(w, "%-4s %-44s %8s %7s %5s %12s\n", "#", "WALLET", "SCORE", "TRADES", "WINS", "PROFIT SOL")
	for _, r := range ranked {
		fmt.Fprintf(w, "%-4d %-44s %8.1f %7d %5d %12.3f\n",
			r.Rank, r.Address, r.Score, r.TotalTrades, r.Wins, r.ProfitSOL)
	}
}
