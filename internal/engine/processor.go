// Package engine runs the per-event processing pipeline.
// It coordinates: normalization → trade insert → position ledger →
// stats/score recompute → alert matching, all inside one transaction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"smart-money-tracker/internal/alerting"
	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/normalizer"
	"smart-money-tracker/internal/observability"
	"smart-money-tracker/internal/positions"
	"smart-money-tracker/internal/stats"
	"smart-money-tracker/internal/storage"
)

// Result classifies the outcome of processing one raw feed message.
type Result string

const (
	// ResultProcessed means the trade was stored and all derived state updated.
	ResultProcessed Result = "processed"
	// ResultDuplicate means the signature was seen before; nothing changed.
	ResultDuplicate Result = "duplicate"
	// ResultRejected means the message failed validation and was discarded.
	ResultRejected Result = "rejected"
	// ResultFailed means a transient error occurred; the event may be retried.
	ResultFailed Result = "failed"
)

// ArchiveSink receives committed trades for best-effort cold storage.
type ArchiveSink interface {
	Submit(t *domain.Trade)
}

// Processor executes the pipeline for a single event.
type Processor struct {
	ledger     storage.Ledger
	normalizer *normalizer.Normalizer
	tracker    *positions.Tracker
	aggregator *stats.Aggregator
	trigger    *alerting.Trigger
	archive    ArchiveSink // optional, nil disables archival
	logger     *log.Logger
}

// NewProcessor creates a Processor over the given ledger and stages.
// archive may be nil.
func NewProcessor(ledger storage.Ledger, n *normalizer.Normalizer, t *positions.Tracker, a *stats.Aggregator, trig *alerting.Trigger, archive ArchiveSink, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		ledger:     ledger,
		normalizer: n,
		tracker:    t,
		aggregator: a,
		trigger:    trig,
		archive:    archive,
		logger:     logger,
	}
}

// Process handles one raw feed message end to end. A duplicate signature
// short-circuits before any position, stats, or alert mutation; the
// transaction guarantees a crash mid-pipeline leaves no partial state.
func (p *Processor) Process(ctx context.Context, raw domain.RawTrade) (Result, error) {
	ev, ok := p.normalizer.Normalize(raw)
	if !ok {
		return ResultRejected, nil
	}

	var (
		duplicate bool
		queued    int
		outcome   positions.Outcome
		stored    *domain.Trade
	)
	err := p.ledger.RunInTx(ctx, func(ctx context.Context, tx storage.Ledger) error {
		queued = 0
		outcome = positions.NoChange
		if err := tx.Wallets().Ensure(ctx, ev.Wallet, ev.Timestamp); err != nil {
			return fmt.Errorf("ensure wallet: %w", err)
		}

		trade := &domain.Trade{
			Wallet:       ev.Wallet,
			Token:        ev.Token,
			TokenName:    ev.TokenName,
			TokenSymbol:  ev.TokenSymbol,
			Action:       ev.Action,
			AmountSOL:    ev.AmountSOL,
			AmountTokens: ev.AmountTokens,
			Timestamp:    ev.Timestamp,
			Price:        ev.Price,
			Signature:    ev.Signature,
		}
		tradeID, err := tx.Trades().Insert(ctx, trade)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				duplicate = true
				return nil
			}
			return fmt.Errorf("insert trade: %w", err)
		}
		trade.ID = tradeID
		stored = trade

		outcome, err = p.tracker.Apply(ctx, tx.Positions(), ev, tradeID)
		if err != nil {
			return fmt.Errorf("apply position: %w", err)
		}

		wallet, err := p.aggregator.Recompute(ctx, tx, ev.Wallet, ev.Timestamp)
		if err != nil {
			return fmt.Errorf("recompute stats: %w", err)
		}

		queued, err = p.trigger.Check(ctx, tx, wallet, ev, tradeID, ev.Timestamp)
		if err != nil {
			return fmt.Errorf("check alerts: %w", err)
		}
		return nil
	})
	if err != nil {
		return ResultFailed, err
	}
	if duplicate {
		return ResultDuplicate, nil
	}

	// Metrics and archival only after commit so a rolled-back attempt has
	// no side effects.
	switch outcome {
	case positions.OpenedLot:
		observability.DefaultMetrics.PositionsOpened.Inc()
	case positions.ClosedLot:
		observability.DefaultMetrics.PositionsClosed.Inc()
	}
	for i := 0; i < queued; i++ {
		observability.RecordAlertQueued()
	}
	observability.DefaultMetrics.LastEventTimestamp.Set(float64(ev.Timestamp))
	if p.archive != nil && stored != nil {
		p.archive.Submit(stored)
	}
	return ResultProcessed, nil
}
