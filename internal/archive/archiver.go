// Package archive copies processed trades to cold storage in batches.
package archive

import (
	"context"
	"log"
	"time"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/observability"
	"smart-money-tracker/internal/storage/clickhouse"
)

// Archiver buffers trades and flushes them to ClickHouse. Archival is best
// effort and runs outside the event transaction; the archive table dedupes
// on signature, so a dropped or repeated flush never corrupts history.
type Archiver struct {
	store         *clickhouse.TradeArchiveStore
	logger        *log.Logger
	in            chan *domain.Trade
	batchSize     int
	flushInterval time.Duration
}

// NewArchiver creates an Archiver flushing every flushInterval or when
// batchSize trades accumulate, whichever comes first.
func NewArchiver(store *clickhouse.TradeArchiveStore, logger *log.Logger, batchSize int, flushInterval time.Duration) *Archiver {
	if logger == nil {
		logger = log.Default()
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	return &Archiver{
		store:         store,
		logger:        logger,
		in:            make(chan *domain.Trade, batchSize*2),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Submit queues a trade for archival. Never blocks; when the buffer is full
// the trade is skipped and picked up by a later backfill if one runs.
func (a *Archiver) Submit(t *domain.Trade) {
	select {
	case a.in <- t:
	default:
		a.logger.Printf("WARN archive buffer full, skipping trade %s", t.Signature)
	}
}

// Run flushes batches until ctx is cancelled, then drains what remains.
func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	batch := make([]*domain.Trade, 0, a.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := a.store.InsertBatch(flushCtx, batch)
		cancel()
		if err != nil {
			a.logger.Printf("ERROR archive flush of %d trades: %v", len(batch), err)
		} else {
			observability.DefaultMetrics.TradesArchived.Add(float64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// Drain the buffer before stopping.
			for {
				select {
				case t := <-a.in:
					batch = append(batch, t)
					if len(batch) >= a.batchSize {
						flush()
					}
				default:
					flush()
					a.logger.Println("archiver stopped")
					return
				}
			}
		case t := <-a.in:
			batch = append(batch, t)
			if len(batch) >= a.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
