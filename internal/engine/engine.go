package engine

import (
	"context"
	"hash/fnv"
	"log"
	"strconv"
	"sync"
	"time"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/observability"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Engine fans raw feed messages out to a fixed set of workers. Events are
// sharded by wallet so every wallet's trades process in arrival order while
// distinct wallets proceed in parallel.
type Engine struct {
	processor *Processor
	logger    *log.Logger
	shards    []chan domain.RawTrade
	wg        sync.WaitGroup
}

// Options for creating an Engine.
type Options struct {
	Processor *Processor
	Logger    *log.Logger
	Workers   int // number of shards, default 4
	QueueSize int // per-shard channel capacity, default 256
}

// New creates an Engine. Call Run to start the workers.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}

	shards := make([]chan domain.RawTrade, opts.Workers)
	for i := range shards {
		shards[i] = make(chan domain.RawTrade, opts.QueueSize)
	}
	return &Engine{
		processor: opts.Processor,
		logger:    opts.Logger,
		shards:    shards,
	}
}

// Run starts one goroutine per shard and consumes raw messages from in until
// the channel closes or ctx is cancelled. It blocks until all workers drain.
func (e *Engine) Run(ctx context.Context, in <-chan domain.RawTrade) {
	for i, shard := range e.shards {
		e.wg.Add(1)
		go e.worker(ctx, i, shard)
	}
	e.logger.Printf("engine started with %d workers", len(e.shards))

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return
		case raw, ok := <-in:
			if !ok {
				e.shutdown()
				return
			}
			e.Submit(ctx, raw)
		}
	}
}

// Submit routes one raw message to its wallet's shard. Blocks when the shard
// queue is full, applying backpressure to the feed.
func (e *Engine) Submit(ctx context.Context, raw domain.RawTrade) {
	shard := e.shardFor(raw.TraderPublicKey)
	select {
	case <-ctx.Done():
	case e.shards[shard] <- raw:
		observability.DefaultMetrics.ShardQueueDepth.
			WithLabelValues(strconv.Itoa(shard)).Set(float64(len(e.shards[shard])))
	}
}

// shardFor hashes a wallet address to a shard index with FNV-1a.
func (e *Engine) shardFor(wallet string) int {
	h := fnv.New32a()
	h.Write([]byte(wallet))
	return int(h.Sum32() % uint32(len(e.shards)))
}

func (e *Engine) shutdown() {
	for _, shard := range e.shards {
		close(shard)
	}
	e.wg.Wait()
	e.logger.Println("engine stopped")
}

func (e *Engine) worker(ctx context.Context, id int, in <-chan domain.RawTrade) {
	defer e.wg.Done()
	label := strconv.Itoa(id)

	for raw := range in {
		observability.DefaultMetrics.ShardQueueDepth.
			WithLabelValues(label).Set(float64(len(in)))
		e.handle(ctx, raw)
	}
}

// handle processes one event with bounded retry. Rejections and duplicates
// are terminal; only failed attempts retry, and an event that exhausts its
// attempts is dropped so one poison message cannot stall the shard.
func (e *Engine) handle(ctx context.Context, raw domain.RawTrade) {
	start := time.Now()

	var result Result
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = e.processor.Process(ctx, raw)
		if result != ResultFailed {
			break
		}
		if attempt < maxAttempts {
			observability.DefaultMetrics.EventRetries.Inc()
			e.logger.Printf("WARN attempt %d/%d failed for %s: %v", attempt, maxAttempts, raw.Signature, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryBackoff):
			}
		}
	}

	observability.RecordTradeProcessed(string(result))
	observability.DefaultMetrics.EventProcessingLatency.Observe(time.Since(start).Seconds())

	if result == ResultFailed {
		observability.DefaultMetrics.EventsDropped.Inc()
		e.logger.Printf("ERROR dropping event %s after %d attempts: %v", raw.Signature, maxAttempts, err)
	}
}
