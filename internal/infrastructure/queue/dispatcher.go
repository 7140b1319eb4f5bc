package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Outcomes passed to the observer.
const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Dispatcher delivers product events to a sink from a fixed set of workers.
// Events are sharded by product id, so events of one product are delivered
// in the order they were enqueued.
type Dispatcher struct {
	workers []chan domain.ProductEvent
	sink    ports.ProductEventSink
	observe func(outcome string)
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// observe may be nil.
func NewDispatcher(numWorkers int, sink ports.ProductEventSink, observe func(string), log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if observe == nil {
		observe = func(string) {}
	}
	d := &Dispatcher{
		workers: make([]chan domain.ProductEvent, numWorkers),
		sink:    sink,
		observe: observe,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ProductEvent, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. Publishing keeps ctx's values but not
// its cancellation, so events queued before Shutdown are still delivered.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands e to the worker that owns its product. It never blocks: when
// that worker's buffer is full, or after Shutdown, the event is dropped.
func (d *Dispatcher) Enqueue(e domain.ProductEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.observe(OutcomeDropped)
		return
	}
	select {
	case d.workers[d.shardIndex(e.ProductID)] <- e:
	default:
		d.observe(OutcomeDropped)
		d.log.Warn().Int64("product_id", e.ProductID).Str("type", string(e.Type)).Msg("event queue full, dropping event")
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered
// or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) shardIndex(productID int64) int {
	if productID < 0 {
		productID = -productID
	}
	return int(productID % int64(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ProductEvent) {
	defer d.wg.Done()
	for e := range ch {
		if err := d.sink.Publish(ctx, e); err != nil {
			d.observe(OutcomeFailed)
			d.log.Error().Err(err).
				Int64("product_id", e.ProductID).
				Str("type", string(e.Type)).
				Int("worker_id", id).
				Msg("product event publish failed")
			continue
		}
		d.observe(OutcomePublished)
	}
}
