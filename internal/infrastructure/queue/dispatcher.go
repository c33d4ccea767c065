package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/newmedia/membership-api/internal/api/metrics"
	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
	processTimeout = 5 * time.Second
)

// Dispatcher fans audit events out to a fixed set of workers, sharded by
// subject so events about one identifier are written in order.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	service ports.EventService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.EventRecorder = (*Dispatcher)(nil)

// NewDispatcher creates numWorkers workers with buffer slots each.
// Non-positive values fall back to the defaults.
func NewDispatcher(numWorkers, buffer int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, buffer)
	}
	return d
}

// Start launches the workers. When ctx is cancelled each worker drains what
// is already queued and exits; Wait blocks until all of them have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an event without blocking. A full shard drops the event.
func (d *Dispatcher) Record(event domain.AuthEvent) {
	idx := d.shardIndex(event.Subject)
	select {
	case d.workers[idx] <- event:
		metrics.AuthEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuthEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("auth event dropped, queue full")
	}
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			metrics.AuthEventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(context.WithoutCancel(ctx), id, event)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.AuthEvent) {
	for {
		select {
		case event := <-ch:
			d.process(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AuthEvent) {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	if err := d.service.Process(ctx, event); err != nil {
		d.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("auth event processing failed")
	}
}
