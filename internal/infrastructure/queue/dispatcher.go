package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
	"github.com/focoalerta/reports-api/internal/infrastructure/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher records status changes asynchronously. Changes are sharded by
// report id so that the history of a single report is written in order.
type Dispatcher struct {
	workers []chan domain.StatusChange
	service ports.AuditService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.StatusChange, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StatusChange, channelBuffer)
	}
	return d
}

// Start launches the workers. They drain their queues and exit once ctx is
// cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands a change to the worker owning its report. It never blocks
// the request path: when the worker queue is full the change is dropped.
func (d *Dispatcher) Publish(change domain.StatusChange) {
	idx := d.shardIndex(change.ReportID)
	select {
	case d.workers[idx] <- change:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Int64("report_id", change.ReportID).
			Str("to", string(change.To)).
			Int("worker_id", idx).
			Msg("audit queue full, status change dropped")
	}
}

// shardIndex maps a report id deterministically to a worker index.
func (d *Dispatcher) shardIndex(reportID int64) int {
	n := int64(len(d.workers))
	idx := reportID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StatusChange) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case change := <-ch:
			if ctx.Err() != nil {
				d.drain(id, ch, change)
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.record(ctx, id, change)
		}
	}
}

// drain records pending and whatever is still queued after shutdown was
// requested, on a fresh context.
func (d *Dispatcher) drain(id int, ch <-chan domain.StatusChange, pending ...domain.StatusChange) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, change := range pending {
		d.record(ctx, id, change)
	}
	for {
		select {
		case change := <-ch:
			d.record(ctx, id, change)
		default:
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, change domain.StatusChange) {
	start := time.Now()
	err := d.service.Record(ctx, change)
	metrics.AuditProcessingDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Int64("report_id", change.ReportID).
			Int("worker_id", id).
			Msg("status change recording failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("recorded").Inc()
}
