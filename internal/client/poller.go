package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schugaa/schugaa/internal/metrics"
	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/sirupsen/logrus"
)

// A Result is one completed fetch cycle, delivered on the poller queue.
type Result struct {
	Reading Reading
	Err     error
	At      time.Time
}

// A Poller runs fetch cycles off the caller's thread. Requests are debounced,
// not queued: a request inside the spacing window is dropped. At most one
// fetch is in flight at any time.
type Poller struct {
	agg     *Aggregator
	log     logrus.FieldLogger
	metrics *metrics.Recorder

	autoSpacing   time.Duration
	forcedSpacing time.Duration
	interval      time.Duration

	results  chan Result
	inflight atomic.Bool

	mu   sync.Mutex
	last time.Time

	now func() time.Time
}

// NewPoller returns a Poller wired to the aggregator. rec may be nil.
func NewPoller(agg *Aggregator, settings Settings, rec *metrics.Recorder, log logrus.FieldLogger) *Poller {
	return &Poller{
		agg:           agg,
		log:           log,
		metrics:       rec,
		autoSpacing:   settings.AutoSpacing,
		forcedSpacing: settings.ForcedSpacing,
		interval:      settings.PollInterval,
		results:       make(chan Result, 16),
		now:           time.Now,
	}
}

// Results returns the single-consumer completion queue.
func (p *Poller) Results() <-chan Result {
	return p.results
}

// Run triggers an immediate fetch and then one per poll interval until ctx
// is done. Forced refreshes can be requested concurrently via Request.
func (p *Poller) Run(ctx context.Context) {
	p.Request(true)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Request(false)
		}
	}
}

// Request asks for a fetch cycle. It reports false when the request was
// dropped, either because the spacing window has not elapsed or because a
// fetch is already in flight.
func (p *Poller) Request(forced bool) bool {
	spacing := p.autoSpacing
	if forced {
		spacing = p.forcedSpacing
	}

	p.mu.Lock()
	if !p.last.IsZero() && p.now().Sub(p.last) < spacing {
		p.mu.Unlock()
		return false
	}
	if !p.inflight.CompareAndSwap(false, true) {
		p.mu.Unlock()
		return false
	}
	p.last = p.now()
	p.mu.Unlock()

	go p.fetch()
	return true
}

func (p *Poller) fetch() {
	defer p.inflight.Store(false)

	start := p.now()
	reading, err := p.agg.FetchLatestReading()
	elapsed := p.now().Sub(start)

	p.metrics.ObserveFetch(outcome(reading, err), elapsed)
	if liblinkup.IsRateLimit(err) {
		p.metrics.IncRateLimited()
	}
	if err != nil {
		p.log.WithError(err).WithField("kind", liblinkup.KindOf(err)).Warn("fetch failed")
	}

	select {
	case p.results <- Result{Reading: reading, Err: err, At: p.now()}:
	default:
		p.metrics.IncDropped()
		p.log.Warn("result queue full, dropping result")
	}
}

func outcome(reading Reading, err error) string {
	switch {
	case err != nil:
		return string(liblinkup.KindOf(err))
	case reading.HasValue():
		return "ok"
	default:
		return "partial"
	}
}
