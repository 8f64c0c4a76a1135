package orchestrator

import (
	"context"
	"strings"
	"sync"

	"pagereport/internal/core/export"
	"pagereport/internal/core/extract"
	"pagereport/internal/core/report"
	"pagereport/internal/logger"
)

// State is the orchestrator lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Update describes one settled request: the sequence number it carried,
// the state after applying it, the report now current, and the failure
// if there was one.
type Update struct {
	Seq    uint64
	State  State
	Report *report.Report
	Err    error
}

type result struct {
	seq uint64
	rep *report.Report
	err error
}

// Orchestrator owns the scrape lifecycle on the client side: it
// validates input, runs at most one request at a time off the calling
// goroutine, keeps the current report, and exports it to CSV. Results
// are tagged with a sequence number; a completion whose tag no longer
// matches the latest request is discarded, so a newer request always
// wins.
type Orchestrator struct {
	log    *logger.Logger
	client *Client

	mu       sync.Mutex
	state    State
	seq      uint64
	current  *report.Report
	lastErr  error
	waiters  map[uint64]chan Update
	resolved map[uint64]Update

	results chan result
	updates chan Update
	done    chan struct{}
	once    sync.Once
}

func New(client *Client) *Orchestrator {
	o := &Orchestrator{
		log:      logger.New("Orchestrator"),
		client:   client,
		state:    StateIdle,
		waiters:  make(map[uint64]chan Update),
		resolved: make(map[uint64]Update),
		results:  make(chan result),
		updates:  make(chan Update, 16),
		done:     make(chan struct{}),
	}
	go o.consume()
	return o
}

// Start validates the URL and launches the request. It returns the
// sequence number to Wait on. An empty or malformed URL fails without
// touching the state; a second Start while one is running is rejected.
func (o *Orchestrator) Start(ctx context.Context, url string) (uint64, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return 0, newError(KindInvalidInput, "url is required", nil)
	}
	if _, err := extract.NormalizeURL(trimmed); err != nil {
		return 0, newError(KindInvalidInput, "invalid url", err)
	}

	o.mu.Lock()
	if o.state == StateRequesting {
		o.mu.Unlock()
		return 0, ErrRequestInFlight
	}
	o.seq++
	seq := o.seq
	o.state = StateRequesting
	o.mu.Unlock()

	o.log.Info().Str("url", trimmed).Uint64("seq", seq).Msg("scrape start")
	go func() {
		rep, err := o.client.Fetch(ctx, trimmed)
		select {
		case o.results <- result{seq: seq, rep: rep, err: err}:
		case <-o.done:
		}
	}()
	return seq, nil
}

func (o *Orchestrator) consume() {
	for {
		select {
		case r := <-o.results:
			o.apply(r)
		case <-o.done:
			return
		}
	}
}

func (o *Orchestrator) apply(r result) {
	o.mu.Lock()
	if r.seq != o.seq {
		o.log.LogWarnf("discarding stale result for request %d, latest is %d", r.seq, o.seq)
		o.settle(Update{Seq: r.seq, State: o.state, Report: o.current, Err: ErrSuperseded})
		o.mu.Unlock()
		return
	}

	if r.err != nil {
		// Failure keeps the previous report current.
		o.state = StateFailed
		o.lastErr = r.err
		o.log.LogError("scrape failed", r.err)
	} else {
		o.state = StateReady
		o.current = r.rep
		o.lastErr = nil
		o.log.Info().Uint64("seq", r.seq).Int("records", r.rep.Total()).Msg("scrape complete")
	}
	u := Update{Seq: r.seq, State: o.state, Report: o.current, Err: r.err}
	o.settle(u)
	o.mu.Unlock()

	select {
	case o.updates <- u:
	default:
		o.log.LogDebug("updates channel full, notification dropped")
	}
}

// settle hands the update to a registered waiter or parks it for a Wait
// that has not arrived yet. Caller holds the lock.
func (o *Orchestrator) settle(u Update) {
	if ch, ok := o.waiters[u.Seq]; ok {
		ch <- u
		delete(o.waiters, u.Seq)
		return
	}
	o.resolved[u.Seq] = u
}

// Wait blocks until the request with the given sequence number settles.
// The returned error is the request's outcome (nil on success,
// ErrSuperseded when a newer request won); ctx cancellation and a closed
// orchestrator surface as their own errors.
func (o *Orchestrator) Wait(ctx context.Context, seq uint64) (Update, error) {
	o.mu.Lock()
	if u, ok := o.resolved[seq]; ok {
		delete(o.resolved, seq)
		o.mu.Unlock()
		return u, u.Err
	}
	ch := make(chan Update, 1)
	o.waiters[seq] = ch
	o.mu.Unlock()

	select {
	case u := <-ch:
		return u, u.Err
	case <-ctx.Done():
		o.mu.Lock()
		delete(o.waiters, seq)
		o.mu.Unlock()
		return Update{}, ctx.Err()
	case <-o.done:
		return Update{}, context.Canceled
	}
}

// Updates exposes settled requests to an observer. The channel is
// buffered; a slow observer loses notifications, never correctness.
func (o *Orchestrator) Updates() <-chan Update { return o.updates }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the report from the most recent successful scrape, or
// nil when none has succeeded yet.
func (o *Orchestrator) Current() *report.Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Err returns the failure of the most recent request, nil after a
// success.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// ExportCategory writes one category of the current report to path.
func (o *Orchestrator) ExportCategory(cat report.Category, path string) error {
	rep := o.Current()
	if rep == nil {
		return newError(KindExportFailure, "no report to export", nil)
	}
	if err := export.Category(rep, cat, path); err != nil {
		return newError(KindExportFailure, "export category "+string(cat), err)
	}
	return nil
}

// ExportAll writes every non-empty category of the current report into
// dir and returns the written paths.
func (o *Orchestrator) ExportAll(dir string) ([]string, error) {
	rep := o.Current()
	if rep == nil {
		return nil, newError(KindExportFailure, "no report to export", nil)
	}
	written, err := export.All(rep, dir)
	if err != nil {
		return written, newError(KindExportFailure, "export all categories", err)
	}
	return written, nil
}

// Close stops the background consumer. In-flight requests are dropped.
func (o *Orchestrator) Close() {
	o.once.Do(func() { close(o.done) })
}
