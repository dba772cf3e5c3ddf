// Package dispatch coalesces keystrokes into debounced outbound queries and tracks request freshness.
package dispatch

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the quiet period after the last keystroke before a query is sent.
const DefaultInterval = 300 * time.Millisecond

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Query is an outbound query emitted after the quiet interval.
type Query struct {
	Text  string
	Token Token
}

// Dispatcher emits at most one query per quiet interval after the last keystroke.
// A keystroke before the interval elapses cancels the pending emission and restarts the timer.
type Dispatcher struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	emit     func(Query)
	timer    Timer
	pending  string
	gen      uint64
	lane     Lane
	stopped  bool
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithInterval sets the quiet interval. Non-positive values keep the default.
func WithInterval(interval time.Duration) Option {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a dispatcher that calls emit once per settled query.
// emit runs on the clock's callback goroutine and must not block.
func New(emit func(Query), opts ...Option) *Dispatcher {
	d := &Dispatcher{
		clock:    realClock{},
		interval: DefaultInterval,
		emit:     emit,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit records a keystroke with the full current text.
// A blank text short-circuits: any pending emission is cancelled, in-flight responses become
// stale, and Submit returns false. Otherwise the timer restarts and Submit returns true.
func (d *Dispatcher) Submit(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	d.cancelLocked()
	d.lane.Invalidate()
	if strings.TrimSpace(text) == "" {
		d.logger.Debug("blank query short-circuited")
		return false
	}
	d.pending = text
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.interval, func() { d.fire(gen) })
	return true
}

func (d *Dispatcher) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	q := Query{Text: d.pending, Token: d.lane.Issue()}
	d.mu.Unlock()
	d.logger.Debug("query settled", zap.String("query", q.Text), zap.Uint64("token", uint64(q.Token)))
	d.emit(q)
}

// Cancel drops any pending emission and makes in-flight responses stale.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.lane.Invalidate()
}

func (d *Dispatcher) cancelLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Accept reports whether a response for t may still update state.
func (d *Dispatcher) Accept(t Token) bool {
	return d.lane.Current(t)
}

// Pending reports whether an emission is scheduled.
func (d *Dispatcher) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending emission; later Submit calls are ignored.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.lane.Invalidate()
	d.stopped = true
}
