package dispatch

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock fires callbacks synchronously from Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	c.mu.Unlock()
	for _, t := range due {
		c.mu.Lock()
		c.now = t.at
		skip := t.stopped
		t.fired = true
		c.mu.Unlock()
		if !skip {
			t.f()
		}
	}
	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

func (c *manualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type emission struct {
	q  Query
	at time.Duration
}

func newTestDispatcher(clock *manualClock) (*Dispatcher, *[]emission) {
	var out []emission
	d := New(func(q Query) {
		out = append(out, emission{q: q, at: clock.Now()})
	}, WithClock(clock), WithInterval(300*time.Millisecond))
	return d, &out
}

func TestDispatcher_CoalescesBurst(t *testing.T) {
	clock := &manualClock{}
	d, out := newTestDispatcher(clock)

	d.Submit("b")
	clock.Advance(50 * time.Millisecond)
	d.Submit("bl")
	clock.Advance(50 * time.Millisecond)
	d.Submit("blo")
	clock.Advance(150 * time.Millisecond)
	d.Submit("blog")

	clock.Advance(299 * time.Millisecond)
	require.Empty(t, *out, "nothing may fire before the quiet interval elapses")

	clock.Advance(1 * time.Millisecond)
	require.Len(t, *out, 1)
	assert.Equal(t, "blog", (*out)[0].q.Text)
	assert.Equal(t, 550*time.Millisecond, (*out)[0].at)

	clock.Advance(time.Second)
	assert.Len(t, *out, 1, "silence must not produce further queries")
}

func TestDispatcher_BlankShortCircuits(t *testing.T) {
	clock := &manualClock{}
	d, out := newTestDispatcher(clock)

	assert.True(t, d.Submit("go"))
	assert.True(t, d.Pending())
	assert.False(t, d.Submit("   "))
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Empty(t, *out)
}

func TestDispatcher_NewKeystrokeMakesInFlightStale(t *testing.T) {
	clock := &manualClock{}
	d, out := newTestDispatcher(clock)

	d.Submit("a")
	clock.Advance(300 * time.Millisecond)
	require.Len(t, *out, 1)
	first := (*out)[0].q.Token
	assert.True(t, d.Accept(first))

	d.Submit("ab")
	assert.False(t, d.Accept(first), "a keystroke revokes the in-flight query's right to update")

	clock.Advance(300 * time.Millisecond)
	require.Len(t, *out, 2)
	second := (*out)[1].q.Token
	assert.Greater(t, uint64(second), uint64(first))
	assert.True(t, d.Accept(second))
	assert.False(t, d.Accept(first))
}

func TestDispatcher_CancelAndStop(t *testing.T) {
	clock := &manualClock{}
	d, out := newTestDispatcher(clock)

	d.Submit("go")
	d.Cancel()
	clock.Advance(time.Second)
	assert.Empty(t, *out)

	d.Stop()
	assert.False(t, d.Submit("go"))
	clock.Advance(time.Second)
	assert.Empty(t, *out)
}

func TestDispatcher_RealClock(t *testing.T) {
	got := make(chan Query, 1)
	d := New(func(q Query) { got <- q }, WithInterval(10*time.Millisecond))
	defer d.Stop()

	d.Submit("real")
	select {
	case q := <-got:
		assert.Equal(t, "real", q.Text)
		assert.True(t, d.Accept(q.Token))
	case <-time.After(2 * time.Second):
		t.Fatal("query was not emitted")
	}
}

func TestLane(t *testing.T) {
	var l Lane
	assert.False(t, l.Current(0))
	a := l.Issue()
	assert.True(t, l.Current(a))
	b := l.Issue()
	assert.False(t, l.Current(a))
	assert.True(t, l.Current(b))
	l.Invalidate()
	assert.False(t, l.Current(b))
}
