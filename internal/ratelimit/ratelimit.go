// Package ratelimit implements C7: the daily global and per-client budget
// gates guarding how many new analyses the service will build per day.
//
// Windows are keyed by civil date in a configured timezone, mirroring the
// teacher's sliding-window RateLimiter design but swapping the rolling
// window for a calendar-day window and splitting Allow into the
// precheck/commit pair the orchestrator's ordering requirement needs.
package ratelimit

import (
	"sync"
	"time"
)

// Status is the result of a precheck or commit call.
type Status struct {
	Allowed    bool
	Limit      int
	CountToday int
}

// Counter is a single civil-date-windowed budget counter. It is safe for
// concurrent use.
type Counter struct {
	mu         sync.Mutex
	limit      int
	location   *time.Location
	windowDate string
	count      int
}

// NewCounter constructs a Counter bound to limit increments per civil day
// in loc.
func NewCounter(limit int, loc *time.Location) *Counter {
	return &Counter{limit: limit, location: loc}
}

// Precheck reports whether the counter's current window is under budget,
// without mutating state. It does not reject on its own — callers decide
// whether a precheck failure matters given cache state (spec §4.7: cached
// responses are never denied for budget reasons).
func (c *Counter) Precheck() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfNewWindowLocked()
	return Status{Allowed: c.count < c.limit, Limit: c.limit, CountToday: c.count}
}

// Commit atomically increments the counter if budget remains, returning
// whether the increment succeeded. Call only on the cache-miss path.
func (c *Counter) Commit() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfNewWindowLocked()
	if c.count >= c.limit {
		return Status{Allowed: false, Limit: c.limit, CountToday: c.count}
	}
	c.count++
	return Status{Allowed: true, Limit: c.limit, CountToday: c.count}
}

// resetIfNewWindowLocked detects a civil-date rollover and resets the
// counter. Caller must hold c.mu.
func (c *Counter) resetIfNewWindowLocked() {
	today := currentWindowDate(c.location)
	if today != c.windowDate {
		c.windowDate = today
		c.count = 0
	}
}

func currentWindowDate(loc *time.Location) string {
	return time.Now().In(loc).Format("2006-01-02")
}

// Gate bundles the global and optional per-client counters the
// orchestrator consults. Per-client enforcement is an additional,
// non-authoritative layer: the spec treats the browser extension as the
// canonical per-client enforcer, so a missing client id simply skips that
// check rather than failing the request.
type Gate struct {
	Global    *Counter
	PerClient *PerClientCounters
}

// NewGate constructs a Gate with the given global and per-client daily
// limits. Pass perClientLimit <= 0 to disable server-side per-client
// enforcement entirely.
func NewGate(globalLimit, perClientLimit int, loc *time.Location) *Gate {
	g := &Gate{Global: NewCounter(globalLimit, loc)}
	if perClientLimit > 0 {
		g.PerClient = NewPerClientCounters(perClientLimit, loc)
	}
	return g
}

// PerClientCounters tracks one Counter per client id, keyed by a
// caller-supplied (already-hashed) identity string.
type PerClientCounters struct {
	mu       sync.Mutex
	limit    int
	location *time.Location
	counters map[string]*Counter
}

// NewPerClientCounters constructs a per-client counter set.
func NewPerClientCounters(limit int, loc *time.Location) *PerClientCounters {
	return &PerClientCounters{limit: limit, location: loc, counters: make(map[string]*Counter)}
}

func (p *PerClientCounters) counterFor(clientID string) *Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.counters[clientID]
	if !ok {
		c = NewCounter(p.limit, p.location)
		p.counters[clientID] = c
	}
	return c
}

// Precheck checks the named client's budget without mutating state.
func (p *PerClientCounters) Precheck(clientID string) Status {
	return p.counterFor(clientID).Precheck()
}

// Commit increments the named client's budget.
func (p *PerClientCounters) Commit(clientID string) Status {
	return p.counterFor(clientID).Commit()
}
