// Package urlsync reconciles in-memory state with the URL query string.
//
// A Controller owns one state value and one history surface. Mutations apply
// to state synchronously and are mirrored to the URL as a downstream effect,
// optionally debounced. Back/forward navigation flows the other way: the URL
// is decoded and overlaid on the original initial value, so keys absent from
// the URL revert to their defaults.
//
// Only the keys present in the caller's initial value ("managed keys") are
// ever read from or written to the URL; every other query parameter is
// passed through untouched on each write.
package urlsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/codec"
	"github.com/vango-dev/urlstate/pkg/history"
)

// Controller synchronizes a state value with the URL query string through an
// abstract history surface. Construct with New; tear down with Close.
type Controller struct {
	cfg     config
	hist    history.History
	initial urlstate.State
	managed map[string]struct{}

	mu    sync.RWMutex
	state urlstate.State

	// Single pending-timer slot for debounced writes. closed lives under
	// timerMu so the timer callback and Close agree on teardown.
	timerMu sync.Mutex
	timer   *time.Timer
	closed  bool

	observers observerList

	unsubPop  func()
	unsubHash func()

	interactive bool
	tracer      trace.Tracer
}

// New creates a Controller for the given initial state. The managed key set
// is the set of initial's top-level keys, fixed for the Controller's
// lifetime. On an interactive history the current query string is decoded
// and merged with initial per the configured strategy; on a non-interactive
// one the Controller holds the initial value and every mutation is a silent
// no-op.
func New(initial urlstate.State, hist history.History, opts ...Option) (*Controller, error) {
	if hist == nil {
		return nil, errors.New("urlsync: history must not be nil")
	}

	cfg := config{
		mode:    history.Replace,
		routing: history.Browser,
		encode:  codec.Encode,
		decode:  codec.Decode,
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	c := &Controller{
		cfg:     cfg,
		hist:    hist,
		initial: urlstate.Clone(initial),
		managed: make(map[string]struct{}, len(initial)),
	}
	for k := range initial {
		c.managed[k] = struct{}{}
	}
	if cfg.tracerName != "" {
		c.tracer = otel.Tracer(cfg.tracerName)
	}

	if !hist.IsInteractive() {
		c.state = urlstate.Clone(initial)
		return c, nil
	}
	c.interactive = true

	decoded := c.decodeInbound(hist.ReadQuery(cfg.routing))
	state := urlstate.State{}
	switch cfg.strategy {
	case strategyStateWins:
		for k, v := range decoded {
			state[k] = v
		}
		for k, v := range urlstate.Clone(c.initial) {
			state[k] = v
		}
	default: // strategyURLWins
		for k, v := range urlstate.Clone(c.initial) {
			state[k] = v
		}
		for k, v := range decoded {
			state[k] = v
		}
	}
	c.state = state

	c.unsubPop = hist.SubscribePopState(c.resyncFromURL)
	if cfg.routing == history.Hash {
		c.unsubHash = hist.SubscribeHashChange(c.resyncFromURL)
	}

	return c, nil
}

// Bind returns the public surface as a triple: a snapshot of the current
// state, the primary setter (merge semantics), and the API value exposing
// the remaining operations.
func (c *Controller) Bind() (urlstate.State, func(urlstate.State), *API) {
	return c.State(), c.Set, &API{c: c}
}

// State returns a deep copy of the current state value.
func (c *Controller) State() urlstate.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return urlstate.Clone(c.state)
}

// OnChange registers fn to run with a snapshot of the new state after every
// change, whether from a mutation or a navigation re-sync. The returned
// function removes the subscription.
func (c *Controller) OnChange(fn func(urlstate.State)) (unsubscribe func()) {
	return c.observers.subscribe(fn)
}

// Set merges patch into the current state. If the merge leaves the state
// shallow-equal to what it was, nothing happens: no observers run and no URL
// write is scheduled. Otherwise the state updates synchronously and a URL
// write is scheduled per the debounce configuration.
func (c *Controller) Set(patch urlstate.State) {
	if !c.interactive {
		return
	}
	c.mergeAndSchedule(func(urlstate.State) urlstate.State { return patch })
}

// Update is the updater-function form of Set: fn receives a snapshot of the
// previous state and returns a patch to merge.
func (c *Controller) Update(fn func(prev urlstate.State) urlstate.State) {
	if !c.interactive {
		return
	}
	c.mergeAndSchedule(fn)
}

// SetKey merges a single key, sugar for Set(State{key: value}).
func (c *Controller) SetKey(key string, value any) {
	c.Set(urlstate.State{key: value})
}

func (c *Controller) mergeAndSchedule(patchFn func(urlstate.State) urlstate.State) {
	c.mu.Lock()
	prev := c.state
	patch := patchFn(urlstate.Clone(prev))

	next := urlstate.Clone(prev)
	for k, v := range patch {
		next[k] = v
	}
	if urlstate.ShallowEqual(next, prev) {
		c.mu.Unlock()
		c.cfg.metrics.recordSkip()
		return
	}
	c.state = next
	snapshot := urlstate.Clone(next)
	c.mu.Unlock()

	c.observers.notify(snapshot)
	c.scheduleWrite()
}

// Replace merges patch and writes the URL synchronously, with no debounce
// and no equality short-circuit.
func (c *Controller) Replace(patch urlstate.State) {
	if !c.interactive {
		return
	}

	c.mu.Lock()
	next := urlstate.Clone(c.state)
	for k, v := range patch {
		next[k] = v
	}
	c.state = next
	snapshot := urlstate.Clone(next)
	c.mu.Unlock()

	c.observers.notify(snapshot)
	c.cancelPending()
	c.writeURL()
}

// Reset restores the original initial value and writes the URL
// synchronously.
func (c *Controller) Reset() {
	if !c.interactive {
		return
	}

	c.mu.Lock()
	c.state = urlstate.Clone(c.initial)
	snapshot := urlstate.Clone(c.state)
	c.mu.Unlock()

	c.observers.notify(snapshot)
	c.cancelPending()
	c.writeURL()
}

// Clear sets every managed key to nil and writes an empty query string,
// discarding unmanaged parameters too. Synchronous.
func (c *Controller) Clear() {
	if !c.interactive {
		return
	}

	c.mu.Lock()
	next := urlstate.Clone(c.state)
	for k := range c.managed {
		next[k] = nil
	}
	c.state = next
	snapshot := urlstate.Clone(next)
	c.mu.Unlock()

	c.observers.notify(snapshot)
	c.cancelPending()
	c.hist.WriteQuery("", c.cfg.mode, c.cfg.routing, c.cfg.basePath)
	c.cfg.metrics.recordClear()
	c.log("query string cleared")
}

// GetSearch encodes the current state's managed keys, after outbound
// transforms, and returns the resulting query string. It never touches
// history; in a non-interactive context it returns "".
func (c *Controller) GetSearch() string {
	if !c.interactive {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.encode(c.managedProjection(c.state, false))
}

// Close cancels any pending debounce write and unsubscribes from navigation
// notifications. Idempotent; the Controller performs no further URL writes
// afterwards.
func (c *Controller) Close() {
	c.timerMu.Lock()
	if c.closed {
		c.timerMu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()

	if c.unsubPop != nil {
		c.unsubPop()
	}
	if c.unsubHash != nil {
		c.unsubHash()
	}
}

// scheduleWrite writes now, or (re)arms the single debounce slot. A newer
// mutation cancels the pending write; only the most recent state survives
// the window.
func (c *Controller) scheduleWrite() {
	if c.cfg.debounce <= 0 {
		c.writeURL()
		return
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.cfg.metrics.recordReschedule()
	}
	c.timer = time.AfterFunc(c.cfg.debounce, c.writeURL)
}

// cancelPending empties the debounce slot without writing. Synchronous
// writes call this first: the state they emit already supersedes whatever
// the pending write would have emitted.
func (c *Controller) cancelPending() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// writeURL runs the URL-write algorithm: project managed keys, strip
// defaults if configured, apply outbound transforms, encode, merge back the
// unmanaged parameters from a fresh read of the live query string, and
// commit through the history surface.
func (c *Controller) writeURL() {
	c.timerMu.Lock()
	if c.closed {
		c.timerMu.Unlock()
		return
	}
	c.timer = nil
	c.timerMu.Unlock()

	var span trace.Span
	if c.tracer != nil {
		_, span = c.tracer.Start(context.Background(), "urlsync.write",
			trace.WithAttributes(
				attribute.String("urlsync.mode", c.cfg.mode.String()),
				attribute.String("urlsync.routing", c.cfg.routing.String()),
				attribute.Int("urlsync.managed_keys", len(c.managed)),
			))
		defer span.End()
	}

	c.mu.RLock()
	managed := c.managedProjection(c.state, c.cfg.stripDefaults)
	c.mu.RUnlock()
	managedSearch := c.cfg.encode(managed)

	// Unmanaged params come from a fresh read at write time, never from a
	// value captured earlier, so concurrent external query edits survive.
	live := c.cfg.decode(c.hist.ReadQuery(c.cfg.routing))
	unmanaged := urlstate.State{}
	for k, v := range live {
		if _, ok := c.managed[k]; !ok {
			unmanaged[k] = v
		}
	}
	unmanagedSearch := c.cfg.encode(unmanaged)

	parts := make([]string, 0, 2)
	for _, p := range []string{managedSearch, unmanagedSearch} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	combined := strings.Join(parts, "&")

	c.hist.WriteQuery(combined, c.cfg.mode, c.cfg.routing, c.cfg.basePath)
	c.cfg.metrics.recordWrite(c.cfg.mode.String())
	c.log("url written", "mode", c.cfg.mode.String(), "query", combined)
}

// managedProjection returns the managed subset of s with outbound
// transforms applied, optionally dropping keys deep-equal to their initial
// defaults.
func (c *Controller) managedProjection(s urlstate.State, stripDefaults bool) urlstate.State {
	out := urlstate.State{}
	for k := range c.managed {
		v, ok := s[k]
		if !ok {
			continue
		}
		if stripDefaults && urlstate.DeepEqual(v, c.initial[k]) {
			continue
		}
		out[k] = c.cfg.transforms[k].applyOut(v)
	}
	return out
}

// resyncFromURL rebuilds state from the navigated-to URL: the original
// initial value overlaid with the managed keys the URL provides. Keys
// absent from the URL revert to their initial defaults; the URL is the
// source of truth after navigation. Never writes back.
func (c *Controller) resyncFromURL() {
	c.timerMu.Lock()
	closed := c.closed
	c.timerMu.Unlock()
	if closed {
		return
	}

	decoded := c.decodeInbound(c.hist.ReadQuery(c.cfg.routing))

	c.mu.Lock()
	next := urlstate.Clone(c.initial)
	for k := range c.managed {
		if v, ok := decoded[k]; ok {
			next[k] = v
		}
	}
	c.state = next
	snapshot := urlstate.Clone(next)
	c.mu.Unlock()

	c.observers.notify(snapshot)
	c.cfg.metrics.recordResync()
	c.log("state re-synced from url")
}

// decodeInbound decodes a query string and applies inbound transforms to
// the managed keys it names.
func (c *Controller) decodeInbound(qs string) urlstate.State {
	decoded := c.cfg.decode(qs)
	for k := range c.managed {
		if v, ok := decoded[k]; ok {
			decoded[k] = c.cfg.transforms[k].applyIn(v)
		}
	}
	return decoded
}

func (c *Controller) log(msg string, args ...any) {
	if c.cfg.logger != nil {
		c.cfg.logger.Debug(msg, args...)
	}
}
