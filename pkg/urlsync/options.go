package urlsync

import (
	"log/slog"
	"time"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/history"
)

// strategy selects how the decoded URL and the caller's initial value merge
// at construction time.
type strategy int

const (
	strategyURLWins strategy = iota
	strategyStateWins
)

// config holds a Controller's immutable configuration.
type config struct {
	mode          history.Mode
	routing       history.Routing
	debounce      time.Duration
	stripDefaults bool
	strategy      strategy
	basePath      string

	encode func(urlstate.State) string
	decode func(string) urlstate.State

	transforms map[string]Transform

	logger     *slog.Logger
	metrics    *Metrics
	tracerName string
}

// Option configures a Controller.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// Mode options as values rather than constructors, matching how callers
// read at the construction site: urlsync.New(initial, hist, urlsync.Push).
var (
	// Push creates a new history entry per URL write.
	Push Option = optionFunc(func(c *config) { c.mode = history.Push })

	// Replace updates the URL in place (the default; no back-button spam
	// from filter and search inputs).
	Replace Option = optionFunc(func(c *config) { c.mode = history.Replace })

	// HashRouting reads and writes the query inside the fragment instead of
	// the path-based search component.
	HashRouting Option = optionFunc(func(c *config) { c.routing = history.Hash })

	// StateWins makes the caller's initial value override the URL for the
	// managed keys it defines during initial sync. The default is URLWins.
	StateWins Option = optionFunc(func(c *config) { c.strategy = strategyStateWins })

	// URLWins makes the decoded URL override the initial value during
	// initial sync. This is the default.
	URLWins Option = optionFunc(func(c *config) { c.strategy = strategyURLWins })

	// StripDefaults omits a managed key from the written URL when its value
	// equals that key's original initial value.
	StripDefaults Option = optionFunc(func(c *config) { c.stripDefaults = true })
)

// Debounce delays URL writes by d, coalescing rapid mutations into the most
// recent one (trailing edge, single pending slot). Zero writes synchronously.
//
// Use this for search inputs:
//
//	urlsync.New(initial, hist, urlsync.Replace, urlsync.Debounce(300*time.Millisecond))
func Debounce(d time.Duration) Option {
	return optionFunc(func(c *config) { c.debounce = d })
}

// WithBasePath sets the path written alongside the query. Empty keeps the
// current path.
func WithBasePath(path string) Option {
	return optionFunc(func(c *config) { c.basePath = path })
}

// WithCodec overrides the built-in query-string codec. A nil function keeps
// the corresponding built-in.
func WithCodec(encode func(urlstate.State) string, decode func(string) urlstate.State) Option {
	return optionFunc(func(c *config) {
		if encode != nil {
			c.encode = encode
		}
		if decode != nil {
			c.decode = decode
		}
	})
}

// WithTransform registers a per-key conversion pair for a managed key:
// inbound turns the raw decoded value into a domain value, outbound turns
// the domain value back into something the codec can stringify.
func WithTransform(key string, in Inbound, out Outbound) Option {
	return optionFunc(func(c *config) {
		if c.transforms == nil {
			c.transforms = map[string]Transform{}
		}
		c.transforms[key] = Transform{In: in, Out: out}
	})
}

// WithLogger sets the structured logger. If unset, the Controller stays
// silent.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *config) { c.logger = logger })
}

// WithMetrics records write/skip/re-sync counters on m.
func WithMetrics(m *Metrics) Option {
	return optionFunc(func(c *config) { c.metrics = m })
}

// WithTracing wraps every URL write in an OpenTelemetry span from the named
// tracer, resolved against the global tracer provider.
func WithTracing(tracerName string) Option {
	return optionFunc(func(c *config) { c.tracerName = tracerName })
}
