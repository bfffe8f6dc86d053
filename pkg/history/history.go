// Package history abstracts the host navigation surface the sync controller
// writes through. Production deployments use an implementation bound to a
// real browser location (see pkg/remote); tests and headless code use the
// in-memory Memory implementation or the non-interactive Detached stub.
package history

// Mode selects how a query write interacts with the navigation history.
type Mode int

const (
	// Replace rewrites the current history entry without creating a new
	// navigable entry.
	Replace Mode = iota

	// Push appends a new history entry.
	Push
)

func (m Mode) String() string {
	if m == Push {
		return "push"
	}
	return "replace"
}

// Routing selects where the query string lives: the path-based search
// component, or inside the fragment after its own "?".
type Routing int

const (
	// Browser reads and writes the path-based search component.
	Browser Routing = iota

	// Hash reads and writes the query portion of the fragment.
	Hash
)

func (r Routing) String() string {
	if r == Hash {
		return "hash"
	}
	return "browser"
}

// History is the navigated-location source of truth. Implementations must
// strip the leading "?" from queries they return and must never raise on
// writes; in non-interactive contexts writes are silent no-ops.
type History interface {
	// IsInteractive reports whether a navigable location exists. False in
	// server-rendered or otherwise headless execution contexts.
	IsInteractive() bool

	// ReadQuery returns the current query string for the routing mode,
	// without a leading "?".
	ReadQuery(r Routing) string

	// WriteQuery commits a new query string. Replace must not create a new
	// navigable history entry; Push must. An empty basePath keeps the
	// current path.
	WriteQuery(query string, m Mode, r Routing, basePath string)

	// SubscribePopState registers fn to run on back/forward navigation.
	// The returned function removes the subscription.
	SubscribePopState(fn func()) (unsubscribe func())

	// SubscribeHashChange registers fn to run on fragment changes. Consumed
	// only under hash routing.
	SubscribeHashChange(fn func()) (unsubscribe func())
}

// Detached is a History for non-interactive execution contexts. Reads return
// empty, writes and subscriptions are no-ops.
type Detached struct{}

func (Detached) IsInteractive() bool { return false }

func (Detached) ReadQuery(Routing) string { return "" }

func (Detached) WriteQuery(string, Mode, Routing, string) {}

func (Detached) SubscribePopState(func()) (unsubscribe func()) { return func() {} }

func (Detached) SubscribeHashChange(func()) (unsubscribe func()) { return func() {} }
