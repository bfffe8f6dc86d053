package history

import "sync"

// entry is one navigable location: a path plus the query string for each
// routing mode.
type entry struct {
	path      string
	query     string // search component, no "?"
	hashQuery string // query portion of the fragment, no "?"
}

// Memory is a deterministic in-process History. It models the browser's
// session history as a stack with a cursor: Push appends (truncating any
// forward entries), Replace rewrites in place, and Back/Forward move the
// cursor and notify popstate subscribers the way real back/forward
// navigation would. Writes never fire subscribers, matching pushState and
// replaceState semantics.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []entry
	index   int

	nextSub  int
	popSubs  map[int]func()
	hashSubs map[int]func()
}

// NewMemory creates a Memory positioned at a single entry with the given
// search query (leading "?" allowed and stripped).
func NewMemory(query string) *Memory {
	return NewMemoryAt("/", query, "")
}

// NewMemoryAt creates a Memory positioned at path with the given search and
// hash queries.
func NewMemoryAt(path, query, hashQuery string) *Memory {
	return &Memory{
		entries:  []entry{{path: path, query: stripQuestion(query), hashQuery: stripQuestion(hashQuery)}},
		popSubs:  map[int]func(){},
		hashSubs: map[int]func(){},
	}
}

func stripQuestion(q string) string {
	if len(q) > 0 && q[0] == '?' {
		return q[1:]
	}
	return q
}

// IsInteractive always reports true: Memory is a live, navigable location.
func (m *Memory) IsInteractive() bool { return true }

// ReadQuery returns the current query for the routing mode.
func (m *Memory) ReadQuery(r Routing) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur := m.entries[m.index]
	if r == Hash {
		return cur.hashQuery
	}
	return cur.query
}

// Path returns the current entry's path.
func (m *Memory) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[m.index].path
}

// Len returns the number of history entries. Tests use this to verify that
// Replace does not grow the history while Push does.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// WriteQuery commits a new query string for the routing mode.
func (m *Memory) WriteQuery(query string, mode Mode, r Routing, basePath string) {
	query = stripQuestion(query)

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.entries[m.index]
	if basePath != "" {
		next.path = basePath
	}
	if r == Hash {
		next.hashQuery = query
	} else {
		next.query = query
	}

	if mode == Push {
		// Truncate forward entries, as a browser would.
		m.entries = append(m.entries[:m.index+1], next)
		m.index++
		return
	}
	m.entries[m.index] = next
}

// Back moves one entry backward and notifies popstate subscribers. A
// hashchange notification fires too when the fragment query differs. No-op
// at the oldest entry.
func (m *Memory) Back() {
	m.move(-1)
}

// Forward moves one entry forward and notifies popstate subscribers. No-op
// at the newest entry.
func (m *Memory) Forward() {
	m.move(1)
}

func (m *Memory) move(delta int) {
	m.mu.Lock()
	target := m.index + delta
	if target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return
	}
	prev := m.entries[m.index]
	m.index = target
	cur := m.entries[m.index]

	// Copy subscribers before notifying so callbacks can unsubscribe or
	// navigate without deadlocking.
	pops := make([]func(), 0, len(m.popSubs))
	for _, fn := range m.popSubs {
		pops = append(pops, fn)
	}
	var hashes []func()
	if cur.hashQuery != prev.hashQuery {
		hashes = make([]func(), 0, len(m.hashSubs))
		for _, fn := range m.hashSubs {
			hashes = append(hashes, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range pops {
		fn()
	}
	for _, fn := range hashes {
		fn()
	}
}

// SubscribePopState registers fn for back/forward notifications.
func (m *Memory) SubscribePopState(fn func()) (unsubscribe func()) {
	return m.subscribe(fn, true)
}

// SubscribeHashChange registers fn for fragment-change notifications.
func (m *Memory) SubscribeHashChange(fn func()) (unsubscribe func()) {
	return m.subscribe(fn, false)
}

func (m *Memory) subscribe(fn func(), pop bool) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	subs := m.hashSubs
	if pop {
		subs = m.popSubs
	}
	subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(subs, id)
	}
}
