package urlsync

import "github.com/vango-dev/urlstate"

// API is the operations object returned by Bind alongside the state
// snapshot and the primary setter. Every method delegates to the
// Controller; holding an API keeps the Controller alive.
type API struct {
	c *Controller
}

// Replace merges a patch and writes the URL synchronously, bypassing
// debounce and the no-change short-circuit.
func (a *API) Replace(patch urlstate.State) { a.c.Replace(patch) }

// Reset restores the original initial value.
func (a *API) Reset() { a.c.Reset() }

// Clear empties the entire query string and nils every managed key.
func (a *API) Clear() { a.c.Clear() }

// SetKey merges a single key with the primary setter's semantics.
func (a *API) SetKey(key string, value any) { a.c.SetKey(key, value) }

// Update applies an updater function with the primary setter's semantics.
func (a *API) Update(fn func(prev urlstate.State) urlstate.State) { a.c.Update(fn) }

// GetSearch returns the managed portion of the query string without
// touching history.
func (a *API) GetSearch() string { return a.c.GetSearch() }

// OnChange subscribes to state changes.
func (a *API) OnChange(fn func(urlstate.State)) (unsubscribe func()) { return a.c.OnChange(fn) }

// Close tears the Controller down.
func (a *API) Close() { a.c.Close() }
