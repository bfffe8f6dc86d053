// Package urlstate keeps an application's in-memory state mirrored onto the
// URL query string, so that reloads, deep links, and back/forward navigation
// reproduce application state without an external store.
//
// The module is layered:
//
//   - pkg/codec encodes and decodes nested state values to and from flat
//     query strings (dotted keys for nesting, repeated keys for arrays).
//   - pkg/history abstracts the host navigation surface behind an interface,
//     with a deterministic in-memory implementation for tests and headless use.
//   - pkg/urlsync owns the reconciliation policy: managed-key filtering,
//     default-stripping, debounced writes, navigation re-sync, and the
//     mutation API.
//   - pkg/remote drives a real browser's location over a WebSocket for
//     server-driven applications.
//
// Example:
//
//	hist := history.NewMemory("page=3")
//	ctrl, _ := urlsync.New(urlstate.State{"page": 1, "q": ""}, hist,
//	    urlsync.Replace, urlsync.Debounce(300*time.Millisecond))
//	defer ctrl.Close()
//
//	ctrl.Set(urlstate.State{"q": "widgets"})
package urlstate
