// Package codec converts nested state values to and from flat query strings.
//
// Nesting uses dot-separated keys (user.name=bob), sequences repeat the key
// once per element (tags=vue&tags=vite), and every decoded raw value passes
// through a global coercion: numeral strings become numbers, "true"/"false"
// become booleans, everything else stays a string. The codec is pure and has
// no dependency on the sync controller or the history surface.
package codec

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/urlstate"
)

// Encode serializes a state value into a query string without a leading "?".
//
// Nil values are omitted entirely. Sequences emit one entry per element in
// order under the same key. Nested mappings recurse with the key prefixed as
// parent.child. Keys are walked in sorted order at each level so the output
// is deterministic; element order within a sequence is preserved.
func Encode(v urlstate.State) string {
	var pairs []string
	appendPairs(&pairs, "", map[string]any(v))
	return strings.Join(pairs, "&")
}

func appendPairs(pairs *[]string, prefix string, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		appendValue(pairs, full, m[k])
	}
}

func appendValue(pairs *[]string, key string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case urlstate.State:
		appendPairs(pairs, key, map[string]any(val))
		return
	case map[string]any:
		appendPairs(pairs, key, val)
		return
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if elem == nil {
				continue
			}
			*pairs = append(*pairs, pair(key, formatValue(elem)))
		}
		return
	}

	*pairs = append(*pairs, pair(key, formatValue(v)))
}

func pair(key, value string) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

// formatValue stringifies a primitive for the query string.
func formatValue(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Decode parses a query string into a state value. A leading "?" is
// stripped; empty or whitespace-only input decodes to an empty state.
//
// Dotted keys build nested mappings, creating intermediate levels as needed;
// a non-mapping value at an intermediate segment is overwritten with a fresh
// mapping (last writer wins). A duplicate terminal key converts the existing
// scalar into a two-element sequence, and further duplicates append.
// Malformed percent-escapes are kept as raw text rather than failing the
// parse.
func Decode(qs string) urlstate.State {
	qs = strings.TrimSpace(qs)
	qs = strings.TrimPrefix(qs, "?")
	out := urlstate.State{}
	if strings.TrimSpace(qs) == "" {
		return out
	}

	for _, part := range strings.Split(qs, "&") {
		if part == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(part, "=")
		key := unescape(rawKey)
		if key == "" {
			continue
		}
		assign(map[string]any(out), key, coerce(unescape(rawVal)))
	}
	return out
}

// unescape percent-decodes leniently: on a malformed escape the raw text is
// returned unchanged instead of dropping the pair.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// assign walks a dotted key path and sets the coerced value at the terminal
// segment, applying the duplicate-to-sequence rule.
func assign(m map[string]any, key string, value any) {
	segs := strings.Split(key, ".")
	for _, seg := range segs[:len(segs)-1] {
		child, ok := m[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[seg] = child
		}
		m = child
	}

	last := segs[len(segs)-1]
	existing, ok := m[last]
	if !ok {
		m[last] = value
		return
	}
	if arr, isArr := existing.([]any); isArr {
		m[last] = append(arr, value)
		return
	}
	m[last] = []any{existing, value}
}

// coerce applies the global string coercion: numerals become numbers
// (integral to int, decimal to float64), "true"/"false" become booleans,
// everything else stays a string. A numeral that fails to parse to a finite
// number is left as a string.
func coerce(s string) any {
	if isNumeral(s) {
		if !strings.Contains(s, ".") {
			if n, err := strconv.Atoi(s); err == nil {
				return n
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return s
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// isNumeral reports whether s matches the integer-or-decimal pattern:
// optional leading "-", digits, optional "." followed by digits.
func isNumeral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i = 1
	}
	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		digits++
	}
	if digits == 0 {
		return false
	}
	if i == len(s) {
		return true
	}
	if s[i] != '.' {
		return false
	}
	i++
	frac := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		frac++
	}
	return frac > 0 && i == len(s)
}
