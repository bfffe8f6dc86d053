package urlsync

// Inbound converts a raw decoded value (string, number, bool, or sequence)
// into a domain value during initial sync and navigation re-sync.
type Inbound func(raw any) any

// Outbound converts a domain value back into a value the codec can
// stringify, applied before every URL write.
type Outbound func(v any) any

// Transform pairs the two one-way conversions for a single managed key.
// Keys without a transform pass through the codec's global coercion only.
type Transform struct {
	In  Inbound
	Out Outbound
}

// applyIn runs the inbound conversion if present.
func (t Transform) applyIn(raw any) any {
	if t.In == nil {
		return raw
	}
	return t.In(raw)
}

// applyOut runs the outbound conversion if present.
func (t Transform) applyOut(v any) any {
	if t.Out == nil {
		return v
	}
	return t.Out(v)
}
