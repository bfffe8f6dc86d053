package codec

import (
	"strings"
	"testing"

	"github.com/vango-dev/urlstate"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		input urlstate.State
		want  string
	}{
		{"Empty", urlstate.State{}, ""},
		{"SingleString", urlstate.State{"q": "widgets"}, "q=widgets"},
		{"Number", urlstate.State{"page": 3}, "page=3"},
		{"Float", urlstate.State{"ratio": 2.5}, "ratio=2.5"},
		{"Bool", urlstate.State{"active": true}, "active=true"},
		{"NilOmitted", urlstate.State{"q": nil, "page": 1}, "page=1"},
		{"ArrayRepeatsKey", urlstate.State{"tags": []any{"vue", "vite"}}, "tags=vue&tags=vite"},
		{"TypedSlice", urlstate.State{"tags": []string{"go", "web"}}, "tags=go&tags=web"},
		{"Nested", urlstate.State{"user": map[string]any{"name": "bob"}}, "user.name=bob"},
		{"NestedTwoLevels", urlstate.State{"a": map[string]any{"b": map[string]any{"c": 1}}}, "a.b.c=1"},
		{"SortedKeys", urlstate.State{"b": 2, "a": 1}, "a=1&b=2"},
		{"Escaping", urlstate.State{"q": "a b&c"}, "q=a+b%26c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.input); got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		for _, in := range []string{"", "?", "   ", "?  "} {
			got := Decode(in)
			if len(got) != 0 {
				t.Errorf("Decode(%q) = %v, want empty", in, got)
			}
		}
	})

	t.Run("Coercion", func(t *testing.T) {
		got := Decode("page=3&ratio=2.5&active=true&off=false&q=hello&neg=-7")
		want := urlstate.State{
			"page": 3, "ratio": 2.5, "active": true, "off": false,
			"q": "hello", "neg": -7,
		}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("CoercionLeavesNonNumerals", func(t *testing.T) {
		got := Decode("v=1.2.3&w=1.&x=.5&y=-&z=1e5")
		want := urlstate.State{"v": "1.2.3", "w": "1.", "x": ".5", "y": "-", "z": "1e5"}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("RepeatedKeyBuildsArray", func(t *testing.T) {
		got := Decode("tags=vue&tags=vite&tags=3")
		want := urlstate.State{"tags": []any{"vue", "vite", 3}}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("DottedKeyBuildsNesting", func(t *testing.T) {
		got := Decode("user.name=bob&user.age=30")
		want := urlstate.State{"user": map[string]any{"name": "bob", "age": 30}}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("RepeatedNestedKey", func(t *testing.T) {
		got := Decode("f.tag=a&f.tag=b")
		want := urlstate.State{"f": map[string]any{"tag": []any{"a", "b"}}}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("IntermediateCollisionLastWriterWins", func(t *testing.T) {
		// "a" is first a scalar, then an intermediate path segment: the
		// scalar is discarded and replaced with a fresh mapping.
		got := Decode("a=1&a.b=2")
		want := urlstate.State{"a": map[string]any{"b": 2}}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("MissingValue", func(t *testing.T) {
		got := Decode("q")
		want := urlstate.State{"q": ""}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("MalformedEscapeKeptRaw", func(t *testing.T) {
		got := Decode("q=100%zz")
		want := urlstate.State{"q": "100%zz"}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("EmptyFragmentsSkipped", func(t *testing.T) {
		got := Decode("&&page=1&&")
		want := urlstate.State{"page": 1}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("PlusDecodesToSpace", func(t *testing.T) {
		got := Decode("q=a+b")
		want := urlstate.State{"q": "a b"}
		if !urlstate.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

// TestRoundTrip verifies decode(encode(v)) == v modulo the global coercion.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   urlstate.State
		want urlstate.State // nil means same as in
	}{
		{"Flat", urlstate.State{"page": 3, "q": "hello", "active": true}, nil},
		{"Array", urlstate.State{"tags": []any{"vue", "vite"}}, nil},
		{"Nested", urlstate.State{"user": map[string]any{"name": "bob", "age": 30}}, nil},
		{"Float", urlstate.State{"ratio": 0.25}, nil},
		{
			"NumericStringCoerces",
			urlstate.State{"count": "5"},
			urlstate.State{"count": 5},
		},
		{
			"BooleanStringCoerces",
			urlstate.State{"flag": "true"},
			urlstate.State{"flag": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want
			if want == nil {
				want = tt.in
			}
			got := Decode(Encode(tt.in))
			if !urlstate.DeepEqual(got, want) {
				t.Errorf("round trip of %v = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestEncodeArrayOrderPreserved(t *testing.T) {
	qs := Encode(urlstate.State{"tags": []any{"z", "a", "m"}})
	if qs != "tags=z&tags=a&tags=m" {
		t.Errorf("element order not preserved: %q", qs)
	}
	back := Decode(qs)
	if !urlstate.DeepEqual(back, urlstate.State{"tags": []any{"z", "a", "m"}}) {
		t.Errorf("decoded order wrong: %v", back)
	}
}

func TestIsNumeral(t *testing.T) {
	valid := []string{"0", "5", "-5", "3.14", "-0.5", "007"}
	invalid := []string{"", "-", ".", "1.", ".5", "1.2.3", "1e5", "abc", "--1", "1-"}

	for _, s := range valid {
		if !isNumeral(s) {
			t.Errorf("isNumeral(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if isNumeral(s) {
			t.Errorf("isNumeral(%q) = true, want false", s)
		}
	}
}

func TestLargeIntegralFallsBackToFloat(t *testing.T) {
	// Past int range but still finite as float64.
	got := Decode("n=99999999999999999999")
	f, ok := got["n"].(float64)
	if !ok {
		t.Fatalf("got %T(%v), want float64", got["n"], got["n"])
	}
	if f <= 0 {
		t.Errorf("unexpected value %v", f)
	}
	if strings.Contains(Encode(urlstate.State{"n": f}), "e") {
		t.Errorf("re-encoded float should not use exponent notation")
	}
}
