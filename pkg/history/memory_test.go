package history

import "testing"

func TestMemoryReadWrite(t *testing.T) {
	t.Run("InitialQuery", func(t *testing.T) {
		m := NewMemory("?page=1")
		if got := m.ReadQuery(Browser); got != "page=1" {
			t.Errorf("ReadQuery = %q, want page=1", got)
		}
	})

	t.Run("ReplaceKeepsLength", func(t *testing.T) {
		m := NewMemory("")
		m.WriteQuery("page=2", Replace, Browser, "")
		m.WriteQuery("page=3", Replace, Browser, "")
		if m.Len() != 1 {
			t.Errorf("Len = %d, want 1", m.Len())
		}
		if got := m.ReadQuery(Browser); got != "page=3" {
			t.Errorf("ReadQuery = %q, want page=3", got)
		}
	})

	t.Run("PushGrowsLength", func(t *testing.T) {
		m := NewMemory("")
		m.WriteQuery("page=2", Push, Browser, "")
		m.WriteQuery("page=3", Push, Browser, "")
		if m.Len() != 3 {
			t.Errorf("Len = %d, want 3", m.Len())
		}
	})

	t.Run("HashRouting", func(t *testing.T) {
		m := NewMemoryAt("/", "", "tab=a")
		if got := m.ReadQuery(Hash); got != "tab=a" {
			t.Errorf("ReadQuery(Hash) = %q, want tab=a", got)
		}
		m.WriteQuery("tab=b", Replace, Hash, "")
		if got := m.ReadQuery(Hash); got != "tab=b" {
			t.Errorf("after write: %q, want tab=b", got)
		}
		// The search component is untouched by hash writes.
		if got := m.ReadQuery(Browser); got != "" {
			t.Errorf("search component changed: %q", got)
		}
	})

	t.Run("BasePath", func(t *testing.T) {
		m := NewMemoryAt("/list", "page=1", "")
		m.WriteQuery("page=2", Push, Browser, "/search")
		if got := m.Path(); got != "/search" {
			t.Errorf("Path = %q, want /search", got)
		}
	})
}

func TestMemoryNavigation(t *testing.T) {
	t.Run("BackRestoresQuery", func(t *testing.T) {
		m := NewMemory("page=1")
		m.WriteQuery("page=2", Push, Browser, "")

		m.Back()
		if got := m.ReadQuery(Browser); got != "page=1" {
			t.Errorf("after Back: %q, want page=1", got)
		}
		m.Forward()
		if got := m.ReadQuery(Browser); got != "page=2" {
			t.Errorf("after Forward: %q, want page=2", got)
		}
	})

	t.Run("BackAtOldestIsNoop", func(t *testing.T) {
		m := NewMemory("page=1")
		m.Back()
		if got := m.ReadQuery(Browser); got != "page=1" {
			t.Errorf("Back at oldest changed query: %q", got)
		}
	})

	t.Run("PushTruncatesForwardEntries", func(t *testing.T) {
		m := NewMemory("a=1")
		m.WriteQuery("a=2", Push, Browser, "")
		m.Back()
		m.WriteQuery("a=3", Push, Browser, "")

		if m.Len() != 2 {
			t.Errorf("Len = %d, want 2", m.Len())
		}
		m.Forward()
		if got := m.ReadQuery(Browser); got != "a=3" {
			t.Errorf("forward entry: %q, want a=3", got)
		}
	})

	t.Run("PopStateFires", func(t *testing.T) {
		m := NewMemory("")
		m.WriteQuery("page=2", Push, Browser, "")

		fired := 0
		unsub := m.SubscribePopState(func() { fired++ })
		m.Back()
		if fired != 1 {
			t.Errorf("popstate fired %d times, want 1", fired)
		}

		unsub()
		m.Forward()
		if fired != 1 {
			t.Errorf("fired after unsubscribe: %d", fired)
		}
	})

	t.Run("WritesDoNotFirePopState", func(t *testing.T) {
		m := NewMemory("")
		fired := 0
		m.SubscribePopState(func() { fired++ })

		m.WriteQuery("a=1", Push, Browser, "")
		m.WriteQuery("a=2", Replace, Browser, "")
		if fired != 0 {
			t.Errorf("writes fired popstate %d times", fired)
		}
	})

	t.Run("HashChangeFiresOnlyWhenFragmentDiffers", func(t *testing.T) {
		m := NewMemoryAt("/", "", "tab=a")
		m.WriteQuery("tab=b", Push, Hash, "")
		m.WriteQuery("page=2", Push, Browser, "")

		hashFired := 0
		m.SubscribeHashChange(func() { hashFired++ })

		m.Back() // hash query unchanged between the two newest entries
		if hashFired != 0 {
			t.Errorf("hashchange fired on non-hash navigation: %d", hashFired)
		}
		m.Back() // tab=b -> tab=a
		if hashFired != 1 {
			t.Errorf("hashchange fired %d times, want 1", hashFired)
		}
	})
}

func TestDetached(t *testing.T) {
	var d Detached
	if d.IsInteractive() {
		t.Error("Detached must not be interactive")
	}
	if d.ReadQuery(Browser) != "" {
		t.Error("Detached read should be empty")
	}
	d.WriteQuery("page=1", Push, Browser, "") // must not panic
	unsub := d.SubscribePopState(func() {})
	unsub()
}
