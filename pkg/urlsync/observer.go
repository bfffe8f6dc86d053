package urlsync

import (
	"sync"

	"github.com/vango-dev/urlstate"
)

// observerList manages state-change subscribers. Notification copies the
// subscriber slice before invoking callbacks so a callback can unsubscribe,
// or mutate the Controller, without deadlocking.
type observerList struct {
	mu     sync.RWMutex
	nextID int
	subs   []observer
}

type observer struct {
	id int
	fn func(urlstate.State)
}

func (l *observerList) subscribe(fn func(urlstate.State)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, observer{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, o := range l.subs {
			if o.id == id {
				l.subs[i] = l.subs[len(l.subs)-1]
				l.subs = l.subs[:len(l.subs)-1]
				return
			}
		}
	}
}

func (l *observerList) notify(s urlstate.State) {
	l.mu.RLock()
	subs := make([]observer, len(l.subs))
	copy(subs, l.subs)
	l.mu.RUnlock()

	for _, o := range subs {
		o.fn(s)
	}
}
