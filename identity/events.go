package identity

import (
	"sync"

	"github.com/heatloop/go-authstate"
)

// hub is the session-change broadcast registry. Subscribers receive every
// sign-in, sign-out, and refresh event; callbacks run synchronously, so they
// must not block (the authstate orchestrator only enqueues to a channel).
type hub struct {
	mu     sync.Mutex
	subs   map[int]func(authstate.SessionEvent)
	nextID int
}

func newHub() *hub {
	return &hub{
		subs: map[int]func(authstate.SessionEvent){},
	}
}

func (h *hub) subscribe(fn func(authstate.SessionEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *hub) emit(ev authstate.SessionEvent) {
	h.mu.Lock()
	callbacks := make([]func(authstate.SessionEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		callbacks = append(callbacks, fn)
	}
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(ev)
	}
}
