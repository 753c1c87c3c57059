package middleware

import (
	"fmt"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

type named struct {
	name string
	fn   tele.MiddlewareFunc
}

// Chain is an ordered list of middlewares sharing one scope.
//
// The first registered middleware wraps the handler directly, so it runs last
// on the way in and first on the way out. Registering a, b, c yields the
// inbound order c, b, a, handler.
type Chain struct {
	mu     sync.RWMutex
	items  []named
	sealed bool
}

// Use appends fn under name. It fails once the chain was sealed.
func (ch *Chain) Use(name string, fn tele.MiddlewareFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("middleware: invalid registration %q", name)
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.sealed {
		return fmt.Errorf("middleware: chain sealed, cannot add %q", name)
	}
	ch.items = append(ch.items, named{name: name, fn: fn})
	return nil
}

// Seal forbids further registrations.
func (ch *Chain) Seal() {
	ch.mu.Lock()
	ch.sealed = true
	ch.mu.Unlock()
}

// Names lists middlewares in registration order.
func (ch *Chain) Names() []string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	out := make([]string, len(ch.items))
	for i, it := range ch.items {
		out[i] = it.name
	}
	return out
}

// Len returns the number of registered middlewares.
func (ch *Chain) Len() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.items)
}

// Then wraps h with every registered middleware.
func (ch *Chain) Then(h tele.HandlerFunc) tele.HandlerFunc {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	for _, it := range ch.items {
		h = it.fn(h)
	}
	return h
}
