// Package router groups related bindings. A binding pairs a trigger with a
// handler; a router tries its bindings in registration order.
package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/telegram/commands"
	"github.com/m3rciful/easyshop/core/telegram/middleware"
)

// ErrSealed is reported when a router is modified after it was included into a dispatcher.
var ErrSealed = errors.New("router: sealed")

// Binding is a single trigger/handler pair.
type Binding struct {
	Name    string
	Trigger Trigger
	Handler tele.HandlerFunc
}

// Router is a named, ordered list of bindings with its own middlewares.
// Registration errors are collected and reported by Err, so that setup code
// can chain calls and check once.
type Router struct {
	name string

	mu       sync.RWMutex
	bindings []Binding
	wrapped  []tele.HandlerFunc
	names    map[string]struct{}
	commands []commands.Command
	mws      middleware.Chain
	errs     []error
	sealed   bool
}

// New creates an empty router.
func New(name string) *Router {
	return &Router{name: strings.TrimSpace(name), names: make(map[string]struct{})}
}

// Name returns the router name.
func (r *Router) Name() string { return r.name }

func (r *Router) fail(err error) {
	r.errs = append(r.errs, fmt.Errorf("router %q: %w", r.name, err))
}

// Handle appends a binding.
func (r *Router) Handle(name string, trigger Trigger, h tele.HandlerFunc) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	name = strings.TrimSpace(name)
	switch {
	case r.sealed:
		r.fail(fmt.Errorf("%w: cannot add %q", ErrSealed, name))
	case name == "":
		r.fail(errors.New("binding without name"))
	case trigger == nil || h == nil:
		r.fail(fmt.Errorf("binding %q has nil trigger or handler", name))
	default:
		if _, dup := r.names[name]; dup {
			r.fail(fmt.Errorf("binding %q registered twice", name))
			return r
		}
		r.names[name] = struct{}{}
		r.bindings = append(r.bindings, Binding{Name: name, Trigger: trigger, Handler: h})
	}
	return r
}

// Command binds a slash command and publishes it in the command menu when description is set.
func (r *Router) Command(cmd, description string, h tele.HandlerFunc) *Router {
	name := commands.Normalize(cmd)
	r.Handle("command."+strings.TrimPrefix(name, "/"), Command(name), h)
	r.mu.Lock()
	r.commands = append(r.commands, commands.Command{Name: name, Description: description, Hidden: description == ""})
	r.mu.Unlock()
	return r
}

// Callback binds an inline button unique key.
func (r *Router) Callback(unique string, h tele.HandlerFunc) *Router {
	return r.Handle("callback."+unique, Callback(unique), h)
}

// Use adds a router-scoped middleware. It runs only for updates matched by this router.
func (r *Router) Use(name string, mw tele.MiddlewareFunc) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		r.fail(fmt.Errorf("%w: cannot add middleware %q", ErrSealed, name))
		return r
	}
	if err := r.mws.Use(name, mw); err != nil {
		r.fail(err)
	}
	return r
}

// Err returns every registration error, or nil.
func (r *Router) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.name == "" {
		return errors.Join(append([]error{errors.New("router without name")}, r.errs...)...)
	}
	return errors.Join(r.errs...)
}

// Seal freezes the router and precomputes middleware-wrapped handlers.
func (r *Router) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return
	}
	r.sealed = true
	r.mws.Seal()
	r.wrapped = make([]tele.HandlerFunc, len(r.bindings))
	for i, b := range r.bindings {
		r.wrapped[i] = r.mws.Then(b.Handler)
	}
}

// Sealed reports whether Seal was called.
func (r *Router) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Bindings returns a copy of the bindings in order.
func (r *Router) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Binding(nil), r.bindings...)
}

// Commands returns the slash commands declared with Command.
func (r *Router) Commands() []commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]commands.Command(nil), r.commands...)
}

// Dispatch runs the first binding whose trigger matches c.
// It reports false when no binding matched. The router must be sealed.
func (r *Router) Dispatch(c tele.Context) (bool, error) {
	r.mu.RLock()
	if !r.sealed {
		r.mu.RUnlock()
		return false, fmt.Errorf("router %q: dispatch before seal", r.name)
	}
	bindings, wrapped := r.bindings, r.wrapped
	r.mu.RUnlock()

	for i, b := range bindings {
		if !b.Trigger(c) {
			continue
		}
		start := time.Now()
		return true, handleWithSummary(c, r.name, b.Name, start, func() error {
			return wrapped[i](c)
		})
	}
	return false, nil
}
