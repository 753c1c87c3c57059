// Package dispatch routes updates through an ordered set of routers.
//
// Routers are included in a fixed sequence with the error handler last. Once the
// error handler is set, or the first update was dispatched, the dispatcher is
// sealed and rejects further routers. Middleware chains stay open until the
// first update is dispatched.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/logger"
	tg "github.com/m3rciful/easyshop/core/telegram"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/middleware"
	"github.com/m3rciful/easyshop/core/telegram/router"
)

var (
	// ErrSealed is returned when registering after the error handler or after dispatch started.
	ErrSealed = errors.New("dispatch: dispatcher sealed")
	// ErrDuplicate is returned when a router name or error handler is registered twice.
	ErrDuplicate = errors.New("dispatch: duplicate registration")
)

// ErrorHandler receives every error raised by middlewares or handlers, including recovered panics.
type ErrorHandler func(c tele.Context, err error) error

type namedHook struct {
	name string
	hook tg.Hook
}

// Dispatcher owns the routers, the two middleware scopes and the lifecycle hooks of a bot.
type Dispatcher struct {
	// Update middlewares run for every update.
	Update middleware.Chain
	// Message middlewares run inside Update, only for updates carrying a new message.
	Message middleware.Chain

	mu         sync.Mutex
	routers    []*router.Router
	names      map[string]struct{}
	errHandler ErrorHandler
	fallback   tele.HandlerFunc
	startup    []namedHook
	shutdown   []namedHook
	registry   *tg.Registry

	sealed   atomic.Bool
	once     sync.Once
	pipeline tele.HandlerFunc
}

// New returns an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		names:    make(map[string]struct{}),
		registry: tg.NewRegistry(),
	}
}

// IncludeRouter appends r. Routers are consulted in inclusion order.
func (d *Dispatcher) IncludeRouter(r *router.Router) error {
	if r == nil {
		return errors.New("dispatch: nil router")
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("dispatch: malformed router: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sealed.Load() {
		return fmt.Errorf("%w: cannot include router %q", ErrSealed, r.Name())
	}
	if _, dup := d.names[r.Name()]; dup {
		return fmt.Errorf("%w: router %q", ErrDuplicate, r.Name())
	}
	if err := d.registry.Register(r.Commands()...); err != nil {
		return fmt.Errorf("dispatch: router %q: %w", r.Name(), err)
	}
	r.Seal()
	d.names[r.Name()] = struct{}{}
	d.routers = append(d.routers, r)

	logger.TWire.Debug("router included",
		slog.String("event", "wire.router"),
		slog.String("router", r.Name()),
		slog.Int("count", len(r.Bindings())),
	)
	return nil
}

// IncludeRouters includes every router in order and stops at the first error.
func (d *Dispatcher) IncludeRouters(rs ...*router.Router) error {
	for _, r := range rs {
		if err := d.IncludeRouter(r); err != nil {
			return err
		}
	}
	return nil
}

// SetFallback sets the handler for updates no binding accepted.
// Without it, unmatched callbacks get a short notice and other updates are skipped.
func (d *Dispatcher) SetFallback(h tele.HandlerFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sealed.Load() {
		return fmt.Errorf("%w: cannot set fallback", ErrSealed)
	}
	d.fallback = h
	return nil
}

// SetErrorHandler registers the catch-all error handler and seals the dispatcher.
// It must be the final registration.
func (d *Dispatcher) SetErrorHandler(h ErrorHandler) error {
	if h == nil {
		return errors.New("dispatch: nil error handler")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.errHandler != nil {
		return fmt.Errorf("%w: error handler", ErrDuplicate)
	}
	if d.sealed.Load() {
		return fmt.Errorf("%w: cannot set error handler", ErrSealed)
	}
	d.errHandler = h
	d.seal()
	return nil
}

func (d *Dispatcher) seal() {
	if d.sealed.Swap(true) {
		return
	}
	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("count", len(d.routers)),
		slog.Int("commands", len(d.registry.Commands())),
	)
}

// Sealed reports whether registration is closed.
func (d *Dispatcher) Sealed() bool {
	return d.sealed.Load()
}

// RouterNames lists included routers in order.
func (d *Dispatcher) RouterNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.routers))
	for i, r := range d.routers {
		out[i] = r.Name()
	}
	return out
}

// HasErrorHandler reports whether SetErrorHandler succeeded.
func (d *Dispatcher) HasErrorHandler() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errHandler != nil
}

// Registry returns the command menu collected from included routers.
func (d *Dispatcher) Registry() *tg.Registry {
	return d.registry
}

// OnStartup appends a hook run by Startup.
func (d *Dispatcher) OnStartup(name string, h tg.Hook) error {
	return d.addHook(&d.startup, name, h)
}

// OnShutdown appends a hook run by Shutdown.
func (d *Dispatcher) OnShutdown(name string, h tg.Hook) error {
	return d.addHook(&d.shutdown, name, h)
}

func (d *Dispatcher) addHook(list *[]namedHook, name string, h tg.Hook) error {
	if name == "" || h == nil {
		return fmt.Errorf("dispatch: invalid hook %q", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	*list = append(*list, namedHook{name: name, hook: h})
	return nil
}

// Startup runs startup hooks in order and stops at the first failure.
func (d *Dispatcher) Startup(ctx context.Context, rt tg.Runtime) error {
	d.mu.Lock()
	hooks := append([]namedHook(nil), d.startup...)
	d.mu.Unlock()
	for _, h := range hooks {
		if err := h.hook(ctx, rt); err != nil {
			return fmt.Errorf("startup hook %s: %w", h.name, err)
		}
	}
	return nil
}

// Shutdown runs every shutdown hook in order and joins their errors.
func (d *Dispatcher) Shutdown(ctx context.Context, rt tg.Runtime) error {
	d.mu.Lock()
	hooks := append([]namedHook(nil), d.shutdown...)
	d.mu.Unlock()
	var errs []error
	for _, h := range hooks {
		if err := h.hook(ctx, rt); err != nil {
			errs = append(errs, fmt.Errorf("shutdown hook %s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}

// Handle dispatches one update. The first call seals the dispatcher.
func (d *Dispatcher) Handle(c tele.Context) error {
	d.once.Do(d.build)

	err := d.pipeline(c)
	if err == nil {
		return nil
	}
	d.mu.Lock()
	eh := d.errHandler
	d.mu.Unlock()
	if eh == nil {
		return err
	}
	return middleware.Recover(func(c tele.Context) error {
		return eh(c, err)
	})(c)
}

func (d *Dispatcher) build() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seal()
	d.Update.Seal()
	d.Message.Seal()

	routed := d.route
	inner := d.Message.Then(routed)
	d.pipeline = middleware.Recover(d.Update.Then(func(c tele.Context) error {
		if c.Update().Message != nil {
			return inner(c)
		}
		return routed(c)
	}))
}

func (d *Dispatcher) route(c tele.Context) error {
	d.mu.Lock()
	routers := d.routers
	fallback := d.fallback
	d.mu.Unlock()

	for _, r := range routers {
		handled, err := r.Dispatch(c)
		if handled {
			return err
		}
		if err != nil {
			return err
		}
	}

	start := time.Now()
	if fallback != nil {
		tghelpers.WithHandler(c, "fallback")
		err := fallback(c)
		router.LogHandlerSummary(c, "", "fallback", start, "", err)
		return err
	}
	if c.Callback() != nil {
		_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	router.LogHandlerSummary(c, "", "unhandled", start, "skip", nil)
	return nil
}

// Routes binds Handle to every endpoint the bots receive.
func (d *Dispatcher) Routes() []tg.Route {
	endpoints := []string{
		tele.OnText,
		tele.OnCallback,
		tele.OnQuery,
		tele.OnPhoto,
		tele.OnDocument,
		tele.OnSticker,
		tele.OnContact,
		tele.OnLocation,
		tele.OnVoice,
	}
	routes := make([]tg.Route, 0, len(endpoints))
	for _, ep := range endpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: d.Handle})
	}
	return routes
}
