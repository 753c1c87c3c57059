package easyshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/bots/easyshop/handlers"
	"github.com/m3rciful/easyshop/bots/easyshop/payment"
	"github.com/m3rciful/easyshop/core/bootstrap"
	"github.com/m3rciful/easyshop/core/logger"
	coretelegram "github.com/m3rciful/easyshop/core/telegram"
	"github.com/m3rciful/easyshop/core/telegram/dispatch"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// Deps are the infrastructure pieces an App is built from.
type Deps struct {
	Store    catalog.Store
	Sessions state.Storage
	// Payments is nil when online payment is disabled.
	Payments payment.Provider
	Now      func() time.Time
}

// App is the assembled shop bot.
type App struct {
	cfg      *Config
	store    catalog.Store
	sessions state.Storage
	payments payment.Provider

	dp       *dispatch.Dispatcher
	session  *coretelegram.NetworkSession
	notifier *coretelegram.DeferredNotifier
	stats    *handlers.Stats

	infra *bootstrap.Result
}

// Bootstrap prepares logging, storage and the payment client, then builds the App.
// The catalog lives in Postgres when a database host is configured and in memory otherwise.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("easyshop: nil config")
	}
	opts := bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	}
	if cfg.Database.Enabled() {
		opts.Modules.Seeders = append(opts.Modules.Seeders, catalog.Seeder(cfg.Catalog))
	}
	res, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	var store catalog.Store
	if res.DB != nil {
		store = catalog.NewPostgresStore(res.DB)
	} else {
		store = catalog.NewMemoryStore(cfg.Catalog)
	}

	var payments payment.Provider
	client, err := payment.NewClient(payment.OptionsFromConfig(cfg.Payment))
	switch {
	case errors.Is(err, payment.ErrDisabled):
		logger.SVCPayment.Warn("payments disabled",
			slog.String("event", "payment.init"),
			slog.String("status", "skip"),
			slog.String("cause", "YOOKASSA_SHOP_ID or YOOKASSA_SECRET_KEY not set"),
		)
	case err != nil:
		_ = res.Close()
		return nil, fmt.Errorf("easyshop: payment client: %w", err)
	default:
		payments = client
	}

	app, err := NewApp(cfg, Deps{Store: store, Sessions: res.Sessions, Payments: payments})
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	app.infra = res
	return app, nil
}

// NewApp assembles the dispatcher from ready dependencies.
func NewApp(cfg *Config, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("easyshop: nil config")
	}
	if deps.Store == nil || deps.Sessions == nil {
		return nil, errors.New("easyshop: catalog store and session storage are required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	app := &App{
		cfg:      cfg,
		store:    deps.Store,
		sessions: deps.Sessions,
		payments: deps.Payments,
		dp:       dispatch.New(),
		session:  coretelegram.NewNetworkSession(),
		notifier: &coretelegram.DeferredNotifier{},
		stats:    handlers.NewStats(now()),
	}

	currency := cfg.Payment.Currency
	if c, ok := deps.Payments.(interface{ Currency() string }); ok {
		currency = c.Currency()
	}
	hd := handlers.Deps{
		Payments: deps.Payments,
		Currency: currency,
		Admins:   cfg.Telegram.AdminIDs,
		Notifier: app.notifier,
		Stats:    app.stats,
	}
	if err := SetupHandlers(app.dp, hd, now); err != nil {
		return nil, err
	}
	if err := SetupMiddlewares(app.dp, deps.Store, deps.Sessions, cfg.CoreConfig(), now); err != nil {
		return nil, err
	}
	if err := SetupLifecycle(app.dp, cfg.Telegram.AdminIDs); err != nil {
		return nil, err
	}

	logger.TWire.Info("dispatcher ready",
		slog.String("event", "wire.done"),
		slog.Any("routers", app.dp.RouterNames()),
		slog.Any("update_middlewares", app.dp.Update.Names()),
		slog.Any("message_middlewares", app.dp.Message.Names()),
		slog.Bool("payments", deps.Payments != nil),
	)
	return app, nil
}

// Dispatcher returns the configured dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dp }

// TelegramRunOptions describes how RunTelegram should drive the shop.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.dp.Registry(),
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      a.dp.Routes(),
		Session:     a.session,
		Notifier:    a.notifier,
		OnStart:     a.dp.Startup,
		OnStop:      a.dp.Shutdown,
	}, nil
}

// Close releases the session store and the database opened by Bootstrap.
func (a *App) Close() error {
	if a == nil || a.infra == nil {
		return nil
	}
	return a.infra.Close()
}
