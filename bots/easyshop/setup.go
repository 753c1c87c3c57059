package easyshop

import (
	"fmt"
	"time"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/bots/easyshop/handlers"
	"github.com/m3rciful/easyshop/bots/easyshop/middlewares"
	coreconfig "github.com/m3rciful/easyshop/core/config"
	coretelegram "github.com/m3rciful/easyshop/core/telegram"
	"github.com/m3rciful/easyshop/core/telegram/dispatch"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// SetupHandlers includes the shop routers in their fixed order and registers the error handler last.
func SetupHandlers(dp *dispatch.Dispatcher, d handlers.Deps, now func() time.Time) error {
	if err := dp.IncludeRouters(
		handlers.UserCommands(d),
		handlers.Products(d),
		handlers.Cart(d),
		handlers.Payments(d),
		handlers.Admin(d, now),
	); err != nil {
		return fmt.Errorf("setup handlers: %w", err)
	}
	if err := dp.SetFallback(handlers.Fallback); err != nil {
		return fmt.Errorf("setup handlers: %w", err)
	}
	if err := dp.SetErrorHandler(handlers.ErrorHandler); err != nil {
		return fmt.Errorf("setup handlers: %w", err)
	}
	return nil
}

// SetupMiddlewares registers database and user on every update and throttling on messages.
// The first registered middleware runs innermost.
func SetupMiddlewares(dp *dispatch.Dispatcher, store catalog.Store, sessions state.Storage, cfg *coreconfig.Config, now func() time.Time) error {
	if err := dp.Update.Use("database", middlewares.Database(store)); err != nil {
		return fmt.Errorf("setup middlewares: %w", err)
	}
	if err := dp.Update.Use("user", middlewares.User(sessions, cfg.Telegram.AdminIDs)); err != nil {
		return fmt.Errorf("setup middlewares: %w", err)
	}
	throttling, err := middlewares.Throttling(cfg.RateLimit, now)
	if err != nil {
		return fmt.Errorf("setup middlewares: %w", err)
	}
	if err := dp.Message.Use("throttling", throttling); err != nil {
		return fmt.Errorf("setup middlewares: %w", err)
	}
	return nil
}

// SetupLifecycle notifies the primary admin when the bot starts and stops.
func SetupLifecycle(dp *dispatch.Dispatcher, admins coreconfig.AdminIDs) error {
	if err := dp.OnStartup("notify_admin", coretelegram.StartupHook(admins)); err != nil {
		return err
	}
	return dp.OnShutdown("notify_admin", coretelegram.ShutdownHook(admins))
}
