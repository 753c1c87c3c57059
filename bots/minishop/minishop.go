// Package minishop is the minimal shop bot: two fixed commands and nothing else.
package minishop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/logger"
	coretelegram "github.com/m3rciful/easyshop/core/telegram"
	"github.com/m3rciful/easyshop/core/telegram/dispatch"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/router"
)

// Fixed replies of the two commands.
const (
	// StartText answers /start.
	StartText = "👋 Welcome to EasyShop! Send /menu to see what we have today."
	// MenuText answers /menu with a static price list.
	MenuText = "🍽 Menu:\n1. Pizza Margherita - 450 RUB\n2. Caesar Salad - 320 RUB"
)

// Config is the core configuration; minishop has no sections of its own.
type Config struct {
	coreconfig.Config `yaml:",inline"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the optional YAML file at path and the environment.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// App holds the dispatcher built once at startup.
type App struct {
	cfg *Config
	dp  *dispatch.Dispatcher
}

// Commands returns the router answering /start and /menu.
func Commands() *router.Router {
	return router.New("commands").
		Command("/start", "Welcome message", func(c tele.Context) error {
			return tghelpers.SendText(c, StartText)
		}).
		Command("/menu", "Today's menu", func(c tele.Context) error {
			return tghelpers.SendText(c, MenuText)
		})
}

// New builds the App.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("minishop: nil config")
	}
	dp := dispatch.New()
	if err := dp.IncludeRouter(Commands()); err != nil {
		return nil, err
	}
	if err := dp.SetErrorHandler(logError); err != nil {
		return nil, err
	}
	return &App{cfg: cfg, dp: dp}, nil
}

// Bootstrap initialises logging and builds the App.
func Bootstrap(_ context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("minishop: nil config")
	}
	if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
		return nil, fmt.Errorf("minishop: logger init failed: %w", err)
	}
	return New(cfg)
}

// Dispatcher returns the configured dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dp }

// TelegramRunOptions describes how RunTelegram should drive the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.dp.Registry(),
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      a.dp.Routes(),
		OnStart:     a.dp.Startup,
		OnStop:      a.dp.Shutdown,
	}, nil
}

func logError(c tele.Context, err error) error {
	logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelError, "handler.error",
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	return nil
}
