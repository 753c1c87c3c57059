package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/logger"
)

const (
	// StartupText is sent to the primary admin once polling is about to start.
	StartupText = "🟢 Bot started successfully"
	// ShutdownText is sent to the primary admin while the bot stops.
	ShutdownText = "🔴 Bot stopped"
)

// ErrNotifierUnbound is returned by DeferredNotifier before Bind.
var ErrNotifierUnbound = errors.New("telegram: notifier not bound to a bot")

// Notifier delivers service messages to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// BotNotifier sends notifications through a running bot.
type BotNotifier struct {
	Bot *tele.Bot
}

// Notify sends text to chatID without parse mode.
func (n BotNotifier) Notify(_ context.Context, chatID int64, text string) error {
	if n.Bot == nil {
		return ErrNotifierUnbound
	}
	_, err := n.Bot.Send(tele.ChatID(chatID), text)
	return err
}

// DeferredNotifier lets components built before the bot hold a Notifier.
// RunTelegram binds it once the bot exists.
type DeferredNotifier struct {
	mu     sync.RWMutex
	target Notifier
}

// Bind sets the notifier used by later Notify calls. nil unbinds.
func (d *DeferredNotifier) Bind(n Notifier) {
	d.mu.Lock()
	d.target = n
	d.mu.Unlock()
}

// Notify forwards to the bound notifier.
func (d *DeferredNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	d.mu.RLock()
	target := d.target
	d.mu.RUnlock()
	if target == nil {
		return ErrNotifierUnbound
	}
	return target.Notify(ctx, chatID, text)
}

// NotifyPrimaryAdmin sends text to the first configured admin.
// Delivery is best effort: failures and a missing admin are logged, never returned.
func NotifyPrimaryAdmin(ctx context.Context, n Notifier, admins coreconfig.AdminIDs, event, text string) {
	chatID, ok := admins.Primary()
	if !ok {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, event,
			slog.String("outcome", "skip"),
			slog.String("cause", "no admin ids configured"),
		)
		return
	}
	if n == nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, event,
			slog.String("outcome", "skip"),
			slog.String("cause", "no notifier"),
		)
		return
	}
	if err := n.Notify(ctx, chatID, text); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelError, event,
			slog.String("outcome", "fail"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, event,
		slog.String("outcome", "ok"),
		slog.Int64("chat_id", chatID),
	)
}

// NotifyAdmins sends text to every admin and returns how many deliveries succeeded.
func NotifyAdmins(ctx context.Context, n Notifier, admins coreconfig.AdminIDs, event, text string) int {
	delivered := 0
	for _, id := range admins {
		if n == nil {
			break
		}
		if err := n.Notify(ctx, id, text); err != nil {
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, event,
				slog.String("outcome", "fail"),
				slog.String("chat_id", strconv.FormatInt(id, 10)),
				slog.String("err", err.Error()),
			)
			continue
		}
		delivered++
	}
	return delivered
}

// StartupHook logs the start and notifies the primary admin.
func StartupHook(admins coreconfig.AdminIDs) Hook {
	return func(ctx context.Context, rt Runtime) error {
		logger.TG.Info("bot starting",
			slog.String("event", "bot.startup"),
			slog.Int("admins", len(admins)),
		)
		NotifyPrimaryAdmin(ctx, rt.Notifier, admins, "bot.startup.notify", StartupText)
		return nil
	}
}

// ShutdownHook logs the stop and notifies the primary admin.
// RunTelegram releases the network session after every stop hook returned.
func ShutdownHook(admins coreconfig.AdminIDs) Hook {
	return func(ctx context.Context, rt Runtime) error {
		logger.TG.Info("bot stopping",
			slog.String("event", "bot.shutdown"),
		)
		NotifyPrimaryAdmin(ctx, rt.Notifier, admins, "bot.shutdown.notify", ShutdownText)
		return nil
	}
}
