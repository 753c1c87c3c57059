package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/logger"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/netutil"
	tgsender "github.com/m3rciful/easyshop/core/telegram/sender"
)

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// Hook runs at a lifecycle boundary of RunTelegram.
type Hook func(ctx context.Context, rt Runtime) error

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	SenderOptions tgsender.Options
	Sender        *tgsender.Queue

	Middlewares []Middleware
	Routes      []Route

	// Session provides the HTTP client. RunTelegram releases it once polling has stopped.
	Session *NetworkSession
	// Notifier, when set, is bound to the bot before OnStart.
	Notifier *DeferredNotifier

	// APIURL overrides the Bot API endpoint; used by tests.
	APIURL string
	// Offline skips the getMe call on bot creation.
	Offline bool

	DisableWebhookCleanup bool
	DisableHelperSender   bool

	OnStart Hook
	OnStop  Hook
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot      *tele.Bot
	Sender   *tgsender.Queue
	Registry *Registry
	Notifier Notifier
	Session  *NetworkSession
}

// RunTelegram builds the bot, removes any webhook together with pending updates,
// and long-polls until ctx is done.
//
// Shutdown order: OnStop runs while the bot can still send, queued sends drain,
// polling stops, then the network session is released.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram: token is empty")
	}

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	session := opts.Session
	if session == nil {
		session = NewNetworkSession()
	}
	defer session.Close()

	poller := BuildPoller(PollerOptions{TimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds})
	settings := tele.Settings{
		URL:     opts.APIURL,
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  session.Client(),
		Offline: opts.Offline,
		OnError: onBotError,
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %s", netutil.Redact(err))
	}
	logger.TG.Info("polling mode",
		slog.String("event", "mode"),
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", int(poller.Timeout/time.Second)),
		slog.Duration("duration", logger.Took(buildStart)),
	)

	// Polling next to an active webhook would fail on every getUpdates call.
	if !opts.DisableWebhookCleanup {
		if err := bot.RemoveWebhook(true); err != nil {
			logger.TG.Error("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("err", netutil.Redact(err)),
			)
			return fmt.Errorf("telegram: delete webhook: %s", netutil.Redact(err))
		}
		logger.TG.Info("webhook deleted",
			slog.String("event", "delete_webhook"),
			slog.Bool("drop_pending", true),
		)
	}

	queue := opts.Sender
	if queue == nil {
		queue = tgsender.New(opts.SenderOptions)
	}
	if !opts.DisableHelperSender {
		tghelpers.SetQueue(queue)
		defer tghelpers.SetQueue(nil)
	}

	rt := Runtime{
		Bot:      bot,
		Sender:   queue,
		Registry: reg,
		Notifier: BotNotifier{Bot: bot},
		Session:  session,
	}
	if opts.Notifier != nil {
		opts.Notifier.Bind(rt.Notifier)
		defer opts.Notifier.Bind(nil)
		rt.Notifier = opts.Notifier
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	SetupCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			queue.Close()
			return fmt.Errorf("telegram: startup failed: %w", err)
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	stopped := false
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case <-runDone:
		stopped = true
	}

	var stopErr error
	if opts.OnStop != nil {
		// ctx is already cancelled here; hooks still need to reach Telegram.
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		stopErr = opts.OnStop(stopCtx, rt)
		cancel()
	}
	queue.Close()
	if !stopped {
		bot.Stop()
		<-runDone
	}
	if err := session.Close(); err != nil && stopErr == nil {
		stopErr = err
	}

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func onBotError(err error, c tele.Context) {
	attrs := []slog.Attr{slog.String("err", netutil.Redact(err))}
	if c != nil {
		ctx := tghelpers.BuildContext(c)
		logger.LogEvent(ctx, logger.TG, slog.LevelError, "tg.error", attrs...)
		return
	}
	logger.LogEvent(context.Background(), logger.TG, slog.LevelError, "tg.error", attrs...)
}
