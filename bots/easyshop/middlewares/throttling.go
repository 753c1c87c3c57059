package middlewares

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/middleware"
)

// SlowDownText is sent to users that write faster than the configured interval.
const SlowDownText = "⏳ Slow down, please. Try again in a moment."

// Throttling limits how often one user may send messages.
// A negative interval in cfg disables it. It sits on the message chain, so
// excluding callback or inline_query updates is rejected: they never reach it.
func Throttling(cfg coreconfig.RateLimitConfig, now func() time.Time) (tele.MiddlewareFunc, error) {
	exclude := make(map[string]struct{}, len(cfg.ExcludeUpdates))
	for _, kind := range cfg.ExcludeUpdates {
		if kind != coreconfig.UpdateMessage {
			return nil, fmt.Errorf("throttling: rate_limit.exclude_updates %q does not apply to messages", kind)
		}
		exclude[kind] = struct{}{}
	}
	return middleware.RateLimitMiddleware(middleware.RateLimitOptions{
		Interval: time.Duration(cfg.IntervalMS) * time.Millisecond,
		Exclude:  exclude,
		Now:      now,
		OnLimited: func(c tele.Context) error {
			return tghelpers.SendText(c, SlowDownText)
		},
	}), nil
}
