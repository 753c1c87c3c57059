package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/easyshop/core/config"
)

// DefaultAllowedUpdates lists the update kinds the bots handle.
var DefaultAllowedUpdates = []string{"message", "callback_query", "inline_query"}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	TimeoutSeconds int
	AllowedUpdates []string
}

// BuildPoller returns a long poller. A non-positive timeout selects the default.
func BuildPoller(opts PollerOptions) *tele.LongPoller {
	timeout := opts.TimeoutSeconds
	if timeout <= 0 {
		timeout = coreconfig.DefaultLongPollTimeoutSeconds
	}
	allowed := opts.AllowedUpdates
	if len(allowed) == 0 {
		allowed = DefaultAllowedUpdates
	}
	return &tele.LongPoller{
		Timeout:        time.Duration(timeout) * time.Second,
		AllowedUpdates: append([]string(nil), allowed...),
	}
}
