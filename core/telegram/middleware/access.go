package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/logger"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
)

// AdminChecker reports whether a Telegram user id belongs to an administrator.
type AdminChecker interface {
	Contains(id int64) bool
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	Admins   AdminChecker
	OnReject tele.HandlerFunc
}

// AdminOnly lets only administrators reach next. Everyone else gets OnReject, if set.
// A nil checker rejects everybody.
func AdminOnly(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user != nil && opts.Admins != nil && opts.Admins.Contains(user.ID) {
				return next(c)
			}
			attrs := []slog.Attr{slog.String("outcome", "denied")}
			if user != nil {
				attrs = append(attrs, slog.Int64("user_id", user.ID))
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.admin_only", attrs...)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
