package handlers

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/payment"
	"github.com/m3rciful/easyshop/core/logger"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/router"
)

// ErrorHandler logs a failed update and tells the user, best effort.
// YooKassa rejections get a payment-specific reply.
func ErrorHandler(c tele.Context, err error) error {
	ctx := tghelpers.BuildContext(c)
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.String("err_code", router.ErrorCode(err)),
	}
	reply := ErrorText
	if apiErr, ok := payment.IsAPIError(err); ok {
		reply = PaymentFailedText
		attrs = append(attrs, slog.String("yookassa_code", apiErr.Code()))
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelError, "handler.error", attrs...)
	if c.Query() != nil {
		return nil
	}
	tghelpers.Ack(c)
	if sendErr := c.Send(reply); sendErr != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "handler.error.reply",
			slog.String("status", "fail"),
			slog.String("err", sendErr.Error()),
		)
	}
	return nil
}

// Fallback answers updates no router accepted.
func Fallback(c tele.Context) error {
	switch {
	case c.Callback() != nil:
		tghelpers.Ack(c, UnsupportedText)
		return nil
	case c.Message() != nil && c.Message().Text != "":
		return tghelpers.SendText(c, UnknownText)
	}
	return nil
}
