package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/logger"
	"github.com/m3rciful/easyshop/core/telegram/sender"
)

var globalQueue atomic.Pointer[sender.Queue]

// SetQueue wires the asynchronous sender used by helper functions. nil restores synchronous sends.
func SetQueue(q *sender.Queue) {
	globalQueue.Store(q)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	q := globalQueue.Load()
	if q == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := q.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current chat.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendHTML sends text with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "send.html", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendHTML edits the callback message, or sends a new one for plain messages.
// Edits run synchronously because their result decides whether a new message is needed.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: firstMarkup(markup)})
}

// Ack answers the pending callback query, if any. Errors are ignored.
func Ack(c tele.Context, text ...string) {
	if c.Callback() == nil {
		return
	}
	resp := &tele.CallbackResponse{}
	if len(text) > 0 {
		resp.Text = text[0]
	}
	_ = c.Respond(resp)
}
