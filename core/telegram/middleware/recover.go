package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/logger"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
)

// PanicError carries a recovered panic value to the error handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Code is used as err_code in handler summaries.
func (e *PanicError) Code() string { return "panic" }

// Recover turns a panic in next into a *PanicError so that it reaches the error handler
// instead of crashing the poller goroutine.
func Recover(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelError, "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(stack)),
				)
				err = &PanicError{Value: r, Stack: stack}
			}
		}()
		return next(c)
	}
}
