package telegram

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/telegram/middleware"
)

// Middleware describes a global bot middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// DefaultMiddlewares builds the ambient chain applied to every endpoint before dispatching:
// correlation id and receipt logging, then outbound message counters.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "logger", Use: middleware.Logger},
		{Name: "metrics", Use: middleware.Metrics},
	}
}
