// Package middlewares holds the dispatcher middlewares of the shop bot.
package middlewares

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
)

// Database makes the catalog store available to every handler.
func Database(store catalog.Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			catalog.WithStore(c, store)
			return next(c)
		}
	}
}
