package middlewares

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

const customerKey = "customer"

// Customer describes the sender of the current update.
type Customer struct {
	ID        int64
	ChatID    int64
	Username  string
	FirstName string
	Language  string
	IsAdmin   bool
}

// DisplayName prefers @username and falls back to the first name.
func (c Customer) DisplayName() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	if name := strings.TrimSpace(c.FirstName); name != "" {
		return name
	}
	return "customer"
}

// User loads the chat session and attaches the sender profile.
// The session is saved after the handler when it changed.
func User(sessions state.Storage, admins coreconfig.AdminIDs) tele.MiddlewareFunc {
	withSession := state.WithSession(sessions)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		inner := withSession(next)
		return func(c tele.Context) error {
			if u := c.Sender(); u != nil {
				customer := Customer{
					ID:        u.ID,
					ChatID:    u.ID,
					Username:  u.Username,
					FirstName: u.FirstName,
					Language:  u.LanguageCode,
					IsAdmin:   admins.Contains(u.ID),
				}
				if chat := c.Chat(); chat != nil {
					customer.ChatID = chat.ID
				}
				c.Set(customerKey, customer)
			}
			return inner(c)
		}
	}
}

// CustomerFrom returns the profile set by User.
func CustomerFrom(c tele.Context) (Customer, bool) {
	v, ok := c.Get(customerKey).(Customer)
	return v, ok
}
