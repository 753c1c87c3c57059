package state

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/logger"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
)

const sessionKey = "fsm_session"

// KeyFrom derives the session key of the current update.
// It reports false for updates without a sender, such as channel posts.
func KeyFrom(c tele.Context) (Key, bool) {
	user := c.Sender()
	if user == nil {
		return Key{}, false
	}
	key := Key{ChatID: user.ID, UserID: user.ID}
	if chat := c.Chat(); chat != nil {
		key.ChatID = chat.ID
	}
	return key, true
}

// WithSession loads the session before next runs and saves it afterwards when it changed.
// The session is saved even when next fails so that partial progress is not lost.
func WithSession(store Storage) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			key, ok := KeyFrom(c)
			if !ok {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			session, err := store.Load(ctx, key)
			if err != nil {
				return fmt.Errorf("load session %s: %w", key, err)
			}
			c.Set(sessionKey, session)

			err = next(c)

			if session.Dirty() {
				if saveErr := store.Save(ctx, key, session); saveErr != nil {
					logger.LogEvent(ctx, logger.Session, slog.LevelError, "session.save",
						slog.String("status", "fail"),
						slog.String("err", saveErr.Error()),
					)
					if err == nil {
						err = fmt.Errorf("save session %s: %w", key, saveErr)
					}
				} else if logger.ShouldSampleDebug() {
					logger.LogEvent(ctx, logger.Session, slog.LevelDebug, "session.save",
						slog.String("status", "ok"),
						slog.String("state", string(session.State)),
					)
				}
			}
			return err
		}
	}
}

// FromContext returns the session injected by WithSession, or nil.
func FromContext(c tele.Context) *Session {
	if s, ok := c.Get(sessionKey).(*Session); ok {
		return s
	}
	return nil
}

// Set stores s in the update context. Handlers normally get it from WithSession.
func Set(c tele.Context, s *Session) {
	c.Set(sessionKey, s)
}
