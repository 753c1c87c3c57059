package router

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/telegram/callbacks"
	"github.com/m3rciful/easyshop/core/telegram/commands"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// Trigger decides whether a binding accepts the update in c.
type Trigger func(c tele.Context) bool

// CommandName returns the normalized slash command of a message, or "".
// "/Start@easyshop_bot payload" yields "/start".
func CommandName(c tele.Context) string {
	msg := c.Update().Message
	if msg == nil || !strings.HasPrefix(msg.Text, "/") {
		return ""
	}
	head, _, _ := strings.Cut(msg.Text, " ")
	head, _, _ = strings.Cut(head, "@")
	return commands.Normalize(head)
}

// Command matches messages starting with the slash command cmd.
func Command(cmd string) Trigger {
	want := commands.Normalize(cmd)
	return func(c tele.Context) bool {
		return want != "" && CommandName(c) == want
	}
}

// Callback matches inline button presses whose unique equals key.
func Callback(key string) Trigger {
	return func(c tele.Context) bool {
		return c.Callback() != nil && callbacks.CallbackKey(c) == key
	}
}

// Text matches plain text messages that are not commands.
func Text() Trigger {
	return func(c tele.Context) bool {
		msg := c.Update().Message
		return msg != nil && msg.Text != "" && !strings.HasPrefix(msg.Text, "/")
	}
}

// TextEquals matches a message whose trimmed text equals label, as sent by reply keyboards.
func TextEquals(label string) Trigger {
	return func(c tele.Context) bool {
		msg := c.Update().Message
		return msg != nil && strings.TrimSpace(msg.Text) == label
	}
}

// Query matches inline queries.
func Query() Trigger {
	return func(c tele.Context) bool {
		return c.Update().Query != nil
	}
}

// InState matches updates whose session is in st.
// It needs a session injected by state.WithSession earlier in the chain.
func InState(st state.State) Trigger {
	return func(c tele.Context) bool {
		s := state.FromContext(c)
		return s != nil && s.Is(st)
	}
}

// All matches when every trigger matches.
func All(triggers ...Trigger) Trigger {
	return func(c tele.Context) bool {
		for _, t := range triggers {
			if !t(c) {
				return false
			}
		}
		return len(triggers) > 0
	}
}

// Any matches when at least one trigger matches.
func Any(triggers ...Trigger) Trigger {
	return func(c tele.Context) bool {
		for _, t := range triggers {
			if t(c) {
				return true
			}
		}
		return false
	}
}
