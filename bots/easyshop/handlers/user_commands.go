package handlers

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/middlewares"
	"github.com/m3rciful/easyshop/core/telegram/format"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/keyboard"
	"github.com/m3rciful/easyshop/core/telegram/router"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// MainMenu is the reply keyboard shown after /start.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnCatalog, BtnCart},
		[]string{BtnHelp},
	)
}

// UserCommands handles /start, /help and /cancel.
func UserCommands(d Deps) *router.Router {
	help := func(c tele.Context) error {
		name := d.BotName
		if name == "" {
			name = "easyshop_bot"
		}
		return tghelpers.SendHTML(c, fmt.Sprintf(HelpText, format.EscapeHTML(name)))
	}
	return router.New("user_commands").
		Command("/start", "Start shopping", start).
		Command("/help", "How to use the shop", help).
		Command("/cancel", "Cancel the current action", cancel).
		Callback(CbCancel, cancel).
		Handle("help.button", router.TextEquals(BtnHelp), help)
}

func start(c tele.Context) error {
	if s := state.FromContext(c); s != nil {
		leaveQtyInput(s)
	}
	name := "there"
	if customer, ok := middlewares.CustomerFrom(c); ok {
		name = customer.DisplayName()
	}
	return tghelpers.SendHTML(c, fmt.Sprintf(WelcomeText, format.EscapeHTML(name)), MainMenu())
}

func cancel(c tele.Context) error {
	if s := state.FromContext(c); s != nil {
		leaveQtyInput(s)
	}
	tghelpers.Ack(c)
	return tghelpers.SendText(c, CancelledText, MainMenu())
}

// leaveQtyInput returns to idle without touching the cart.
func leaveQtyInput(s *state.Session) {
	s.SetState(state.StateIdle)
	s.Delete(keyQtyProduct)
}
