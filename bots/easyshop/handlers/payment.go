package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/cart"
	"github.com/m3rciful/easyshop/bots/easyshop/middlewares"
	"github.com/m3rciful/easyshop/bots/easyshop/payment"
	"github.com/m3rciful/easyshop/core/logger"
	coretelegram "github.com/m3rciful/easyshop/core/telegram"
	"github.com/m3rciful/easyshop/core/telegram/callbacks"
	"github.com/m3rciful/easyshop/core/telegram/format"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/keyboard"
	"github.com/m3rciful/easyshop/core/telegram/router"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// Payments handles checkout and payment status checks.
func Payments(d Deps) *router.Router {
	h := paymentHandlers{d: d}
	return router.New("payment_handlers").
		Command("/checkout", "Pay for your cart", h.checkout).
		Callback(CbCheckout, h.checkout).
		Callback(CbPayCheck, h.check)
}

type paymentHandlers struct {
	d Deps
}

func (h paymentHandlers) checkout(c tele.Context) error {
	if h.d.Payments == nil {
		tghelpers.Ack(c)
		return tghelpers.SendText(c, PaymentsDisabledText)
	}
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	if crt.Empty() {
		tghelpers.Ack(c, CartEmptyText)
		if c.Callback() != nil {
			return nil
		}
		return tghelpers.SendText(c, CartEmptyText)
	}
	pending, err := cart.LoadPending(s)
	if err != nil {
		return err
	}

	ctx := tghelpers.BuildContext(c)
	items := crt.Snapshot()
	if o, ok := pending.Match(items); ok {
		p, err := h.d.Payments.GetPayment(ctx, o.PaymentID)
		if err != nil {
			return err
		}
		switch {
		case p.Succeeded():
			return h.complete(c, s, pending, o, p)
		case !p.Final():
			logger.LogEvent(ctx, logger.SVCPayment, slog.LevelInfo, "checkout",
				slog.String("status", "reused"),
				slog.String("payment_id", o.PaymentID),
			)
			return h.sendCheckout(c, o)
		}
		pending.Remove(o.PaymentID)
	}

	chatID, userID := tghelpers.IDs(c)
	p, err := h.d.Payments.CreatePayment(ctx, payment.CreateRequest{
		Amount:      crt.Total(),
		Description: fmt.Sprintf("EasyShop order, %d items", crt.Count()),
		Metadata: map[string]string{
			"chat_id": strconv.FormatInt(chatID, 10),
			"user_id": strconv.FormatInt(userID, 10),
		},
	})
	if err != nil {
		return err
	}
	o := cart.Order{
		PaymentID:       p.ID,
		Amount:          crt.Total(),
		ConfirmationURL: p.ConfirmationURL(),
		Items:           items,
	}
	for _, old := range pending.Add(o) {
		logger.LogEvent(ctx, logger.SVCPayment, slog.LevelWarn, "checkout",
			slog.String("status", "dropped"),
			slog.String("payment_id", old.PaymentID),
		)
	}
	if err := pending.Save(s); err != nil {
		return err
	}
	h.d.Stats.checkout()
	logger.LogEvent(ctx, logger.SVCPayment, slog.LevelInfo, "checkout",
		slog.String("status", "ok"),
		slog.String("payment_id", p.ID),
		slog.Int64("cart_total", o.Amount),
		slog.Int("pending", len(pending.Orders)),
	)
	return h.sendCheckout(c, o)
}

func (h paymentHandlers) sendCheckout(c tele.Context, o cart.Order) error {
	rows := [][]keyboard.InlineBtn{}
	if o.ConfirmationURL != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: ButtonPay, URL: o.ConfirmationURL}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: ButtonPaid, Unique: CbPayCheck, Data: o.PaymentID}})
	tghelpers.Ack(c)
	return tghelpers.SendHTML(c,
		fmt.Sprintf(CheckoutText, format.Money(o.Amount, h.d.currency())),
		keyboard.InlineRows(rows...),
	)
}

func (h paymentHandlers) check(c tele.Context) error {
	id, err := callbacks.PayloadToken(c)
	if h.d.Payments == nil || err != nil {
		tghelpers.Ack(c, UnsupportedText)
		return nil
	}
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	pending, err := cart.LoadPending(s)
	if err != nil {
		return err
	}
	o, ok := pending.Find(id)
	if !ok {
		tghelpers.Ack(c, PaymentUnknownText)
		return nil
	}

	p, err := h.d.Payments.GetPayment(tghelpers.BuildContext(c), id)
	if err != nil {
		return err
	}
	switch {
	case p.Succeeded():
		return h.complete(c, s, pending, o, p)
	case p.Status == payment.StatusCanceled:
		pending.Remove(id)
		if err := pending.Save(s); err != nil {
			return err
		}
		tghelpers.Ack(c)
		return tghelpers.EditOrSendHTML(c, PaymentCanceledText)
	default:
		tghelpers.Ack(c, PaymentPendingText)
		return nil
	}
}

// complete takes the paid lines out of the cart. Items added after checkout stay.
func (h paymentHandlers) complete(c tele.Context, s *state.Session, pending *cart.Pending, o cart.Order, p *payment.Payment) error {
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	crt.Subtract(o.Items)
	if err := crt.Save(s); err != nil {
		return err
	}
	pending.Remove(o.PaymentID)
	if err := pending.Save(s); err != nil {
		return err
	}
	amount, err := p.Amount.Minor()
	if err != nil {
		amount = o.Amount
	}
	h.d.Stats.paidOrder(amount)

	ctx := tghelpers.BuildContext(c)
	buyer := "customer"
	if customer, ok := middlewares.CustomerFrom(c); ok {
		buyer = customer.DisplayName()
	}
	coretelegram.NotifyAdmins(ctx, h.d.Notifier, h.d.Admins, "payment.notify",
		fmt.Sprintf(AdminPaidText, o.PaymentID, buyer, format.Money(amount, h.d.currency())))
	logger.LogEvent(ctx, logger.SVCPayment, slog.LevelInfo, "payment",
		slog.String("status", "succeeded"),
		slog.String("payment_id", o.PaymentID),
		slog.Int("cart_left", crt.Count()),
	)

	tghelpers.Ack(c)
	return tghelpers.EditOrSendHTML(c, PaidText)
}
