package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/cart"
	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/core/logger"
	"github.com/m3rciful/easyshop/core/telegram/callbacks"
	"github.com/m3rciful/easyshop/core/telegram/format"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/keyboard"
	"github.com/m3rciful/easyshop/core/telegram/router"
)

// Cart handles viewing and editing the cart.
func Cart(d Deps) *router.Router {
	h := cartHandlers{d: d}
	return router.New("cart_handlers").
		Command("/cart", "Review your cart", h.show).
		Callback(CbCart, h.show).
		Handle("cart.button", router.TextEquals(BtnCart), h.show).
		Callback(CbCartAdd, h.add).
		Callback(CbCartRemove, h.remove).
		Callback(CbCartClear, h.clear).
		Callback(CbCartQty, h.askQty).
		Handle("cart.qty_input", router.All(router.Text(), router.InState(StateAwaitingQty)), h.setQty)
}

type cartHandlers struct {
	d Deps
}

func (h cartHandlers) show(c tele.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	tghelpers.Ack(c)
	text, markup := CartView(crt, h.d.currency())
	return tghelpers.EditOrSendHTML(c, text, markup)
}

func (h cartHandlers) add(c tele.Context) error {
	id, err := callbacks.PayloadID(c)
	if err != nil {
		tghelpers.Ack(c, UnsupportedText)
		return nil
	}
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	p, err := store.Get(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		tghelpers.Ack(c, ProductGoneText)
		return nil
	}
	if err != nil {
		return err
	}
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	if err := crt.Add(p, 1); err != nil {
		if errors.Is(err, cart.ErrInvalidQty) {
			tghelpers.Ack(c, QtyTooLargeText)
			return nil
		}
		return err
	}
	if err := crt.Save(s); err != nil {
		return err
	}
	logCart(c, "cart.add", crt, slog.Int64("product_id", p.ID), slog.Int("qty", 1))
	tghelpers.Ack(c, CartAddedText)
	return nil
}

func (h cartHandlers) remove(c tele.Context) error {
	id, err := callbacks.PayloadID(c)
	if err != nil {
		tghelpers.Ack(c, UnsupportedText)
		return nil
	}
	return h.mutate(c, CartRemovedText, func(crt *cart.Cart) {
		if crt.Remove(id) {
			logCart(c, "cart.remove", crt, slog.Int64("product_id", id))
		}
	})
}

func (h cartHandlers) clear(c tele.Context) error {
	return h.mutate(c, CartClearedText, func(crt *cart.Cart) {
		crt.Clear()
		logCart(c, "cart.clear", crt)
	})
}

// mutate applies fn to the stored cart and redraws it.
func (h cartHandlers) mutate(c tele.Context, ack string, fn func(*cart.Cart)) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	fn(crt)
	if err := crt.Save(s); err != nil {
		return err
	}
	tghelpers.Ack(c, ack)
	text, markup := CartView(crt, h.d.currency())
	return tghelpers.EditOrSendHTML(c, text, markup)
}

func (h cartHandlers) askQty(c tele.Context) error {
	id, err := callbacks.PayloadID(c)
	if err != nil {
		tghelpers.Ack(c, UnsupportedText)
		return nil
	}
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	title := ""
	for _, it := range crt.Items {
		if it.ProductID == id {
			title = it.Title
		}
	}
	if title == "" {
		tghelpers.Ack(c, ProductGoneText)
		return nil
	}
	s.SetState(StateAwaitingQty)
	if err := s.Put(keyQtyProduct, id); err != nil {
		return err
	}
	tghelpers.Ack(c)
	return tghelpers.SendHTML(c,
		fmt.Sprintf(QtyPromptText, format.EscapeHTML(title), cart.MaxQty),
		keyboard.InlineColumn(keyboard.CancelButton(CbCancel)),
	)
}

func (h cartHandlers) setQty(c tele.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil || qty < 0 || qty > cart.MaxQty {
		return tghelpers.SendText(c, fmt.Sprintf(QtyInvalidText, cart.MaxQty))
	}
	var id int64
	ok, err := s.Get(keyQtyProduct, &id)
	if err != nil {
		return err
	}
	leaveQtyInput(s)
	crt, err := cart.Load(s)
	if err != nil {
		return err
	}
	if ok {
		err := crt.SetQty(id, qty)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return tghelpers.SendText(c, ProductGoneText)
		case err != nil:
			return err
		}
		if err := crt.Save(s); err != nil {
			return err
		}
		logCart(c, "cart.set_qty", crt, slog.Int64("product_id", id), slog.Int("qty", qty))
	}
	text, markup := CartView(crt, h.d.currency())
	return tghelpers.SendHTML(c, text, markup)
}

// CartView renders the cart with its editing keyboard.
func CartView(crt *cart.Cart, currency string) (string, *tele.ReplyMarkup) {
	if crt.Empty() {
		return CartEmptyText, keyboard.InlineColumn(keyboard.InlineBtn{Text: BtnCatalog, Unique: CbCatalog})
	}
	var b strings.Builder
	b.WriteString(CartTitle)
	b.WriteString("\n\n")
	rows := make([][]keyboard.InlineBtn, 0, len(crt.Items)+1)
	for i, it := range crt.Items {
		fmt.Fprintf(&b, "%d. %s × %d = %s\n", i+1,
			format.EscapeHTML(it.Title), it.Qty, format.Money(it.Subtotal(), currency))
		id := strconv.FormatInt(it.ProductID, 10)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "✏️ " + it.Title, Unique: CbCartQty, Data: id},
			{Text: ButtonRemoveItem, Unique: CbCartRemove, Data: id},
		})
	}
	fmt.Fprintf(&b, "\nTotal: <b>%s</b>", format.Money(crt.Total(), currency))
	rows = append(rows, []keyboard.InlineBtn{
		{Text: ButtonClear, Unique: CbCartClear},
		{Text: ButtonCheckout, Unique: CbCheckout},
	})
	return b.String(), keyboard.InlineRows(rows...)
}

func logCart(c tele.Context, event string, crt *cart.Cart, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("status", "ok"),
		slog.Int("cart_items", crt.Count()),
		slog.Int64("cart_total", crt.Total()),
	)
	logger.LogEvent(tghelpers.BuildContext(c), logger.SVCCart, slog.LevelInfo, event, attrs...)
}
