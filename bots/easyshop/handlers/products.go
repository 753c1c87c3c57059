package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/core/telegram/callbacks"
	"github.com/m3rciful/easyshop/core/telegram/format"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/keyboard"
	"github.com/m3rciful/easyshop/core/telegram/router"
	"github.com/m3rciful/easyshop/core/telegram/ui"
)

const searchLimit = 20

// Products handles catalog browsing and inline search.
func Products(d Deps) *router.Router {
	h := productHandlers{d: d}
	return router.New("product_handlers").
		Command("/catalog", "Browse products", h.catalog).
		Callback(CbCatalog, h.catalog).
		Handle("catalog.button", router.TextEquals(BtnCatalog), h.catalog).
		Callback(CbProduct, h.product).
		Handle("search", router.Query(), h.search)
}

type productHandlers struct {
	d Deps
}

func (h productHandlers) catalog(c tele.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	products, err := store.List(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	tghelpers.Ack(c)
	if len(products) == 0 {
		return tghelpers.EditOrSendHTML(c, CatalogEmptyText)
	}
	buttons := make([]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   p.Title + " · " + format.Money(p.Price, h.d.currency()),
			Unique: CbProduct,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	rows := keyboard.Chunk(buttons, 1)
	rows = append(rows, []keyboard.InlineBtn{{Text: BtnCart, Unique: CbCart}})
	return tghelpers.EditOrSendHTML(c, CatalogTitle, keyboard.InlineRows(rows...))
}

func (h productHandlers) product(c tele.Context) error {
	id, err := callbacks.PayloadID(c)
	if err != nil {
		tghelpers.Ack(c, UnsupportedText)
		return nil
	}
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	p, err := store.Get(tghelpers.BuildContext(c), id)
	if errors.Is(err, catalog.ErrNotFound) {
		tghelpers.Ack(c, ProductGoneText)
		return nil
	}
	if err != nil {
		return err
	}
	tghelpers.Ack(c)
	markup := keyboard.InlineRows(
		[]keyboard.InlineBtn{{Text: ButtonAddToCart, Unique: CbCartAdd, Data: strconv.FormatInt(p.ID, 10)}},
		[]keyboard.InlineBtn{{Text: ButtonBack, Unique: CbCatalog}, {Text: BtnCart, Unique: CbCart}},
	)
	return tghelpers.EditOrSendHTML(c, ProductText(p, h.d.currency()), markup)
}

func (h productHandlers) search(c tele.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	products, err := store.Search(tghelpers.BuildContext(c), c.Query().Text, searchLimit)
	if err != nil {
		return err
	}
	articles := make([]*tele.ArticleResult, 0, len(products))
	for _, p := range products {
		articles = append(articles, ui.ArticleResult(
			strconv.FormatInt(p.ID, 10),
			p.Title,
			format.Money(p.Price, h.d.currency())+" · "+p.Description,
			ProductText(p, h.d.currency()),
		))
	}
	return c.Answer(&tele.QueryResponse{
		Results:   ui.Results(articles...),
		CacheTime: 60,
	})
}

// ProductText renders a product card in HTML.
func ProductText(p catalog.Product, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", format.EscapeHTML(p.Title))
	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString(format.EscapeHTML(desc))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nPrice: %s", format.Money(p.Price, currency))
	return b.String()
}
