package handlers

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/telegram/format"
	tghelpers "github.com/m3rciful/easyshop/core/telegram/helpers"
	"github.com/m3rciful/easyshop/core/telegram/middleware"
	"github.com/m3rciful/easyshop/core/telegram/router"
)

// Admin holds commands available to configured administrators only.
// The commands stay out of the public menu.
func Admin(d Deps, now func() time.Time) *router.Router {
	if now == nil {
		now = time.Now
	}
	h := adminHandlers{d: d, now: now}
	return router.New("admin_handlers").
		Use("admin_only", middleware.AdminOnly(middleware.AdminOptions{
			Admins: d.Admins,
			OnReject: func(c tele.Context) error {
				return tghelpers.SendText(c, AccessDeniedText)
			},
		})).
		Command("/stats", "", h.stats)
}

type adminHandlers struct {
	d   Deps
	now func() time.Time
}

func (h adminHandlers) stats(c tele.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	products, err := store.List(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	snap := h.d.Stats.Snapshot(h.now())
	return tghelpers.SendHTML(c, fmt.Sprintf(StatsText,
		snap.Uptime,
		len(products),
		snap.Checkouts,
		snap.Paid,
		format.Money(snap.Revenue, h.d.currency()),
	))
}
