// Package handlers implements the routers of the shop bot.
package handlers

import (
	"errors"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/bots/easyshop/catalog"
	"github.com/m3rciful/easyshop/bots/easyshop/payment"
	coreconfig "github.com/m3rciful/easyshop/core/config"
	coretelegram "github.com/m3rciful/easyshop/core/telegram"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// Callback uniques.
const (
	CbCatalog    = "catalog"
	CbProduct    = "product"
	CbCart       = "cart"
	CbCartAdd    = "cart_add"
	CbCartRemove = "cart_remove"
	CbCartClear  = "cart_clear"
	CbCartQty    = "cart_qty"
	CbCheckout   = "checkout"
	CbPayCheck   = "pay_check"
	CbCancel     = "cancel"
)

// StateAwaitingQty waits for a quantity typed by the user.
const StateAwaitingQty state.State = "cart:awaiting_qty"

const keyQtyProduct = "qty_product"

var (
	errNoCatalog = errors.New("handlers: catalog store missing from context")
	errNoSession = errors.New("handlers: session missing from context")
)

// Deps are the collaborators shared by all routers.
type Deps struct {
	// Payments is nil when the shop has no payment credentials.
	Payments payment.Provider
	Currency string
	Admins   coreconfig.AdminIDs
	Notifier coretelegram.Notifier
	Stats    *Stats
	// BotName is used in the inline search hint.
	BotName string
}

func (d Deps) currency() string {
	if d.Currency == "" {
		return coreconfig.DefaultCurrency
	}
	return d.Currency
}

// Stats counts shop activity since start.
type Stats struct {
	started   time.Time
	checkouts atomic.Int64
	paid      atomic.Int64
	revenue   atomic.Int64
}

// NewStats starts counting at now.
func NewStats(now time.Time) *Stats {
	return &Stats{started: now}
}

// Snapshot is a copy of the counters.
type Snapshot struct {
	Uptime    time.Duration
	Checkouts int64
	Paid      int64
	Revenue   int64
}

// Snapshot reads the counters.
func (s *Stats) Snapshot(now time.Time) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{
		Uptime:    now.Sub(s.started).Truncate(time.Second),
		Checkouts: s.checkouts.Load(),
		Paid:      s.paid.Load(),
		Revenue:   s.revenue.Load(),
	}
}

func (s *Stats) checkout() {
	if s != nil {
		s.checkouts.Add(1)
	}
}

func (s *Stats) paidOrder(amount int64) {
	if s != nil {
		s.paid.Add(1)
		s.revenue.Add(amount)
	}
}

func storeFrom(c tele.Context) (catalog.Store, error) {
	s, ok := catalog.FromContext(c)
	if !ok {
		return nil, errNoCatalog
	}
	return s, nil
}

func sessionFrom(c tele.Context) (*state.Session, error) {
	s := state.FromContext(c)
	if s == nil {
		return nil, errNoSession
	}
	return s, nil
}
