package cart

import (
	"errors"
	"slices"

	"github.com/m3rciful/easyshop/core/telegram/state"
)

const (
	ordersKey = "pending_orders"
	// MaxPending caps how many unpaid checkouts a chat keeps; the oldest is dropped first.
	MaxPending = 10
)

// Order is a checked-out copy of the cart awaiting payment.
type Order struct {
	PaymentID       string `json:"payment_id"`
	Amount          int64  `json:"amount"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
	Items           []Item `json:"items"`
}

// Pending lists unpaid orders of a chat, oldest first.
type Pending struct {
	Orders []Order `json:"orders"`
}

// LoadPending reads pending orders from s.
func LoadPending(s *state.Session) (*Pending, error) {
	p := &Pending{}
	if s == nil {
		return p, nil
	}
	if _, err := s.Get(ordersKey, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p into s. Without orders the key is removed.
func (p *Pending) Save(s *state.Session) error {
	if s == nil {
		return errors.New("cart: no session")
	}
	if len(p.Orders) == 0 {
		s.Delete(ordersKey)
		return nil
	}
	return s.Put(ordersKey, p)
}

// Add records o and returns the orders dropped to stay within MaxPending.
func (p *Pending) Add(o Order) []Order {
	p.Remove(o.PaymentID)
	p.Orders = append(p.Orders, o)
	if over := len(p.Orders) - MaxPending; over > 0 {
		dropped := slices.Clone(p.Orders[:over])
		p.Orders = slices.Delete(p.Orders, 0, over)
		return dropped
	}
	return nil
}

// Find returns the order paid by paymentID.
func (p *Pending) Find(paymentID string) (Order, bool) {
	for _, o := range p.Orders {
		if o.PaymentID == paymentID {
			return o, true
		}
	}
	return Order{}, false
}

// Match returns the newest order holding exactly the given lines.
func (p *Pending) Match(items []Item) (Order, bool) {
	for i := len(p.Orders) - 1; i >= 0; i-- {
		if slices.Equal(p.Orders[i].Items, items) {
			return p.Orders[i], true
		}
	}
	return Order{}, false
}

// Remove drops the order of paymentID and reports whether it existed.
func (p *Pending) Remove(paymentID string) bool {
	before := len(p.Orders)
	p.Orders = slices.DeleteFunc(p.Orders, func(o Order) bool { return o.PaymentID == paymentID })
	return len(p.Orders) != before
}
