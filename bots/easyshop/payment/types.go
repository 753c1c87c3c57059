// Package payment talks to the YooKassa REST API (v3).
package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/easyshop/core/telegram/format"
)

// Payment statuses reported by YooKassa.
const (
	StatusPending           = "pending"
	StatusWaitingForCapture = "waiting_for_capture"
	StatusSucceeded         = "succeeded"
	StatusCanceled          = "canceled"
)

// Amount is a decimal string value such as "450.00" with an ISO currency code.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// NewAmount converts minor units into an Amount.
func NewAmount(minor int64, currency string) Amount {
	return Amount{Value: format.Decimal(minor), Currency: currency}
}

// Minor parses Value back into minor units.
func (a Amount) Minor() (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(a.Value), ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payment: bad amount %q: %w", a.Value, err)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("payment: bad amount %q", a.Value)
	}
	frac += strings.Repeat("0", 2-len(frac))
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payment: bad amount %q: %w", a.Value, err)
	}
	return units*100 + cents, nil
}

// Confirmation describes how the customer confirms the payment.
type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Payment is the subset of the YooKassa payment object used by the bot.
type Payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ConfirmationURL returns the redirect link, or "".
func (p *Payment) ConfirmationURL() string {
	if p == nil || p.Confirmation == nil {
		return ""
	}
	return p.Confirmation.ConfirmationURL
}

// Succeeded reports whether the money was received.
func (p *Payment) Succeeded() bool {
	return p != nil && (p.Status == StatusSucceeded || (p.Paid && p.Status == StatusWaitingForCapture))
}

// Final reports whether the status will not change anymore.
func (p *Payment) Final() bool {
	return p != nil && (p.Status == StatusSucceeded || p.Status == StatusCanceled)
}

// CreateRequest describes a new payment. Amount is in minor units.
type CreateRequest struct {
	Amount      int64
	Description string
	Metadata    map[string]string
	// IdempotenceKey is generated when empty.
	IdempotenceKey string
}

type createBody struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
