package payment

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrDisabled is returned when shop credentials are missing.
var ErrDisabled = errors.New("payment: provider not configured")

// ErrNoReturnURL is returned when redirect confirmations have nowhere to send the buyer back.
var ErrNoReturnURL = errors.New("payment: return url must be an absolute url")

// APIError is a non-2xx response from YooKassa.
type APIError struct {
	StatusCode  int    `json:"-"`
	Type        string `json:"type"`
	ID          string `json:"id"`
	ErrCode     string `json:"code"`
	Description string `json:"description"`
	Parameter   string `json:"parameter"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("yookassa: http %d", e.StatusCode)
	if e.ErrCode != "" {
		msg += " " + e.ErrCode
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Parameter != "" {
		msg += " (" + e.Parameter + ")"
	}
	return msg
}

// Code returns the YooKassa error code, or "http_<status>" when the body had none.
func (e *APIError) Code() string {
	if e.ErrCode != "" {
		return e.ErrCode
	}
	return "http_" + strconv.Itoa(e.StatusCode)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
