package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/telegram/router"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{
		ShopID:     "shop-1",
		SecretKey:  "secret",
		APIURL:     srv.URL + "/v3/",
		ReturnURL:  "https://t.me/easyshop_bot",
		HTTPClient: srv.Client(),
		NewKey:     func() string { return "key-1" },
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Options{ShopID: "shop"})
	assert.ErrorIs(t, err, ErrDisabled)

	c, err := NewClient(OptionsFromConfig(coreconfig.PaymentConfig{ShopID: "s", SecretKey: "k", ReturnURL: "https://t.me/shop"}))
	require.NoError(t, err)
	assert.Equal(t, "RUB", c.Currency())
	assert.Equal(t, coreconfig.DefaultYooKassaAPIURL, c.baseURL)
}

func TestNewClientRequiresReturnURL(t *testing.T) {
	for _, returnURL := range []string{"", "  ", "t.me/shop", "/thanks", "https://"} {
		_, err := NewClient(Options{ShopID: "s", SecretKey: "k", ReturnURL: returnURL})
		assert.ErrorIs(t, err, ErrNoReturnURL, returnURL)
	}

	_, err := NewClient(Options{ReturnURL: ""})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestCreatePayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/payments", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop-1", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "key-1", r.Header.Get("Idempotence-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, map[string]any{"value": "770.00", "currency": "RUB"}, body["amount"])
		assert.Equal(t, true, body["capture"])
		assert.Equal(t, map[string]any{"type": "redirect", "return_url": "https://t.me/easyshop_bot"}, body["confirmation"])
		assert.Equal(t, map[string]any{"chat_id": "42"}, body["metadata"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"2d8f","status":"pending","paid":false,
			"amount":{"value":"770.00","currency":"RUB"},
			"confirmation":{"type":"redirect","confirmation_url":"https://yoomoney.ru/checkout/2d8f"},
			"created_at":"2024-05-01T10:00:00.000Z"}`)
	})

	p, err := c.CreatePayment(context.Background(), CreateRequest{
		Amount:      77000,
		Description: "EasyShop order",
		Metadata:    map[string]string{"chat_id": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2d8f", p.ID)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "https://yoomoney.ru/checkout/2d8f", p.ConfirmationURL())
	assert.False(t, p.Succeeded())
	assert.False(t, p.Final())

	_, err = c.CreatePayment(context.Background(), CreateRequest{Amount: 0})
	assert.Error(t, err)
}

func TestGetPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v3/payments/2d8f", r.URL.Path)
		assert.Empty(t, r.Header.Get("Idempotence-Key"))
		_, _ = io.WriteString(w, `{"id":"2d8f","status":"succeeded","paid":true,"amount":{"value":"770.00","currency":"RUB"}}`)
	})

	p, err := c.GetPayment(context.Background(), "2d8f")
	require.NoError(t, err)
	assert.True(t, p.Succeeded())
	assert.True(t, p.Final())
	minor, err := p.Amount.Minor()
	require.NoError(t, err)
	assert.EqualValues(t, 77000, minor)

	_, err = c.GetPayment(context.Background(), " ")
	assert.Error(t, err)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","id":"e1","code":"invalid_request","description":"Amount is too small","parameter":"amount.value"}`)
	})

	_, err := c.CreatePayment(context.Background(), CreateRequest{Amount: 1})
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_request", apiErr.Code())
	assert.False(t, apiErr.Temporary())
	assert.Equal(t, "yookassa: http 400 invalid_request: Amount is too small (amount.value)", apiErr.Error())
	assert.Equal(t, "INVALID_REQUEST", router.ErrorCode(err))
}

func TestAPIErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetPayment(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "http_502", apiErr.Code())
	assert.True(t, apiErr.Temporary())
}

func TestAmount(t *testing.T) {
	assert.Equal(t, Amount{Value: "450.00", Currency: "RUB"}, NewAmount(45000, "RUB"))
	assert.Equal(t, "0.05", NewAmount(5, "RUB").Value)

	for in, want := range map[string]int64{"450.00": 45000, "3.5": 350, "12": 1200} {
		got, err := Amount{Value: in}.Minor()
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := Amount{Value: "1.234"}.Minor()
	assert.Error(t, err)
	_, err = Amount{Value: "abc"}.Minor()
	assert.Error(t, err)
}
