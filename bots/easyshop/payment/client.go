package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	"github.com/m3rciful/easyshop/core/logger"
)

const (
	defaultTimeout = 15 * time.Second
	maxBody        = 1 << 20
)

// Provider creates and inspects payments.
type Provider interface {
	CreatePayment(ctx context.Context, req CreateRequest) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// Options configure Client.
type Options struct {
	ShopID    string
	SecretKey string
	APIURL    string
	ReturnURL string
	Currency  string

	HTTPClient *http.Client
	// NewKey generates idempotence keys; uuid.NewString when nil.
	NewKey func() string
}

// OptionsFromConfig maps the payment section of the core config.
func OptionsFromConfig(cfg coreconfig.PaymentConfig) Options {
	return Options{
		ShopID:    cfg.ShopID,
		SecretKey: cfg.SecretKey,
		APIURL:    cfg.APIURL,
		ReturnURL: cfg.ReturnURL,
		Currency:  cfg.Currency,
	}
}

// Client is a YooKassa API client authenticated with shop id and secret key.
type Client struct {
	baseURL   string
	shopID    string
	secret    string
	returnURL string
	currency  string
	hc        *http.Client
	newKey    func() string
}

// NewClient validates opts. It returns ErrDisabled when credentials are missing
// and ErrNoReturnURL when they are set without an absolute return URL.
func NewClient(opts Options) (*Client, error) {
	shopID := strings.TrimSpace(opts.ShopID)
	secret := strings.TrimSpace(opts.SecretKey)
	if shopID == "" || secret == "" {
		return nil, ErrDisabled
	}
	returnURL := strings.TrimSpace(opts.ReturnURL)
	if u, err := url.Parse(returnURL); returnURL == "" || err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoReturnURL, returnURL)
	}
	base := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if base == "" {
		base = coreconfig.DefaultYooKassaAPIURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("payment: invalid api url: %w", err)
	}
	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = coreconfig.DefaultCurrency
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	newKey := opts.NewKey
	if newKey == nil {
		newKey = uuid.NewString
	}
	return &Client{
		baseURL:   base,
		shopID:    shopID,
		secret:    secret,
		returnURL: returnURL,
		currency:  currency,
		hc:        hc,
		newKey:    newKey,
	}, nil
}

// Currency returns the ISO code used for new payments.
func (c *Client) Currency() string { return c.currency }

// CreatePayment registers a redirect payment with automatic capture.
func (c *Client) CreatePayment(ctx context.Context, req CreateRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment: amount must be positive")
	}
	key := req.IdempotenceKey
	if key == "" {
		key = c.newKey()
	}
	body := createBody{
		Amount:       NewAmount(req.Amount, c.currency),
		Capture:      true,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: c.returnURL},
		Description:  truncate(req.Description, 128),
		Metadata:     req.Metadata,
	}
	var p Payment
	if err := c.do(ctx, http.MethodPost, "/payments", key, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPayment fetches the current state of payment id.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("payment: empty payment id")
	}
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path, idemKey string, in, out any) error {
	start := time.Now()
	event := "payment." + strings.ToLower(method)

	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("payment: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("payment: build request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secret)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idemKey != "" {
		req.Header.Set("Idempotence-Key", idemKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCPayment, slog.LevelError, event,
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("payment: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("payment: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		logger.LogEvent(ctx, logger.SVCPayment, slog.LevelError, event,
			slog.String("status", "fail"),
			slog.Int("http_code", resp.StatusCode),
			slog.String("err_code", apiErr.Code()),
			slog.Duration("duration", logger.Took(start)),
		)
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("payment: decode response: %w", err)
	}

	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	}
	if p, ok := out.(*Payment); ok {
		attrs = append(attrs,
			slog.String("payment_id", p.ID),
			slog.String("payment_status", p.Status),
		)
	}
	logger.LogEvent(ctx, logger.SVCPayment, slog.LevelInfo, event, attrs...)
	return nil
}

// IsAPIError reports whether err carries a YooKassa error response.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
