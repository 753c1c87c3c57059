package telegram

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/easyshop/core/logger"
	"github.com/m3rciful/easyshop/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 60 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 2 * time.Second
)

// NetworkSession owns the HTTP connection pool used for Bot API calls.
// Close releases it exactly once, no matter how many shutdown paths call it.
type NetworkSession struct {
	transport *http.Transport
	client    *http.Client

	once     sync.Once
	releases atomic.Int32
}

// NewNetworkSession returns a session whose client retries transient network errors.
// The client timeout must exceed the long poll timeout.
func NewNetworkSession() *NetworkSession {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &NetworkSession{
		transport: transport,
		client: &http.Client{
			Timeout: defaultClientTimeout,
			Transport: &retryTransport{
				base:       transport,
				maxRetries: defaultRetryAttempts,
				backoff:    defaultRetryBackoff,
			},
		},
	}
}

// Client returns the shared HTTP client.
func (s *NetworkSession) Client() *http.Client {
	return s.client
}

// Close drops idle connections. Calls after the first are no-ops.
func (s *NetworkSession) Close() error {
	s.once.Do(func() {
		s.transport.CloseIdleConnections()
		s.releases.Add(1)
		logger.TG.Info("network session released",
			slog.String("event", "session.release"),
		)
	})
	return nil
}

// Releases reports how many times the pool was actually released (0 or 1).
func (s *NetworkSession) Releases() int {
	return int(s.releases.Load())
}

// retryTransport retries transient failures. Requests with side effects, such as
// sendMessage, are retried only when the failed attempt never wrote the request.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		curr := req
		if attempt > 1 {
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				curr.Body = body
			}
		}

		var wrote atomic.Bool
		trace := &httptrace.ClientTrace{
			WroteRequest: func(httptrace.WroteRequestInfo) { wrote.Store(true) },
		}
		curr = curr.WithContext(httptrace.WithClientTrace(curr.Context(), trace))

		resp, err := base.RoundTrip(curr)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || !replayable(req, wrote.Load()) || attempt == attempts {
			break
		}
		if err := sleepCtx(req.Context(), t.backoff*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func replayable(req *http.Request, written bool) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return !written
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
