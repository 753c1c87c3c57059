package telegram

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// failingBase fails every attempt, after writing the request when written is set.
func failingBase(calls *atomic.Int32, written bool) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		if written {
			if trace := httptrace.ContextClientTrace(req.Context()); trace != nil && trace.WroteRequest != nil {
				trace.WroteRequest(httptrace.WroteRequestInfo{})
			}
			return nil, &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}}
		}
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	})
}

func newPost(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "http://api.test/bot1:x/sendMessage", strings.NewReader(`{"chat_id":1,"text":"hi"}`))
	require.NoError(t, err)
	return req
}

func TestRetryTransportDoesNotResendWrittenPost(t *testing.T) {
	var calls atomic.Int32
	rt := &retryTransport{base: failingBase(&calls, true), maxRetries: 3}

	_, err := rt.RoundTrip(newPost(t))
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetryTransportRetriesUnwrittenPost(t *testing.T) {
	var calls atomic.Int32
	rt := &retryTransport{base: failingBase(&calls, false), maxRetries: 3}

	_, err := rt.RoundTrip(newPost(t))
	require.Error(t, err)
	assert.EqualValues(t, 4, calls.Load())
}

func TestRetryTransportRetriesWrittenGet(t *testing.T) {
	var calls atomic.Int32
	rt := &retryTransport{base: failingBase(&calls, true), maxRetries: 2}

	req, err := http.NewRequest(http.MethodGet, "http://api.test/bot1:x/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetryTransportPassesResponses(t *testing.T) {
	var calls atomic.Int32
	rt := &retryTransport{base: roundTripFunc(func(*http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), maxRetries: 3}

	resp, err := rt.RoundTrip(newPost(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, calls.Load())
}
