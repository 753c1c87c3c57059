package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	wrapped := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}

	assert.False(t, ShouldRetry(nil))
	assert.True(t, ShouldRetry(timeoutErr{}))
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(wrapped))
	assert.False(t, ShouldRetry(errors.New("bad request")))
	assert.False(t, ShouldRetry(&tele.Error{Code: 400, Description: "chat not found"}))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "timeout", Classify(context.DeadlineExceeded))
	assert.Equal(t, "dial", Classify(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.Equal(t, "http_4xx", Classify(&tele.Error{Code: 403, Description: "blocked"}))
	assert.Equal(t, "http_5xx", Classify(&tele.Error{Code: 502}))
	assert.Equal(t, "unknown", Classify(errors.New("boom")))
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:AA-bb_cc/sendMessage": EOF`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`, Redact(err))
}
