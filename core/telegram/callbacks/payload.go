package callbacks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ErrBadPayload reports a callback payload that does not have the expected shape.
var ErrBadPayload = errors.New("callbacks: bad payload")

// maxTokenLen bounds opaque payloads; Telegram caps callback data at 64 bytes.
const maxTokenLen = 64

// PayloadID parses the payload as a positive identifier such as a product id.
func PayloadID(c tele.Context) (int64, error) {
	raw := strings.TrimSpace(CallbackPayload(c))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", ErrBadPayload, raw)
	}
	return id, nil
}

// PayloadToken returns the payload as an opaque token such as a payment id.
// Empty payloads and payloads containing whitespace are rejected.
func PayloadToken(c tele.Context) (string, error) {
	raw := CallbackPayload(c)
	if raw == "" || len(raw) > maxTokenLen || strings.ContainsAny(raw, " \t\r\n|") {
		return "", fmt.Errorf("%w: token %q", ErrBadPayload, raw)
	}
	return raw, nil
}
