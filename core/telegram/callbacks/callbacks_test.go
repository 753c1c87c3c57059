package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/telegram/teletest"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		unique, data string
	}{
		{"nil", nil, "", ""},
		{"raw with payload", &tele.Callback{Data: "\fproduct|42"}, "product", "42"},
		{"raw without payload", &tele.Callback{Data: "\fcart"}, "cart", ""},
		{"payload with separator", &tele.Callback{Data: "\fqty|3|7"}, "qty", "3|7"},
		{"already routed", &tele.Callback{Unique: "product", Data: "42"}, "product", "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, d := ParseCallbackData(tc.cb)
			assert.Equal(t, tc.unique, u)
			assert.Equal(t, tc.data, d)
		})
	}
}

func TestPayloadID(t *testing.T) {
	c := teletest.NewCallback(1, "product", "42")
	id, err := PayloadID(c)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	assert.Equal(t, "product", CallbackKey(c))

	for _, bad := range []string{"", "x", "0", "-3", "1|2"} {
		_, err := PayloadID(teletest.NewCallback(1, "product", bad))
		assert.ErrorIs(t, err, ErrBadPayload, bad)
	}
}

func TestPayloadToken(t *testing.T) {
	tok, err := PayloadToken(teletest.NewCallback(1, "pay_check", "2d6a3f1e-000f-5000-9000-1b2c3d4e5f60"))
	require.NoError(t, err)
	assert.Equal(t, "2d6a3f1e-000f-5000-9000-1b2c3d4e5f60", tok)

	for _, bad := range []string{"", "a b", "a|b"} {
		_, err := PayloadToken(teletest.NewCallback(1, "pay_check", bad))
		assert.ErrorIs(t, err, ErrBadPayload, bad)
	}
}
