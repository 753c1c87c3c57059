package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/easyshop/core/telegram/state"
	"github.com/m3rciful/easyshop/core/telegram/teletest"
)

func reply(text string) tele.HandlerFunc {
	return func(c tele.Context) error { return c.Send(text) }
}

func TestRouterFirstMatchWins(t *testing.T) {
	r := New("user_commands").
		Command("/start", "Start", reply("first")).
		Handle("any_text", Any(Command("/start"), Text()), reply("second"))
	require.NoError(t, r.Err())
	r.Seal()

	c := teletest.NewMessage(1, "/start")
	handled, err := r.Dispatch(c)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "first", c.LastText())

	c = teletest.NewMessage(1, "hello")
	handled, err = r.Dispatch(c)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "second", c.LastText())

	handled, err = r.Dispatch(teletest.NewCallback(1, "cart", ""))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestRouterMiddlewareRunsOnlyOnMatch(t *testing.T) {
	var calls int
	r := New("admin").
		Use("count", func(next tele.HandlerFunc) tele.HandlerFunc {
			return func(c tele.Context) error { calls++; return next(c) }
		}).
		Command("/stats", "", reply("stats"))
	r.Seal()

	_, _ = r.Dispatch(teletest.NewMessage(1, "/help"))
	assert.Equal(t, 0, calls)
	_, _ = r.Dispatch(teletest.NewMessage(1, "/stats"))
	assert.Equal(t, 1, calls)
	assert.True(t, r.Commands()[0].Hidden)
}

func TestRouterCollectsRegistrationErrors(t *testing.T) {
	r := New("broken").
		Callback("cart", reply("a")).
		Callback("cart", reply("b")).
		Handle("nil", Text(), nil)
	err := r.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `binding "callback.cart" registered twice`)
	assert.Contains(t, err.Error(), `binding "nil" has nil trigger or handler`)

	r.Seal()
	r.Command("/late", "Late", reply("late"))
	assert.True(t, errors.Is(r.Err(), ErrSealed))

	assert.Error(t, New(" ").Err())
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	want := errors.New("boom")
	r := New("products").Callback("product", func(tele.Context) error { return want })
	r.Seal()

	handled, err := r.Dispatch(teletest.NewCallback(1, "product", "3"))
	assert.True(t, handled)
	assert.Same(t, want, err)
}

func TestDispatchRequiresSeal(t *testing.T) {
	_, err := New("x").Dispatch(teletest.NewMessage(1, "hi"))
	assert.Error(t, err)
}

func TestTriggers(t *testing.T) {
	assert.Equal(t, "/start", CommandName(teletest.NewMessage(1, "/Start@easyshop_bot ref")))
	assert.Equal(t, "", CommandName(teletest.NewMessage(1, "start")))
	assert.False(t, Command("/start")(teletest.NewCallback(1, "start", "")))
	assert.True(t, TextEquals("🛒 Cart")(teletest.NewMessage(1, " 🛒 Cart ")))
	assert.True(t, Query()(teletest.NewQuery(1, "pizza")))
	assert.False(t, All()(teletest.NewMessage(1, "x")))

	c := teletest.NewMessage(1, "3")
	assert.False(t, InState("cart.qty")(c))
	s := state.NewSession()
	s.SetState("cart.qty")
	state.Set(c, s)
	assert.True(t, All(InState("cart.qty"), Text())(c))
}
