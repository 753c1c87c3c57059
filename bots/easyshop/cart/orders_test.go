package cart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/easyshop/core/telegram/state"
)

func TestPendingOrders(t *testing.T) {
	lines := []Item{{ProductID: 1, Title: "Pizza Margherita", Price: 45000, Qty: 1}}
	more := []Item{{ProductID: 1, Title: "Pizza Margherita", Price: 45000, Qty: 2}}

	p := &Pending{}
	assert.Nil(t, p.Add(Order{PaymentID: "a", Amount: 45000, Items: lines}))
	assert.Nil(t, p.Add(Order{PaymentID: "b", Amount: 90000, Items: more}))

	o, ok := p.Find("a")
	require.True(t, ok)
	assert.EqualValues(t, 45000, o.Amount)
	_, ok = p.Find("c")
	assert.False(t, ok)

	o, ok = p.Match(more)
	require.True(t, ok)
	assert.Equal(t, "b", o.PaymentID)
	_, ok = p.Match(nil)
	assert.False(t, ok)

	assert.True(t, p.Remove("a"))
	assert.False(t, p.Remove("a"))
	require.Len(t, p.Orders, 1)
}

func TestPendingDropsOldest(t *testing.T) {
	p := &Pending{}
	for i := 0; i < MaxPending; i++ {
		assert.Nil(t, p.Add(Order{PaymentID: fmt.Sprintf("p%d", i)}))
	}
	dropped := p.Add(Order{PaymentID: "last"})
	require.Len(t, dropped, 1)
	assert.Equal(t, "p0", dropped[0].PaymentID)
	assert.Len(t, p.Orders, MaxPending)
	assert.Equal(t, "last", p.Orders[MaxPending-1].PaymentID)
}

func TestPendingSessionRoundTrip(t *testing.T) {
	s := state.NewSession()
	p, err := LoadPending(s)
	require.NoError(t, err)
	assert.Empty(t, p.Orders)

	p.Add(Order{PaymentID: "a", Amount: 100, ConfirmationURL: "https://pay.example/a"})
	require.NoError(t, p.Save(s))

	loaded, err := LoadPending(s)
	require.NoError(t, err)
	o, ok := loaded.Find("a")
	require.True(t, ok)
	assert.Equal(t, "https://pay.example/a", o.ConfirmationURL)

	loaded.Remove("a")
	require.NoError(t, loaded.Save(s))
	assert.True(t, s.Empty())
	assert.Error(t, p.Save(nil))
}
