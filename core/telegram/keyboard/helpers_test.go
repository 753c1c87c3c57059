package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineRows(t *testing.T) {
	m := InlineRows(
		[]InlineBtn{{Text: "Pizza", Unique: "product", Data: "1"}, {Text: "Salad", Unique: "product", Data: "2"}},
		nil,
		[]InlineBtn{{Text: "Pay", URL: "https://pay.example/1"}, CancelButton("cancel")},
	)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "product", m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "1", m.InlineKeyboard[0][0].Data)
	assert.Equal(t, "https://pay.example/1", m.InlineKeyboard[1][0].URL)
	assert.Equal(t, "cancel", m.InlineKeyboard[1][1].Unique)
}

func TestChunk(t *testing.T) {
	btns := []InlineBtn{{Text: "1"}, {Text: "2"}, {Text: "3"}}
	rows := Chunk(btns, 2)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 1)
	assert.Len(t, Chunk(btns, 0), 3)
}
