// Package keyboard builds reply and inline markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button. A non-empty URL makes it a link button.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
	URL    string
}

const defaultCancelButtonText = "❌ Cancel"

// ReplyButtons builds a resized reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

func (b InlineBtn) btn(markup *tele.ReplyMarkup) tele.Btn {
	if b.URL != "" {
		return markup.URL(b.Text, b.URL)
	}
	if b.Data == "" {
		return markup.Data(b.Text, b.Unique)
	}
	return markup.Data(b.Text, b.Unique, b.Data)
}

// InlineRows builds an inline keyboard from rows of buttons.
func InlineRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, b := range row {
			r[j] = *b.btn(markup).Inline()
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// InlineColumn places every button on its own row.
func InlineColumn(buttons ...InlineBtn) *tele.ReplyMarkup {
	return InlineRows(Chunk(buttons, 1)...)
}

// Chunk splits buttons into rows of at most n.
func Chunk(buttons []InlineBtn, n int) [][]InlineBtn {
	if n < 1 {
		n = 1
	}
	rows := make([][]InlineBtn, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		rows = append(rows, buttons[i:min(i+n, len(buttons))])
	}
	return rows
}

// CancelButton returns an inline cancel button bound to unique.
func CancelButton(unique string) InlineBtn {
	return InlineBtn{Text: defaultCancelButtonText, Unique: unique}
}
