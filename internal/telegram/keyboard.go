package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// DefaultRowMax is the number of buttons per row unless overridden.
const DefaultRowMax = 3

// Keyboard builds inline keyboards row by row.
type Keyboard struct {
	rowMax int
	rows   [][]InlineButton
}

// NewKeyboard returns an empty keyboard with DefaultRowMax buttons per row.
func NewKeyboard() *Keyboard {
	return &Keyboard{rowMax: DefaultRowMax}
}

// RowMax sets the maximum number of buttons per row for subsequent buttons.
func (k *Keyboard) RowMax(n int) *Keyboard {
	if n > 0 {
		k.rowMax = n
	}
	return k
}

// Button appends a callback button, opening a new row when the current one is full.
func (k *Keyboard) Button(label, data string) *Keyboard {
	if len(k.rows) == 0 || len(k.rows[len(k.rows)-1]) >= k.rowMax {
		k.rows = append(k.rows, nil)
	}
	last := len(k.rows) - 1
	k.rows[last] = append(k.rows[last], tgbotapi.NewInlineKeyboardButtonData(label, data))
	return k
}

// Row forces the next button onto a new row.
func (k *Keyboard) Row() *Keyboard {
	if len(k.rows) > 0 && len(k.rows[len(k.rows)-1]) > 0 {
		k.rows = append(k.rows, nil)
	}
	return k
}

// Markup returns the reply markup, or nil for an empty keyboard.
func (k *Keyboard) Markup() *InlineKeyboardMarkup {
	if k == nil {
		return nil
	}
	var rows [][]InlineButton
	for _, r := range k.rows {
		if len(r) > 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(r...))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}

// CallbackData returns the callback payload of a button, or "" for other kinds.
func CallbackData(b InlineButton) string {
	if b.CallbackData == nil {
		return ""
	}
	return *b.CallbackData
}
