// internal/telegram/types.go
//
// Bot API objects used by the bot. They are the telegram-bot-api types, so
// webhook bodies and getUpdates results decode the same way.

package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

type (
	Update               = tgbotapi.Update
	Message              = tgbotapi.Message
	CallbackQuery        = tgbotapi.CallbackQuery
	User                 = tgbotapi.User
	Chat                 = tgbotapi.Chat
	InlineButton         = tgbotapi.InlineKeyboardButton
	InlineKeyboardMarkup = tgbotapi.InlineKeyboardMarkup
)

// ChatID returns the chat a message or callback update belongs to, or 0 when
// it has none. Other update kinds are not routed.
func ChatID(u Update) int64 {
	var m *Message
	switch {
	case u.Message != nil:
		m = u.Message
	case u.CallbackQuery != nil:
		m = u.CallbackQuery.Message
	}
	if m == nil || m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}
