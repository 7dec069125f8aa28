// Package telegram wraps the telegram-bot-api client for the bot: message
// send/edit/delete with inline keyboards, callback answers, webhook
// registration and long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultAPI is the public Bot API endpoint.
const DefaultAPI = "https://api.telegram.org"

// ErrNotModified is returned by EditMessage when the new content equals the old.
var ErrNotModified = errors.New("telegram: message is not modified")

// allowedUpdates limits webhook and getUpdates traffic to what the bot routes.
var allowedUpdates = []string{"message", "callback_query"}

// APIError is a Bot API response with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.Code, e.Description)
}

// Client talks to the Bot API for a single bot token.
type Client struct {
	api  *tgbotapi.BotAPI
	http *http.Client
}

// New returns a client for token. api defaults to DefaultAPI. Unlike
// tgbotapi.NewBotAPI it does not call getMe, so construction never blocks.
func New(api, token string, timeout time.Duration) *Client {
	if api == "" {
		api = DefaultAPI
	}
	hc := &http.Client{Timeout: timeout}
	bot := &tgbotapi.BotAPI{Token: token, Client: hc, Buffer: 100}
	bot.SetAPIEndpoint(strings.TrimRight(api, "/") + "/bot%s/%s")
	return &Client{api: bot, http: hc}
}

// ctxDoer binds every request of one call to the caller's context;
// tgbotapi builds its requests without one.
type ctxDoer struct {
	ctx  context.Context
	http *http.Client
}

func (d ctxDoer) Do(r *http.Request) (*http.Response, error) {
	return d.http.Do(r.WithContext(d.ctx))
}

// bot returns a copy of the API handle whose requests carry ctx.
func (c *Client) bot(ctx context.Context) *tgbotapi.BotAPI {
	b := *c.api
	b.Client = ctxDoer{ctx: ctx, http: c.http}
	return &b
}

// SendMessage posts text to a chat and returns the new message id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, kb *Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if m := kb.Markup(); m != nil {
		msg.ReplyMarkup = m
	}
	sent, err := c.bot(ctx).Send(msg)
	if err != nil {
		return 0, apiError("sendMessage", err)
	}
	return sent.MessageID, nil
}

// EditMessage replaces the text and keyboard of a message.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = kb.Markup()
	_, err := c.bot(ctx).Request(edit)
	if err == nil {
		return nil
	}
	err = apiError("editMessageText", err)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
		return ErrNotModified
	}
	return err
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.bot(ctx).Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return apiError("deleteMessage", err)
}

// AnswerCallback acknowledges a callback query, optionally with a toast.
func (c *Client) AnswerCallback(ctx context.Context, queryID, text string) error {
	_, err := c.bot(ctx).Request(tgbotapi.NewCallback(queryID, text))
	return apiError("answerCallbackQuery", err)
}

// SetWebhook registers url for updates; Telegram will echo secret in the
// X-Telegram-Bot-Api-Secret-Token header. tgbotapi's WebhookConfig has no
// secret_token field, so the request is built from raw params.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", allowedUpdates); err != nil {
		return fmt.Errorf("telegram: encode setWebhook: %w", err)
	}
	_, err := c.bot(ctx).MakeRequest("setWebhook", params)
	return apiError("setWebhook", err)
}

// DeleteWebhook removes the webhook so long polling can be used.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.bot(ctx).Request(tgbotapi.DeleteWebhookConfig{})
	return apiError("deleteWebhook", err)
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = int(timeout.Seconds())
	cfg.AllowedUpdates = allowedUpdates
	updates, err := c.bot(ctx).GetUpdates(cfg)
	if err != nil {
		return nil, apiError("getUpdates", err)
	}
	return updates, nil
}

// apiError turns a tgbotapi failure into an *APIError, or wraps transport
// errors with the method name. nil stays nil.
func apiError(method string, err error) error {
	if err == nil {
		return nil
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return &APIError{Method: method, Code: tgErr.Code, Description: tgErr.Message}
	}
	return fmt.Errorf("telegram: %s: %w", method, err)
}
