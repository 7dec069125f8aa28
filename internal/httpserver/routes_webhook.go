// internal/httpserver/routes_webhook.go
//
// Telegram webhook intake: POST /webhook.
// Telegram sends the secret registered with setWebhook in the
// X-Telegram-Bot-Api-Secret-Token header of every request.

package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/telegram"
)

// SecretHeader carries the webhook secret.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.opts.WebhookSecret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.WebhookSecret)) != 1 {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
	}

	var u telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	if err := s.bot.Handle(r.Context(), u); err != nil {
		log.Error().Err(err).
			Int("update", u.UpdateID).
			Int64("chat", telegram.ChatID(u)).
			Str("requestId", r.Header.Get("X-Request-Id")).
			Msg("handle update")
	}
	_, _ = w.Write([]byte(`{"ok":true}`))
}
