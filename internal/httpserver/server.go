// internal/httpserver/server.go
//
// HTTP server wiring for the bot.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Telegram webhook intake: POST /webhook.
//   - Admin API (JWT): /admin/login, /admin/sessions/{chatID}, /admin/today.
//
// Notes:
//   - The webhook answers 200 once the secret header matches, even when the
//     update could not be handled, so Telegram does not redeliver it.
//   - The admin API is disabled unless a password hash and JWT secret are configured.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

// Bot is the part of the dispatcher the server drives.
type Bot interface {
	Handle(ctx context.Context, u telegram.Update) error
	Session(ctx context.Context, chatID int64) (*game.Session, error)
	ResetChat(ctx context.Context, chatID int64) (*game.Session, error)
	Today(lang game.Language) int
}

// Options configures authentication.
type Options struct {
	WebhookSecret     string // expected X-Telegram-Bot-Api-Secret-Token; empty disables the check
	AdminPasswordHash string // bcrypt
	AdminJWTSecret    string
	AdminTokenDays    int
}

// Server bundles router and dependencies.
type Server struct {
	r    *chi.Mux
	bot  Bot
	opts Options
	now  func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(b Bot, opts Options) *Server {
	if opts.AdminTokenDays <= 0 {
		opts.AdminTokenDays = 1
	}
	s := &Server{r: chi.NewRouter(), bot: b, opts: opts, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guesstheword","endpoints":["/health","POST /webhook","/admin/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/webhook", s.handleWebhook)
	s.mountAdmin()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Str("addr", addr).Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}
