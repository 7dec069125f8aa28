// internal/httpserver/admin.go
//
// Admin API guarded by a short-lived HS256 JWT.
//   - POST   /admin/login                   → {token, expiresAt} after a bcrypt password check
//   - GET    /admin/sessions/{chatID}        → the chat's session
//   - DELETE /admin/sessions/{chatID}/round  → abandon the chat's round (as /reset)
//   - GET    /admin/today                   → today's puzzle id per language

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/guesstheword/internal/daily"
	"github.com/robalobadob/guesstheword/internal/game"
)

const adminSubject = "admin"

type loginReq struct {
	Password string `json:"password"`
}

type loginRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) adminEnabled() bool {
	return s.opts.AdminPasswordHash != "" && s.opts.AdminJWTSecret != ""
}

// mountAdmin registers the /admin routes.
func (s *Server) mountAdmin() {
	s.r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/sessions/{chatID}", s.handleGetSession)
			r.Delete("/sessions/{chatID}/round", s.handleResetRound)
			r.Get("/today", s.handleToday)
		})
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.adminEnabled() {
		http.Error(w, `{"error":"admin_disabled"}`, http.StatusNotFound)
		return
	}
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if !checkPassword(s.opts.AdminPasswordHash, body.Password) {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		http.Error(w, `{"error":"Invalid password"}`, http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.signJWT()
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(loginRes{Token: tok, ExpiresAt: exp})
}

// signJWT creates an HS256 JWT for the admin subject with a random jti.
func (s *Server) signJWT() (string, time.Time, error) {
	now := s.now()
	exp := now.Add(time.Duration(s.opts.AdminTokenDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   adminSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.AdminJWTSecret))
	return ss, exp, err
}

// requireAdmin enforces a valid admin bearer token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.adminEnabled() {
			http.Error(w, `{"error":"admin_disabled"}`, http.StatusNotFound)
			return
		}
		tokenStr := bearer(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.opts.AdminJWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.Subject != adminSubject {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatParam(w, r)
	if !ok {
		return
	}
	sess, err := s.bot.Session(r.Context(), chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("load session")
		http.Error(w, `{"error":"store_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sess)
}

func (s *Server) handleResetRound(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatParam(w, r)
	if !ok {
		return
	}
	sess, err := s.bot.ResetChat(r.Context(), chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("reset round")
		http.Error(w, `{"error":"store_error"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Int64("chat", chatID).Msg("round reset by admin")
	_ = json.NewEncoder(w).Encode(sess)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	games := make(map[game.Language]int, len(game.Languages))
	for _, l := range game.Languages {
		games[l] = s.bot.Today(l)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"date":  daily.DateKey(s.now()),
		"games": games,
	})
}

func chatParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil || id == 0 {
		http.Error(w, `{"error":"bad_chat_id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(pw string) (string, error) {
	if len(pw) < 8 {
		return "", errors.New("password must be at least 8 chars")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
