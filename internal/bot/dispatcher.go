// internal/bot/dispatcher.go
//
// Update dispatcher for the chat bot.
// Responsibilities:
//   - Route commands, free text and callback queries to handlers.
//   - Serialize updates per chat (one in flight per chat id).
//   - Drop floods per chat with a token bucket (x/time/rate).
//   - Load the session once per update and save it once afterwards.
//
// Handlers never talk to the store; they mutate the loaded session and use
// the transport to render.

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/guesstheword/internal/daily"
	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/store"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

// Transport is the chat side of the bot. *telegram.Client implements it.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *telegram.Keyboard) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *telegram.Keyboard) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, queryID, text string) error
}

// Words lists the words closest to a puzzle's answer. *contexto.Client implements it.
type Words interface {
	ClosestWords(ctx context.Context, id int, lang game.Language) ([]string, error)
}

// Default per-chat flood limits.
const (
	DefaultRate  = 5
	DefaultBurst = 10
)

// Dispatcher turns updates into game operations.
type Dispatcher struct {
	store    store.Store
	machine  *game.Machine
	tg       Transport
	words    Words
	calendar *daily.Calendar

	locks    chatLocks
	limiters limiterSet
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithRateLimit overrides the per-chat update rate (events/second) and burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(d *Dispatcher) { d.limiters.rate, d.limiters.burst = r, burst }
}

// New constructs a Dispatcher.
func New(st store.Store, m *game.Machine, tg Transport, words Words, cal *daily.Calendar, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    st,
		machine:  m,
		tg:       tg,
		words:    words,
		calendar: cal,
		locks:    chatLocks{m: map[int64]*chatLock{}},
		limiters: limiterSet{m: map[int64]*limiter{}, rate: DefaultRate, burst: DefaultBurst},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Handle processes a single update. Transport and store faults are returned
// wrapped; user mistakes are rendered as feedback and are not errors.
func (d *Dispatcher) Handle(ctx context.Context, u telegram.Update) error {
	chatID := telegram.ChatID(u)
	if chatID == 0 {
		return nil
	}
	if !d.limiters.allow(chatID, time.Now()) {
		log.Warn().Int64("chat", chatID).Int("update", u.UpdateID).Msg("rate limited, update dropped")
		return nil
	}

	unlock := d.locks.lock(chatID)
	defer unlock()

	sess, err := d.store.Load(ctx, chatID)
	if err != nil {
		return fmt.Errorf("load session %d: %w", chatID, err)
	}

	t := &turn{ctx: ctx, d: d, chatID: chatID, s: sess}
	var herr error
	switch {
	case u.Message != nil:
		herr = t.message(u.Message)
	case u.CallbackQuery != nil:
		herr = t.callback(u.CallbackQuery)
		if err := d.tg.AnswerCallback(ctx, u.CallbackQuery.ID, ""); err != nil {
			log.Debug().Err(err).Int64("chat", chatID).Msg("answer callback")
		}
	}

	if err := d.store.Save(ctx, chatID, sess); err != nil {
		herr = errors.Join(herr, fmt.Errorf("save session %d: %w", chatID, err))
	}
	return herr
}

// Session returns a copy of the chat's session, serialized with updates.
func (d *Dispatcher) Session(ctx context.Context, chatID int64) (*game.Session, error) {
	unlock := d.locks.lock(chatID)
	defer unlock()
	return d.store.Load(ctx, chatID)
}

// ResetChat abandons the chat's round as /reset would, deleting the round
// message, and returns the saved session.
func (d *Dispatcher) ResetChat(ctx context.Context, chatID int64) (*game.Session, error) {
	unlock := d.locks.lock(chatID)
	defer unlock()

	sess, err := d.store.Load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	t := &turn{ctx: ctx, d: d, chatID: chatID, s: sess}
	t.drop(&sess.Settings.MessageID)
	t.drop(&sess.FeedbackID)
	t.render(d.machine.Reset(sess))
	if err := d.store.Save(ctx, chatID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// PruneLimiters forgets the flood limiters of chats idle for longer than idle
// and returns how many were removed.
func (d *Dispatcher) PruneLimiters(idle time.Duration) int {
	return d.limiters.sweep(idle, time.Now())
}

// Today returns today's puzzle id for lang.
func (d *Dispatcher) Today(lang game.Language) int { return d.calendar.Today(lang) }

// turn is the handling of one update for one chat.
type turn struct {
	ctx    context.Context
	d      *Dispatcher
	chatID int64
	s      *game.Session
}

func (t *turn) lang() game.Language { return t.s.Settings.Language }

func (t *turn) message(m *telegram.Message) error {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return nil
	}
	if !strings.HasPrefix(text, "/") {
		return t.guess(m.MessageID, text)
	}

	cmd, _, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	cmd, _, _ = strings.Cut(cmd, "@") // "/play@SomeBot" in groups
	log.Debug().Int64("chat", t.chatID).Str("cmd", cmd).Msg("command")

	switch cmd {
	case "start":
		name := ""
		if m.From != nil {
			name = m.From.FirstName
		}
		return t.start(m.MessageID, name)
	case "play":
		return t.play(m.MessageID)
	case "hint":
		return t.hint(m.MessageID)
	case "giveup":
		return t.giveUp(m.MessageID)
	case "reset":
		return t.reset(m.MessageID)
	case "settings":
		return t.settings(m.MessageID)
	case "history":
		return t.history(m.MessageID)
	case "list":
		return t.list(m.MessageID)
	}
	return nil
}

// delete removes a message, ignoring failures (old or already deleted messages).
func (t *turn) delete(messageID int) {
	if messageID == 0 {
		return
	}
	if err := t.d.tg.DeleteMessage(t.ctx, t.chatID, messageID); err != nil {
		log.Debug().Err(err).Int64("chat", t.chatID).Int("message", messageID).Msg("delete message")
	}
}

// drop deletes the referenced transient message and clears the reference.
func (t *turn) drop(ref *int) {
	t.delete(*ref)
	*ref = 0
}

// feedback sends a transient message and remembers it for later cleanup.
func (t *turn) feedback(text string, kb *telegram.Keyboard) error {
	id, err := t.d.tg.SendMessage(t.ctx, t.chatID, text, kb)
	if err != nil {
		return fmt.Errorf("send feedback: %w", err)
	}
	t.s.FeedbackID = id
	return nil
}

// apply renders the result of a machine operation: user errors become
// feedback, anything else is returned.
func (t *turn) apply(out game.Outcome, err error) error {
	if err != nil {
		if !game.IsUserError(err) {
			return err
		}
		return t.feedback(errorText(t.lang(), err), nil)
	}
	return t.render(out)
}

// render performs the round-message side of an outcome.
func (t *turn) render(out game.Outcome) error {
	switch out.Render {
	case game.RenderSend:
		return t.sendRound(out)
	case game.RenderEdit:
		if t.s.GameMessageID == 0 {
			return t.sendRound(out)
		}
		text, kb := roundMessage(t.s.Game, t.lang(), t.d.Today(t.lang()), out.Finished)
		err := t.d.tg.EditMessage(t.ctx, t.chatID, t.s.GameMessageID, text, kb)
		if err != nil && !errors.Is(err, telegram.ErrNotModified) {
			return fmt.Errorf("edit round: %w", err)
		}
	case game.RenderClear:
		t.drop(&t.s.GameMessageID)
	}
	return nil
}

func (t *turn) sendRound(out game.Outcome) error {
	text, kb := roundMessage(t.s.Game, t.lang(), t.d.Today(t.lang()), out.Finished)
	id, err := t.d.tg.SendMessage(t.ctx, t.chatID, text, kb)
	if err != nil {
		return fmt.Errorf("send round: %w", err)
	}
	t.s.GameMessageID = id
	return nil
}

// chatLocks is a keyed mutex; entries are removed once nobody holds or waits on them.
type chatLocks struct {
	mu sync.Mutex
	m  map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func (l *chatLocks) lock(chatID int64) (unlock func()) {
	l.mu.Lock()
	e, ok := l.m[chatID]
	if !ok {
		e = &chatLock{}
		l.m[chatID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, chatID)
		}
		l.mu.Unlock()
	}
}

// limiterSet holds one token bucket per chat, stamped with its last use.
type limiterSet struct {
	mu    sync.Mutex
	m     map[int64]*limiter
	rate  rate.Limit
	burst int
}

type limiter struct {
	*rate.Limiter
	seen time.Time
}

func (s *limiterSet) allow(chatID int64, now time.Time) bool {
	s.mu.Lock()
	l, ok := s.m[chatID]
	if !ok {
		l = &limiter{Limiter: rate.NewLimiter(s.rate, s.burst)}
		s.m[chatID] = l
	}
	l.seen = now
	s.mu.Unlock()
	return l.AllowN(now, 1)
}

// sweep removes limiters not used since now-idle.
func (s *limiterSet) sweep(idle time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, l := range s.m {
		if now.Sub(l.seen) > idle {
			delete(s.m, id)
			n++
		}
	}
	return n
}
