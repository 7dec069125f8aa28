// internal/game/engine.go
//
// Session state machine for a single chat.
// Responsibilities:
//   - Start rounds (today's puzzle or a past one picked from the pager).
//   - Apply hints, guesses and give-ups through the puzzle service.
//   - Track state transitions: none → started → playing → completed.
//   - Record finished rounds in the session history.
//
// Notes:
//   - The Machine never loads or saves sessions; the caller loads once,
//     calls one operation, and saves once.
//   - Puzzle-service failures are silent no-ops (RenderNone, nil error).
package game

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinGuessesToGiveUp is the number of logged guesses/hints required before giving up.
const MinGuessesToGiveUp = 3

// Render tells the transport layer what to do with the round message.
type Render int

const (
	RenderNone  Render = iota // nothing changed
	RenderSend                // send a new round message and remember its id
	RenderEdit                // edit the existing round message
	RenderClear               // delete the round message
)

// Outcome describes the render required after an accepted operation.
// Finished is set when the operation ended the round.
type Outcome struct {
	Render   Render
	Finished Status
}

// Machine applies chat commands to a Session.
type Machine struct {
	puzzles Puzzles
	intn    func(n int) int
	now     func() time.Time
}

// Option customises a Machine.
type Option func(*Machine)

// WithRand overrides the random source used by the hard tip strategy.
func WithRand(intn func(n int) int) Option { return func(m *Machine) { m.intn = intn } }

// WithClock overrides the clock used for history timestamps.
func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

// NewMachine constructs a Machine backed by the given puzzle service.
func NewMachine(p Puzzles, opts ...Option) *Machine {
	m := &Machine{puzzles: p, intn: rand.IntN, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// StartRound begins puzzle id.
//
//   - Already in history → *AlreadyPlayedError, session unchanged.
//   - Same id already active → no-op.
//   - Different id active → the round is replaced and the message edited.
//   - Otherwise a new round message is sent.
func (m *Machine) StartRound(s *Session, id int) (Outcome, error) {
	if s.Played(id) {
		return Outcome{}, &AlreadyPlayedError{GameID: id}
	}

	inGame := s.State.Active() && s.Game != nil
	if inGame && s.Game.ID == id {
		return Outcome{}, nil
	}

	s.Game = NewRound(id)
	s.State = StateStarted
	if inGame && s.GameMessageID != 0 {
		return Outcome{Render: RenderEdit}, nil
	}
	return Outcome{Render: RenderSend}, nil
}

// RequestHint reveals a word at the distance chosen by the session's difficulty.
func (m *Machine) RequestHint(ctx context.Context, s *Session) (Outcome, error) {
	if err := m.requireRound(s); err != nil {
		return Outcome{}, err
	}

	tip := TipDistance(s.Settings.Difficulty, s.Game.Log, m.intn)
	res := m.puzzles.Hint(ctx, s.Game.ID, tip, s.Settings.Language)
	if !res.OK() {
		log.Debug().Err(res.Err).Int("game", s.Game.ID).Int("tip", tip).Msg("hint unavailable")
		return Outcome{}, nil
	}

	next := s.Game.withGuess(Guess(res.Answer))
	next.Guesses++
	next.Hints++
	s.Game = next
	s.State = StatePlaying
	return Outcome{Render: RenderEdit}, nil
}

// SubmitGuess checks a single word against the puzzle.
func (m *Machine) SubmitGuess(ctx context.Context, s *Session, raw string) (Outcome, error) {
	if err := m.requireRound(s); err != nil {
		return Outcome{}, err
	}

	word := normalizeWord(raw, s.Settings.Language)
	if word == "" {
		return Outcome{}, nil
	}
	if strings.ContainsFunc(word, unicode.IsSpace) {
		return Outcome{}, ErrMultipleWords
	}

	res := m.puzzles.Guess(ctx, s.Game.ID, word, s.Settings.Language)
	if !res.OK() {
		log.Debug().Err(res.Err).Int("game", s.Game.ID).Str("word", word).Msg("guess unavailable")
		return Outcome{}, nil
	}

	next := s.Game.withGuess(Guess(res.Answer))
	next.Guesses++
	s.Game = next

	if next.Distance != 0 {
		s.State = StatePlaying
		return Outcome{Render: RenderEdit}, nil
	}
	m.finish(s, res.Answer.Word, StatusWon)
	return Outcome{Render: RenderEdit, Finished: StatusWon}, nil
}

// GiveUp reveals the answer and records the round as lost.
func (m *Machine) GiveUp(ctx context.Context, s *Session) (Outcome, error) {
	if err := m.requireRound(s); err != nil {
		return Outcome{}, err
	}
	if len(s.Game.Log) < MinGuessesToGiveUp {
		return Outcome{}, ErrTooFewGuesses
	}

	res := m.puzzles.GiveUp(ctx, s.Game.ID, s.Settings.Language)
	if !res.OK() {
		log.Debug().Err(res.Err).Int("game", s.Game.ID).Msg("give-up unavailable")
		return Outcome{}, nil
	}

	s.Game = s.Game.withGuess(Guess(res.Answer))
	m.finish(s, res.Answer.Word, StatusLost)
	return Outcome{Render: RenderEdit, Finished: StatusLost}, nil
}

// Reset abandons the active round without recording it. Settings and history
// survive; pending transient message references are dropped.
func (m *Machine) Reset(s *Session) Outcome {
	s.Game = nil
	s.FeedbackID = 0
	s.Settings.MessageID = 0
	s.State = StateNone
	return Outcome{Render: RenderClear}
}

// requireRound rejects operations without an active round and clears any
// stale round left behind.
func (m *Machine) requireRound(s *Session) error {
	if s.State.Active() && s.Game != nil {
		return nil
	}
	s.Game = nil
	if s.State.Active() {
		s.State = StateNone
	}
	return ErrNoActiveRound
}

func (m *Machine) finish(s *Session, word string, status Status) {
	if !s.Played(s.Game.ID) {
		s.History = append(s.History, HistoryEntry{
			GameID:   s.Game.ID,
			Word:     word,
			Status:   status,
			PlayedAt: m.now().UTC(),
		})
	}
	s.State = StateCompleted
}

// normalizeWord trims and lower-cases input using the puzzle language's rules.
func normalizeWord(raw string, lang Language) string {
	tag := language.Make(string(lang))
	return cases.Lower(tag).String(strings.TrimSpace(raw))
}
