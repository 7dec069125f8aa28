// internal/game/types.go
//
// Core type definitions for the guess-the-word session state machine.
// Defines:
//   - State: lifecycle of a chat session (none/started/playing/completed).
//   - Settings: per-chat language and difficulty.
//   - Round: the active puzzle and its guess/hint log.
//   - HistoryEntry: one finished puzzle (won or lost).
//   - Session: everything persisted for a single chat.

package game

import (
	"slices"
	"time"
)

// State is the coarse lifecycle state of a session.
type State string

const (
	StateNone      State = "none"
	StateStarted   State = "started"
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
)

// Active reports whether a round is in progress. Started and playing are
// treated identically by every operation.
func (s State) Active() bool {
	return s == StateStarted || s == StatePlaying
}

// Difficulty selects the tip distance strategy.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the accepted difficulty values in menu order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool { return slices.Contains(Difficulties, d) }

// Language is the puzzle language; each language has its own daily puzzle.
type Language string

const (
	English    Language = "en"
	Spanish    Language = "es"
	Portuguese Language = "pt"
)

// Languages lists the supported languages in menu order.
var Languages = []Language{English, Spanish, Portuguese}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool { return slices.Contains(Languages, l) }

// Status is the final outcome of a round recorded in history.
type Status string

const (
	StatusWon  Status = "won"
	StatusLost Status = "lost"
)

// Settings holds per-chat preferences.
type Settings struct {
	Language   Language   `json:"language"`
	Difficulty Difficulty `json:"difficulty"`
	MessageID  int        `json:"messageId,omitempty"` // pending settings menu, 0 when none
}

// Guess is a single (word, distance) pair revealed by a guess, hint or give-up.
type Guess struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
}

// Round is the state of one attempt at a single puzzle.
// A round is never partially mutated: accepted operations build a new Round.
type Round struct {
	ID       int      `json:"id"`
	Guesses  int      `json:"guesses"` // accepted guesses and hints
	Hints    int      `json:"hints"`
	Distance int      `json:"distance"`
	LastWord string   `json:"lastWord"`
	Log      []Guess  `json:"log"`
	Progress Progress `json:"progress"`
}

// NewRound returns the pristine round for a puzzle id.
func NewRound(id int) *Round {
	return &Round{
		ID:       id,
		LastWord: "N/A",
		Log:      []Guess{},
		Progress: Progress{Value: 0, Category: CategoryNeutral},
	}
}

// Distances returns the distances in the round's log in insertion order.
func (r *Round) Distances() []int {
	out := make([]int, 0, len(r.Log))
	for _, g := range r.Log {
		out = append(out, g.Distance)
	}
	return out
}

// withGuess returns a copy of r with g appended to the log. The receiver's
// log backing array is never shared with the result.
func (r *Round) withGuess(g Guess) *Round {
	next := *r
	next.Log = append(slices.Clone(r.Log), g)
	next.Distance = g.Distance
	next.LastWord = g.Word
	next.Progress = Rate(g.Distance)
	return &next
}

// HistoryEntry records a finished puzzle. Entries are written once and never modified.
type HistoryEntry struct {
	GameID   int       `json:"gameId"`
	Word     string    `json:"word,omitempty"`
	Status   Status    `json:"status"`
	PlayedAt time.Time `json:"playedAt"`
}

// Session is everything persisted for a single chat.
type Session struct {
	State         State          `json:"state"`
	Settings      Settings       `json:"settings"`
	FeedbackID    int            `json:"feedbackId,omitempty"` // last transient feedback message
	Game          *Round         `json:"game,omitempty"`
	GameMessageID int            `json:"gameMessageId,omitempty"`
	History       []HistoryEntry `json:"history"`
}

// NewSession returns the default session for a chat seen for the first time.
func NewSession() *Session {
	return &Session{
		State:    StateNone,
		Settings: Settings{Language: English, Difficulty: Easy},
		History:  []HistoryEntry{},
	}
}

// Played reports whether the session already has a history entry for gameID.
func (s *Session) Played(gameID int) bool {
	return slices.ContainsFunc(s.History, func(h HistoryEntry) bool { return h.GameID == gameID })
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.History = slices.Clone(s.History)
	if c.History == nil {
		c.History = []HistoryEntry{}
	}
	if s.Game != nil {
		g := *s.Game
		g.Log = slices.Clone(s.Game.Log)
		if g.Log == nil {
			g.Log = []Guess{}
		}
		c.Game = &g
	}
	return &c
}
