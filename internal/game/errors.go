package game

import (
	"errors"
	"fmt"
)

// User-facing rejections. They never abort processing; the dispatcher turns
// them into a transient feedback message.
var (
	ErrNoActiveRound = errors.New("no active round")
	ErrTooFewGuesses = errors.New("too few guesses to give up")
	ErrMultipleWords = errors.New("guess must be a single word")
	ErrAlreadyPlayed = errors.New("game already played")
)

// ErrUnavailable is the default cause of an unavailable puzzle-service result.
var ErrUnavailable = errors.New("puzzle service unavailable")

// AlreadyPlayedError is returned when a chat tries to start a puzzle that
// already has a history entry.
type AlreadyPlayedError struct {
	GameID int
}

func (e *AlreadyPlayedError) Error() string {
	return fmt.Sprintf("game #%d already played", e.GameID)
}

// Is lets errors.Is(err, ErrAlreadyPlayed) match any AlreadyPlayedError.
func (e *AlreadyPlayedError) Is(target error) bool { return target == ErrAlreadyPlayed }

// IsUserError reports whether err is a rejection caused by the session state
// or input rather than a fault.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNoActiveRound) ||
		errors.Is(err, ErrTooFewGuesses) ||
		errors.Is(err, ErrMultipleWords) ||
		errors.Is(err, ErrAlreadyPlayed)
}
