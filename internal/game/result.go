package game

import "context"

// Answer is a (word, distance) pair returned by the puzzle service.
type Answer struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
}

// Result is the outcome of a puzzle-service lookup: either an answer or
// "service unavailable" carrying the underlying cause.
type Result struct {
	Answer Answer
	Err    error
}

// Found wraps a successful lookup.
func Found(a Answer) Result { return Result{Answer: a} }

// Unavailable wraps a failed lookup. A nil cause is replaced with ErrUnavailable.
func Unavailable(err error) Result {
	if err == nil {
		err = ErrUnavailable
	}
	return Result{Err: err}
}

// OK reports whether the lookup produced an answer.
func (r Result) OK() bool { return r.Err == nil }

// Puzzles is the puzzle-service port consumed by the Machine.
type Puzzles interface {
	Guess(ctx context.Context, id int, word string, lang Language) Result
	Hint(ctx context.Context, id, distance int, lang Language) Result
	GiveUp(ctx context.Context, id int, lang Language) Result
}
