package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/locale"
	"github.com/robalobadob/guesstheword/internal/pager"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

// roundMessage renders the round card and, for a finished round, its keyboard.
func roundMessage(r *game.Round, lang game.Language, today int, finished game.Status) (string, *telegram.Keyboard) {
	if r == nil {
		r = game.NewRound(today)
	}

	header := "round.past"
	if r.ID == today {
		header = "round.today"
	}
	word := "round.last"
	if finished != "" {
		word = "round.correct"
	}

	var b strings.Builder
	b.WriteString(locale.T(lang, header, "id", r.ID) + "\n\n")
	b.WriteString(locale.T(lang, "round.guesses", "n", r.Guesses) + "\n")
	b.WriteString(locale.T(lang, "round.hints", "n", r.Hints) + "\n")
	b.WriteString(locale.T(lang, "round.distance", "n", r.Distance) + "\n\n")
	b.WriteString(locale.T(lang, word, "word", r.LastWord) + "\n")
	b.WriteString(r.Progress.Bar())

	if finished == "" {
		return b.String(), nil
	}
	kb := telegram.NewKeyboard().RowMax(1).
		Button(locale.T(lang, "round."+string(finished)), cbNoop).
		Button(locale.T(lang, "round.closest"), payload(cbTop, r.ID))
	return b.String(), kb
}

// listKeyboard lays out a page of puzzle ids with navigation buttons for the
// directions that have a page.
func listKeyboard(p pager.Page) *telegram.Keyboard {
	kb := telegram.NewKeyboard()
	for _, id := range p.IDs {
		kb.Button(fmt.Sprintf("#%d", id), payload(cbGame, id))
	}
	kb.Row()
	if p.HasBack() {
		kb.Button("<<", payload(cbBack, p.Back))
	}
	if p.HasNext() {
		kb.Button(">>", payload(cbNext, p.Next))
	}
	return kb
}

func historyText(lang game.Language, history []game.HistoryEntry) string {
	var b strings.Builder
	b.WriteString(locale.T(lang, "history.summary", "n", len(history)) + "\n\n")
	for _, h := range history {
		mark := "❌"
		if h.Status == game.StatusWon {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s #%d\n", mark, h.GameID)
	}
	return b.String()
}

func closestText(lang game.Language, id int, words []string) string {
	var b strings.Builder
	b.WriteString(locale.T(lang, "closest.title", "id", id) + "\n\n")
	for i, w := range words {
		fmt.Fprintf(&b, "%d. %s\n", i+1, w)
	}
	return b.String()
}

// errorText maps a user error to its feedback message.
func errorText(lang game.Language, err error) string {
	var played *game.AlreadyPlayedError
	switch {
	case errors.As(err, &played):
		return locale.T(lang, "err.already_played", "id", played.GameID)
	case errors.Is(err, game.ErrMultipleWords):
		return locale.T(lang, "err.single_word")
	case errors.Is(err, game.ErrTooFewGuesses):
		return locale.T(lang, "err.too_few")
	default:
		return locale.T(lang, "err.no_round")
	}
}
