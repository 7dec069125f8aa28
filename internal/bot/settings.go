package bot

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/locale"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

const checkMark = "✅"

// settings posts the top-level settings menu and remembers it.
func (t *turn) settings(messageID int) error {
	t.delete(messageID)
	t.drop(&t.s.Settings.MessageID)
	t.drop(&t.s.FeedbackID)

	kb := telegram.NewKeyboard().
		Button(locale.T(t.lang(), "settings.language"), payload(cbSettings, "language")).
		Button(locale.T(t.lang(), "settings.difficulty"), payload(cbSettings, "difficulty"))
	id, err := t.d.tg.SendMessage(t.ctx, t.chatID, locale.T(t.lang(), "settings.title"), kb)
	if err != nil {
		return fmt.Errorf("send settings: %w", err)
	}
	t.s.Settings.MessageID = id
	return nil
}

// settingsMenu swaps the settings message for the language or difficulty choices.
func (t *turn) settingsMenu(which string) error {
	if t.s.Settings.MessageID == 0 {
		return nil
	}

	var (
		text string
		kb   = telegram.NewKeyboard().RowMax(2)
	)
	switch which {
	case "language":
		t.drop(&t.s.FeedbackID)
		text = locale.T(t.lang(), "settings.choose_language")
		for _, l := range game.Languages {
			label := languageName(l)
			if l == t.s.Settings.Language {
				label = checkMark + " " + label
			}
			kb.Button(label, payload(cbLanguage, l))
		}
	case "difficulty":
		text = locale.T(t.lang(), "settings.choose_difficulty")
		for _, d := range game.Difficulties {
			label := locale.T(t.lang(), "difficulty."+string(d))
			if d == t.s.Settings.Difficulty {
				label += " " + checkMark
			}
			kb.Button(label, payload(cbDiff, d))
		}
	default:
		return nil
	}

	if err := t.d.tg.EditMessage(t.ctx, t.chatID, t.s.Settings.MessageID, text, kb); err != nil {
		return fmt.Errorf("edit settings: %w", err)
	}
	return nil
}

func (t *turn) setLanguage(l game.Language) error {
	if t.s.Settings.MessageID == 0 || !l.Valid() {
		return nil
	}
	t.drop(&t.s.Settings.MessageID)
	t.drop(&t.s.FeedbackID)
	t.s.Settings.Language = l
	return t.feedback(locale.T(l, "settings.language_saved"), nil)
}

func (t *turn) setDifficulty(d game.Difficulty) error {
	if t.s.Settings.MessageID == 0 || !d.Valid() {
		return nil
	}
	t.drop(&t.s.Settings.MessageID)
	t.drop(&t.s.FeedbackID)
	t.s.Settings.Difficulty = d
	return t.feedback(locale.T(t.lang(), "settings.difficulty_saved"), nil)
}

// languageName is the language's own name, e.g. "Español".
func languageName(l game.Language) string {
	tag := language.Make(string(l))
	return cases.Title(tag).String(display.Self.Name(tag))
}
