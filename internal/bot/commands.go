package bot

import (
	"github.com/robalobadob/guesstheword/internal/locale"
	"github.com/robalobadob/guesstheword/internal/pager"
)

// Every command deletes the user's message and the previous feedback message.

func (t *turn) start(messageID int, firstName string) error {
	t.delete(messageID)
	t.drop(&t.s.FeedbackID)

	_, err := t.d.tg.SendMessage(t.ctx, t.chatID, locale.T(t.lang(), "greeting", "name", firstName), nil)
	return err
}

func (t *turn) play(messageID int) error {
	t.delete(messageID)
	t.drop(&t.s.Settings.MessageID)
	t.drop(&t.s.FeedbackID)

	return t.apply(t.d.machine.StartRound(t.s, t.d.Today(t.lang())))
}

func (t *turn) hint(messageID int) error {
	t.drop(&t.s.FeedbackID)
	t.drop(&t.s.Settings.MessageID)
	t.delete(messageID)

	return t.apply(t.d.machine.RequestHint(t.ctx, t.s))
}

func (t *turn) giveUp(messageID int) error {
	t.drop(&t.s.FeedbackID)
	t.drop(&t.s.Settings.MessageID)
	t.delete(messageID)

	return t.apply(t.d.machine.GiveUp(t.ctx, t.s))
}

// guess handles any non-command text.
func (t *turn) guess(messageID int, text string) error {
	t.drop(&t.s.Settings.MessageID)
	t.drop(&t.s.FeedbackID)
	t.delete(messageID)

	return t.apply(t.d.machine.SubmitGuess(t.ctx, t.s, text))
}

func (t *turn) reset(messageID int) error {
	t.drop(&t.s.Settings.MessageID)
	t.drop(&t.s.FeedbackID)
	t.delete(messageID)

	return t.render(t.d.machine.Reset(t.s))
}

func (t *turn) history(messageID int) error {
	t.delete(messageID)
	t.drop(&t.s.FeedbackID)

	return t.feedback(historyText(t.lang(), t.s.History), nil)
}

// list shows the most recent past puzzles of the session's language.
func (t *turn) list(messageID int) error {
	t.delete(messageID)
	t.drop(&t.s.FeedbackID)
	t.drop(&t.s.Settings.MessageID)

	today := t.d.Today(t.lang())
	page := pager.New(today).Back(today)
	return t.feedback(locale.T(t.lang(), "list.title"), listKeyboard(page))
}
