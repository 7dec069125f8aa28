package bot

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/locale"
	"github.com/robalobadob/guesstheword/internal/pager"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

// Callback payload keys. Payloads are "key=value" in URL query encoding.
const (
	cbGame     = "game:id"
	cbBack     = "list:back"
	cbNext     = "list:next"
	cbSettings = "settings"
	cbLanguage = "settings:lang"
	cbDiff     = "settings:diff"
	cbTop      = "game:top"
	cbNoop     = "noop"
)

// payload encodes a callback payload. The key is kept verbatim so payloads
// stay readable ("game:id=12").
func payload(key string, value any) string {
	return key + "=" + url.QueryEscape(fmt.Sprint(value))
}

// parsePayload splits callback data into key and value.
func parsePayload(data string) (key, value string) {
	k, v, _ := strings.Cut(data, "=")
	key, err := url.QueryUnescape(k)
	if err != nil {
		key = k
	}
	value, err = url.QueryUnescape(v)
	if err != nil {
		value = v
	}
	return key, value
}

func (t *turn) callback(q *telegram.CallbackQuery) error {
	key, value := parsePayload(q.Data)
	log.Debug().Int64("chat", t.chatID).Str("key", key).Str("value", value).Msg("callback")

	n, _ := strconv.Atoi(value)
	switch key {
	case cbGame:
		return t.pickGame(n)
	case cbBack, cbNext:
		return t.turnPage(key, n)
	case cbSettings:
		return t.settingsMenu(value)
	case cbLanguage:
		return t.setLanguage(game.Language(value))
	case cbDiff:
		return t.setDifficulty(game.Difficulty(value))
	case cbTop:
		return t.closest(n)
	case cbNoop:
	}
	return nil
}

// pickGame starts a puzzle chosen from the list.
func (t *turn) pickGame(id int) error {
	if id < 1 || id > t.d.Today(t.lang()) {
		return nil
	}
	t.drop(&t.s.FeedbackID)
	return t.apply(t.d.machine.StartRound(t.s, id))
}

// turnPage edits the list message in place. The list message is the
// current feedback message; a stale keyboard is ignored.
func (t *turn) turnPage(key string, cursor int) error {
	if t.s.FeedbackID == 0 || cursor == 0 {
		return nil
	}
	t.drop(&t.s.Settings.MessageID)

	p := pager.New(t.d.Today(t.lang()))
	page := p.Newer(cursor)
	if key == cbBack {
		page = p.Older(cursor)
	}
	err := t.d.tg.EditMessage(t.ctx, t.chatID, t.s.FeedbackID, locale.T(t.lang(), "list.title"), listKeyboard(page))
	if err != nil && !errors.Is(err, telegram.ErrNotModified) {
		return fmt.Errorf("edit list: %w", err)
	}
	return nil
}

// closest reveals the words nearest to a finished puzzle's answer.
func (t *turn) closest(id int) error {
	if id < 1 || !t.s.Played(id) {
		return nil
	}
	words, err := t.d.words.ClosestWords(t.ctx, id, t.lang())
	if err != nil {
		log.Debug().Err(err).Int64("chat", t.chatID).Int("game", id).Msg("closest words unavailable")
		return nil
	}
	t.drop(&t.s.FeedbackID)
	return t.feedback(closestText(t.lang(), id, words), nil)
}
