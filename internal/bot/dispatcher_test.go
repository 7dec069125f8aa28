package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/guesstheword/internal/daily"
	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/store"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

const chat int64 = 77

var testNow = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

type call struct {
	method    string
	messageID int
	text      string
	kb        *telegram.Keyboard
}

type fakeTransport struct {
	mu     sync.Mutex
	nextID int
	calls  []call
}

func (f *fakeTransport) SendMessage(_ context.Context, _ int64, text string, kb *telegram.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := 1000 + f.nextID
	f.calls = append(f.calls, call{method: "send", messageID: id, text: text, kb: kb})
	return id, nil
}

func (f *fakeTransport) EditMessage(_ context.Context, _ int64, messageID int, text string, kb *telegram.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "edit", messageID: messageID, text: text, kb: kb})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "delete", messageID: messageID})
	return nil
}

func (f *fakeTransport) AnswerCallback(context.Context, string, string) error { return nil }

// take returns and forgets the recorded calls.
func (f *fakeTransport) take() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.calls
	f.calls = nil
	return out
}

func only(calls []call, method string) []call {
	var out []call
	for _, c := range calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func deleted(calls []call, id int) bool {
	for _, c := range only(calls, "delete") {
		if c.messageID == id {
			return true
		}
	}
	return false
}

type fakePuzzles struct {
	words map[string]int
	down  bool
}

func (p *fakePuzzles) Guess(_ context.Context, _ int, word string, _ game.Language) game.Result {
	if p.down {
		return game.Unavailable(nil)
	}
	d, ok := p.words[word]
	if !ok {
		return game.Unavailable(errors.New("unknown word"))
	}
	return game.Found(game.Answer{Word: word, Distance: d})
}

func (p *fakePuzzles) Hint(_ context.Context, _ int, distance int, _ game.Language) game.Result {
	if p.down {
		return game.Unavailable(nil)
	}
	return game.Found(game.Answer{Word: "hinted", Distance: distance})
}

func (p *fakePuzzles) GiveUp(context.Context, int, game.Language) game.Result {
	if p.down {
		return game.Unavailable(nil)
	}
	return game.Found(game.Answer{Word: "answer", Distance: 0})
}

type fakeWords struct{}

func (fakeWords) ClosestWords(context.Context, int, game.Language) ([]string, error) {
	return []string{"answer", "close"}, nil
}

type harness struct {
	d       *Dispatcher
	tg      *fakeTransport
	puzzles *fakePuzzles
	store   store.Store
	nextMsg int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := func() time.Time { return testNow }
	h := &harness{
		tg:      &fakeTransport{},
		puzzles: &fakePuzzles{words: map[string]int{"casa": 120, "mesa": 900, "answer": 0}},
		store:   store.NewMemoryStore(),
		nextMsg: 1,
	}
	m := game.NewMachine(h.puzzles, game.WithClock(clock))
	h.d = New(h.store, m, h.tg, fakeWords{}, daily.NewCalendar(clock), opts...)
	return h
}

func (h *harness) text(t *testing.T, text string) []call {
	t.Helper()
	h.nextMsg++
	u := telegram.Update{UpdateID: h.nextMsg, Message: &telegram.Message{
		MessageID: h.nextMsg,
		From:      &telegram.User{ID: 5, FirstName: "Ana"},
		Chat:      &telegram.Chat{ID: chat, Type: "private"},
		Text:      text,
	}}
	if err := h.d.Handle(context.Background(), u); err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
	return h.tg.take()
}

func (h *harness) press(t *testing.T, data string) []call {
	t.Helper()
	h.nextMsg++
	u := telegram.Update{UpdateID: h.nextMsg, CallbackQuery: &telegram.CallbackQuery{
		ID:      "q",
		From:    &telegram.User{ID: 5},
		Message: &telegram.Message{MessageID: 1, Chat: &telegram.Chat{ID: chat}},
		Data:    data,
	}}
	if err := h.d.Handle(context.Background(), u); err != nil {
		t.Fatalf("Handle(callback %q): %v", data, err)
	}
	return h.tg.take()
}

func (h *harness) session(t *testing.T) *game.Session {
	t.Helper()
	s, err := h.store.Load(context.Background(), chat)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func buttons(kb *telegram.Keyboard) []telegram.InlineButton {
	var out []telegram.InlineButton
	if m := kb.Markup(); m != nil {
		for _, row := range m.InlineKeyboard {
			out = append(out, row...)
		}
	}
	return out
}

func hasButton(kb *telegram.Keyboard, data string) bool {
	for _, b := range buttons(kb) {
		if telegram.CallbackData(b) == data {
			return true
		}
	}
	return false
}

func TestPlaySendsRoundMessage(t *testing.T) {
	h := newHarness(t)
	today := daily.GameID(game.English, testNow)

	calls := h.text(t, "/play")
	if !deleted(calls, h.nextMsg) {
		t.Error("command message not deleted")
	}
	sends := only(calls, "send")
	if len(sends) != 1 || !strings.Contains(sends[0].text, "Today's game: #") {
		t.Fatalf("sends = %+v", sends)
	}
	if !strings.Contains(sends[0].text, "Last word: N/A") {
		t.Errorf("round text = %q", sends[0].text)
	}

	s := h.session(t)
	if s.State != game.StateStarted || s.Game.ID != today || s.GameMessageID != sends[0].messageID {
		t.Errorf("session = %+v", s)
	}

	// Same puzzle again is a no-op apart from cleanup.
	calls = h.text(t, "/play")
	if len(only(calls, "send"))+len(only(calls, "edit")) != 0 {
		t.Errorf("second /play rendered: %+v", calls)
	}
}

func TestGuessUntilWon(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	roundID := h.session(t).GameMessageID

	calls := h.text(t, "  Casa ")
	edits := only(calls, "edit")
	if len(edits) != 1 || edits[0].messageID != roundID || !strings.Contains(edits[0].text, "Distance: 120") {
		t.Fatalf("edits = %+v", edits)
	}
	if edits[0].kb != nil {
		t.Error("unfinished round has a keyboard")
	}

	calls = h.text(t, "answer")
	edits = only(calls, "edit")
	if len(edits) != 1 || !strings.Contains(edits[0].text, "Correct word: answer") {
		t.Fatalf("winning edit = %+v", edits)
	}
	s := h.session(t)
	if !hasButton(edits[0].kb, cbNoop) || !hasButton(edits[0].kb, payload(cbTop, s.Game.ID)) {
		t.Errorf("winning keyboard = %+v", buttons(edits[0].kb))
	}
	if s.State != game.StateCompleted || len(s.History) != 1 || s.History[0].Status != game.StatusWon {
		t.Errorf("session after win = %+v", s)
	}

	calls = h.text(t, "/play")
	sends := only(calls, "send")
	if len(sends) != 1 || !strings.Contains(sends[0].text, "You already played this game") {
		t.Fatalf("replay feedback = %+v", sends)
	}
	replayID := sends[0].messageID
	if h.session(t).FeedbackID != replayID {
		t.Error("feedback id not remembered")
	}

	calls = h.press(t, payload(cbTop, s.Game.ID))
	sends = only(calls, "send")
	if len(sends) != 1 || !strings.Contains(sends[0].text, "1. answer") {
		t.Errorf("closest words = %+v", sends)
	}
	if !deleted(calls, replayID) {
		t.Error("previous feedback not deleted")
	}
}

func TestUserErrorsBecomeFeedback(t *testing.T) {
	h := newHarness(t)

	calls := h.text(t, "/hint")
	sends := only(calls, "send")
	if len(sends) != 1 || sends[0].text != "Please start a game first!" {
		t.Fatalf("hint without round = %+v", sends)
	}
	first := sends[0].messageID

	calls = h.text(t, "/play")
	if !deleted(calls, first) {
		t.Error("old feedback not deleted")
	}
	calls = h.text(t, "two words")
	sends = only(calls, "send")
	if len(sends) != 1 || sends[0].text != "Please try a single word at a time!" {
		t.Fatalf("multi-word feedback = %+v", sends)
	}

	calls = h.text(t, "/giveup")
	sends = only(calls, "send")
	if len(sends) != 1 || sends[0].text != "Please try to guess at least 3 words!" {
		t.Fatalf("early give-up feedback = %+v", sends)
	}
}

func TestHintAndGiveUp(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")

	calls := h.text(t, "/hint")
	edits := only(calls, "edit")
	if len(edits) != 1 || !strings.Contains(edits[0].text, "Hints: 1") || !strings.Contains(edits[0].text, "Distance: 149") {
		t.Fatalf("hint edit = %+v", edits)
	}
	h.text(t, "mesa")
	h.text(t, "casa")

	calls = h.text(t, "/giveup")
	edits = only(calls, "edit")
	if len(edits) != 1 || !strings.Contains(edits[0].text, "Correct word: answer") {
		t.Fatalf("give-up edit = %+v", edits)
	}
	if b := buttons(edits[0].kb); len(b) == 0 || b[0].Text != "👎👎 You lost 👎👎" {
		t.Errorf("give-up keyboard = %+v", b)
	}
	s := h.session(t)
	if s.State != game.StateCompleted || s.History[0].Status != game.StatusLost {
		t.Errorf("session = %+v", s)
	}
}

func TestServiceOutageIsSilent(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	before := h.session(t)
	h.puzzles.down = true

	calls := h.text(t, "casa")
	if len(only(calls, "send"))+len(only(calls, "edit")) != 0 {
		t.Errorf("outage rendered: %+v", calls)
	}
	if !deleted(calls, h.nextMsg) {
		t.Error("guess message not deleted")
	}
	if after := h.session(t); after.Game.Guesses != before.Game.Guesses || after.State != before.State {
		t.Errorf("session changed: %+v", after)
	}
}

func TestResetDeletesRound(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	roundID := h.session(t).GameMessageID

	calls := h.text(t, "/reset")
	if !deleted(calls, roundID) {
		t.Error("round message not deleted")
	}
	s := h.session(t)
	if s.State != game.StateNone || s.Game != nil || s.GameMessageID != 0 {
		t.Errorf("session after reset = %+v", s)
	}
}

func TestListPaging(t *testing.T) {
	h := newHarness(t)
	today := daily.GameID(game.English, testNow)

	calls := h.text(t, "/list")
	sends := only(calls, "send")
	if len(sends) != 1 || sends[0].text != "Choose a game to play:" {
		t.Fatalf("list = %+v", sends)
	}
	listID := sends[0].messageID
	if h.session(t).FeedbackID != listID {
		t.Fatal("list message is not the feedback message")
	}
	b := buttons(sends[0].kb)
	if telegram.CallbackData(b[0]) != payload(cbGame, today-1) || b[0].Text != "#"+strconv.Itoa(today-1) {
		t.Errorf("first button = %+v", b[0])
	}
	backCursor := today - 1 - 9
	if !hasButton(sends[0].kb, payload(cbBack, backCursor)) || !hasButton(sends[0].kb, payload(cbNext, today)) {
		t.Errorf("navigation = %+v", b)
	}

	calls = h.press(t, payload(cbBack, backCursor))
	edits := only(calls, "edit")
	if len(edits) != 1 || edits[0].messageID != listID {
		t.Fatalf("page edit = %+v", edits)
	}
	if got := telegram.CallbackData(buttons(edits[0].kb)[0]); got != payload(cbGame, backCursor) {
		t.Errorf("older page starts with %s, want game %d", got, backCursor)
	}

	calls = h.press(t, payload(cbGame, 12))
	sends = only(calls, "send")
	if !deleted(calls, listID) || len(sends) != 1 || !strings.Contains(sends[0].text, "Game: #12") {
		t.Errorf("pick game = %+v", calls)
	}
	if s := h.session(t); s.Game == nil || s.Game.ID != 12 {
		t.Errorf("session round = %+v", s.Game)
	}
}

func TestPickGameReplacesActiveRound(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	roundID := h.session(t).GameMessageID

	calls := h.press(t, payload(cbGame, 12))
	if sends := only(calls, "send"); len(sends) != 0 {
		t.Errorf("picking a game mid-round sent %+v", sends)
	}
	edits := only(calls, "edit")
	if len(edits) != 1 || edits[0].messageID != roundID || !strings.Contains(edits[0].text, "Game: #12") {
		t.Fatalf("edits = %+v, want one edit of message %d", edits, roundID)
	}

	s := h.session(t)
	if s.Game == nil || s.Game.ID != 12 || s.GameMessageID != roundID || s.State != game.StateStarted {
		t.Errorf("session = %+v", s)
	}
}

func TestSettingsFlow(t *testing.T) {
	h := newHarness(t)

	calls := h.text(t, "/settings")
	sends := only(calls, "send")
	if len(sends) != 1 || !hasButton(sends[0].kb, "settings=language") {
		t.Fatalf("settings menu = %+v", sends)
	}
	menuID := sends[0].messageID

	calls = h.press(t, "settings=language")
	edits := only(calls, "edit")
	if len(edits) != 1 || edits[0].messageID != menuID {
		t.Fatalf("language menu = %+v", edits)
	}
	if b := buttons(edits[0].kb); b[0].Text != "✅ English" || b[1].Text != "Español" {
		t.Errorf("language buttons = %+v", b)
	}

	calls = h.press(t, "settings:lang=es")
	if !deleted(calls, menuID) {
		t.Error("settings message not deleted")
	}
	sends = only(calls, "send")
	if len(sends) != 1 || sends[0].text != "¡Tu idioma ha sido guardado!" {
		t.Errorf("confirmation = %+v", sends)
	}
	s := h.session(t)
	if s.Settings.Language != game.Spanish || s.Settings.MessageID != 0 {
		t.Errorf("settings = %+v", s.Settings)
	}

	// Without a pending menu the choice is ignored.
	h.press(t, "settings:diff=hard")
	if h.session(t).Settings.Difficulty != game.Easy {
		t.Error("difficulty changed without a settings menu")
	}
}

func TestHistoryCommand(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	h.text(t, "answer")

	calls := h.text(t, "/history")
	sends := only(calls, "send")
	want := "You played 1 game(s).\n\n✅ #" + strconv.Itoa(daily.GameID(game.English, testNow))
	if len(sends) != 1 || !strings.HasPrefix(sends[0].text, want) {
		t.Errorf("history = %+v, want prefix %q", sends, want)
	}
}

func TestRateLimitDropsFlood(t *testing.T) {
	h := newHarness(t, WithRateLimit(0, 1))
	h.text(t, "/play")
	calls := h.text(t, "/reset")
	if len(calls) != 0 {
		t.Errorf("limited update produced calls: %+v", calls)
	}
	if h.session(t).State != game.StateStarted {
		t.Error("limited update changed the session")
	}
}

func TestLimiterSweepEvictsIdleChats(t *testing.T) {
	s := limiterSet{m: map[int64]*limiter{}, rate: 0, burst: 1}
	s.allow(1, testNow)
	s.allow(2, testNow.Add(50*time.Minute))

	if n := s.sweep(time.Hour, testNow.Add(90*time.Minute)); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
	if _, ok := s.m[1]; ok {
		t.Error("idle chat kept")
	}
	if _, ok := s.m[2]; !ok {
		t.Error("recent chat evicted")
	}

	// An evicted chat starts over with a fresh bucket.
	if !s.allow(1, testNow.Add(91*time.Minute)) {
		t.Error("evicted chat still limited")
	}
	if s.allow(2, testNow.Add(91*time.Minute)) {
		t.Error("recent chat lost its bucket state")
	}
}

func TestPruneLimiters(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	if n := h.d.PruneLimiters(time.Hour); n != 0 {
		t.Errorf("PruneLimiters(1h) = %d, want 0", n)
	}
	if n := h.d.PruneLimiters(-time.Second); n != 1 {
		t.Errorf("PruneLimiters(-1s) = %d, want 1", n)
	}
}

func TestResetChat(t *testing.T) {
	h := newHarness(t)
	h.text(t, "/play")
	roundID := h.session(t).GameMessageID

	s, err := h.d.ResetChat(context.Background(), chat)
	if err != nil {
		t.Fatal(err)
	}
	if s.State != game.StateNone || !deleted(h.tg.take(), roundID) {
		t.Errorf("ResetChat = %+v", s)
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct{ data, key, value string }{
		{"game:id=12", "game:id", "12"},
		{payload(cbLanguage, "pt"), "settings:lang", "pt"},
		{"noop", "noop", ""},
		{"settings=language", "settings", "language"},
	}
	for _, tt := range tests {
		k, v := parsePayload(tt.data)
		if k != tt.key || v != tt.value {
			t.Errorf("parsePayload(%q) = %q, %q", tt.data, k, v)
		}
	}
}
