package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/guesstheword/internal/game"
)

func openTestDB(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQL(NewSQLiteDialect(), filepath.Join(t.TempDir(), "data", "bot.db"))
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteLoadUnknownChat(t *testing.T) {
	s := openTestDB(t)
	got, err := s.Load(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != game.StateNone || got.Game != nil || len(got.History) != 0 {
		t.Errorf("Load(unknown) = %+v", got)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	played := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := game.NewSession()
	sess.State = game.StatePlaying
	sess.Settings = game.Settings{Language: game.Portuguese, Difficulty: game.Hard, MessageID: 11}
	sess.FeedbackID = 12
	sess.GameMessageID = 13
	sess.Game = &game.Round{
		ID: 500, Guesses: 2, Hints: 1, Distance: 40, LastWord: "casa",
		Log:      []game.Guess{{Word: "mesa", Distance: 900}, {Word: "casa", Distance: 40}},
		Progress: game.Rate(40),
	}
	sess.History = []game.HistoryEntry{
		{GameID: 10, Word: "sol", Status: game.StatusWon, PlayedAt: played},
		{GameID: 3, Word: "lua", Status: game.StatusLost, PlayedAt: played.Add(time.Hour)},
	}

	if err := s.Save(ctx, 1, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.State != sess.State || got.Settings != sess.Settings || got.FeedbackID != 12 || got.GameMessageID != 13 {
		t.Errorf("session fields = %+v", got)
	}
	if got.Game == nil || got.Game.ID != 500 || len(got.Game.Log) != 2 || got.Game.Progress != sess.Game.Progress {
		t.Errorf("round = %+v", got.Game)
	}
	if len(got.History) != 2 || got.History[0].GameID != 10 || got.History[1].GameID != 3 {
		t.Fatalf("history = %+v", got.History)
	}
	if !got.History[0].PlayedAt.Equal(played) {
		t.Errorf("played_at = %v, want %v", got.History[0].PlayedAt, played)
	}
}

func TestSQLiteHistoryAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	sess := game.NewSession()
	sess.History = []game.HistoryEntry{{GameID: 5, Word: "a", Status: game.StatusWon, PlayedAt: time.Now()}}
	if err := s.Save(ctx, 1, sess); err != nil {
		t.Fatal(err)
	}

	// Saving again, with a conflicting entry for the same puzzle, keeps the first entry.
	sess.History = append(sess.History, game.HistoryEntry{GameID: 5, Word: "b", Status: game.StatusLost, PlayedAt: time.Now()})
	sess.History = append(sess.History, game.HistoryEntry{GameID: 6, Word: "c", Status: game.StatusLost, PlayedAt: time.Now()})
	if err := s.Save(ctx, 1, sess); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Load(ctx, 1)
	if len(got.History) != 2 {
		t.Fatalf("history = %+v, want 2 entries", got.History)
	}
	if got.History[0].Word != "a" || got.History[0].Status != game.StatusWon {
		t.Errorf("first entry rewritten: %+v", got.History[0])
	}
}

func TestSQLiteClearsRound(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	sess := game.NewSession()
	sess.State = game.StateStarted
	sess.Game = game.NewRound(3)
	if err := s.Save(ctx, 9, sess); err != nil {
		t.Fatal(err)
	}
	sess.State = game.StateNone
	sess.Game = nil
	if err := s.Save(ctx, 9, sess); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Load(ctx, 9)
	if got.Game != nil || got.State != game.StateNone {
		t.Errorf("Load after clear = %+v", got)
	}
}

func TestSQLiteMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.db")
	for i := 0; i < 2; i++ {
		s, err := OpenSQL(NewSQLiteDialect(), path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		s.Close()
	}
}

func TestSQLiteSaveZeroPlayedAt(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	sess := game.NewSession()
	sess.History = []game.HistoryEntry{{GameID: 7, Word: "x", Status: game.StatusWon}}
	if err := s.Save(ctx, 3, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// A second save re-derives the id and must not panic either.
	if err := s.Save(ctx, 3, sess); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := s.Load(ctx, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.History) != 1 || got.History[0].GameID != 7 {
		t.Errorf("history = %+v", got.History)
	}
}

func TestSQLiteCorruptPlayedAt(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	if _, err := s.db.Exec(`INSERT INTO history (id, chat_id, game_id, word, status, played_at)
		VALUES ('01HX0000000000000000000000', 4, 1, 'w', 'won', 'yesterday')`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, 4); err == nil {
		t.Fatal("Load with unparsable played_at: want error")
	}
}
