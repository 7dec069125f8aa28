// internal/store/sql.go
//
// database/sql implementation of the Store interface (SQLite or PostgreSQL).
// Responsibilities:
//   - Opening the database with dialect defaults.
//   - Applying embedded migrations from assets/sql (idempotent, recorded in _migrations).
//   - Loading a session row plus its history rows.
//   - Saving a session in one transaction: upsert the row, insert new history.
//
// History rows carry ULID ids and are unique per (chat_id, game_id); re-saving a
// session never duplicates or rewrites an entry.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/assets"
	"github.com/robalobadob/guesstheword/internal/game"
)

// tsLayout is fixed-width so timestamps sort lexicographically.
const tsLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLStore implements Store on database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens the database, configures it and applies migrations.
func OpenSQL(d Dialect, dsn string) (*SQLStore, error) {
	full, err := d.DSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), full)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	if err := d.Configure(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) q(query string) string { return s.dialect.Rebind(query) }

// migrate applies the embedded SQL migrations in lexical order, each in its
// own transaction, skipping the ones recorded in _migrations.
func (s *SQLStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, f := range files {
		var done int
		err := s.db.QueryRow(s.q(`SELECT 1 FROM _migrations WHERE name=?`), f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlText, err := assets.Migration(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(s.q(`INSERT INTO _migrations(name) VALUES (?)`), f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Str("dialect", s.dialect.Name()).Msg("applied")
	}
	return nil
}

// Load reads the session row and its history.
func (s *SQLStore) Load(ctx context.Context, chatID int64) (*game.Session, error) {
	sess := game.NewSession()
	var (
		state, lang, diff string
		roundJSON         sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT state, language, difficulty, settings_message_id, feedback_message_id, game_message_id, game
		FROM sessions WHERE chat_id=?`), chatID,
	).Scan(&state, &lang, &diff, &sess.Settings.MessageID, &sess.FeedbackID, &sess.GameMessageID, &roundJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}

	sess.State = game.State(state)
	sess.Settings.Language = game.Language(lang)
	sess.Settings.Difficulty = game.Difficulty(diff)
	if roundJSON.Valid && roundJSON.String != "" {
		var r game.Round
		if err := json.Unmarshal([]byte(roundJSON.String), &r); err != nil {
			return nil, fmt.Errorf("decode round for %d: %w", chatID, err)
		}
		if r.Log == nil {
			r.Log = []game.Guess{}
		}
		sess.Game = &r
	}

	history, err := s.history(ctx, chatID)
	if err != nil {
		return nil, err
	}
	sess.History = history
	return sess, nil
}

func (s *SQLStore) history(ctx context.Context, chatID int64) ([]game.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT game_id, word, status, played_at
		FROM history WHERE chat_id=?
		ORDER BY played_at ASC, id ASC`), chatID)
	if err != nil {
		return nil, fmt.Errorf("load history %d: %w", chatID, err)
	}
	defer rows.Close()

	out := []game.HistoryEntry{}
	for rows.Next() {
		var (
			h        game.HistoryEntry
			status   string
			playedAt string
		)
		if err := rows.Scan(&h.GameID, &h.Word, &status, &playedAt); err != nil {
			return nil, err
		}
		h.Status = game.Status(status)
		if h.PlayedAt, err = time.Parse(tsLayout, playedAt); err != nil {
			return nil, fmt.Errorf("history %d/#%d played_at: %w", chatID, h.GameID, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Save upserts the session row and inserts any history entries not stored yet.
func (s *SQLStore) Save(ctx context.Context, chatID int64, sess *game.Session) error {
	var roundJSON sql.NullString
	if sess.Game != nil {
		b, err := json.Marshal(sess.Game)
		if err != nil {
			return fmt.Errorf("encode round: %w", err)
		}
		roundJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO sessions
			(chat_id, state, language, difficulty, settings_message_id, feedback_message_id, game_message_id, game, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chat_id) DO UPDATE SET
			state = excluded.state,
			language = excluded.language,
			difficulty = excluded.difficulty,
			settings_message_id = excluded.settings_message_id,
			feedback_message_id = excluded.feedback_message_id,
			game_message_id = excluded.game_message_id,
			game = excluded.game,
			updated_at = excluded.updated_at`),
		chatID, string(sess.State), string(sess.Settings.Language), string(sess.Settings.Difficulty),
		sess.Settings.MessageID, sess.FeedbackID, sess.GameMessageID, roundJSON,
		time.Now().UTC().Format(tsLayout),
	); err != nil {
		return fmt.Errorf("upsert session %d: %w", chatID, err)
	}

	for _, h := range sess.History {
		id, err := historyID(h.PlayedAt)
		if err != nil {
			return fmt.Errorf("history id %d/#%d: %w", chatID, h.GameID, err)
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO history (id, chat_id, game_id, word, status, played_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (chat_id, game_id) DO NOTHING`),
			id, chatID, h.GameID, h.Word, string(h.Status), h.PlayedAt.UTC().Format(tsLayout),
		); err != nil {
			return fmt.Errorf("insert history %d/#%d: %w", chatID, h.GameID, err)
		}
	}

	return tx.Commit()
}

// historyID derives a ULID from the play time. Times outside the ULID range
// (the zero time, anything before 1970) are stamped with the current time.
func historyID(playedAt time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(playedAt), ulid.DefaultEntropy())
	if errors.Is(err, ulid.ErrBigTime) {
		log.Warn().Time("played_at", playedAt).Msg("history time out of ulid range")
		id, err = ulid.New(ulid.Now(), ulid.DefaultEntropy())
	}
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }
