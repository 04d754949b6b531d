package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/haikuloop/internal"
	"github.com/valpere/haikuloop/internal/session"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("session not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		topic_key TEXT NOT NULL,
		max_turns INTEGER NOT NULL,
		final_haiku TEXT,
		approved BOOLEAN DEFAULT FALSE,
		actual_turns INTEGER NOT NULL,
		provider TEXT,
		model TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		agent TEXT NOT NULL,
		action TEXT NOT NULL,
		output TEXT NOT NULL,
		PRIMARY KEY (session_id, turn),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_topic ON sessions(topic_key);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record is a session together with its metadata. Stored reports whether
// the session is present in the history database.
type Record struct {
	internal.SessionMeta
	Stored  bool             `json:"stored"`
	Session *session.Session `json:"session"`
}

// SaveSession stores a finished session and its turns in one transaction.
func (s *Store) SaveSession(ctx context.Context, meta internal.SessionMeta, sess *session.Session) error {
	if meta.ID == "" {
		return errors.New("session id is required")
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var final sql.NullString
	if sess.FinalOutput != nil {
		final = sql.NullString{String: *sess.FinalOutput, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, topic, topic_key, max_turns, final_haiku, approved, actual_turns, provider, model, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, sess.Topic, topicKey(sess.Topic), sess.MaxTurns, final, sess.Approved, sess.ActualTurns, meta.Provider, meta.Model, meta.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	for _, t := range sess.Turns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO turns (session_id, turn, agent, action, output) VALUES (?, ?, ?, ?, ?)`,
			meta.ID, t.Turn, string(t.Agent), string(t.Action), t.Output)
		if err != nil {
			return fmt.Errorf("failed to save turn %d: %w", t.Turn, err)
		}
	}

	return tx.Commit()
}

// GetSession loads a stored session with all of its turns.
func (s *Store) GetSession(ctx context.Context, id string) (*Record, error) {
	rec := &Record{Stored: true, Session: &session.Session{}}
	var final sql.NullString
	var provider, model sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, max_turns, final_haiku, approved, actual_turns, provider, model, created_at FROM sessions WHERE id = ?`,
		id).Scan(&rec.ID, &rec.Session.Topic, &rec.Session.MaxTurns, &final, &rec.Session.Approved, &rec.Session.ActualTurns, &provider, &model, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if final.Valid {
		out := final.String
		rec.Session.FinalOutput = &out
	}
	rec.Provider = provider.String
	rec.Model = model.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT turn, agent, action, output FROM turns WHERE session_id = ? ORDER BY turn`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec.Session.Turns = make([]session.TurnRecord, 0, rec.Session.ActualTurns)
	for rows.Next() {
		var t session.TurnRecord
		var agentName, action string
		if err := rows.Scan(&t.Turn, &agentName, &action, &t.Output); err != nil {
			return nil, err
		}
		t.Agent = session.Role(agentName)
		t.Action = session.Action(action)
		rec.Session.Turns = append(rec.Session.Turns, t)
	}

	return rec, rows.Err()
}

// Summary is one row of a session listing.
type Summary struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	MaxTurns    int       `json:"max_turns"`
	ActualTurns int       `json:"actual_turns"`
	Approved    bool      `json:"approved"`
	FinalHaiku  string    `json:"final_haiku"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows ListSessions. Zero values disable each filter.
type ListFilter struct {
	Topic        string
	ApprovedOnly bool
	Limit        int
}

// ListSessions returns stored sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, f ListFilter) ([]Summary, error) {
	query := `SELECT id, topic, max_turns, actual_turns, approved, COALESCE(final_haiku, ''), COALESCE(provider, ''), COALESCE(model, ''), created_at FROM sessions`
	var where []string
	var args []interface{}

	if f.Topic != "" {
		where = append(where, `topic_key = ?`)
		args = append(args, topicKey(f.Topic))
	}
	if f.ApprovedOnly {
		where = append(where, `approved`)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Summary
	for rows.Next() {
		var e Summary
		if err := rows.Scan(&e.ID, &e.Topic, &e.MaxTurns, &e.ActualTurns, &e.Approved, &e.FinalHaiku, &e.Provider, &e.Model, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// DeleteSession removes a session and its turns.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// Stats summarises the stored history.
type Stats struct {
	TotalSessions    int     `json:"total_sessions"`
	ApprovedSessions int     `json:"approved_sessions"`
	AverageTurns     float64 `json:"average_turns"`
	DistinctTopics   int     `json:"distinct_topics"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN approved THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(actual_turns), 0),
			COUNT(DISTINCT topic_key)
		FROM sessions`).Scan(
		&stats.TotalSessions,
		&stats.ApprovedSessions,
		&stats.AverageTurns,
		&stats.DistinctTopics,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// topicKey trims, NFC-normalises and case-folds a topic so that "Winter",
// " winter " and a decomposed "wínter" variant group together.
func topicKey(topic string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(topic)))
}
