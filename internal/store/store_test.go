package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/haikuloop/internal"
	"github.com/valpere/haikuloop/internal/session"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSession(topic string, approved bool) *session.Session {
	s := session.New(topic, 4)
	s.Append(session.RoleGenerator, "Cold moon\nover the lake")
	if approved {
		s.Append(session.RoleCritic, "APPROVED: striking")
		s.Approved = true
		return s
	}
	s.Append(session.RoleCritic, "Add a kigo.")
	s.Append(session.RoleGenerator, "Winter moon\nover the lake")
	s.Append(session.RoleCritic, "Better, still flat.")
	return s
}

func meta(id string, created time.Time) internal.SessionMeta {
	return internal.SessionMeta{ID: id, Provider: "anthropic", Model: "claude-3-haiku-20240307", CreatedAt: created}
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_SaveAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	orig := sampleSession("winter", false)
	if err := s.SaveSession(ctx, meta("sess-1", time.Now()), orig); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	rec, err := s.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if rec.ID != "sess-1" || rec.Provider != "anthropic" {
		t.Errorf("unexpected metadata: %+v", rec.SessionMeta)
	}
	got := rec.Session
	if got.Topic != "winter" || got.MaxTurns != 4 || got.ActualTurns != 4 || got.Approved {
		t.Errorf("unexpected session header: %+v", got)
	}
	if len(got.Turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(got.Turns))
	}
	for i, turn := range got.Turns {
		if turn != orig.Turns[i] {
			t.Errorf("turn %d: got %+v, want %+v", i+1, turn, orig.Turns[i])
		}
	}
	if got.Final() != "Winter moon\nover the lake" {
		t.Errorf("unexpected final haiku %q", got.Final())
	}
	if err := got.Validate(); err != nil {
		t.Errorf("stored session is invalid: %v", err)
	}
}

func TestStore_SaveSession_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSession(ctx, meta("dup", time.Now()), sampleSession("a", true)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := s.SaveSession(ctx, meta("dup", time.Now()), sampleSession("b", true)); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestStore_SaveSession_MissingID(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSession(context.Background(), internal.SessionMeta{}, sampleSession("a", true)); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestStore_GetSession_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	s.SaveSession(ctx, meta("old", base), sampleSession("Winter", false))
	s.SaveSession(ctx, meta("mid", base.Add(time.Hour)), sampleSession("rain", true))
	s.SaveSession(ctx, meta("new", base.Add(2*time.Hour)), sampleSession(" winter ", true))

	all, err := s.ListSessions(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}

	winter, err := s.ListSessions(ctx, ListFilter{Topic: "WINTER"})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(winter) != 2 {
		t.Errorf("expected 2 winter sessions, got %d", len(winter))
	}

	approved, err := s.ListSessions(ctx, ListFilter{ApprovedOnly: true, Limit: 1})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != "new" {
		t.Errorf("expected only the newest approved session, got %+v", approved)
	}
}

func TestStore_ListSessions_Empty(t *testing.T) {
	s := newTestStore(t)

	list, err := s.ListSessions(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
}

func TestStore_DeleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveSession(ctx, meta("gone", time.Now()), sampleSession("winter", true))

	if err := s.DeleteSession(ctx, "gone"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.GetSession(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSession(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if empty.TotalSessions != 0 || empty.AverageTurns != 0 {
		t.Errorf("unexpected stats for empty store: %+v", empty)
	}

	s.SaveSession(ctx, meta("a", time.Now()), sampleSession("winter", true))
	s.SaveSession(ctx, meta("b", time.Now()), sampleSession("Winter", false))
	s.SaveSession(ctx, meta("c", time.Now()), sampleSession("rain", true))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalSessions != 3 {
		t.Errorf("expected 3 sessions, got %d", stats.TotalSessions)
	}
	if stats.ApprovedSessions != 2 {
		t.Errorf("expected 2 approved, got %d", stats.ApprovedSessions)
	}
	if stats.DistinctTopics != 2 {
		t.Errorf("expected 2 distinct topics, got %d", stats.DistinctTopics)
	}
	if stats.AverageTurns < 2.66 || stats.AverageTurns > 2.67 {
		t.Errorf("expected average turns ~2.67, got %f", stats.AverageTurns)
	}
}

func TestTopicKey(t *testing.T) {
	if topicKey(" Winter ") != topicKey("winter") {
		t.Error("expected case and whitespace to be ignored")
	}
	// "é" precomposed vs "e" + combining acute.
	if topicKey("caf\u00e9") != topicKey("cafe\u0301") {
		t.Error("expected NFC normalisation")
	}
}
