// Package service ties a refinement run to the history store. It is shared
// by the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/haikuloop/internal"
	"github.com/valpere/haikuloop/internal/agent"
	"github.com/valpere/haikuloop/internal/orchestrator"
	"github.com/valpere/haikuloop/internal/session"
	"github.com/valpere/haikuloop/internal/store"
)

// ErrNoStore is returned by history operations when persistence is disabled.
var ErrNoStore = errors.New("session history is disabled")

// SessionStore is the persistence used by Service. *store.Store implements it.
type SessionStore interface {
	SaveSession(ctx context.Context, meta internal.SessionMeta, s *session.Session) error
	GetSession(ctx context.Context, id string) (*store.Record, error)
	ListSessions(ctx context.Context, f store.ListFilter) ([]store.Summary, error)
	DeleteSession(ctx context.Context, id string) error
	Stats(ctx context.Context) (*store.Stats, error)
}

type Config struct {
	Provider string
	Model    string
}

type Service struct {
	generator agent.Generator
	critic    agent.Critic
	store     SessionStore
	cfg       Config
	logger    *slog.Logger

	newID func() string
	now   func() time.Time
}

// New creates a Service. db may be nil, in which case sessions are run but
// not stored.
func New(generator agent.Generator, critic agent.Critic, db SessionStore, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		generator: generator,
		critic:    critic,
		store:     db,
		cfg:       cfg,
		logger:    logger,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
}

// RunSession runs one refinement session and stores it when a store is
// configured. observer may be nil. A failed session is never stored.
//
// The returned record carries an ID and Stored == true only when the
// session was written to the store. A store failure does not fail the run.
func (s *Service) RunSession(ctx context.Context, topic string, maxTurns int, observer orchestrator.Observer) (*store.Record, error) {
	opts := []orchestrator.Option{orchestrator.WithLogger(s.logger)}
	if observer != nil {
		opts = append(opts, orchestrator.WithObserver(observer))
	}

	sess, err := orchestrator.New(s.generator, s.critic, opts...).Run(ctx, topic, maxTurns)
	if err != nil {
		return nil, err
	}

	meta := internal.SessionMeta{
		ID:        s.newID(),
		Provider:  s.cfg.Provider,
		Model:     s.cfg.Model,
		CreatedAt: s.now(),
	}
	rec := &store.Record{SessionMeta: meta, Session: sess}
	if s.store == nil {
		rec.ID = ""
		return rec, nil
	}

	if err := s.store.SaveSession(ctx, meta, sess); err != nil {
		s.logger.Warn("failed to store session", "id", meta.ID, "error", err)
		rec.ID = ""
		return rec, nil
	}
	s.logger.Debug("session stored", "id", meta.ID)
	rec.Stored = true
	return rec, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*store.Record, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.GetSession(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context, f store.ListFilter) ([]store.Summary, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ListSessions(ctx, f)
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrNoStore
	}
	return s.store.DeleteSession(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Stats(ctx)
}
