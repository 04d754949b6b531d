// Package orchestrator runs the refinement loop: the poet and the critic
// take alternating turns until the critic approves or the turn budget runs
// out.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/valpere/haikuloop/internal/agent"
	"github.com/valpere/haikuloop/internal/session"
)

// MinTurns is the smallest budget that allows one draft and one critique.
const MinTurns = 2

var ErrInvalidMaxTurns = errors.New("max turns must be at least 2")

// Observer is called after each turn is recorded.
type Observer func(rec session.TurnRecord)

type Option func(*Orchestrator)

// WithObserver registers fn to be called with every recorded turn.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

type Orchestrator struct {
	generator agent.Generator
	critic    agent.Critic
	observer  Observer
	logger    *slog.Logger
}

func New(generator agent.Generator, critic agent.Critic, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator: generator,
		critic:    critic,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one session. Turns run strictly one after another since each
// prompt depends on the previous output. A failed role call aborts the
// session and no partial result is returned.
func (o *Orchestrator) Run(ctx context.Context, topic string, maxTurns int) (*session.Session, error) {
	if maxTurns < MinTurns {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxTurns, maxTurns)
	}

	s := session.New(topic, maxTurns)
	var candidate string
	var feedback *string

	for turn := 1; turn <= maxTurns; turn++ {
		role := session.RoleForTurn(turn)
		o.logger.Debug("turn started", "turn", turn, "agent", role)

		var out string
		var err error
		if role == session.RoleGenerator {
			out, err = o.generator.Generate(ctx, topic, feedback)
			candidate = out
		} else {
			out, err = o.critic.Critique(ctx, candidate)
			critique := out
			feedback = &critique
		}
		if err != nil {
			return nil, fmt.Errorf("turn %d (%s): %w", turn, role, err)
		}

		rec := s.Append(role, out)
		if o.observer != nil {
			o.observer(rec)
		}

		if role == session.RoleCritic && session.IsApproval(out) {
			s.Approved = true
			o.logger.Info("haiku approved", "topic", topic, "turn", turn)
			break
		}
	}

	o.logger.Debug("session complete", "topic", topic, "turns", s.ActualTurns, "approved", s.Approved)
	return s, nil
}
