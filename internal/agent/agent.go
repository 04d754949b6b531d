// Package agent implements the two roles of a refinement session: a poet
// that writes and revises a haiku, and a critic that reviews it.
package agent

import "context"

// Generator writes a haiku about topic. A nil feedback asks for a first
// draft; otherwise the poem should address the feedback.
type Generator interface {
	Generate(ctx context.Context, topic string, feedback *string) (string, error)
}

// Critic reviews a haiku. A critique starting with session.ApprovalMarker
// means no further revision is needed.
type Critic interface {
	Critique(ctx context.Context, poem string) (string, error)
}

const (
	DefaultGeneratorMaxTokens = 200
	DefaultCriticMaxTokens    = 300
)
