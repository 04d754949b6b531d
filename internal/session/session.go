// Package session holds the record of one generator/critic refinement run:
// the ordered turns, the final haiku and the approval outcome.
package session

import (
	"fmt"
	"strings"
)

// ApprovalMarker is the literal prefix a critique carries when the critic
// considers the haiku finished.
const ApprovalMarker = "APPROVED:"

// Role identifies which agent produced a turn. The values are the agent
// names written to the persisted session document.
type Role string

const (
	RoleGenerator Role = "HaikuAgent"
	RoleCritic    Role = "CritiqueAgent"
)

// Action is what the agent did during a turn.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionCritique Action = "critique"
)

// TurnRecord is one entry of the session history. It is never modified
// after it has been appended.
type TurnRecord struct {
	Turn   int    `json:"turn"`
	Agent  Role   `json:"agent"`
	Action Action `json:"action"`
	Output string `json:"output"`
}

// Session is the outcome of a refinement run.
type Session struct {
	Topic       string       `json:"topic"`
	MaxTurns    int          `json:"max_turns"`
	Turns       []TurnRecord `json:"turns"`
	FinalOutput *string      `json:"final_haiku"`
	Approved    bool         `json:"approved"`
	ActualTurns int          `json:"actual_turns"`
}

// New returns an empty session for topic with the given turn budget.
func New(topic string, maxTurns int) *Session {
	return &Session{
		Topic:    topic,
		MaxTurns: maxTurns,
		Turns:    make([]TurnRecord, 0, maxTurns),
	}
}

// RoleForTurn returns the agent that owns the 1-based turn number.
// Odd turns generate, even turns critique.
func RoleForTurn(turn int) Role {
	if turn%2 == 1 {
		return RoleGenerator
	}
	return RoleCritic
}

// ActionFor returns the action performed by role.
func ActionFor(role Role) Action {
	if role == RoleCritic {
		return ActionCritique
	}
	return ActionGenerate
}

// IsApproval reports whether a critique starts with the approval marker.
// The match is exact: case-sensitive and without trimming leading space.
func IsApproval(critique string) bool {
	return strings.HasPrefix(critique, ApprovalMarker)
}

// Append records the next turn and returns the stored record.
func (s *Session) Append(role Role, output string) TurnRecord {
	rec := TurnRecord{
		Turn:   len(s.Turns) + 1,
		Agent:  role,
		Action: ActionFor(role),
		Output: output,
	}
	s.Turns = append(s.Turns, rec)
	if role == RoleGenerator {
		out := output
		s.FinalOutput = &out
	}
	s.ActualTurns = len(s.Turns)
	return rec
}

// Final returns the last generated haiku, or "" when none was produced.
func (s *Session) Final() string {
	if s.FinalOutput == nil {
		return ""
	}
	return *s.FinalOutput
}

// Validate checks the structural invariants of a finished session. It is
// used on documents loaded from disk or from the store.
func (s *Session) Validate() error {
	if s.MaxTurns < 2 {
		return fmt.Errorf("max_turns must be at least 2, got %d", s.MaxTurns)
	}
	if s.ActualTurns != len(s.Turns) {
		return fmt.Errorf("actual_turns %d does not match %d recorded turns", s.ActualTurns, len(s.Turns))
	}
	if len(s.Turns) > s.MaxTurns {
		return fmt.Errorf("%d turns recorded but max_turns is %d", len(s.Turns), s.MaxTurns)
	}
	for i, t := range s.Turns {
		want := i + 1
		if t.Turn != want {
			return fmt.Errorf("turn %d: expected turn number %d", t.Turn, want)
		}
		if t.Agent != RoleForTurn(want) {
			return fmt.Errorf("turn %d: expected agent %s, got %s", want, RoleForTurn(want), t.Agent)
		}
		if t.Action != ActionFor(t.Agent) {
			return fmt.Errorf("turn %d: unexpected action %s for %s", want, t.Action, t.Agent)
		}
	}
	if s.Approved {
		if len(s.Turns) == 0 {
			return fmt.Errorf("approved session has no turns")
		}
		last := s.Turns[len(s.Turns)-1]
		if last.Agent != RoleCritic || !IsApproval(last.Output) {
			return fmt.Errorf("approved session must end with an approving critique")
		}
	}
	return nil
}
