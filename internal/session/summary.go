package session

import (
	"fmt"
	"strings"
)

// Summary renders the session history as plain text.
func Summary(s *Session) string {
	var sb strings.Builder
	sb.WriteString("\nSession Summary:\n")
	sb.WriteString(fmt.Sprintf("Topic: %s\n", s.Topic))
	sb.WriteString(fmt.Sprintf("Total Turns: %d\n\n", s.MaxTurns))

	for _, t := range s.Turns {
		sb.WriteString(fmt.Sprintf("Turn %d (%s - %s):\n", t.Turn, t.Agent, t.Action))
		sb.WriteString(t.Output)
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("Final Result:\n%s\n", s.Final()))
	return sb.String()
}
