/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/valpere/haikuloop/internal/session"
)

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("-", 60)
)

// sessionPrinter renders a running session the way a user watches it: a
// header, one block per turn and a footer with the final haiku.
type sessionPrinter struct {
	w io.Writer
}

func (p sessionPrinter) header(topic string, maxTurns int) {
	fmt.Fprintln(p.w, heavyRule)
	fmt.Fprintln(p.w, "MULTI-AGENT HAIKU REFINEMENT SESSION")
	fmt.Fprintf(p.w, "Topic: %s\n", topic)
	fmt.Fprintf(p.w, "Max Turns: %d\n", maxTurns)
	fmt.Fprintln(p.w, heavyRule)
	fmt.Fprintln(p.w)
}

func (p sessionPrinter) turn(rec session.TurnRecord) {
	label := "Generating Haiku"
	if rec.Agent == session.RoleCritic {
		label = "Providing Critique"
	}
	fmt.Fprintf(p.w, "Turn %d: %s - %s\n", rec.Turn, rec.Agent, label)
	fmt.Fprintln(p.w, lightRule)
	fmt.Fprintln(p.w, rec.Output)
	fmt.Fprintln(p.w)

	if rec.Agent == session.RoleCritic && session.IsApproval(rec.Output) {
		fmt.Fprintln(p.w, "Haiku has been APPROVED! Stopping early.")
		fmt.Fprintln(p.w)
	}
}

func (p sessionPrinter) footer(s *session.Session) {
	fmt.Fprintln(p.w, heavyRule)
	fmt.Fprintln(p.w, "SESSION COMPLETE")
	fmt.Fprintln(p.w, heavyRule)
	fmt.Fprintln(p.w)

	if s.Approved {
		fmt.Fprintf(p.w, "Final Haiku (APPROVED after %d turns):\n", s.ActualTurns)
	} else {
		fmt.Fprintf(p.w, "Final Haiku (after %d turns):\n", s.ActualTurns)
	}
	fmt.Fprintln(p.w, s.Final())
	fmt.Fprintln(p.w)
}
