package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/valpere/haikuloop/internal/llm"
)

type recordingLLM struct {
	reply    string
	err      error
	requests []llm.Request
}

func (r *recordingLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	r.requests = append(r.requests, req)
	return r.reply, r.err
}

func TestNewHaikuAgent_NilClient(t *testing.T) {
	if _, err := NewHaikuAgent(nil, 0); err == nil {
		t.Error("expected error for nil llm client")
	}
}

func TestNewCritiqueAgent_NilClient(t *testing.T) {
	if _, err := NewCritiqueAgent(nil, 0); err == nil {
		t.Error("expected error for nil llm client")
	}
}

func TestHaikuAgent_Generate_FirstDraft(t *testing.T) {
	fake := &recordingLLM{reply: "Here is a haiku about winter:\nCold moon\nover the still lake\nsnow keeps its silence"}
	agent, err := NewHaikuAgent(fake, 0)
	if err != nil {
		t.Fatalf("NewHaikuAgent failed: %v", err)
	}

	poem, err := agent.Generate(context.Background(), "winter", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poem != "Cold moon\nover the still lake\nsnow keeps its silence" {
		t.Errorf("unexpected poem %q", poem)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.MaxTokens != DefaultGeneratorMaxTokens {
		t.Errorf("expected max tokens %d, got %d", DefaultGeneratorMaxTokens, req.MaxTokens)
	}
	if req.Role != "generator" {
		t.Errorf("expected generator role, got %q", req.Role)
	}
	if req.Prompt != "Write a haiku poem about winter. Just the haiku, nothing else." {
		t.Errorf("unexpected draft prompt %q", req.Prompt)
	}
}

func TestHaikuAgent_Generate_Revision(t *testing.T) {
	fake := &recordingLLM{reply: "Cold moon"}
	agent, _ := NewHaikuAgent(fake, 150)

	feedback := "Add a seasonal word."
	if _, err := agent.Generate(context.Background(), "winter", &feedback); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := fake.requests[0]
	if req.MaxTokens != 150 {
		t.Errorf("expected max tokens 150, got %d", req.MaxTokens)
	}
	if !strings.Contains(req.Prompt, "Based on this critique:") || !strings.Contains(req.Prompt, feedback) {
		t.Errorf("revision prompt should embed the critique: %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "improved haiku about winter") {
		t.Errorf("revision prompt should name the topic: %q", req.Prompt)
	}
}

func TestHaikuAgent_Generate_EmptyFeedbackIsRevision(t *testing.T) {
	fake := &recordingLLM{reply: "Cold moon"}
	agent, _ := NewHaikuAgent(fake, 0)

	empty := ""
	agent.Generate(context.Background(), "winter", &empty)

	if !strings.HasPrefix(fake.requests[0].Prompt, "Based on this critique:") {
		t.Errorf("expected revision prompt for non-nil feedback, got %q", fake.requests[0].Prompt)
	}
}

func TestHaikuAgent_Generate_Error(t *testing.T) {
	boom := errors.New("provider down")
	agent, _ := NewHaikuAgent(&recordingLLM{err: boom}, 0)

	_, err := agent.Generate(context.Background(), "winter", nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestHaikuAgent_Generate_CleanupLeavesNothing(t *testing.T) {
	agent, _ := NewHaikuAgent(&recordingLLM{reply: "  <thinking>unfinished  "}, 0)

	poem, err := agent.Generate(context.Background(), "winter", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poem != "<thinking>unfinished" {
		t.Errorf("expected raw trimmed text, got %q", poem)
	}
}

func TestCritiqueAgent_Critique_Verbatim(t *testing.T) {
	fake := &recordingLLM{reply: "APPROVED: crisp imagery\n"}
	agent, _ := NewCritiqueAgent(fake, 0)

	got, err := agent.Critique(context.Background(), "Cold moon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "APPROVED: crisp imagery\n" {
		t.Errorf("critique must be returned verbatim, got %q", got)
	}

	req := fake.requests[0]
	if req.MaxTokens != DefaultCriticMaxTokens {
		t.Errorf("expected max tokens %d, got %d", DefaultCriticMaxTokens, req.MaxTokens)
	}
	if !strings.Contains(req.Prompt, "Cold moon") || !strings.Contains(req.Prompt, `"APPROVED:"`) {
		t.Errorf("unexpected critique prompt %q", req.Prompt)
	}
}

func TestCritiqueAgent_Critique_Error(t *testing.T) {
	boom := errors.New("rate limited")
	agent, _ := NewCritiqueAgent(&recordingLLM{err: boom}, 0)

	if _, err := agent.Critique(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestInterfaces(t *testing.T) {
	var _ Generator = (*HaikuAgent)(nil)
	var _ Critic = (*CritiqueAgent)(nil)
}
