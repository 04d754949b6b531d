package agent

import "fmt"

func buildDraftPrompt(topic string) string {
	return fmt.Sprintf("Write a haiku poem about %s. Just the haiku, nothing else.", topic)
}

func buildRevisionPrompt(topic, feedback string) string {
	return fmt.Sprintf(`Based on this critique:

%s

Please write an improved haiku about %s that addresses the feedback. Just the haiku, nothing else.`, feedback, topic)
}

func buildCritiquePrompt(poem string) string {
	return fmt.Sprintf(`Please critique this haiku poem constructively:

%s

Evaluate:
1. Syllable count (5-7-5 pattern)
2. Imagery and sensory details
3. Emotional impact
4. Seasonal reference (if present)
5. Overall effectiveness

If the haiku is excellent and needs no further improvement, start your response with "APPROVED:" and explain why it's great.

Otherwise, provide specific, actionable suggestions for improvement. Keep your critique concise but helpful.`, poem)
}
