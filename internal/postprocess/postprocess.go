// Package postprocess removes common LLM artifacts from generated haiku.
//
// Only the poet's output goes through Clean. Critiques are kept verbatim so
// that the approval marker check sees exactly what the model wrote.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean strips model artifacts from a generated poem and returns it with
// its line structure intact:
//  1. reasoning blocks
//  2. lead-in phrases ("Here is a haiku about snow:")
//  3. code fences
//  4. outer quotes
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeLeadIns(text)
	text = removeCodeFence(text)
	text = removeQuoteWrapping(text)
	return trimLines(text)
}

// Go's RE2 has no backreferences, so each tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opened tag with no closing tag means the model ran out of tokens mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// leadInPatterns match a first line that introduces the poem instead of
// being part of it. All of them require a trailing colon.
var leadInPatterns = []*regexp.Regexp{
	// "Here is / Here's [a|an|the|my] [improved|revised|new] haiku [about ...]:"
	regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course|okay)[,.!]?\s+)?here(?:'s| is)(?: (?:a|an|the|my))?(?: (?:improved|revised|new|updated|refined))? haiku[^\n]*:\s*`),
	// "[Improved|Revised] haiku[ about ...]:"
	regexp.MustCompile(`(?i)^(?:(?:improved|revised|new|updated|refined) )?haiku(?: about [^\n]*)?:\s*`),
}

func removeLeadIns(text string) string {
	for _, re := range leadInPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```$")

func removeCodeFence(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// removeQuoteWrapping strips one matching pair of outer quotes:
//
//	"…"  '…'  «…»  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

func trimLines(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}
