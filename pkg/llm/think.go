package llm

import (
	"regexp"
	"strings"
)

// thinkBlockPattern matches reasoning blocks some models emit before the answer.
// Non-greedy and dot-matches-newline, so several blocks are removed independently.
var thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkBlocks removes every <think>...</think> block and trims the result.
func StripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkBlockPattern.ReplaceAllString(s, ""))
}
