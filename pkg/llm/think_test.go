package llm

import "testing"

func TestStripThinkBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no block", "  คำตอบ  ", "คำตอบ"},
		{"single block", "<think>reasoning</think>\nAnswer", "Answer"},
		{"multiline block", "<think>line one\nline two</think>Answer", "Answer"},
		{"multiple blocks", "<think>a</think>First <think>b</think>Second", "First Second"},
		{"only a block", "<think>nothing else</think>", ""},
		{"unclosed block", "<think>dangling", "<think>dangling"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinkBlocks(tt.in); got != tt.want {
				t.Errorf("StripThinkBlocks(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
