package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractReasoning(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		wantReasoning   string
		wantContent     string
		wantHasTagPairs bool
	}{
		{
			name:            "think tags",
			input:           "<think>X</think>Y",
			wantReasoning:   "X",
			wantContent:     "Y",
			wantHasTagPairs: true,
		},
		{
			name:            "no tags",
			input:           "Just a plain answer.",
			wantReasoning:   "",
			wantContent:     "Just a plain answer.",
			wantHasTagPairs: false,
		},
		{
			name:            "multiline thinking tags",
			input:           "<thinking>first line\nsecond line</thinking>\n\nThe answer is 42.",
			wantReasoning:   "first line\nsecond line",
			wantContent:     "The answer is 42.",
			wantHasTagPairs: true,
		},
		{
			name:            "case insensitive tags",
			input:           "<THINK>shouting</THINK>calm reply",
			wantReasoning:   "shouting",
			wantContent:     "calm reply",
			wantHasTagPairs: true,
		},
		{
			name:            "multiple sections joined with divider",
			input:           "<think>one</think>middle<analysis>two</analysis>end",
			wantReasoning:   "one" + ReasoningDivider + "two",
			wantContent:     "middleend",
			wantHasTagPairs: true,
		},
		{
			name:            "blank lines left behind are collapsed",
			input:           "before\n\n<reasoning>gone</reasoning>\n\nafter",
			wantReasoning:   "gone",
			wantContent:     "before\nafter",
			wantHasTagPairs: true,
		},
		{
			name:            "unclosed tag is left alone",
			input:           "<think>never closed",
			wantReasoning:   "",
			wantContent:     "<think>never closed",
			wantHasTagPairs: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasoning, content := ExtractReasoning(tt.input)
			assert.Equal(t, tt.wantReasoning, reasoning)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantHasTagPairs, HasReasoningTags(tt.input))
		})
	}
}
