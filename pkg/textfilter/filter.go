package textfilter

import (
	"regexp"
	"strings"
)

// Reasoning-capable models wrap their chain of thought in tag pairs.
// Each tag here is matched case-insensitively across multiple lines.
var reasoningTags = []string{
	"think",
	"thinking",
	"reason",
	"reasoning",
	"analysis",
}

// ReasoningDivider separates multiple extracted reasoning sections.
const ReasoningDivider = "\n\n--- Reasoning Section ---\n\n"

var (
	reasoningRegexes = compileReasoningRegexes()
	blankLines       = regexp.MustCompile(`\n\s*\n`)
)

func compileReasoningRegexes() []*regexp.Regexp {
	regexes := make([]*regexp.Regexp, 0, len(reasoningTags))
	for _, tag := range reasoningTags {
		pattern := `(?is)<` + tag + `>(.*?)</` + tag + `>`
		regexes = append(regexes, regexp.MustCompile(pattern))
	}
	return regexes
}

// ExtractReasoning strips reasoning tag pairs out of a raw model response.
// It returns the combined reasoning text (empty string if no tags were
// found) and the remaining user-facing content with blank-line runs
// collapsed.
func ExtractReasoning(text string) (reasoning string, content string) {
	var parts []string
	content = text

	for _, re := range reasoningRegexes {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			parts = append(parts, strings.TrimSpace(m[1]))
		}
		content = re.ReplaceAllString(content, "")
	}

	content = blankLines.ReplaceAllString(strings.TrimSpace(content), "\n")

	if len(parts) > 0 {
		reasoning = strings.Join(parts, ReasoningDivider)
	}
	return reasoning, content
}

// HasReasoningTags reports whether the text contains any recognized
// reasoning tag pair.
func HasReasoningTags(text string) bool {
	for _, re := range reasoningRegexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
