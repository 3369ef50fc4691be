package pipeline

import (
	"regexp"
	"strings"

	"github.com/ternarybob/titulus/internal/models"
)

var (
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	emptyParens     = regexp.MustCompile(`\(\s*\)`)
	emptyBrackets   = regexp.MustCompile(`\[\s*\]`)
	commaBeforeWord = regexp.MustCompile(`\s+,`)
	doubledCommas   = regexp.MustCompile(`,(\s*,)+`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// edgeSeparators are the characters stripped from title edges after a
// removal. The dash variants cover ASCII hyphen, en dash and em dash.
const edgeSeparators = " \t,:;-–—"

// removeSpan deletes a byte range from a string.
func removeSpan(s string, span models.Span) string {
	return s[:span.Start] + s[span.End:]
}

// collapseWhitespace reduces whitespace runs to single spaces and trims.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

// trimEdgeSeparators strips leading and trailing separator characters.
func trimEdgeSeparators(s string) string {
	return strings.Trim(s, edgeSeparators)
}

// cleanupBrackets drops empty () and [] pairs and, when the open and close
// counts of a bracket kind differ, strips that kind entirely rather than
// leaving an unbalanced title.
func cleanupBrackets(s string) string {
	for {
		next := emptyParens.ReplaceAllString(s, "")
		next = emptyBrackets.ReplaceAllString(next, "")
		if next == s {
			break
		}
		s = next
	}

	if strings.Count(s, "(") != strings.Count(s, ")") {
		s = strings.ReplaceAll(s, "(", "")
		s = strings.ReplaceAll(s, ")", "")
	}
	if strings.Count(s, "[") != strings.Count(s, "]") {
		s = strings.ReplaceAll(s, "[", "")
		s = strings.ReplaceAll(s, "]", "")
	}

	return s
}

// cleanupSeparatorArtifacts repairs the debris a span removal leaves behind:
// doubled commas, commas floated off their word, and stray edge separators.
func cleanupSeparatorArtifacts(s string) string {
	s = doubledCommas.ReplaceAllString(s, ",")
	s = commaBeforeWord.ReplaceAllString(s, ",")
	s = collapseWhitespace(s)
	s = trimEdgeSeparators(s)
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}

// normalizeTopic lowercases and collapses non-alphanumeric runs to single
// spaces. The result is a stable key: normalizing twice yields the same value.
func normalizeTopic(s string) string {
	lowered := strings.ToLower(s)
	return strings.TrimSpace(nonAlphanumeric.ReplaceAllString(lowered, " "))
}
