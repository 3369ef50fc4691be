package pipeline

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/patterns"
)

// DateExtractor locates and removes a date range or single year. Date
// patterns come from the library in priority order, so ranges win over the
// terminal comma-year, which wins over a bare year.
type DateExtractor struct {
	logger  arbor.ILogger
	library *patterns.Library
}

// NewDateExtractor creates a new date extractor
func NewDateExtractor(logger arbor.ILogger, library *patterns.Library) *DateExtractor {
	return &DateExtractor{
		logger:  logger,
		library: library,
	}
}

// Extract tries the date patterns in order and removes every occurrence of
// the first one that matches. The emitted range preserves the dash character
// from the title verbatim.
func (d *DateExtractor) Extract(title string) *models.DateExtraction {
	for _, cp := range d.library.Patterns(models.PatternTypeDatePattern) {
		spans := cp.Matches(title)
		if len(spans) == 0 {
			continue
		}

		first := spans[0]
		raw := title[first.Start:first.End]
		dateRange := cleanDateRange(raw)

		cleaned, preserved := d.removeDateSpans(title, spans)

		return &models.DateExtraction{
			StageResult: models.StageResult{
				Title:          cleaned,
				Confidence:     dateConfidence(cp.Record.Term),
				MatchedPattern: cp.Record.Term,
			},
			Range:          dateRange,
			RawMatch:       raw,
			FormatType:     cp.Record.Term,
			PreservedWords: preserved,
		}
	}

	return &models.DateExtraction{
		StageResult: models.StageResult{
			Title: title,
			Notes: "no date found",
		},
	}
}

// removeDateSpans deletes the matched spans right to left, rescuing non-date
// words from any parenthetical that contained a match, then runs the
// normalization pass.
func (d *DateExtractor) removeDateSpans(title string, spans []models.Span) (string, []string) {
	var preserved []string

	for i := len(spans) - 1; i >= 0; i-- {
		span := spans[i]

		if open, close, ok := innermostParens(title, span); ok {
			// Every span inside this group goes with it; cut them out of
			// the inner text before rescuing what remains, or the deleted
			// group leaves their offsets stale.
			inner := title[open+1 : close]
			for ; i >= 0 && spans[i].Start > open && spans[i].End <= close; i-- {
				s := spans[i]
				inner = inner[:s.Start-open-1] + " " + inner[s.End-open-1:]
			}
			i++

			rescued := trimConnectives(strings.Fields(trimEdgeSeparators(inner)))
			preserved = append(rescued, preserved...)

			title = title[:open] + title[close+1:]
			continue
		}

		title = removeSpan(title, span)
	}

	if len(preserved) > 0 {
		title = strings.TrimRight(title, " ") + " " + strings.Join(preserved, " ")
	}

	title = cleanupBrackets(title)
	title = collapseWhitespace(title)
	title = strings.TrimRight(title, ",. ")

	return title, preserved
}

// trimConnectives drops joiners left dangling at the edges of a rescue once
// the dates around them are gone.
func trimConnectives(words []string) []string {
	isConnective := func(w string) bool {
		switch strings.ToLower(w) {
		case "and", "&", "+", "plus":
			return true
		}
		return false
	}

	for len(words) > 0 && isConnective(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isConnective(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return words
}

// innermostParens finds the tightest ( ... ) pair enclosing the span.
func innermostParens(title string, span models.Span) (int, int, bool) {
	bestOpen, bestClose := -1, -1

	var stack []int
	for i, r := range title {
		switch r {
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if open < span.Start && i >= span.End {
				if bestOpen == -1 || i-open < bestClose-bestOpen {
					bestOpen, bestClose = open, i
				}
			}
		}
	}

	return bestOpen, bestClose, bestOpen != -1
}

// cleanDateRange strips the punctuation wrapper from a raw match, leaving the
// date text itself: ", 2030" becomes "2030", "[2020-2030]" becomes
// "2020-2030". The dash inside a range is untouched.
func cleanDateRange(raw string) string {
	return strings.Trim(raw, " ,.[]()")
}

func dateConfidence(formatType string) float64 {
	switch formatType {
	case "year_range", "year_range_words":
		return 0.95
	case "bracketed_year", "fiscal_year", "quarter_year":
		return 0.9
	case "terminal_comma_year":
		return 0.85
	case "standalone_year":
		return 0.7
	}
	return 0.8
}
