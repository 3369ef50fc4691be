package patterns

import (
	"regexp"
	"sort"
	"strings"
)

// SynthesizePattern builds a case-insensitive regex source from the matchable
// surface forms of a library record (canonical term plus live aliases).
//
// Longer surfaces are placed first in the alternation so they win over their
// own substrings. Commas, "and", and "&" inside a surface match with flexible
// spacing. Surfaces containing a dot (U.S.) defeat \b at the punctuation, so
// the whole alternation is wrapped in non-alphanumeric boundary groups
// instead; the term itself is always capture group 1 and callers take the
// group-1 span.
func SynthesizePattern(surfaces []string) string {
	forms := make([]string, 0, len(surfaces))
	for _, s := range surfaces {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			forms = append(forms, trimmed)
		}
	}
	if len(forms) == 0 {
		return ""
	}

	sort.SliceStable(forms, func(i, j int) bool {
		return len(forms[i]) > len(forms[j])
	})

	hasDot := false
	fragments := make([]string, len(forms))
	for i, form := range forms {
		if strings.Contains(form, ".") {
			hasDot = true
		}
		fragments[i] = surfaceFragment(form)
	}

	alternation := strings.Join(fragments, "|")
	if hasDot {
		return `(?i)(?:^|[^A-Za-z0-9])(` + alternation + `)(?:[^A-Za-z0-9]|$)`
	}
	return `(?i)\b(` + alternation + `)\b`
}

// Separator placeholders survive QuoteMeta untouched, so each separator is
// quantified exactly once. Substituting regex snippets directly would let a
// later replacement re-quantify whitespace an earlier one already emitted.
const (
	holdAmp   = "\x00amp\x00"
	holdAnd   = "\x00and\x00"
	holdComma = "\x00com\x00"
	holdSpace = "\x00spc\x00"
)

// surfaceFragment converts one surface form into a regex fragment with
// flexible separator spacing.
func surfaceFragment(form string) string {
	form = strings.ReplaceAll(form, " & ", holdAmp)
	form = strings.ReplaceAll(form, " and ", holdAnd)
	form = strings.ReplaceAll(form, ", ", holdComma)
	form = strings.ReplaceAll(form, ",", holdComma)
	form = strings.ReplaceAll(form, " ", holdSpace)

	fragment := regexp.QuoteMeta(form)

	fragment = strings.ReplaceAll(fragment, holdAmp, `\s*&\s*`)
	fragment = strings.ReplaceAll(fragment, holdAnd, `\s+(?:and|&)\s+`)
	fragment = strings.ReplaceAll(fragment, holdComma, `\s*,\s*`)
	fragment = strings.ReplaceAll(fragment, holdSpace, `\s+`)

	return fragment
}

// CompileSurfaces synthesizes and compiles in one step. Used by tests and the
// library loader.
func CompileSurfaces(surfaces []string) (*regexp.Regexp, error) {
	return regexp.Compile(SynthesizePattern(surfaces))
}
