package patterns

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/models"
)

// CompiledPattern pairs a library record with its compiled regex. Archived
// aliases are never part of the regex.
type CompiledPattern struct {
	Record *models.Pattern
	Regex  *regexp.Regexp
}

// Matches returns the term spans for all non-overlapping occurrences in the
// title. Synthesized patterns carry the term in capture group 1 so boundary
// characters consumed by the dotted-form wrapper never leak into the span.
func (cp *CompiledPattern) Matches(title string) []models.Span {
	indexes := cp.Regex.FindAllStringSubmatchIndex(title, -1)
	if len(indexes) == 0 {
		return nil
	}

	spans := make([]models.Span, 0, len(indexes))
	for _, m := range indexes {
		start, end := m[0], m[1]
		if len(m) >= 4 && m[2] >= 0 {
			start, end = m[2], m[3]
		}
		spans = append(spans, models.Span{Start: start, End: end})
	}
	return spans
}

// Library is the read-only pattern index shared by all pipeline stages.
// It is loaded once at startup and handed to stages via constructors.
type Library struct {
	logger     arbor.ILogger
	byType     map[models.PatternType][]*CompiledPattern
	dictionary map[models.DictionarySubtype][]string
	// canonical maps lowercased dictionary terms back to their stored form.
	canonical map[models.DictionarySubtype]map[string]string
}

// NewLibrary loads all active patterns from the store, groups them by type,
// sorts each group by priority ascending then term length descending, and
// compiles. A record whose regex fails to compile is logged and skipped; a
// required type with zero usable records aborts startup.
func NewLibrary(ctx context.Context, logger arbor.ILogger, store interfaces.PatternStorage) (*Library, error) {
	records, err := store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern library: %w", err)
	}

	lib := &Library{
		logger:     logger,
		byType:     make(map[models.PatternType][]*CompiledPattern),
		dictionary: make(map[models.DictionarySubtype][]string),
		canonical:  make(map[models.DictionarySubtype]map[string]string),
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority < records[j].Priority
		}
		return len(records[i].Term) > len(records[j].Term)
	})

	skipped := 0
	for _, record := range records {
		if record.Type == models.PatternTypeReportTypeDictionary {
			lib.addDictionaryTerm(record)
			continue
		}

		compiled, err := compileRecord(record)
		if err != nil {
			logger.Warn().Err(err).
				Str("type", string(record.Type)).
				Str("term", record.Term).
				Msg("Pattern failed to compile, skipping")
			skipped++
			continue
		}
		lib.byType[record.Type] = append(lib.byType[record.Type], compiled)
	}

	if err := lib.checkRequiredTypes(); err != nil {
		return nil, err
	}

	logger.Info().
		Int("patterns", len(records)-skipped).
		Int("skipped", skipped).
		Msg("Pattern library loaded")

	return lib, nil
}

func compileRecord(record *models.Pattern) (*CompiledPattern, error) {
	source := record.Pattern
	if source == "" {
		source = SynthesizePattern(record.Surfaces())
	}
	if source == "" {
		return nil, fmt.Errorf("pattern %q has no term or explicit regex", record.Term)
	}

	regex, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	return &CompiledPattern{Record: record, Regex: regex}, nil
}

func (l *Library) addDictionaryTerm(record *models.Pattern) {
	subtype := record.Subtype
	lower := strings.ToLower(record.Term)

	if l.canonical[subtype] == nil {
		l.canonical[subtype] = make(map[string]string)
	}
	if _, exists := l.canonical[subtype][lower]; exists {
		return
	}

	l.canonical[subtype][lower] = record.Term
	l.dictionary[subtype] = append(l.dictionary[subtype], record.Term)
}

func (l *Library) checkRequiredTypes() error {
	for _, required := range models.RequiredPatternTypes {
		if required == models.PatternTypeReportTypeDictionary {
			if len(l.dictionary[models.SubtypePrimaryKeyword])+len(l.dictionary[models.SubtypeSecondaryKeyword]) == 0 {
				return fmt.Errorf("pattern library has no active dictionary keywords")
			}
			continue
		}
		if len(l.byType[required]) == 0 {
			return fmt.Errorf("pattern library has no active patterns of type %s", required)
		}
	}
	return nil
}

// Patterns returns the ordered compiled patterns for a type.
func (l *Library) Patterns(patternType models.PatternType) []*CompiledPattern {
	return l.byType[patternType]
}

// Dictionary returns the dictionary terms for a subtype in priority order.
func (l *Library) Dictionary(subtype models.DictionarySubtype) []string {
	return l.dictionary[subtype]
}

// CanonicalTerm resolves a word to its stored dictionary form.
func (l *Library) CanonicalTerm(subtype models.DictionarySubtype, word string) (string, bool) {
	term, ok := l.canonical[subtype][strings.ToLower(word)]
	return term, ok
}

// IsKeyword reports whether a word is a primary or secondary dictionary
// keyword, returning the canonical form and whether it is primary.
func (l *Library) IsKeyword(word string) (canonical string, primary bool, ok bool) {
	if term, found := l.canonical[models.SubtypePrimaryKeyword][strings.ToLower(word)]; found {
		return term, true, true
	}
	if term, found := l.canonical[models.SubtypeSecondaryKeyword][strings.ToLower(word)]; found {
		return term, false, true
	}
	return "", false, false
}

// IsSeparator reports whether a token is a report-type separator.
func (l *Library) IsSeparator(token string) bool {
	_, ok := l.canonical[models.SubtypeSeparator][strings.ToLower(token)]
	return ok
}

// IsBoundaryMarker reports whether a token ends a report-type phrase.
func (l *Library) IsBoundaryMarker(token string) bool {
	_, ok := l.canonical[models.SubtypeBoundaryMarker][strings.ToLower(token)]
	return ok
}
