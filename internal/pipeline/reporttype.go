package pipeline

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/patterns"
)

// ReportTypeExtractor reconstructs the report-type phrase from dictionary
// keywords. Standard titles anchor on the word "Market" and chain outward;
// market-aware titles first carve out the qualifier phrase so it survives
// into the topic.
type ReportTypeExtractor struct {
	logger  arbor.ILogger
	library *patterns.Library

	// keywordRegexes maps canonical dictionary keywords to their compiled
	// word-boundary matchers, built once at construction.
	keywordRegexes map[string]*regexp.Regexp
}

var (
	acronymGap      = regexp.MustCompile(`^[\s,]*([A-Z]{2,6})[\s,]*$`)
	camelCompound   = regexp.MustCompile(`\b[A-Z][a-z]+[A-Z][A-Za-z]*\b`)
	allCapsCompound = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	tokenPattern    = regexp.MustCompile(`\S+`)
)

// NewReportTypeExtractor creates a new report-type extractor
func NewReportTypeExtractor(logger arbor.ILogger, library *patterns.Library) *ReportTypeExtractor {
	keywords := append([]string{}, library.Dictionary(models.SubtypePrimaryKeyword)...)
	keywords = append(keywords, library.Dictionary(models.SubtypeSecondaryKeyword)...)

	regexes := make(map[string]*regexp.Regexp, len(keywords))
	for _, keyword := range keywords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
		if err != nil {
			logger.Warn().Err(err).Str("keyword", keyword).Msg("Dictionary keyword failed to compile, skipping")
			continue
		}
		regexes[keyword] = re
	}

	return &ReportTypeExtractor{
		logger:         logger,
		library:        library,
		keywordRegexes: regexes,
	}
}

// Extract dispatches on the market type set by the classifier.
func (r *ReportTypeExtractor) Extract(title string, marketType models.MarketType) *models.ReportTypeExtraction {
	if marketType == models.MarketTypeStandard || QualifierWord(marketType) == "" {
		return r.extractStandard(title)
	}
	return r.extractMarketAware(title, marketType)
}

// keywordOccurrence is one dictionary keyword found in the working title.
type keywordOccurrence struct {
	span      models.Span
	canonical string
	primary   bool
}

// findKeywordOccurrences scans the title for every dictionary keyword with
// word boundaries, returning occurrences in title order.
func (r *ReportTypeExtractor) findKeywordOccurrences(title string) []keywordOccurrence {
	var occurrences []keywordOccurrence

	for keyword, re := range r.keywordRegexes {
		canonical, primary, ok := r.library.IsKeyword(keyword)
		if !ok {
			continue
		}
		for _, m := range re.FindAllStringIndex(title, -1) {
			occurrences = append(occurrences, keywordOccurrence{
				span:      models.Span{Start: m[0], End: m[1]},
				canonical: canonical,
				primary:   primary,
			})
		}
	}

	// Map iteration order is random; title order restores determinism.
	for i := 1; i < len(occurrences); i++ {
		for j := i; j > 0 && occurrences[j].span.Start < occurrences[j-1].span.Start; j-- {
			occurrences[j], occurrences[j-1] = occurrences[j-1], occurrences[j]
		}
	}

	return occurrences
}

// reconstruction is the result of chaining keywords from an anchor.
type reconstruction struct {
	keywords   []string
	positions  []models.Span
	separators []string
	acronym    string
	span       models.Span
	anchored   bool // anchored on the primary keyword
}

// reconstruct chains keyword occurrences from the anchor, allowing only
// separator tokens or whitespace between them, and tolerating a single
// embedded acronym. The chain stops at the first gap holding any other word.
func (r *ReportTypeExtractor) reconstruct(title string) (reconstruction, bool) {
	occurrences := r.findKeywordOccurrences(title)
	if len(occurrences) == 0 {
		return reconstruction{}, false
	}

	anchorIdx := 0
	anchored := false
	for i, occ := range occurrences {
		if occ.primary {
			anchorIdx = i
			anchored = true
			break
		}
	}

	rec := reconstruction{
		keywords:  []string{occurrences[anchorIdx].canonical},
		positions: []models.Span{occurrences[anchorIdx].span},
		span:      occurrences[anchorIdx].span,
		anchored:  anchored,
	}

	last := occurrences[anchorIdx].span
	for _, next := range occurrences[anchorIdx+1:] {
		if next.span.Start < last.End {
			continue // overlapping occurrence of a shorter keyword
		}

		gap := title[last.End:next.span.Start]
		separators, ok := r.separatorTokens(gap)
		if !ok {
			if rec.acronym != "" || r.gapHasBoundaryMarker(gap) {
				break
			}
			acronym, isAcronym := r.gapAcronym(gap)
			if !isAcronym {
				break
			}
			rec.acronym = acronym
		}

		rec.separators = append(rec.separators, separators...)
		rec.keywords = append(rec.keywords, next.canonical)
		rec.positions = append(rec.positions, next.span)
		rec.span.End = next.span.End
		last = next.span
	}

	return rec, true
}

// separatorTokens validates that a gap holds only separator tokens and
// whitespace, returning the separators found in order.
func (r *ReportTypeExtractor) separatorTokens(gap string) ([]string, bool) {
	trimmed := strings.TrimSpace(gap)
	if trimmed == "" {
		return nil, true
	}

	var separators []string
	for _, token := range tokenPattern.FindAllString(trimmed, -1) {
		if !r.library.IsSeparator(token) {
			return nil, false
		}
		separators = append(separators, token)
	}
	return separators, true
}

// gapHasBoundaryMarker reports whether any token in the gap is a dictionary
// boundary marker. Boundary markers end the chain unconditionally, so an
// uppercase "FOR" or "TO" is never read as an embedded acronym.
func (r *ReportTypeExtractor) gapHasBoundaryMarker(gap string) bool {
	for _, token := range tokenPattern.FindAllString(gap, -1) {
		if r.library.IsBoundaryMarker(strings.Trim(token, ",;:.")) {
			return true
		}
	}
	return false
}

// gapAcronym recognizes the acronym-embedded shape: a gap holding one 2-6
// letter uppercase token, optionally wrapped in commas. Dictionary keywords
// do not count.
func (r *ReportTypeExtractor) gapAcronym(gap string) (string, bool) {
	m := acronymGap.FindStringSubmatch(gap)
	if m == nil {
		return "", false
	}
	if _, _, isKeyword := r.library.IsKeyword(m[1]); isKeyword {
		return "", false
	}
	return m[1], true
}

// extractStandard implements the standard workflow: anchor on "Market",
// chain keywords, remove the span by position, and re-append any embedded
// acronym to the residual title.
func (r *ReportTypeExtractor) extractStandard(title string) *models.ReportTypeExtraction {
	rec, found := r.reconstruct(title)
	if !found {
		return r.emptyResult(title, "no dictionary keywords found")
	}

	residual := removeSpan(title, rec.span)
	residual = cleanupSeparatorArtifacts(residual)
	if rec.acronym != "" {
		residual = strings.TrimSpace(residual) + " (" + rec.acronym + ")"
	}

	reportType := strings.Join(rec.keywords, " ")

	result := &models.ReportTypeExtraction{
		StageResult: models.StageResult{
			Title:          residual,
			Confidence:     reportTypeConfidence(rec),
			MatchedPattern: reportType,
		},
		ReportType:             reportType,
		KeywordsFound:          rec.keywords,
		KeywordPositions:       rec.positions,
		Separators:             rec.separators,
		MarketBoundaryDetected: rec.anchored,
		ExtractedAcronym:       rec.acronym,
	}
	result.Flags = r.diagnosticFlags(title, rec)

	return result
}

func (r *ReportTypeExtractor) emptyResult(title, note string) *models.ReportTypeExtraction {
	return &models.ReportTypeExtraction{
		StageResult: models.StageResult{
			Title: title,
			Notes: note,
		},
		ReportType: "",
	}
}

// reportTypeConfidence scales with keyword count; a bare "Market" is valid
// but weakly evidenced.
func reportTypeConfidence(rec reconstruction) float64 {
	if len(rec.keywords) == 1 && rec.anchored {
		return 0.5
	}
	confidence := 0.5 + 0.1*float64(len(rec.keywords))
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// diagnosticFlags tags non-authoritative hints for downstream filters.
// They never change extraction.
func (r *ReportTypeExtractor) diagnosticFlags(title string, rec reconstruction) []string {
	var flags []string

	if rec.acronym != "" {
		flags = append(flags, "acronym")
	}

	if r.hasTechnicalCompound(title, rec) {
		flags = append(flags, "technical_compound")
	}

	if r.regionAdjacent(title, rec.span) {
		flags = append(flags, "region_adjacent")
	}

	return flags
}

func (r *ReportTypeExtractor) hasTechnicalCompound(title string, rec reconstruction) bool {
	for _, m := range camelCompound.FindAllString(title, -1) {
		if _, _, isKeyword := r.library.IsKeyword(m); !isKeyword {
			return true
		}
	}
	for _, m := range allCapsCompound.FindAllString(title, -1) {
		if m == rec.acronym {
			continue
		}
		if _, _, isKeyword := r.library.IsKeyword(m); !isKeyword {
			return true
		}
	}
	return false
}

// regionAdjacent reports whether a geographic pattern match touches the
// extracted span, signalling that stage E will claim the neighboring text.
func (r *ReportTypeExtractor) regionAdjacent(title string, span models.Span) bool {
	for _, cp := range r.library.Patterns(models.PatternTypeGeographicEntity) {
		for _, geoSpan := range cp.Matches(title) {
			gapToSpan := span.Start - geoSpan.End
			gapFromSpan := geoSpan.Start - span.End
			if (gapToSpan >= 0 && gapToSpan <= 1) || (gapFromSpan >= 0 && gapFromSpan <= 1) {
				return true
			}
		}
	}
	return false
}
