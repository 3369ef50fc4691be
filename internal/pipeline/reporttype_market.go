package pipeline

import (
	"regexp"
	"strings"

	"github.com/ternarybob/titulus/internal/models"
)

// marketPhraseRegexes locates "Market <q>" for each qualifier. Built once;
// the qualifier set is fixed by the market_term taxonomy.
var marketPhraseRegexes = map[string]*regexp.Regexp{
	"for": regexp.MustCompile(`(?i)\bMarket\s+for\b`),
	"in":  regexp.MustCompile(`(?i)\bMarket\s+in\b`),
	"by":  regexp.MustCompile(`(?i)\bMarket\s+by\b`),
}

// extractMarketAware implements the market-aware workflow: carve out
// "Market <q> X", keep the qualifier phrase for the topic, reconstruct the
// remaining keywords from the suffix, and prepend the literal "Market".
func (r *ReportTypeExtractor) extractMarketAware(title string, marketType models.MarketType) *models.ReportTypeExtraction {
	q := QualifierWord(marketType)

	phrase := marketPhraseRegexes[q]
	loc := phrase.FindStringIndex(title)
	if loc == nil {
		// Classifier and extractor disagree; fall back to the standard path.
		return r.extractStandard(title)
	}

	xStart := loc[1]
	for xStart < len(title) && title[xStart] == ' ' {
		xStart++
	}

	xEnd, suffixStart := r.qualifierObjectEnd(title, xStart)

	qualifierObject := strings.TrimSpace(title[xStart:xEnd])
	qualifierObject = strings.TrimRight(qualifierObject, " ,;")

	prefix := strings.TrimSpace(title[:loc[0]])
	suffix := ""
	if suffixStart < len(title) {
		suffix = title[suffixStart:]
	}

	// The qualifier phrase goes back into the residual so the topic keeps it.
	residual := strings.TrimSpace(prefix + " " + q + " " + qualifierObject)

	keywords := []string{"Market"}
	positions := []models.Span{{Start: loc[0], End: loc[0] + len("Market")}}
	separators := []string{}
	acronym := ""

	if suffix != "" {
		if rec, found := r.reconstruct(suffix); found {
			keywords = append(keywords, rec.keywords...)
			separators = rec.separators
			acronym = rec.acronym

			for _, pos := range rec.positions {
				positions = append(positions, models.Span{
					Start: suffixStart + pos.Start,
					End:   suffixStart + pos.End,
				})
			}

			suffixResidual := cleanupSeparatorArtifacts(removeSpan(suffix, rec.span))
			if suffixResidual != "" {
				residual = strings.TrimSpace(residual + " " + suffixResidual)
			}
			if acronym != "" {
				residual = residual + " (" + acronym + ")"
			}
		} else {
			residual = strings.TrimSpace(residual + " " + strings.TrimSpace(suffix))
		}
	}

	residual = cleanupSeparatorArtifacts(residual)
	reportType := strings.Join(keywords, " ")

	confidence := 0.9
	if len(keywords) == 1 {
		confidence = 0.75 // bare "Market"; the qualifier carried no suffix keywords
	}

	result := &models.ReportTypeExtraction{
		StageResult: models.StageResult{
			Title:          residual,
			Confidence:     confidence,
			MatchedPattern: "Market " + q,
		},
		ReportType:             reportType,
		KeywordsFound:          keywords,
		KeywordPositions:       positions,
		Separators:             separators,
		MarketBoundaryDetected: true,
		ExtractedAcronym:       acronym,
	}
	if acronym != "" {
		result.Flags = append(result.Flags, "acronym")
	}

	return result
}

// qualifierObjectEnd scans forward from the start of X and returns where X
// ends and where the suffix begins. X ends at the first dictionary keyword,
// or at a comma that is itself followed by a keyword, or at end of title.
// An interior "&" or comma inside X never terminates the capture, so
// "Oil & Gas" and "Sulfur, Arsine" survive whole.
func (r *ReportTypeExtractor) qualifierObjectEnd(title string, xStart int) (xEnd int, suffixStart int) {
	tokens := tokenPattern.FindAllStringIndex(title[xStart:], -1)

	prevEnd := xStart
	for _, t := range tokens {
		tokStart, tokEnd := xStart+t[0], xStart+t[1]
		core := strings.Trim(title[tokStart:tokEnd], ",;:.")

		if _, _, isKeyword := r.library.IsKeyword(core); isKeyword {
			return prevEnd, tokStart
		}

		prevEnd = tokEnd
	}

	return len(title), len(title)
}
