// -----------------------------------------------------------------------
// Seed Patterns - Default pattern library for a fresh store
// -----------------------------------------------------------------------

package badger

import (
	"context"

	"github.com/ternarybob/titulus/internal/models"
)

// SeedDefaultPatterns loads the curated default pattern library so a fresh
// store can parse titles out of the box. Existing (type, term) records are
// overwritten; curation owns the store afterwards.
func (m *Manager) SeedDefaultPatterns(ctx context.Context) error {
	m.logger.Info().Msg("Seeding default pattern library")

	patterns := DefaultPatterns()

	if err := m.pattern.SavePatterns(ctx, patterns); err != nil {
		return err
	}

	m.logger.Info().Int("count", len(patterns)).Msg("Default pattern library seeded")
	return nil
}

// DefaultPatterns returns the curated default pattern set in full.
func DefaultPatterns() []*models.Pattern {
	patterns := make([]*models.Pattern, 0, 96)
	patterns = append(patterns, defaultGeographicEntities()...)
	patterns = append(patterns, defaultMarketTerms()...)
	patterns = append(patterns, defaultDatePatterns()...)
	patterns = append(patterns, defaultReportTypeDictionary()...)
	patterns = append(patterns, defaultReportTypes()...)
	return patterns
}

func geo(term string, priority int, aliases []string, archived []string) *models.Pattern {
	return &models.Pattern{
		Type:            models.PatternTypeGeographicEntity,
		Term:            term,
		Aliases:         aliases,
		ArchivedAliases: archived,
		Priority:        priority,
		Active:          true,
	}
}

func defaultGeographicEntities() []*models.Pattern {
	return []*models.Pattern{
		// Compound single-entity regions sit at low priority values so they
		// are tried before their components.
		geo("Europe, Middle East and Africa", 5, []string{"EMEA"}, nil),
		geo("Middle East and Africa", 6, []string{"MEA"}, nil),
		geo("Bosnia and Herzegovina", 6, nil, nil),
		geo("Trinidad and Tobago", 6, nil, nil),

		geo("North America", 10, nil, []string{"NA"}),
		geo("Latin America", 10, []string{"LATAM"}, nil),
		geo("South America", 10, nil, nil),
		geo("Central America", 10, nil, nil),
		geo("Asia-Pacific", 10, []string{"APAC", "Asia Pacific"}, nil),
		geo("Middle East", 12, nil, nil),
		geo("Europe", 15, nil, []string{"EU"}),
		geo("Africa", 15, nil, nil),
		geo("Asia", 18, nil, nil),

		geo("United States", 20, []string{"U.S.", "USA", "U.S.A."}, []string{"US"}),
		geo("United Kingdom", 20, []string{"U.K.", "UK"}, nil),
		geo("South Korea", 20, nil, nil),
		geo("New Zealand", 20, nil, nil),
		geo("China", 25, nil, nil),
		geo("India", 25, nil, nil),
		geo("Japan", 25, nil, nil),
		geo("Germany", 25, nil, nil),
		geo("France", 25, nil, nil),
		geo("Italy", 25, nil, []string{"IT"}),
		geo("Spain", 25, nil, nil),
		geo("Brazil", 25, nil, nil),
		geo("Mexico", 25, nil, nil),
		geo("Canada", 25, nil, []string{"CA"}),
		geo("Australia", 25, nil, nil),
		geo("Russia", 25, nil, nil),
		geo("Indonesia", 25, nil, nil),
		geo("Saudi Arabia", 25, nil, nil),
		geo("Singapore", 25, nil, nil),

		// US states whose two-letter codes collide with ordinary prefixes
		// ("De-identified", "Co-operative"). The hyphen guard carries these.
		geo("Delaware", 30, []string{"DE"}, nil),
		geo("Colorado", 30, []string{"CO"}, nil),
		geo("California", 30, nil, nil),
		geo("Texas", 30, nil, nil),
	}
}

func defaultMarketTerms() []*models.Pattern {
	return []*models.Pattern{
		{Type: models.PatternTypeMarketTerm, Term: "Market for", Priority: 10, Active: true},
		{Type: models.PatternTypeMarketTerm, Term: "Market in", Priority: 20, Active: true},
		{Type: models.PatternTypeMarketTerm, Term: "Market by", Priority: 30, Active: true},
	}
}

func datePattern(term, pattern string, priority int) *models.Pattern {
	return &models.Pattern{
		Type:     models.PatternTypeDatePattern,
		Term:     term,
		Pattern:  pattern,
		Priority: priority,
		Active:   true,
	}
}

// defaultDatePatterns orders date formats so ranges win over single years and
// the terminal comma-year wins over a bare year.
func defaultDatePatterns() []*models.Pattern {
	return []*models.Pattern{
		datePattern("year_range", `\b(?:19|20)\d{2}\s*[-–—]\s*(?:19|20)\d{2}\b`, 10),
		datePattern("year_range_words", `\b(?:19|20)\d{2}\s+(?:[Tt]o|[Tt]hrough)\s+(?:19|20)\d{2}\b`, 12),
		datePattern("bracketed_year", `\[(?:19|20)\d{2}(?:\s*[-–—]\s*(?:19|20)\d{2})?\]`, 20),
		datePattern("fiscal_year", `\b(?:FY\s*|[Ff]iscal\s+[Yy]ear\s+)(?:19|20)\d{2}\b`, 30),
		datePattern("quarter_year", `\bQ[1-4]\s+(?:19|20)\d{2}\b`, 32),
		datePattern("terminal_comma_year", `,\s*(?:19|20)\d{2}\s*$`, 40),
		datePattern("standalone_year", `\b(?:19|20)\d{2}\b`, 50),
	}
}

func dictEntry(term string, subtype models.DictionarySubtype, priority int) *models.Pattern {
	return &models.Pattern{
		Type:     models.PatternTypeReportTypeDictionary,
		Term:     term,
		Subtype:  subtype,
		Priority: priority,
		Active:   true,
	}
}

func defaultReportTypeDictionary() []*models.Pattern {
	entries := []*models.Pattern{
		dictEntry("Market", models.SubtypePrimaryKeyword, 10),
	}

	secondary := []string{
		"Size", "Share", "Report", "Analysis", "Outlook", "Forecast",
		"Trends", "Growth", "Study", "Industry", "Statistics", "Overview",
		"Insights", "Research",
	}
	for _, term := range secondary {
		entries = append(entries, dictEntry(term, models.SubtypeSecondaryKeyword, 20))
	}

	for _, term := range []string{",", "&", "and", "-"} {
		entries = append(entries, dictEntry(term, models.SubtypeSeparator, 30))
	}

	for _, term := range []string{"for", "in", "by", "on", "to"} {
		entries = append(entries, dictEntry(term, models.SubtypeBoundaryMarker, 40))
	}

	return entries
}

// defaultReportTypes are curated full-phrase records. The extractor
// reconstructs phrases from the dictionary; these records carry format
// metadata for auditing and the patterns list surface.
func defaultReportTypes() []*models.Pattern {
	reportType := func(term string, format models.FormatType, priority int) *models.Pattern {
		return &models.Pattern{
			Type:       models.PatternTypeReportType,
			Term:       term,
			FormatType: format,
			Priority:   priority,
			Active:     true,
		}
	}

	return []*models.Pattern{
		reportType("Market Report", models.FormatTerminalType, 10),
		reportType("Market Size Report", models.FormatTerminalType, 10),
		reportType("Market Size, Share Report", models.FormatTerminalType, 10),
		reportType("Market Size, Industry Report", models.FormatTerminalType, 10),
		reportType("Market Analysis", models.FormatTerminalType, 12),
		reportType("Market Outlook", models.FormatTerminalType, 12),
		reportType("Market Forecast", models.FormatTerminalType, 12),
		reportType("Market Growth Report", models.FormatEmbeddedType, 14),
		reportType("Market Trends", models.FormatEmbeddedType, 14),
		reportType("Global Market Study", models.FormatPrefixType, 16),
		reportType("Market Size & Share Analysis", models.FormatCompoundType, 16),
		reportType("Market Size, ACRONYM Industry Report", models.FormatAcronymEmbedded, 18),
	}
}
