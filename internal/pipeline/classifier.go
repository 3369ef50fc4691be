package pipeline

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/patterns"
)

// Classifier decides whether a title carries a market-qualifier phrase
// (Market for/in/by) or is standard. The title passes through unchanged;
// only the flag feeds stage D.
type Classifier struct {
	logger  arbor.ILogger
	library *patterns.Library
}

// NewClassifier creates a new market-term classifier
func NewClassifier(logger arbor.ILogger, library *patterns.Library) *Classifier {
	return &Classifier{
		logger:  logger,
		library: library,
	}
}

// Classify scans the market_term patterns in library order; the first match
// sets the market type.
func (c *Classifier) Classify(title string) *models.MarketClassification {
	for _, cp := range c.library.Patterns(models.PatternTypeMarketTerm) {
		spans := cp.Matches(title)
		if len(spans) == 0 {
			continue
		}

		marketType := marketTypeForTerm(cp.Record.Term)
		if marketType == "" {
			continue
		}

		return &models.MarketClassification{
			StageResult: models.StageResult{
				Title:          title,
				Confidence:     1.0,
				MatchedPattern: cp.Record.Term,
			},
			MarketType: marketType,
		}
	}

	return &models.MarketClassification{
		StageResult: models.StageResult{
			Title:      title,
			Confidence: 1.0,
			Notes:      "no market qualifier found",
		},
		MarketType: models.MarketTypeStandard,
	}
}

// marketTypeForTerm maps a market_term record to its classification by the
// qualifier word the term ends with.
func marketTypeForTerm(term string) models.MarketType {
	fields := strings.Fields(strings.ToLower(term))
	if len(fields) == 0 {
		return ""
	}
	switch fields[len(fields)-1] {
	case "for":
		return models.MarketTypeFor
	case "in":
		return models.MarketTypeIn
	case "by":
		return models.MarketTypeBy
	}
	return ""
}

// QualifierWord returns the preposition for a market-aware type.
func QualifierWord(marketType models.MarketType) string {
	switch marketType {
	case models.MarketTypeFor:
		return "for"
	case models.MarketTypeIn:
		return "in"
	case models.MarketTypeBy:
		return "by"
	}
	return ""
}
