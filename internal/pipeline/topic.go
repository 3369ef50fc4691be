package pipeline

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/models"
)

// orphanPrepositions are cleaned from the residual's edges after the earlier
// stages have carved out their spans. Interior prepositions stay: the "for"
// in "Carbon Black for Textile Fibers" is part of the topic.
var orphanPrepositions = map[string]bool{
	"in":  true,
	"for": true,
	"by":  true,
	"of":  true,
	"the": true,
}

// TopicExtractor produces the residual topic and its normalized form from
// whatever stages B through E left behind.
type TopicExtractor struct {
	logger arbor.ILogger
}

// NewTopicExtractor creates a new topic extractor
func NewTopicExtractor(logger arbor.ILogger) *TopicExtractor {
	return &TopicExtractor{logger: logger}
}

// Extract runs the cleanup passes in order: edge separators, orphan
// prepositions, whitespace, then bracket balancing.
func (t *TopicExtractor) Extract(title string) *models.TopicExtraction {
	topic := trimEdgeSeparators(title)
	topic = stripOrphanPrepositions(topic)
	topic = collapseWhitespace(topic)
	topic = cleanupBrackets(topic)
	topic = trimEdgeSeparators(topic)

	result := &models.TopicExtraction{
		StageResult: models.StageResult{
			Title:      topic,
			Confidence: 1.0,
		},
		Topic:           topic,
		NormalizedTopic: normalizeTopic(topic),
	}

	if topic == "" {
		result.Confidence = 0
		result.Notes = "empty residual"
	}

	return result
}

// stripOrphanPrepositions removes prepositions stranded at the edges of the
// residual and collapses doubled ones ("Retail in in" to "Retail in" to
// "Retail" once the edge pass runs).
func stripOrphanPrepositions(s string) string {
	fields := strings.Fields(s)

	// Collapse consecutive duplicates first so "in in" counts as one orphan.
	deduped := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(deduped) > 0 && orphanPrepositions[strings.ToLower(field)] &&
			strings.EqualFold(field, deduped[len(deduped)-1]) {
			continue
		}
		deduped = append(deduped, field)
	}

	start, end := 0, len(deduped)
	for start < end && orphanPrepositions[strings.ToLower(trimEdgeSeparators(deduped[start]))] {
		start++
	}
	for end > start && orphanPrepositions[strings.ToLower(trimEdgeSeparators(deduped[end-1]))] {
		end--
	}

	return strings.Join(deduped[start:end], " ")
}
