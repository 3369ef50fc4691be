package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicExtractor_Extract(t *testing.T) {
	extractor := NewTopicExtractor(testLogger())

	tests := []struct {
		name       string
		residual   string
		topic      string
		normalized string
	}{
		{
			name:       "clean residual",
			residual:   "Battery",
			topic:      "Battery",
			normalized: "battery",
		},
		{
			name:       "edge separators trimmed",
			residual:   ", Automotive Telematics -",
			topic:      "Automotive Telematics",
			normalized: "automotive telematics",
		},
		{
			name:       "interior preposition kept",
			residual:   "Global Carbon Black for Textile Fibers",
			topic:      "Global Carbon Black for Textile Fibers",
			normalized: "global carbon black for textile fibers",
		},
		{
			name:       "orphan preposition at edge stripped",
			residual:   "Chemicals in",
			topic:      "Chemicals",
			normalized: "chemicals",
		},
		{
			name:       "doubled preposition collapsed then stripped",
			residual:   "Retail in in",
			topic:      "Retail",
			normalized: "retail",
		},
		{
			name:       "leading orphan stripped",
			residual:   "of Industrial Valves",
			topic:      "Industrial Valves",
			normalized: "industrial valves",
		},
		{
			name:       "whitespace collapsed",
			residual:   "Battery   Fuel  Gauge",
			topic:      "Battery Fuel Gauge",
			normalized: "battery fuel gauge",
		},
		{
			name:       "punctuation folds in normalization",
			residual:   "Li-ion & Lead-Acid Batteries",
			topic:      "Li-ion & Lead-Acid Batteries",
			normalized: "li ion lead acid batteries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractor.Extract(tt.residual)
			assert.Equal(t, tt.topic, result.Topic)
			assert.Equal(t, tt.normalized, result.NormalizedTopic)
			assert.Equal(t, 1.0, result.Confidence)
		})
	}
}

func TestTopicExtractor_EmptyResidual(t *testing.T) {
	extractor := NewTopicExtractor(testLogger())

	for _, residual := range []string{"", "  ", ", - ;", "in for of"} {
		result := extractor.Extract(residual)
		assert.Empty(t, result.Topic, "residual %q", residual)
		assert.Equal(t, 0.0, result.Confidence)
		assert.Equal(t, "empty residual", result.Notes)
	}
}

func TestNormalizeTopic_Idempotent(t *testing.T) {
	inputs := []string{
		"Li-ion & Lead-Acid Batteries",
		"Battery Fuel Gauge (DEW)",
		"Oil & Gas",
	}

	for _, input := range inputs {
		once := normalizeTopic(input)
		assert.Equal(t, once, normalizeTopic(once), "normalizing twice must be stable for %q", input)
	}
}
