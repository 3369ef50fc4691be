package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/models"
)

func TestPipeline_Parse(t *testing.T) {
	pipeline := newTestPipeline(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		title      string
		marketType models.MarketType
		dateRange  string
		reportType string
		regions    []string
		acronym    string
		topic      string
		normalized string
	}{
		{
			name:       "standard title with range and region",
			title:      "Asia-Pacific Battery Market Size Report, 2020-2027",
			marketType: models.MarketTypeStandard,
			dateRange:  "2020-2027",
			reportType: "Market Size Report",
			regions:    []string{"Asia-Pacific"},
			topic:      "Battery",
			normalized: "battery",
		},
		{
			name:       "market for with qualifier surviving into topic",
			title:      "Global Carbon Black Market for Textile Fibers Growth Report 2025",
			marketType: models.MarketTypeFor,
			dateRange:  "2025",
			reportType: "Market Growth Report",
			regions:    []string{},
			topic:      "Global Carbon Black for Textile Fibers",
			normalized: "global carbon black for textile fibers",
		},
		{
			name:       "market in with interior ampersand",
			title:      "Advanced Sensors Market in Oil & Gas, Industry Report, 2030",
			marketType: models.MarketTypeIn,
			dateRange:  "2030",
			reportType: "Market Industry Report",
			regions:    []string{},
			topic:      "Advanced Sensors in Oil & Gas",
			normalized: "advanced sensors in oil gas",
		},
		{
			name:       "regional group joined by and",
			title:      "U.S. And Europe Automotive Market Analysis, 2024",
			marketType: models.MarketTypeStandard,
			dateRange:  "2024",
			reportType: "Market Analysis",
			regions:    []string{"United States", "Europe"},
			topic:      "Automotive",
			normalized: "automotive",
		},
		{
			name:       "embedded acronym",
			title:      "Directed Energy Weapons Market Size, DEW Industry Report, 2030",
			marketType: models.MarketTypeStandard,
			dateRange:  "2030",
			reportType: "Market Size Industry Report",
			regions:    []string{},
			acronym:    "DEW",
			topic:      "Directed Energy Weapons (DEW)",
			normalized: "directed energy weapons dew",
		},
		{
			name:       "parenthetical rescue",
			title:      "Battery Fuel Gauge Market (2020-2030, Li-ion Segment) Analysis",
			marketType: models.MarketTypeStandard,
			dateRange:  "2020-2030",
			reportType: "Market Analysis",
			regions:    []string{},
			topic:      "Battery Fuel Gauge Li-ion Segment",
			normalized: "battery fuel gauge li ion segment",
		},
		{
			name:       "hyphen guard protects compound word",
			title:      "De-identified Health Data Market Report, 2027",
			marketType: models.MarketTypeStandard,
			dateRange:  "2027",
			reportType: "Market Report",
			regions:    []string{},
			topic:      "De-identified Health Data",
			normalized: "de identified health data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pipeline.Parse(ctx, tt.title)

			assert.Equal(t, tt.title, result.OriginalTitle)
			assert.Equal(t, tt.marketType, result.MarketType)
			require.NotNil(t, result.DateRange)
			assert.Equal(t, tt.dateRange, *result.DateRange)
			assert.Equal(t, tt.reportType, result.ReportType)
			assert.Equal(t, tt.regions, result.Regions)
			assert.Equal(t, tt.acronym, result.Acronym)
			assert.Equal(t, tt.topic, result.Topic)
			assert.Equal(t, tt.normalized, result.NormalizedTopic)

			for _, stage := range StageOrder {
				_, present := result.ConfidenceByStage[stage]
				assert.True(t, present, "stage %s missing from confidence map", stage)
			}
		})
	}
}

func TestPipeline_DatelessParseEmitsNullDateRange(t *testing.T) {
	pipeline := newTestPipeline(t)

	result := pipeline.Parse(context.Background(), "Battery Market Report")
	assert.Nil(t, result.DateRange)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"extracted_date_range":null`)
}

func TestPipeline_Deterministic(t *testing.T) {
	pipeline := newTestPipeline(t)
	ctx := context.Background()

	titles := []string{
		"Asia-Pacific Battery Market Size Report, 2020-2027",
		"Directed Energy Weapons Market Size, DEW Industry Report, 2030",
		"Advanced Sensors Market in Oil & Gas, Industry Report, 2030",
	}

	for _, title := range titles {
		first := pipeline.Parse(ctx, title)
		for i := 0; i < 10; i++ {
			again := pipeline.Parse(ctx, title)
			assert.Equal(t, first, again, "parse of %q must be deterministic", title)
		}
	}
}

func TestPipeline_ResidualFreeOfExtractedParts(t *testing.T) {
	pipeline := newTestPipeline(t)

	result := pipeline.Parse(context.Background(), "Asia-Pacific Battery Market Size Report, 2020-2027")

	assert.NotContains(t, result.Topic, "2020")
	assert.NotContains(t, result.Topic, "2027")
	assert.NotContains(t, result.Topic, "Market")
	assert.NotContains(t, result.Topic, "Report")
	assert.NotContains(t, result.Topic, "Asia-Pacific")
}

func TestPipeline_EmptyAndPathologicalInput(t *testing.T) {
	pipeline := newTestPipeline(t)
	ctx := context.Background()

	result := pipeline.Parse(ctx, "")
	assert.Empty(t, result.Topic)
	assert.Equal(t, models.MarketTypeStandard, result.MarketType)

	result = pipeline.Parse(ctx, "   ")
	assert.Empty(t, result.Topic)

	// Separator-only title parses to an empty topic without error.
	result = pipeline.Parse(ctx, ", - ; :")
	assert.Empty(t, result.Topic)
}

func TestPipeline_MaxTitleLength(t *testing.T) {
	lib := newTestLibrary(t)
	config := &common.PipelineConfig{MaxTitleLength: 64}
	pipeline := New(testLogger(), lib, config, NewTelemetry(testLogger(), &stubStore{}, false))

	long := strings.Repeat("Battery Market Report ", 10)
	result := pipeline.Parse(context.Background(), long)

	assert.Empty(t, result.ReportType)
	assert.Empty(t, result.Topic)
	for _, stage := range StageOrder {
		assert.Equal(t, 0.0, result.ConfidenceByStage[stage])
	}
	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "exceeds limit")
}

func TestPipeline_CanceledContext(t *testing.T) {
	pipeline := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A canceled context stops stages but still yields a result record.
	result := pipeline.Parse(ctx, "Battery Market Report, 2027")
	require.NotNil(t, result)
	assert.Equal(t, "Battery Market Report, 2027", result.OriginalTitle)
}

func TestPipeline_TelemetryRecordsMatchedPatterns(t *testing.T) {
	store := &stubStore{}
	telemetry := NewTelemetry(arbor.NewLogger(), store, true)
	lib := newTestLibrary(t)
	pipeline := New(testLogger(), lib, &common.PipelineConfig{MaxTitleLength: 2048}, telemetry)

	pipeline.Parse(context.Background(), "Asia-Pacific Battery Market Size Report, 2020-2027")

	telemetry.Flush(context.Background())

	require.NotNil(t, store.flushedSuccess)
	assert.Equal(t, int64(1), store.flushedSuccess["date_pattern:year_range"])
	assert.Equal(t, int64(1), store.flushedSuccess["report_type_dictionary:market"])
	assert.Equal(t, int64(1), store.flushedSuccess["geographic_entity:asia-pacific"])
}
