package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGeoDetector(t *testing.T) *GeoDetector {
	t.Helper()
	return NewGeoDetector(testLogger(), newTestLibrary(t), NewTelemetry(testLogger(), &stubStore{}, false))
}

func TestGeoDetector_Detect(t *testing.T) {
	detector := newTestGeoDetector(t)

	tests := []struct {
		name    string
		title   string
		regions []string
		cleaned string
	}{
		{
			name:    "single region",
			title:   "Asia-Pacific Battery",
			regions: []string{"Asia-Pacific"},
			cleaned: "Battery",
		},
		{
			name:    "alias resolves to canonical term",
			title:   "APAC Battery",
			regions: []string{"Asia-Pacific"},
			cleaned: "Battery",
		},
		{
			name:    "dotted alias",
			title:   "U.S. Automotive",
			regions: []string{"United States"},
			cleaned: "Automotive",
		},
		{
			name:    "regions in title order",
			title:   "Chemicals in Europe, China and India",
			regions: []string{"Europe", "China", "India"},
			cleaned: "Chemicals in",
		},
		{
			name:    "no regions",
			title:   "Battery Chemistry Overview",
			regions: []string{},
			cleaned: "Battery Chemistry Overview",
		},
		{
			name:    "compound region wins over components",
			title:   "Europe, Middle East and Africa Coatings",
			regions: []string{"Europe, Middle East and Africa"},
			cleaned: "Coatings",
		},
		{
			name:    "archived alias never matches",
			title:   "NA Battery Components",
			regions: []string{},
			cleaned: "NA Battery Components",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detector.Detect(tt.title)
			assert.Equal(t, tt.regions, result.Regions)
			assert.Equal(t, tt.cleaned, result.Title)
		})
	}
}

func TestGeoDetector_RegionalSeparatorGrouping(t *testing.T) {
	detector := newTestGeoDetector(t)

	result := detector.Detect("U.S. And Europe Automotive")

	assert.Equal(t, []string{"United States", "Europe"}, result.Regions)
	assert.Equal(t, "Automotive", result.Title,
		"the joining word between adjacent regions is removed with them")
}

func TestGeoDetector_HyphenGuard(t *testing.T) {
	detector := newTestGeoDetector(t)

	tests := []struct {
		name    string
		title   string
		regions []string
		cleaned string
	}{
		{
			name:    "leading hyphen compound",
			title:   "De-identified Health Data",
			regions: []string{},
			cleaned: "De-identified Health Data",
		},
		{
			name:    "trailing hyphen compound",
			title:   "Co-operative Banking Services",
			regions: []string{},
			cleaned: "Co-operative Banking Services",
		},
		{
			name:    "standalone state code still matches",
			title:   "Delaware Chemical Processing",
			regions: []string{"Delaware"},
			cleaned: "Chemical Processing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detector.Detect(tt.title)
			assert.Equal(t, tt.regions, result.Regions)
			assert.Equal(t, tt.cleaned, result.Title)
		})
	}
}

func TestGeoDetector_HyphenGuardRecordsFailure(t *testing.T) {
	store := &stubStore{}
	telemetry := NewTelemetry(testLogger(), store, true)
	detector := NewGeoDetector(testLogger(), newTestLibrary(t), telemetry)

	detector.Detect("De-identified Health Data")

	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	assert.Equal(t, int64(1), telemetry.failure["geographic_entity:delaware"])
}

func TestGeoDetector_DuplicateRegionAtDistinctPositions(t *testing.T) {
	detector := newTestGeoDetector(t)

	result := detector.Detect("Europe Logistics versus Europe Retail")
	assert.Equal(t, []string{"Europe", "Europe"}, result.Regions)
}

func TestGeoDetector_OverlapKeepsLongerMatch(t *testing.T) {
	detector := newTestGeoDetector(t)

	// "Asia" overlaps "Asia-Pacific"; only the longer survives. The shorter
	// "Asia" inside is also hyphen-bounded, which rejects it independently.
	result := detector.Detect("Asia-Pacific Logistics")
	assert.Equal(t, []string{"Asia-Pacific"}, result.Regions)
}
