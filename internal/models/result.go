package models

// MarketType classifies how the word "Market" is used in a title.
type MarketType string

const (
	MarketTypeStandard MarketType = "standard"
	MarketTypeFor      MarketType = "market_for"
	MarketTypeIn       MarketType = "market_in"
	MarketTypeBy       MarketType = "market_by"
)

// Span is a half-open [Start, End) byte range within a working title.
// All removals are span-based; string replacement loses content when a
// keyword recurs elsewhere in the title.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span width in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two spans share any position.
func (s Span) Overlaps(o Span) bool { return s.Start < o.End && o.Start < s.End }

// StageResult carries the fields every pipeline stage returns: the working
// title after the stage's extraction was removed, plus diagnostics.
type StageResult struct {
	Title          string  `json:"title"`
	Confidence     float64 `json:"confidence"`
	MatchedPattern string  `json:"matched_pattern,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// MarketClassification is the stage-B payload. The title passes through
// unchanged; only the market type flag is set.
type MarketClassification struct {
	StageResult
	MarketType MarketType `json:"market_type"`
}

// DateExtraction is the stage-C payload.
type DateExtraction struct {
	StageResult
	Range          string   `json:"range,omitempty"`
	RawMatch       string   `json:"raw_match,omitempty"`
	FormatType     string   `json:"format_type,omitempty"`
	PreservedWords []string `json:"preserved_words,omitempty"`
}

// ReportTypeExtraction is the stage-D payload.
type ReportTypeExtraction struct {
	StageResult
	ReportType             string   `json:"report_type"`
	KeywordsFound          []string `json:"keywords_found,omitempty"`
	KeywordPositions       []Span   `json:"keyword_positions,omitempty"`
	Separators             []string `json:"separators,omitempty"`
	MarketBoundaryDetected bool     `json:"market_boundary_detected"`
	ExtractedAcronym       string   `json:"extracted_acronym,omitempty"`

	// Diagnostic flags for downstream filters: "acronym",
	// "technical_compound", "region_adjacent". They never change extraction.
	Flags []string `json:"flags,omitempty"`
}

// GeoExtraction is the stage-E payload. Regions are canonical library terms
// in title order; duplicates survive only when the same region appears at
// distinct positions.
type GeoExtraction struct {
	StageResult
	Regions []string `json:"regions"`
}

// TopicExtraction is the stage-F payload.
type TopicExtraction struct {
	StageResult
	Topic           string `json:"topic"`
	NormalizedTopic string `json:"normalized_topic"`
}

// ParseResult is the output record for a single title. DateRange is a
// pointer so a dateless parse serializes the field as null rather than
// dropping it.
type ParseResult struct {
	OriginalTitle     string             `json:"original_title"`
	MarketType        MarketType         `json:"market_type"`
	DateRange         *string            `json:"extracted_date_range"`
	ReportType        string             `json:"extracted_report_type"`
	Regions           []string           `json:"extracted_regions"`
	Acronym           string             `json:"extracted_acronym,omitempty"`
	Topic             string             `json:"topic"`
	NormalizedTopic   string             `json:"normalized_topic"`
	ConfidenceByStage map[string]float64 `json:"confidence_by_stage"`
	Notes             []string           `json:"notes"`
}
