package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// PatternType identifies which stage of the pipeline a pattern drives.
type PatternType string

const (
	PatternTypeGeographicEntity     PatternType = "geographic_entity"
	PatternTypeMarketTerm           PatternType = "market_term"
	PatternTypeDatePattern          PatternType = "date_pattern"
	PatternTypeReportType           PatternType = "report_type"
	PatternTypeReportTypeDictionary PatternType = "report_type_dictionary"
)

// RequiredPatternTypes are the types that must have at least one active record
// for the pipeline to start. Missing any of these is a fatal config error.
var RequiredPatternTypes = []PatternType{
	PatternTypeGeographicEntity,
	PatternTypeMarketTerm,
	PatternTypeDatePattern,
	PatternTypeReportTypeDictionary,
}

// DictionarySubtype classifies report_type_dictionary entries.
type DictionarySubtype string

const (
	SubtypePrimaryKeyword   DictionarySubtype = "primary_keyword"
	SubtypeSecondaryKeyword DictionarySubtype = "secondary_keyword"
	SubtypeSeparator        DictionarySubtype = "separator"
	SubtypeBoundaryMarker   DictionarySubtype = "boundary_marker"
)

// FormatType is curation metadata describing where a report-type phrase sits
// in a title. It is carried for auditing and does not change matching.
type FormatType string

const (
	FormatTerminalType    FormatType = "terminal_type"
	FormatEmbeddedType    FormatType = "embedded_type"
	FormatPrefixType      FormatType = "prefix_type"
	FormatCompoundType    FormatType = "compound_type"
	FormatAcronymEmbedded FormatType = "acronym_embedded"
)

// Pattern is a single entry in the pattern library. Records are created and
// mutated only by offline curation; at runtime the library is read-only.
type Pattern struct {
	ID   string      `json:"id" yaml:"id,omitempty"`
	Type PatternType `json:"type" yaml:"type" validate:"required,oneof=geographic_entity market_term date_pattern report_type report_type_dictionary" badgerhold:"index"`
	Term string      `json:"term" yaml:"term" validate:"required"`

	// Aliases are alternate surface forms matched alongside Term.
	// ArchivedAliases are known false-positive forms: loaded for auditing,
	// never compiled into the live matcher.
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	ArchivedAliases []string `json:"archived_aliases,omitempty" yaml:"archived_aliases,omitempty"`

	// Pattern is an explicit regex source. When empty the matcher synthesizes
	// one from Term and Aliases.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Priority orders patterns within a type; lower values are tried first.
	Priority int  `json:"priority" yaml:"priority" validate:"gte=0"`
	Active   bool `json:"active" yaml:"active" badgerhold:"index"`

	Subtype    DictionarySubtype `json:"subtype,omitempty" yaml:"subtype,omitempty" validate:"omitempty,oneof=primary_keyword secondary_keyword separator boundary_marker"`
	FormatType FormatType        `json:"format_type,omitempty" yaml:"format_type,omitempty" validate:"omitempty,oneof=terminal_type embedded_type prefix_type compound_type acronym_embedded"`

	// Best-effort telemetry counters. Not part of matching.
	SuccessCount int64 `json:"success_count" yaml:"success_count,omitempty" validate:"gte=0"`
	FailureCount int64 `json:"failure_count" yaml:"failure_count,omitempty" validate:"gte=0"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

var patternValidator = validator.New()

// Validate checks structural constraints on the record, including the
// alias/archived-alias exclusivity invariant that validator tags cannot express.
func (p *Pattern) Validate() error {
	if err := patternValidator.Struct(p); err != nil {
		return err
	}

	if p.Type == PatternTypeReportTypeDictionary && p.Subtype == "" {
		return fmt.Errorf("dictionary pattern %q requires a subtype", p.Term)
	}

	archived := make(map[string]bool, len(p.ArchivedAliases))
	for _, a := range p.ArchivedAliases {
		archived[strings.ToLower(a)] = true
	}
	for _, a := range p.Aliases {
		if archived[strings.ToLower(a)] {
			return fmt.Errorf("alias %q of %q is both live and archived", a, p.Term)
		}
	}

	return nil
}

// Key returns the storage key enforcing (type, term) uniqueness.
func (p *Pattern) Key() string {
	return string(p.Type) + ":" + strings.ToLower(p.Term)
}

// Surfaces returns the matchable surface forms: the canonical term plus live
// aliases. Archived aliases are excluded.
func (p *Pattern) Surfaces() []string {
	surfaces := make([]string, 0, len(p.Aliases)+1)
	surfaces = append(surfaces, p.Term)
	surfaces = append(surfaces, p.Aliases...)
	return surfaces
}
