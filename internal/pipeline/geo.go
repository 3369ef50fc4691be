package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/patterns"
)

// regionalSeparator joins two region mentions into one removable group:
// "U.S. And Europe" comes out as a unit. Distinct from report-type
// separators.
var regionalSeparator = regexp.MustCompile(`(?i)^\s*(?:and|&|\+|plus)\s*$`)

// GeoDetector finds region mentions and removes them from the working
// title, producing canonical region terms in title order.
type GeoDetector struct {
	logger    arbor.ILogger
	library   *patterns.Library
	telemetry *Telemetry
}

// NewGeoDetector creates a new geographic-entity detector
func NewGeoDetector(logger arbor.ILogger, library *patterns.Library, telemetry *Telemetry) *GeoDetector {
	return &GeoDetector{
		logger:    logger,
		library:   library,
		telemetry: telemetry,
	}
}

// geoCandidate is one pattern match before overlap resolution.
type geoCandidate struct {
	span     models.Span
	term     string
	key      string
	priority int
}

// Detect matches every geographic pattern, applies the hyphen guard and
// overlap resolution, groups adjacent regions joined by a regional
// separator, and deletes the accepted spans.
func (g *GeoDetector) Detect(title string) *models.GeoExtraction {
	accepted := g.resolveMatches(title)
	if len(accepted) == 0 {
		return &models.GeoExtraction{
			StageResult: models.StageResult{
				Title: title,
				Notes: "no regions found",
			},
			Regions: []string{},
		}
	}

	regions := make([]string, 0, len(accepted))
	matched := make([]string, 0, len(accepted))
	for _, c := range accepted {
		regions = append(regions, c.term)
		matched = append(matched, c.term)
		g.telemetry.RecordSuccess(c.key)
	}

	cleaned := g.removeRegionSpans(title, accepted)

	return &models.GeoExtraction{
		StageResult: models.StageResult{
			Title:          cleaned,
			Confidence:     0.9,
			MatchedPattern: strings.Join(matched, "; "),
		},
		Regions: regions,
	}
}

// resolveMatches collects candidates from every pattern, rejects hyphenated
// boundaries, and resolves overlaps keeping the longer match (ties to the
// lower priority value). The result is sorted by position.
func (g *GeoDetector) resolveMatches(title string) []geoCandidate {
	var candidates []geoCandidate

	for _, cp := range g.library.Patterns(models.PatternTypeGeographicEntity) {
		for _, span := range cp.Matches(title) {
			if hyphenBounded(title, span) {
				// The guard overrides priority: "De-identified" must not
				// surface Delaware no matter how the patterns are ordered.
				g.telemetry.RecordFailure(cp.Record.Key())
				continue
			}
			candidates = append(candidates, geoCandidate{
				span:     span,
				term:     cp.Record.Term,
				key:      cp.Record.Key(),
				priority: cp.Record.Priority,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].span.Len() != candidates[j].span.Len() {
			return candidates[i].span.Len() > candidates[j].span.Len()
		}
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].span.Start < candidates[j].span.Start
	})

	var accepted []geoCandidate
	for _, c := range candidates {
		overlaps := false
		for _, a := range accepted {
			if c.span.Overlaps(a.span) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].span.Start < accepted[j].span.Start
	})

	return accepted
}

// hyphenBounded reports whether the match touches a hyphen on either side.
func hyphenBounded(title string, span models.Span) bool {
	if span.Start > 0 && title[span.Start-1] == '-' {
		return true
	}
	if span.End < len(title) && title[span.End] == '-' {
		return true
	}
	return false
}

// removeRegionSpans merges matches joined by a regional separator into one
// contiguous span, deletes the spans right to left, and repairs the leftover
// whitespace and punctuation.
func (g *GeoDetector) removeRegionSpans(title string, accepted []geoCandidate) string {
	var removals []models.Span

	i := 0
	for i < len(accepted) {
		group := accepted[i].span
		j := i + 1
		for j < len(accepted) {
			gap := title[accepted[j-1].span.End:accepted[j].span.Start]
			if !regionalSeparator.MatchString(gap) {
				break
			}
			group.End = accepted[j].span.End
			j++
		}
		removals = append(removals, group)
		i = j
	}

	for k := len(removals) - 1; k >= 0; k-- {
		title = removeSpan(title, removals[k])
	}

	return cleanupSeparatorArtifacts(title)
}
