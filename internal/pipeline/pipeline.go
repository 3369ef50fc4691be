package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/patterns"
)

// Stage names used in confidence maps and notes.
const (
	StageMarketClassifier = "market_classifier"
	StageDateExtractor    = "date_extractor"
	StageReportType       = "report_type_extractor"
	StageGeoDetector      = "geographic_detector"
	StageTopicExtractor   = "topic_extractor"
)

// StageOrder is the fixed execution order. The output title of stage N is
// the sole title input to stage N+1; no stage revisits an earlier one.
var StageOrder = []string{
	StageMarketClassifier,
	StageDateExtractor,
	StageReportType,
	StageGeoDetector,
	StageTopicExtractor,
}

// Pipeline runs a title through the five extraction stages. It is purely
// functional over (title, flags, library): instances share only the
// read-only pattern library, so independent pipelines may run in parallel.
type Pipeline struct {
	logger    arbor.ILogger
	library   *patterns.Library
	config    *common.PipelineConfig
	telemetry *Telemetry

	classifier *Classifier
	date       *DateExtractor
	reportType *ReportTypeExtractor
	geo        *GeoDetector
	topic      *TopicExtractor
}

// New wires the stages around a loaded pattern library. The library handle
// is passed down, never globalized.
func New(logger arbor.ILogger, library *patterns.Library, config *common.PipelineConfig, telemetry *Telemetry) *Pipeline {
	return &Pipeline{
		logger:     logger,
		library:    library,
		config:     config,
		telemetry:  telemetry,
		classifier: NewClassifier(logger, library),
		date:       NewDateExtractor(logger, library),
		reportType: NewReportTypeExtractor(logger, library),
		geo:        NewGeoDetector(logger, library, telemetry),
		topic:      NewTopicExtractor(logger),
	}
}

// Parse produces an output record for a single title. A parse is always
// produced: per-title failures surface in notes and confidence_by_stage,
// never as an error.
func (p *Pipeline) Parse(ctx context.Context, title string) *models.ParseResult {
	result := &models.ParseResult{
		OriginalTitle:     title,
		MarketType:        models.MarketTypeStandard,
		Regions:           []string{},
		ConfidenceByStage: make(map[string]float64, len(StageOrder)),
		Notes:             []string{},
	}

	working := strings.TrimSpace(title)
	if p.config.MaxTitleLength > 0 && len(working) > p.config.MaxTitleLength {
		result.Notes = append(result.Notes,
			fmt.Sprintf("title length %d exceeds limit %d, skipping parse", len(working), p.config.MaxTitleLength))
		for _, stage := range StageOrder {
			result.ConfidenceByStage[stage] = 0
		}
		return result
	}

	// Stage B: market-term classification. Title passes through unchanged.
	classification, ok := runStage(p, ctx, result, StageMarketClassifier, func() *models.MarketClassification {
		return p.classifier.Classify(working)
	})
	if ok {
		result.MarketType = classification.MarketType
		p.recordStage(result, StageMarketClassifier, &classification.StageResult)
		if classification.MatchedPattern != "" {
			p.telemetry.RecordSuccess(string(models.PatternTypeMarketTerm) + ":" + strings.ToLower(classification.MatchedPattern))
		}
	}

	// Stage C: date extraction.
	date, ok := runStage(p, ctx, result, StageDateExtractor, func() *models.DateExtraction {
		return p.date.Extract(working)
	})
	if ok {
		working = date.Title
		if date.Range != "" {
			result.DateRange = &date.Range
		}
		p.recordStage(result, StageDateExtractor, &date.StageResult)
		if date.MatchedPattern != "" {
			p.telemetry.RecordSuccess(string(models.PatternTypeDatePattern) + ":" + strings.ToLower(date.MatchedPattern))
		}
	}

	// Stage D: report-type reconstruction, steered by the market flag.
	reportType, ok := runStage(p, ctx, result, StageReportType, func() *models.ReportTypeExtraction {
		return p.reportType.Extract(working, result.MarketType)
	})
	if ok {
		working = reportType.Title
		result.ReportType = reportType.ReportType
		result.Acronym = reportType.ExtractedAcronym
		p.recordStage(result, StageReportType, &reportType.StageResult)
		for _, keyword := range reportType.KeywordsFound {
			p.telemetry.RecordSuccess(string(models.PatternTypeReportTypeDictionary) + ":" + strings.ToLower(keyword))
		}
	}

	// Stage E: geographic detection and removal.
	geo, ok := runStage(p, ctx, result, StageGeoDetector, func() *models.GeoExtraction {
		return p.geo.Detect(working)
	})
	if ok {
		working = geo.Title
		result.Regions = geo.Regions
		p.recordStage(result, StageGeoDetector, &geo.StageResult)
	}

	// Stage F: residual topic.
	topic, ok := runStage(p, ctx, result, StageTopicExtractor, func() *models.TopicExtraction {
		return p.topic.Extract(working)
	})
	if ok {
		result.Topic = topic.Topic
		result.NormalizedTopic = topic.NormalizedTopic
		p.recordStage(result, StageTopicExtractor, &topic.StageResult)
	}

	return result
}

// recordStage folds a stage's confidence and notes into the output record.
func (p *Pipeline) recordStage(result *models.ParseResult, stage string, sr *models.StageResult) {
	result.ConfidenceByStage[stage] = sr.Confidence
	if sr.Notes != "" {
		result.Notes = append(result.Notes, stage+": "+sr.Notes)
	}
}

// runStage executes one stage with panic recovery and the optional per-title
// deadline. On panic or timeout the stage contributes an empty extraction
// and the pipeline continues on the title the stage received.
func runStage[T any](p *Pipeline, ctx context.Context, result *models.ParseResult, name string, fn func() T) (T, bool) {
	var zero T

	done := make(chan T, 1)
	panicked := make(chan string, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- fmt.Sprintf("%v", r)
			}
		}()
		done <- fn()
	}()

	var deadline <-chan time.Time
	if p.config.StageTimeout > 0 {
		timer := time.NewTimer(p.config.StageTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case value := <-done:
		return value, true
	case msg := <-panicked:
		p.logger.Warn().Str("stage", name).Str("panic", msg).Msg("Stage panicked, continuing with empty extraction")
		result.ConfidenceByStage[name] = 0
		result.Notes = append(result.Notes, name+": internal error, extraction skipped")
		return zero, false
	case <-deadline:
		p.logger.Warn().Str("stage", name).Dur("timeout", p.config.StageTimeout).Msg("Stage timed out, continuing with empty extraction")
		result.ConfidenceByStage[name] = 0
		result.Notes = append(result.Notes, name+": timed out, extraction skipped")
		return zero, false
	case <-ctx.Done():
		result.ConfidenceByStage[name] = 0
		result.Notes = append(result.Notes, name+": canceled")
		return zero, false
	}
}
