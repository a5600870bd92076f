// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/AleutianAI/PIICodex/pkg/logging"
	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/AleutianAI/PIICodex/services/classification"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultShardSize is the number of documents folded into one partial
// AnalysisResultSet before the shards are combined.
const DefaultShardSize = 64

// Analyzer turns detector output into risk analyses.
//
// Description:
//
//	For each detection the analyzer builds a validated DetectionResult,
//	looks up its classification, and pairs the two into an
//	AnalysisResultItem. Items are grouped per document into an
//	AnalysisResult, and documents into an AnalysisResultSet.
//
//	Collections are processed in shards of ShardSize documents. Each
//	shard is analyzed and folded on its own goroutine (at most
//	Concurrency at once), then the shard sets are combined in collection
//	order. The combined statistics equal those of a sequential fold.
//
// Thread Safety: Safe for concurrent use if the Classifier is.
type Analyzer struct {
	classifier  classification.Classifier
	concurrency int
	shardSize   int
	logger      *logging.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConcurrency bounds the number of shards analyzed at once. Values
// below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithShardSize sets the number of documents per shard. Values below 1
// are ignored.
func WithShardSize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.shardSize = n
		}
	}
}

// WithLogger sets the logger. Default: logging.Nop().
func WithLogger(l *logging.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer.
//
// Inputs:
//   - classifier: Resolves entity types to risk assessments. Must not be nil.
//   - opts: Concurrency, shard size, and logger options.
//
// Outputs:
//   - *Analyzer: Ready to use.
//   - error: Non-nil if classifier is nil.
func New(classifier classification.Classifier, opts ...Option) (*Analyzer, error) {
	if classifier == nil {
		return nil, errors.New("analyzer: classifier is required")
	}
	a := &Analyzer{
		classifier:  classifier,
		concurrency: runtime.GOMAXPROCS(0),
		shardSize:   DefaultShardSize,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AnalyzeDocument analyzes one document.
//
// Inputs:
//   - ctx: Context for tracing.
//   - doc: The document. doc.Index becomes the result index.
//
// Outputs:
//   - models.AnalysisResult: Items in detection order and their mean risk.
//   - error: The first validation, classification, or pairing error,
//     wrapped with the document and detection position.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc Document) (models.AnalysisResult, error) {
	ctx, span := startDocumentSpan(ctx, doc.Index, len(doc.Detections))
	defer span.End()

	result, err := a.analyzeDocument(ctx, doc)
	setAnalyzeSpanResult(span, result.Len(), result.MeanRiskScore(), err)
	return result, err
}

func (a *Analyzer) analyzeDocument(ctx context.Context, doc Document) (models.AnalysisResult, error) {
	if err := doc.Validate(); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("document %d: %w", doc.Index, err)
	}

	textLength := models.UnknownTextLength
	switch {
	case doc.Text != "":
		textLength = utf8.RuneCountInString(doc.Text)
	case doc.TextLength > 0:
		textLength = doc.TextLength
	}

	items := make([]models.AnalysisResultItem, 0, len(doc.Detections))
	for i, d := range doc.Detections {
		detection, err := models.NewDetectionResult(d.EntityType, d.Score, d.Start, d.End, textLength)
		if err != nil {
			return models.AnalysisResult{}, fmt.Errorf("document %d detection %d: %w", doc.Index, i, err)
		}
		assessment, err := a.classifier.Classify(d.EntityType)
		if err != nil {
			if errors.Is(err, models.ErrUnmappedEntity) {
				recordUnmapped(ctx, d.EntityType)
			}
			return models.AnalysisResult{}, fmt.Errorf("document %d detection %d: %w", doc.Index, i, err)
		}
		item, err := models.NewAnalysisResultItem(detection, assessment)
		if err != nil {
			return models.AnalysisResult{}, fmt.Errorf("document %d detection %d: %w", doc.Index, i, err)
		}
		items = append(items, item)
	}
	return models.NewAnalysisResult(doc.Index, items), nil
}

// AnalyzeCollection analyzes every document and aggregates the collection.
//
// Description:
//
//	Documents are indexed by position. The run is tagged with a fresh run
//	ID in logs and spans. The first error cancels the remaining shards.
//
// Inputs:
//   - ctx: Cancellation aborts the batch between documents.
//   - coll: The collection.
//
// Outputs:
//   - models.AnalysisResultSet: Collection statistics, named after coll.Name.
//   - error: Validation, classification, pairing, or context error.
func (a *Analyzer) AnalyzeCollection(ctx context.Context, coll Collection) (models.AnalysisResultSet, error) {
	runID := uuid.New().String()
	logger := a.logger.With("run_id", runID)
	startTime := time.Now()

	ctx, span := startAnalyzeSpan(ctx, runID, coll.Name, len(coll.Documents))
	defer span.End()
	logger = logger.WithTrace(ctx)

	set, err := a.analyzeCollection(ctx, coll, logger)
	setAnalyzeSpanResult(span, set.DetectionCount(), set.MeanRiskScore(), err)
	recordAnalyzeMetrics(ctx, time.Since(startTime), len(coll.Documents), set.MeanRiskScore(), err == nil)

	if err != nil {
		logger.Error("analysis failed",
			"collection", coll.Name,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return models.AnalysisResultSet{}, err
	}

	for _, f := range set.RankedPIITypeFrequencies() {
		recordDetectionsByType(ctx, f.Key, f.Count)
	}
	logger.Info("analysis complete",
		"collection", coll.Name,
		"documents", len(coll.Documents),
		"detections", set.DetectionCount(),
		"mean_risk_score", set.MeanRiskScore(),
		"duration_ms", time.Since(startTime).Milliseconds())
	return set, nil
}

func (a *Analyzer) analyzeCollection(ctx context.Context, coll Collection, logger *logging.Logger) (models.AnalysisResultSet, error) {
	if err := coll.Validate(); err != nil {
		return models.AnalysisResultSet{}, err
	}

	var opts []models.SetOption
	if coll.Name != "" {
		opts = append(opts, models.WithCollectionName(coll.Name))
	}

	n := len(coll.Documents)
	shardCount := (n + a.shardSize - 1) / a.shardSize
	shards := make([]models.AnalysisResultSet, shardCount)

	logger.Info("analysis started",
		"collection", coll.Name,
		"documents", n,
		"shards", shardCount,
		"concurrency", a.concurrency)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for s := 0; s < shardCount; s++ {
		start := s * a.shardSize
		end := min(start+a.shardSize, n)
		g.Go(func() error {
			results := make([]models.AnalysisResult, 0, end-start)
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				doc := coll.Documents[i]
				doc.Index = i
				result, err := a.AnalyzeDocument(gCtx, doc)
				if err != nil {
					return err
				}
				results = append(results, result)
			}
			shards[s] = models.NewAnalysisResultSet(results)
			logger.Debug("shard folded",
				"shard", s,
				"documents", end-start,
				"detections", shards[s].DetectionCount())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.AnalysisResultSet{}, err
	}
	return models.CombineAnalysisResultSets(shards, opts...), nil
}

// AssessRisk classifies a list of entity types and averages their levels.
//
// Inputs:
//   - entityTypes: Types to classify, in order. Duplicates count each time.
//
// Outputs:
//   - models.RiskAssessmentList: The assessments and their average score.
//   - error: *models.UnmappedEntityError (wrapped) for an unknown type.
func (a *Analyzer) AssessRisk(entityTypes []string) (models.RiskAssessmentList, error) {
	assessments := make([]models.RiskAssessment, 0, len(entityTypes))
	for _, entityType := range entityTypes {
		assessment, err := a.classifier.Classify(entityType)
		if err != nil {
			return models.RiskAssessmentList{}, fmt.Errorf("assess risk: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	return models.NewRiskAssessmentList(assessments), nil
}
