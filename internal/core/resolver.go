package core

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lifeloom/lineage/internal/core/dedupe"
	"github.com/lifeloom/lineage/internal/core/extraction"
	"github.com/lifeloom/lineage/internal/core/merge"
	"github.com/lifeloom/lineage/internal/core/model"
	"github.com/lifeloom/lineage/internal/llm"
	"github.com/lifeloom/lineage/internal/store"
)

// Resolver wires the extraction boundary, the pair detector and the
// merge/undo engines around one RecordStore. It is request-scoped and
// stateless between calls; detection is pure read-compute and safe to run
// concurrently with unrelated merges.
type Resolver struct {
	Store     store.RecordStore
	Extractor *extraction.Extractor
	Merger    *merge.Engine

	Threshold         float64
	IngestConcurrency int
	Logger            *zap.Logger
}

func NewResolver(recordStore store.RecordStore, llmClient llm.LLMClient, promptOverride string, threshold float64, ingestConcurrency int, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = dedupe.DefaultThreshold
	}
	if ingestConcurrency <= 0 {
		ingestConcurrency = 1
	}
	var extractor *extraction.Extractor
	if llmClient != nil {
		extractor = extraction.NewExtractor(llmClient, promptOverride)
	}
	return &Resolver{
		Store:             recordStore,
		Extractor:         extractor,
		Merger:            merge.NewEngine(recordStore, logger),
		Threshold:         threshold,
		IngestConcurrency: ingestConcurrency,
		Logger:            logger,
	}
}

// IngestText runs each narrative block through the extraction oracle with
// bounded concurrency and stores the validated person records. An empty
// oracle result is a valid empty state.
func (r *Resolver) IngestText(ctx context.Context, projectID string, blocks []string) ([]model.Person, error) {
	if r.Extractor == nil {
		return nil, model.NewValidationError("no extraction oracle configured")
	}

	results := make([][]model.Person, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.IngestConcurrency)

	for i, block := range blocks {
		i, block := i, block
		g.Go(func() error {
			people, err := r.Extractor.ExtractPeople(gctx, projectID, block)
			if err != nil {
				return err
			}
			results[i] = people
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var created []model.Person
	for _, people := range results {
		for i := range people {
			if err := r.Store.InsertPerson(ctx, &people[i]); err != nil {
				return created, err
			}
			created = append(created, people[i])
		}
	}

	r.Logger.Info("ingested text blocks",
		zap.String("project_id", projectID),
		zap.Int("blocks", len(blocks)),
		zap.Int("people_created", len(created)))
	return created, nil
}

// DetectDuplicates scans the project's people, scores all pairs, and
// clusters them into transitive duplicate groups for human review.
func (r *Resolver) DetectDuplicates(ctx context.Context, projectID string, threshold float64) (*model.DetectionResult, error) {
	if threshold <= 0 {
		threshold = r.Threshold
	}
	started := time.Now()

	people, err := r.Store.ListPeople(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pairs := dedupe.DetectPairs(people, threshold)
	groups := dedupe.BuildGroups(people, pairs)

	total := 0
	for _, g := range groups {
		total += len(g.PersonIDs)
	}

	return &model.DetectionResult{
		DuplicateGroups:  groups,
		TotalDuplicates:  total,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}, nil
}

// ListPeople returns the project's non-tombstoned records.
func (r *Resolver) ListPeople(ctx context.Context, projectID string) ([]model.Person, error) {
	return r.Store.ListPeople(ctx, projectID, model.StatusMerged)
}

// MergePeople consolidates secondary into primary under the given strategy.
func (r *Resolver) MergePeople(ctx context.Context, projectID, primaryID, secondaryID string, strategy model.MergeStrategy) (*model.MergeLog, int, error) {
	return r.Merger.Merge(ctx, projectID, primaryID, secondaryID, strategy)
}

// UndoMerge reverses a previously applied merge. The log must belong to the
// given project.
func (r *Resolver) UndoMerge(ctx context.Context, projectID, mergeLogID string) (*model.Person, int, error) {
	log, err := r.Store.GetMergeLog(ctx, mergeLogID)
	if err != nil {
		return nil, 0, err
	}
	if log.ProjectID != projectID {
		return nil, 0, model.NewNotFoundError("merge log in project "+projectID, mergeLogID)
	}
	return r.Merger.Undo(ctx, mergeLogID)
}
