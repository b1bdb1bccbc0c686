package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lifeloom/lineage/internal/core/dedupe"
	"github.com/lifeloom/lineage/internal/core/model"
	"github.com/lifeloom/lineage/internal/store"
)

// Engine applies and reverses person merges. Merges against the same
// person are serialized through a per-id lock so two concurrent merges of
// one secondary cannot both succeed; the loser observes the tombstone and
// fails with a ValidationError.
type Engine struct {
	store  store.RecordStore
	logger *zap.Logger
	locks  *keyedLocks
}

func NewEngine(recordStore store.RecordStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  recordStore,
		logger: logger,
		locks:  newKeyedLocks(),
	}
}

// Merge consolidates secondary into primary and records a reversible
// MergeLog. The rollback snapshot is taken before any mutation; the
// secondary tombstone and the log write come last, so a mid-failure state
// on a store without transactions is still self-consistent. Returns the
// log and the number of association re-pointings that were skipped after
// individual failures.
func (e *Engine) Merge(ctx context.Context, projectID, primaryID, secondaryID string, strategy model.MergeStrategy) (*model.MergeLog, int, error) {
	if primaryID == "" || secondaryID == "" {
		return nil, 0, model.NewValidationError("primary and secondary person ids are required")
	}
	if primaryID == secondaryID {
		return nil, 0, model.NewValidationError("cannot merge a person into itself: %s", primaryID)
	}
	if strategy == "" {
		strategy = model.StrategyKeepPrimary
	}

	unlock := e.locks.lockPair(primaryID, secondaryID)
	defer unlock()

	primary, err := e.store.GetPerson(ctx, primaryID)
	if err != nil {
		return nil, 0, err
	}
	secondary, err := e.store.GetPerson(ctx, secondaryID)
	if err != nil {
		return nil, 0, err
	}
	if primary.ProjectID != projectID {
		return nil, 0, model.NewNotFoundError("person in project "+projectID, primaryID)
	}
	if secondary.ProjectID != projectID {
		return nil, 0, model.NewNotFoundError("person in project "+projectID, secondaryID)
	}
	if secondary.ExtractionStatus == model.StatusMerged {
		return nil, 0, model.NewValidationError("person %s is already merged into %s", secondaryID, secondary.MergedFromID)
	}
	if primary.ExtractionStatus == model.StatusMerged {
		return nil, 0, model.NewValidationError("person %s is already merged and cannot be a merge target", primaryID)
	}

	// Step 1: deep rollback snapshot before anything is touched.
	photos, err := e.store.ListPhotoAssociations(ctx, secondaryID)
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot photo associations: %w", err)
	}
	relationships, err := e.store.ListRelationships(ctx, secondaryID)
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot relationships: %w", err)
	}

	rollback := model.RollbackData{
		Person:         secondary.Clone(),
		PrimaryAliases: append([]string(nil), primary.Aliases...),
	}
	for _, a := range photos {
		rollback.PhotoAssociationIDs = append(rollback.PhotoAssociationIDs, a.ID)
	}
	for _, r := range relationships {
		for _, role := range []model.EndpointRole{model.RoleFrom, model.RoleTo} {
			if r.Endpoint(role) == secondaryID {
				rollback.Relationships = append(rollback.Relationships, model.RelationshipSnapshot{
					RelationshipID:   r.ID,
					Role:             role,
					OriginalPersonID: secondaryID,
				})
			}
		}
	}

	// Steps 2-4: consolidate the primary record.
	mergedAliases := unionAliases(primary, secondary)
	mergedFromIDs := append(append([]string(nil), primary.MergedFromIDs...), secondaryID)
	newImportance := primary.ImportanceScore + secondary.ImportanceScore

	err = e.store.UpdatePerson(ctx, primaryID, store.PersonPatch{
		Aliases:         store.Strings(mergedAliases),
		ImportanceScore: store.Float(newImportance),
		MergedFromIDs:   store.Strings(mergedFromIDs),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("update primary: %w", err)
	}

	// Step 5: re-point associations. Individual failures are warnings, not
	// aborts: identity consolidation outranks association bookkeeping.
	skipped := 0
	for _, a := range photos {
		if err := e.store.ReassignPhotoAssociation(ctx, a.ID, primaryID); err != nil {
			e.logger.Warn("skipping photo association re-point",
				zap.String("photo_association_id", a.ID),
				zap.String("secondary_id", secondaryID),
				zap.Error(err))
			skipped++
		}
	}
	for _, snap := range rollback.Relationships {
		if err := e.store.ReassignRelationshipEndpoint(ctx, snap.RelationshipID, snap.Role, primaryID); err != nil {
			e.logger.Warn("skipping relationship re-point",
				zap.String("relationship_id", snap.RelationshipID),
				zap.String("role", string(snap.Role)),
				zap.Error(err))
			skipped++
		}
	}

	// Tombstone the secondary last. The row is retained for referential
	// integrity, never deleted.
	err = e.store.UpdatePerson(ctx, secondaryID, store.PersonPatch{
		ExtractionStatus: store.Status(model.StatusMerged),
		MergedFromID:     store.String(primaryID),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("tombstone secondary: %w", err)
	}

	// Step 6: persist the audit record.
	log := &model.MergeLog{
		ID:                uuid.New().String(),
		ProjectID:         projectID,
		PrimaryPersonID:   primaryID,
		SecondaryPersonID: secondaryID,
		Strategy:          strategy,
		Rollback:          rollback,
		Status:            model.MergeLogActive,
		CreatedAt:         time.Now().UTC(),
	}
	if err := e.store.InsertMergeLog(ctx, log); err != nil {
		return nil, 0, fmt.Errorf("insert merge log: %w", err)
	}

	e.logger.Info("merged person",
		zap.String("project_id", projectID),
		zap.String("primary_id", primaryID),
		zap.String("secondary_id", secondaryID),
		zap.String("merge_log_id", log.ID),
		zap.Int("skipped_associations", skipped))

	return log, skipped, nil
}

// unionAliases merges the two alias sets, deduplicating by normalized form.
// On a normalized collision the primary's original casing wins.
func unionAliases(primary, secondary *model.Person) []string {
	seen := map[string]bool{dedupe.NormalizeAlias(primary.Name): true}
	out := make([]string, 0, len(primary.Aliases)+len(secondary.Aliases)+1)

	for _, a := range primary.Aliases {
		k := dedupe.NormalizeAlias(a)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	for _, a := range append([]string{secondary.Name}, secondary.Aliases...) {
		k := dedupe.NormalizeAlias(a)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}
