package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lifeloom/lineage/internal/core/model"
	"github.com/lifeloom/lineage/internal/store"
)

// Undo replays a rollback snapshot: the secondary is restored verbatim, its
// associations re-pointed back, and the primary's aggregated state
// decremented. A log can be undone exactly once; a second call is a
// ValidationError, never a double-restore. Association restore failures
// are logged and skipped; they must not abort the identity restoration or
// the final status flip. Returns the restored secondary and the skipped
// association count.
func (e *Engine) Undo(ctx context.Context, mergeLogID string) (*model.Person, int, error) {
	if mergeLogID == "" {
		return nil, 0, model.NewValidationError("merge log id is required")
	}

	log, err := e.store.GetMergeLog(ctx, mergeLogID)
	if err != nil {
		return nil, 0, err
	}

	unlock := e.locks.lockPair(log.PrimaryPersonID, log.SecondaryPersonID)
	defer unlock()

	// Re-read under the lock so a concurrent undo of the same log loses.
	log, err = e.store.GetMergeLog(ctx, mergeLogID)
	if err != nil {
		return nil, 0, err
	}
	if log.Status != model.MergeLogActive {
		return nil, 0, model.NewValidationError("merge log %s is already %s and cannot be undone", mergeLogID, log.Status)
	}
	snapshot := log.Rollback.Person
	if snapshot == nil {
		return nil, 0, fmt.Errorf("merge log %s has no rollback snapshot", mergeLogID)
	}

	// Step 1: restore the secondary's own record verbatim. An undone merge
	// implies prior human review, so the record comes back confirmed, not
	// pending.
	restored := snapshot.Clone()
	restored.MergedFromID = ""
	restored.ExtractionStatus = model.StatusConfirmed

	err = e.store.UpdatePerson(ctx, log.SecondaryPersonID, store.PersonPatch{
		Name:               store.String(restored.Name),
		Aliases:            store.Strings(restored.Aliases),
		RelationshipToUser: store.String(restored.RelationshipToUser),
		BioSnippet:         store.String(restored.BioSnippet),
		ImportanceScore:    store.Float(restored.ImportanceScore),
		ConfidenceScore:    store.Float(restored.ConfidenceScore),
		ExtractionStatus:   store.Status(model.StatusConfirmed),
		MergedFromID:       store.String(""),
		MergedFromIDs:      store.Strings(restored.MergedFromIDs),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("restore secondary: %w", err)
	}

	// Steps 2-3: best-effort association restoration.
	skipped := 0
	for _, photoID := range log.Rollback.PhotoAssociationIDs {
		if err := e.store.ReassignPhotoAssociation(ctx, photoID, log.SecondaryPersonID); err != nil {
			e.logger.Warn("skipping photo association restore",
				zap.String("photo_association_id", photoID),
				zap.String("merge_log_id", mergeLogID),
				zap.Error(err))
			skipped++
		}
	}
	for _, snap := range log.Rollback.Relationships {
		if restoreErr := e.restoreRelationship(ctx, log, snap); restoreErr != nil {
			e.logger.Warn("skipping relationship restore",
				zap.String("relationship_id", snap.RelationshipID),
				zap.String("merge_log_id", mergeLogID),
				zap.Error(restoreErr))
			skipped++
		}
	}

	// Steps 4-6: unwind the primary's aggregated state.
	if err := e.unwindPrimary(ctx, log); err != nil {
		return nil, 0, err
	}

	// Step 7: retire the log. Exactly-once semantics live here.
	if err := e.store.UpdateMergeLogStatus(ctx, mergeLogID, model.MergeLogUndone); err != nil {
		return nil, 0, fmt.Errorf("flip merge log status: %w", err)
	}

	e.logger.Info("undid merge",
		zap.String("merge_log_id", mergeLogID),
		zap.String("primary_id", log.PrimaryPersonID),
		zap.String("secondary_id", log.SecondaryPersonID),
		zap.Int("skipped_associations", skipped))

	return restored, skipped, nil
}

// restoreRelationship re-points one endpoint back to the secondary, but
// only if the live endpoint still equals the primary and the recorded
// original equals the secondary. A later, unrelated merge may have moved
// the endpoint elsewhere; that state must not be clobbered.
func (e *Engine) restoreRelationship(ctx context.Context, log *model.MergeLog, snap model.RelationshipSnapshot) error {
	rel, err := e.store.GetRelationship(ctx, snap.RelationshipID)
	if err != nil {
		return err
	}
	if snap.OriginalPersonID != log.SecondaryPersonID {
		return nil
	}
	if rel.Endpoint(snap.Role) != log.PrimaryPersonID {
		// Independently re-pointed since the merge; leave it alone.
		return nil
	}
	return e.store.ReassignRelationshipEndpoint(ctx, snap.RelationshipID, snap.Role, log.SecondaryPersonID)
}

func (e *Engine) unwindPrimary(ctx context.Context, log *model.MergeLog) error {
	primary, err := e.store.GetPerson(ctx, log.PrimaryPersonID)
	if err != nil {
		return fmt.Errorf("load primary for unwind: %w", err)
	}

	// Importance decrements by the restored secondary's score, never below
	// zero.
	importance := primary.ImportanceScore - log.Rollback.Person.ImportanceScore
	if importance < 0 {
		importance = 0
	}

	mergedFromIDs := make([]string, 0, len(primary.MergedFromIDs))
	for _, id := range primary.MergedFromIDs {
		if id != log.SecondaryPersonID {
			mergedFromIDs = append(mergedFromIDs, id)
		}
	}

	patch := store.PersonPatch{
		ImportanceScore: store.Float(importance),
		MergedFromIDs:   store.Strings(mergedFromIDs),
	}

	// The primary may itself have been a secondary in an earlier merge;
	// once it absorbs nothing anymore, its own back-pointer is cleared.
	if len(mergedFromIDs) == 0 {
		patch.MergedFromID = store.String("")
	}

	// Only keep_primary additively absorbed the secondary's aliases, so
	// only keep_primary gives them back on undo.
	if log.Strategy == model.StrategyKeepPrimary {
		patch.Aliases = store.Strings(append([]string(nil), log.Rollback.PrimaryAliases...))
	}

	if err := e.store.UpdatePerson(ctx, log.PrimaryPersonID, patch); err != nil {
		return fmt.Errorf("unwind primary: %w", err)
	}
	return nil
}
