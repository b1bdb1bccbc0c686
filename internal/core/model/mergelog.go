package model

import "time"

type MergeStrategy string

const (
	StrategyKeepPrimary   MergeStrategy = "keep_primary"
	StrategyKeepSecondary MergeStrategy = "keep_secondary"
	StrategyManual        MergeStrategy = "manual"
)

type MergeLogStatus string

const (
	MergeLogActive MergeLogStatus = "active"
	MergeLogUndone MergeLogStatus = "undone"
)

// RelationshipSnapshot records one re-pointed relationship endpoint so undo
// can restore it. Role is the endpoint that referenced the secondary;
// OriginalPersonID is the secondary id it held before the merge.
type RelationshipSnapshot struct {
	RelationshipID   string       `json:"relationship_id"`
	Role             EndpointRole `json:"role"`
	OriginalPersonID string       `json:"original_person_id"`
}

// RollbackData is a deep, independent snapshot taken before any merge
// mutation. The MergeLog exclusively owns it; the live secondary record is
// overwritten afterwards.
type RollbackData struct {
	Person              *Person                `json:"person"`
	PhotoAssociationIDs []string               `json:"photo_association_ids"`
	Relationships       []RelationshipSnapshot `json:"relationships"`
	// PrimaryAliases is the primary's alias set before the merge, kept so a
	// keep_primary undo can strip exactly the secondary-contributed aliases.
	PrimaryAliases []string `json:"primary_aliases"`
}

// MergeLog is the append-only audit record for one merge. Status flips to
// undone exactly once; a log is never reused for a second undo.
type MergeLog struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"project_id"`
	PrimaryPersonID   string         `json:"primary_person_id"`
	SecondaryPersonID string         `json:"secondary_person_id"`
	Strategy          MergeStrategy  `json:"merge_strategy"`
	Rollback          RollbackData   `json:"rollback_data"`
	Status            MergeLogStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
}
