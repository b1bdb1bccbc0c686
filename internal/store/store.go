package store

import (
	"context"

	"github.com/lifeloom/lineage/internal/core/model"
)

// PersonPatch is a partial update; nil fields are left untouched. Slices
// and strings are replaced wholesale when set, so clearing a field means
// setting it to its zero value explicitly.
type PersonPatch struct {
	Name               *string
	Aliases            *[]string
	RelationshipToUser *string
	BioSnippet         *string
	ImportanceScore    *float64
	ConfidenceScore    *float64
	ExtractionStatus   *model.ExtractionStatus
	MergedFromID       *string
	MergedFromIDs      *[]string
}

// RecordStore abstracts the persistence engine behind the resolution core.
// The core depends only on this contract; implementations exist for an
// in-memory map (tests), SQLite, and a Neo4j-compatible graph database.
// Implementations return *model.NotFoundError for unknown ids.
type RecordStore interface {
	ListPeople(ctx context.Context, projectID string, excludeStatus ...model.ExtractionStatus) ([]model.Person, error)
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	InsertPerson(ctx context.Context, p *model.Person) error
	UpdatePerson(ctx context.Context, id string, patch PersonPatch) error

	ListPhotoAssociations(ctx context.Context, personID string) ([]model.PhotoAssociation, error)
	ReassignPhotoAssociation(ctx context.Context, id, newPersonID string) error

	ListRelationships(ctx context.Context, personID string) ([]model.Relationship, error)
	GetRelationship(ctx context.Context, id string) (*model.Relationship, error)
	ReassignRelationshipEndpoint(ctx context.Context, id string, role model.EndpointRole, newPersonID string) error

	InsertMergeLog(ctx context.Context, log *model.MergeLog) error
	GetMergeLog(ctx context.Context, id string) (*model.MergeLog, error)
	UpdateMergeLogStatus(ctx context.Context, id string, status model.MergeLogStatus) error

	Close(ctx context.Context) error
}

// ApplyPatch mutates p in place with the set fields of patch. Shared by
// store implementations so patch semantics cannot drift between backends.
func ApplyPatch(p *model.Person, patch PersonPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Aliases != nil {
		p.Aliases = append([]string(nil), (*patch.Aliases)...)
	}
	if patch.RelationshipToUser != nil {
		p.RelationshipToUser = *patch.RelationshipToUser
	}
	if patch.BioSnippet != nil {
		p.BioSnippet = *patch.BioSnippet
	}
	if patch.ImportanceScore != nil {
		p.ImportanceScore = *patch.ImportanceScore
	}
	if patch.ConfidenceScore != nil {
		p.ConfidenceScore = *patch.ConfidenceScore
	}
	if patch.ExtractionStatus != nil {
		p.ExtractionStatus = *patch.ExtractionStatus
	}
	if patch.MergedFromID != nil {
		p.MergedFromID = *patch.MergedFromID
	}
	if patch.MergedFromIDs != nil {
		p.MergedFromIDs = append([]string(nil), (*patch.MergedFromIDs)...)
	}
}

// Helpers for building patches inline.

func String(s string) *string                                 { return &s }
func Float(f float64) *float64                                { return &f }
func Strings(s []string) *[]string                            { return &s }
func Status(s model.ExtractionStatus) *model.ExtractionStatus { return &s }
