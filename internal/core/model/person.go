package model

import "time"

type ExtractionStatus string

const (
	StatusPending   ExtractionStatus = "pending"
	StatusConfirmed ExtractionStatus = "confirmed"
	StatusMerged    ExtractionStatus = "merged"
)

// Person is a candidate real-world individual extracted from narrative text.
// Aliases are stored with their original casing; comparison always goes
// through the dedupe normalizer.
type Person struct {
	ID                 string           `json:"id"`
	ProjectID          string           `json:"project_id"`
	Name               string           `json:"name"`
	Aliases            []string         `json:"aliases"`
	RelationshipToUser string           `json:"relationship_to_user,omitempty"`
	BioSnippet         string           `json:"bio_snippet,omitempty"`
	ImportanceScore    float64          `json:"importance_score"`
	ConfidenceScore    float64          `json:"confidence_score"`
	ExtractionStatus   ExtractionStatus `json:"extraction_status"`
	MergedFromID       string           `json:"merged_from_id,omitempty"`
	MergedFromIDs      []string         `json:"merged_from_ids,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// Clone returns a deep copy, safe to mutate independently of the original.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Aliases = append([]string(nil), p.Aliases...)
	cp.MergedFromIDs = append([]string(nil), p.MergedFromIDs...)
	return &cp
}

// PersonSummary is the trimmed view sent to the duplicate-review UI.
type PersonSummary struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Aliases            []string `json:"aliases"`
	RelationshipToUser string   `json:"relationship_to_user,omitempty"`
	ImportanceScore    float64  `json:"importance_score"`
}

func (p *Person) Summary() PersonSummary {
	return PersonSummary{
		ID:                 p.ID,
		Name:               p.Name,
		Aliases:            append([]string(nil), p.Aliases...),
		RelationshipToUser: p.RelationshipToUser,
		ImportanceScore:    p.ImportanceScore,
	}
}
