package model

// MatchReason identifies which tier of the similarity cascade produced a score.
type MatchReason string

const (
	ReasonExactAlias        MatchReason = "exact_alias"
	ReasonAliasMatch        MatchReason = "alias_match"
	ReasonNameSimilar       MatchReason = "name_similar"
	ReasonAliasIntersection MatchReason = "alias_intersection"
	ReasonNoMatch           MatchReason = "no_match"
)

// SimilarityPair is an ephemeral pairwise match. By convention PersonAID
// precedes PersonBID in the input ordering, so each unordered pair appears
// exactly once.
type SimilarityPair struct {
	PersonAID string      `json:"person_a_id"`
	PersonBID string      `json:"person_b_id"`
	Score     float64     `json:"score"`
	Reason    MatchReason `json:"reason"`
}

// DuplicateGroup is a transitive closure of similarity pairs: two people
// belong to the same group iff connected through a chain of above-threshold
// pairs, even when the endpoints never scored against each other directly.
type DuplicateGroup struct {
	GroupID   string           `json:"group_id"`
	PersonIDs []string         `json:"person_ids"`
	Pairs     []SimilarityPair `json:"pairs"`
	Details   []PersonSummary  `json:"details"`
}

// DetectionResult is the payload handed to the review UI.
type DetectionResult struct {
	DuplicateGroups  []DuplicateGroup `json:"duplicate_groups"`
	TotalDuplicates  int              `json:"total_duplicates"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}
