package model

// PhotoAssociation links an uploaded photo to a person record.
type PhotoAssociation struct {
	ID       string `json:"id"`
	PersonID string `json:"person_id"`
	PhotoID  string `json:"photo_id"`
}

// EndpointRole names which side of a relationship row a person occupies.
type EndpointRole string

const (
	RoleFrom EndpointRole = "from"
	RoleTo   EndpointRole = "to"
)

// Relationship is a typed edge between two person records (parent_of,
// spouse_of, ...). Rows are re-pointed, never deleted, during merges.
type Relationship struct {
	ID           string `json:"id"`
	FromPersonID string `json:"from_person_id"`
	ToPersonID   string `json:"to_person_id"`
	RelationType string `json:"relation_type"`
}

// Endpoint returns the person id occupying the given role.
func (r *Relationship) Endpoint(role EndpointRole) string {
	if role == RoleFrom {
		return r.FromPersonID
	}
	return r.ToPersonID
}
