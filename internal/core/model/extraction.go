package model

// ExtractedPerson is the raw, untrusted shape returned by the extraction
// oracle for a single person mention. It is validated at the boundary
// before a Person record is constructed.
type ExtractedPerson struct {
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Relationship string   `json:"relationship,omitempty"`
	Description  string   `json:"description,omitempty"`
	Confidence   float64  `json:"confidence"`
	Mentions     int      `json:"mentions"`
}

// ExtractionPayload mirrors the oracle's full structured output. Places,
// times and events are extracted upstream as well but this core only
// consumes people.
type ExtractionPayload struct {
	People []ExtractedPerson `json:"people"`
	Places []string          `json:"places,omitempty"`
	Times  []string          `json:"times,omitempty"`
	Events []string          `json:"events,omitempty"`
}
