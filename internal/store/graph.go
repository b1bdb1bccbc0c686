package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lifeloom/lineage/internal/core/model"
)

// GraphStore keeps the person graph in a Neo4j-compatible database
// (Neo4j or Memgraph). People and merge logs are nodes; relationship rows
// are RELATES edges between Person nodes.
type GraphStore struct {
	driver neo4j.DriverWithContext
}

func OpenGraph(ctx context.Context, uri, username, password string) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}
	return &GraphStore{driver: driver}, nil
}

func (s *GraphStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *GraphStore) execute(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return result, nil
}

func personParams(p *model.Person) map[string]any {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return map[string]any{
		"id":                   p.ID,
		"project_id":           p.ProjectID,
		"name":                 p.Name,
		"aliases":              nonNil(p.Aliases),
		"relationship_to_user": p.RelationshipToUser,
		"bio_snippet":          p.BioSnippet,
		"importance_score":     p.ImportanceScore,
		"confidence_score":     p.ConfidenceScore,
		"extraction_status":    string(p.ExtractionStatus),
		"merged_from_id":       p.MergedFromID,
		"merged_from_ids":      nonNil(p.MergedFromIDs),
		"created_at":           createdAt.Format(time.RFC3339Nano),
	}
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func recordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func recordStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func recordPerson(rec *neo4j.Record) *model.Person {
	p := &model.Person{
		ID:                 recordString(rec, "id"),
		ProjectID:          recordString(rec, "project_id"),
		Name:               recordString(rec, "name"),
		Aliases:            recordStrings(rec, "aliases"),
		RelationshipToUser: recordString(rec, "relationship_to_user"),
		BioSnippet:         recordString(rec, "bio_snippet"),
		ImportanceScore:    recordFloat(rec, "importance_score"),
		ConfidenceScore:    recordFloat(rec, "confidence_score"),
		ExtractionStatus:   model.ExtractionStatus(recordString(rec, "extraction_status")),
		MergedFromID:       recordString(rec, "merged_from_id"),
		MergedFromIDs:      recordStrings(rec, "merged_from_ids"),
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, recordString(rec, "created_at"))
	return p
}

func (s *GraphStore) ListPeople(ctx context.Context, projectID string, excludeStatus ...model.ExtractionStatus) ([]model.Person, error) {
	excluded := make([]string, 0, len(excludeStatus))
	for _, st := range excludeStatus {
		excluded = append(excluded, string(st))
	}
	result, err := s.execute(ctx, listPeopleQuery, map[string]any{
		"project_id": projectID,
		"excluded":   excluded,
	})
	if err != nil {
		return nil, err
	}
	var out []model.Person
	for _, rec := range result.Records {
		out = append(out, *recordPerson(rec))
	}
	return out, nil
}

func (s *GraphStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	result, err := s.execute(ctx, getPersonQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, model.NewNotFoundError("person", id)
	}
	return recordPerson(result.Records[0]), nil
}

func (s *GraphStore) InsertPerson(ctx context.Context, p *model.Person) error {
	_, err := s.execute(ctx, savePersonQuery, personParams(p))
	return err
}

func (s *GraphStore) UpdatePerson(ctx context.Context, id string, patch PersonPatch) error {
	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	ApplyPatch(p, patch)
	return s.InsertPerson(ctx, p)
}

func (s *GraphStore) ListPhotoAssociations(ctx context.Context, personID string) ([]model.PhotoAssociation, error) {
	result, err := s.execute(ctx, listPhotoAssociationsQuery, map[string]any{"person_id": personID})
	if err != nil {
		return nil, err
	}
	var out []model.PhotoAssociation
	for _, rec := range result.Records {
		out = append(out, model.PhotoAssociation{
			ID:       recordString(rec, "id"),
			PersonID: recordString(rec, "person_id"),
			PhotoID:  recordString(rec, "photo_id"),
		})
	}
	return out, nil
}

func (s *GraphStore) ReassignPhotoAssociation(ctx context.Context, id, newPersonID string) error {
	result, err := s.execute(ctx, reassignPhotoAssociationQuery, map[string]any{
		"id":            id,
		"new_person_id": newPersonID,
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return model.NewNotFoundError("photo association", id)
	}
	return nil
}

func recordRelationship(rec *neo4j.Record) model.Relationship {
	return model.Relationship{
		ID:           recordString(rec, "id"),
		FromPersonID: recordString(rec, "from_person_id"),
		ToPersonID:   recordString(rec, "to_person_id"),
		RelationType: recordString(rec, "relation_type"),
	}
}

func (s *GraphStore) ListRelationships(ctx context.Context, personID string) ([]model.Relationship, error) {
	result, err := s.execute(ctx, listRelationshipsQuery, map[string]any{"person_id": personID})
	if err != nil {
		return nil, err
	}
	var out []model.Relationship
	for _, rec := range result.Records {
		out = append(out, recordRelationship(rec))
	}
	return out, nil
}

func (s *GraphStore) GetRelationship(ctx context.Context, id string) (*model.Relationship, error) {
	result, err := s.execute(ctx, getRelationshipQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, model.NewNotFoundError("relationship", id)
	}
	r := recordRelationship(result.Records[0])
	return &r, nil
}

func (s *GraphStore) ReassignRelationshipEndpoint(ctx context.Context, id string, role model.EndpointRole, newPersonID string) error {
	query := reassignRelationshipToQuery
	if role == model.RoleFrom {
		query = reassignRelationshipFromQuery
	}
	result, err := s.execute(ctx, query, map[string]any{
		"id":            id,
		"new_person_id": newPersonID,
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return model.NewNotFoundError("relationship", id)
	}
	return nil
}

func (s *GraphStore) InsertMergeLog(ctx context.Context, log *model.MergeLog) error {
	rollbackJSON, err := json.Marshal(log.Rollback)
	if err != nil {
		return fmt.Errorf("encode rollback data: %w", err)
	}
	_, err = s.execute(ctx, saveMergeLogQuery, map[string]any{
		"id":                  log.ID,
		"project_id":          log.ProjectID,
		"primary_person_id":   log.PrimaryPersonID,
		"secondary_person_id": log.SecondaryPersonID,
		"strategy":            string(log.Strategy),
		"rollback_json":       string(rollbackJSON),
		"status":              string(log.Status),
		"created_at":          log.CreatedAt.Format(time.RFC3339Nano),
	})
	return err
}

func (s *GraphStore) GetMergeLog(ctx context.Context, id string) (*model.MergeLog, error) {
	result, err := s.execute(ctx, getMergeLogQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, model.NewNotFoundError("merge log", id)
	}
	rec := result.Records[0]
	l := &model.MergeLog{
		ID:                recordString(rec, "id"),
		ProjectID:         recordString(rec, "project_id"),
		PrimaryPersonID:   recordString(rec, "primary_person_id"),
		SecondaryPersonID: recordString(rec, "secondary_person_id"),
		Strategy:          model.MergeStrategy(recordString(rec, "strategy")),
		Status:            model.MergeLogStatus(recordString(rec, "status")),
	}
	if err := json.Unmarshal([]byte(recordString(rec, "rollback_json")), &l.Rollback); err != nil {
		return nil, fmt.Errorf("decode rollback data: %w", err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, recordString(rec, "created_at"))
	return l, nil
}

func (s *GraphStore) UpdateMergeLogStatus(ctx context.Context, id string, status model.MergeLogStatus) error {
	result, err := s.execute(ctx, updateMergeLogStatusQuery, map[string]any{
		"id":     id,
		"status": string(status),
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return model.NewNotFoundError("merge log", id)
	}
	return nil
}

// AddPhotoAssociation and AddRelationship seed association rows; see the
// note on the SQLite equivalents.

func (s *GraphStore) AddPhotoAssociation(ctx context.Context, a model.PhotoAssociation) error {
	_, err := s.execute(ctx, savePhotoAssociationQuery, map[string]any{
		"id":        a.ID,
		"person_id": a.PersonID,
		"photo_id":  a.PhotoID,
	})
	return err
}

func (s *GraphStore) AddRelationship(ctx context.Context, r model.Relationship) error {
	result, err := s.execute(ctx, saveRelationshipQuery, map[string]any{
		"id":             r.ID,
		"from_person_id": r.FromPersonID,
		"to_person_id":   r.ToPersonID,
		"relation_type":  r.RelationType,
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return model.NewNotFoundError("person", r.FromPersonID+" or "+r.ToPersonID)
	}
	return nil
}

// BuildIndices creates lookup indices; failures are non-fatal since the
// index may already exist.
func (s *GraphStore) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Person(id);",
		"CREATE INDEX ON :Person(project_id);",
		"CREATE INDEX ON :PhotoAssociation(id);",
		"CREATE INDEX ON :PhotoAssociation(person_id);",
		"CREATE INDEX ON :MergeLog(id);",
	}
	for _, q := range queries {
		if _, err := s.execute(ctx, q, nil); err != nil {
			continue
		}
	}
	return nil
}
