package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lifeloom/lineage/internal/core/model"
)

// MemoryStore is a map-backed RecordStore used in tests and as the default
// development backend. All records are deep-copied on the way in and out so
// callers can never alias internal state.
type MemoryStore struct {
	mu            sync.RWMutex
	people        map[string]*model.Person
	photos        map[string]*model.PhotoAssociation
	relationships map[string]*model.Relationship
	mergeLogs     map[string]*model.MergeLog

	insertOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		people:        make(map[string]*model.Person),
		photos:        make(map[string]*model.PhotoAssociation),
		relationships: make(map[string]*model.Relationship),
		mergeLogs:     make(map[string]*model.MergeLog),
	}
}

func (s *MemoryStore) ListPeople(ctx context.Context, projectID string, excludeStatus ...model.ExtractionStatus) ([]model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[model.ExtractionStatus]bool, len(excludeStatus))
	for _, st := range excludeStatus {
		excluded[st] = true
	}

	var out []model.Person
	for _, id := range s.insertOrder {
		p, ok := s.people[id]
		if !ok || p.ProjectID != projectID || excluded[p.ExtractionStatus] {
			continue
		}
		out = append(out, *p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	if !ok {
		return nil, model.NewNotFoundError("person", id)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) InsertPerson(ctx context.Context, p *model.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.people[p.ID]; !exists {
		s.insertOrder = append(s.insertOrder, p.ID)
	}
	s.people[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) UpdatePerson(ctx context.Context, id string, patch PersonPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return model.NewNotFoundError("person", id)
	}
	ApplyPatch(p, patch)
	return nil
}

func (s *MemoryStore) ListPhotoAssociations(ctx context.Context, personID string) ([]model.PhotoAssociation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PhotoAssociation
	for _, a := range s.photos {
		if a.PersonID == personID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ReassignPhotoAssociation(ctx context.Context, id, newPersonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.photos[id]
	if !ok {
		return model.NewNotFoundError("photo association", id)
	}
	a.PersonID = newPersonID
	return nil
}

func (s *MemoryStore) ListRelationships(ctx context.Context, personID string) ([]model.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Relationship
	for _, r := range s.relationships {
		if r.FromPersonID == personID || r.ToPersonID == personID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetRelationship(ctx context.Context, id string) (*model.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.relationships[id]
	if !ok {
		return nil, model.NewNotFoundError("relationship", id)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ReassignRelationshipEndpoint(ctx context.Context, id string, role model.EndpointRole, newPersonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.relationships[id]
	if !ok {
		return model.NewNotFoundError("relationship", id)
	}
	if role == model.RoleFrom {
		r.FromPersonID = newPersonID
	} else {
		r.ToPersonID = newPersonID
	}
	return nil
}

func (s *MemoryStore) InsertMergeLog(ctx context.Context, log *model.MergeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	cp.Rollback.Person = log.Rollback.Person.Clone()
	cp.Rollback.PhotoAssociationIDs = append([]string(nil), log.Rollback.PhotoAssociationIDs...)
	cp.Rollback.Relationships = append([]model.RelationshipSnapshot(nil), log.Rollback.Relationships...)
	cp.Rollback.PrimaryAliases = append([]string(nil), log.Rollback.PrimaryAliases...)
	s.mergeLogs[log.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMergeLog(ctx context.Context, id string) (*model.MergeLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.mergeLogs[id]
	if !ok {
		return nil, model.NewNotFoundError("merge log", id)
	}
	cp := *l
	cp.Rollback.Person = l.Rollback.Person.Clone()
	cp.Rollback.PhotoAssociationIDs = append([]string(nil), l.Rollback.PhotoAssociationIDs...)
	cp.Rollback.Relationships = append([]model.RelationshipSnapshot(nil), l.Rollback.Relationships...)
	cp.Rollback.PrimaryAliases = append([]string(nil), l.Rollback.PrimaryAliases...)
	return &cp, nil
}

func (s *MemoryStore) UpdateMergeLogStatus(ctx context.Context, id string, status model.MergeLogStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.mergeLogs[id]
	if !ok {
		return model.NewNotFoundError("merge log", id)
	}
	l.Status = status
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Seed helpers for tests. Photos and relationships are created by the
// surrounding application, not by this core, so they are not part of the
// RecordStore contract.

func (s *MemoryStore) AddPhotoAssociation(a model.PhotoAssociation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a
	s.photos[a.ID] = &cp
}

func (s *MemoryStore) AddRelationship(r model.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := r
	s.relationships[r.ID] = &cp
}
