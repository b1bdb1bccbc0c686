package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeloom/lineage/internal/core/model"
)

func TestMemoryStore_ListPeopleFiltersProjectAndStatus(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "a", ProjectID: "p1", Name: "A", ExtractionStatus: model.StatusConfirmed}))
	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "b", ProjectID: "p1", Name: "B", ExtractionStatus: model.StatusMerged}))
	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "c", ProjectID: "p2", Name: "C", ExtractionStatus: model.StatusConfirmed}))

	all, err := st.ListPeople(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := st.ListPeople(ctx, "p1", model.StatusMerged)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
}

func TestMemoryStore_ListPeoplePreservesInsertOrder(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"z", "m", "a"} {
		require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: id, ProjectID: "p1", Name: id}))
	}

	people, err := st.ListPeople(ctx, "p1")
	require.NoError(t, err)
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"z", "m", "a"}, ids)
}

func TestMemoryStore_GetPersonReturnsCopy(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "a", ProjectID: "p1", Name: "A", Aliases: []string{"Ace"}}))

	got, err := st.GetPerson(ctx, "a")
	require.NoError(t, err)
	got.Aliases[0] = "mutated"
	got.Name = "mutated"

	again, err := st.GetPerson(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, []string{"Ace"}, again.Aliases)
}

func TestMemoryStore_UpdatePersonAppliesOnlySetFields(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "a", ProjectID: "p1", Name: "A", ImportanceScore: 3, ExtractionStatus: model.StatusPending}))

	err := st.UpdatePerson(ctx, "a", PersonPatch{ImportanceScore: Float(7)})
	require.NoError(t, err)

	p, err := st.GetPerson(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 7.0, p.ImportanceScore)
	// Unset patch fields leave the record untouched.
	assert.Equal(t, "A", p.Name)
	assert.Equal(t, model.StatusPending, p.ExtractionStatus)
}

func TestMemoryStore_UpdateUnknownPerson(t *testing.T) {
	st := NewMemoryStore()

	err := st.UpdatePerson(context.Background(), "ghost", PersonPatch{Name: String("X")})
	var notFoundErr *model.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestMemoryStore_MergeLogRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	log := &model.MergeLog{
		ID:                "log-1",
		ProjectID:         "p1",
		PrimaryPersonID:   "a",
		SecondaryPersonID: "b",
		Strategy:          model.StrategyKeepPrimary,
		Status:            model.MergeLogActive,
		Rollback: model.RollbackData{
			Person:              &model.Person{ID: "b", Name: "B", Aliases: []string{"Bee"}},
			PhotoAssociationIDs: []string{"ph1"},
			Relationships: []model.RelationshipSnapshot{
				{RelationshipID: "r1", Role: model.RoleFrom, OriginalPersonID: "b"},
			},
			PrimaryAliases: []string{"Ace"},
		},
	}
	require.NoError(t, st.InsertMergeLog(ctx, log))

	// Mutating the caller's copy must not affect the stored log.
	log.Rollback.Person.Name = "mutated"
	log.Rollback.PrimaryAliases[0] = "mutated"

	got, err := st.GetMergeLog(ctx, "log-1")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Rollback.Person.Name)
	assert.Equal(t, []string{"Ace"}, got.Rollback.PrimaryAliases)
	assert.Equal(t, model.MergeLogActive, got.Status)

	require.NoError(t, st.UpdateMergeLogStatus(ctx, "log-1", model.MergeLogUndone))
	got, err = st.GetMergeLog(ctx, "log-1")
	require.NoError(t, err)
	assert.Equal(t, model.MergeLogUndone, got.Status)
}

func TestMemoryStore_RelationshipsByEitherEndpoint(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	st.AddRelationship(model.Relationship{ID: "r1", FromPersonID: "a", ToPersonID: "b", RelationType: "parent_of"})
	st.AddRelationship(model.Relationship{ID: "r2", FromPersonID: "c", ToPersonID: "a", RelationType: "spouse_of"})
	st.AddRelationship(model.Relationship{ID: "r3", FromPersonID: "c", ToPersonID: "d", RelationType: "sibling_of"})

	rels, err := st.ListRelationships(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "r1", rels[0].ID)
	assert.Equal(t, "r2", rels[1].ID)

	require.NoError(t, st.ReassignRelationshipEndpoint(ctx, "r2", model.RoleTo, "x"))
	r2, err := st.GetRelationship(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "x", r2.ToPersonID)
}
