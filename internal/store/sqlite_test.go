package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeloom/lineage/internal/core/model"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "lineage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestSQLiteStore_PersonRoundTrip(t *testing.T) {
	st := openTestDB(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	p := model.Person{
		ID:                 "a",
		ProjectID:          "p1",
		Name:               "刘雪丽",
		Aliases:            []string{"雪丽", "丽丽"},
		RelationshipToUser: "grandmother",
		BioSnippet:         "Retired teacher.",
		ImportanceScore:    4,
		ConfidenceScore:    0.9,
		ExtractionStatus:   model.StatusConfirmed,
		MergedFromIDs:      []string{"b"},
		CreatedAt:          created,
	}
	require.NoError(t, st.InsertPerson(ctx, &p))

	got, err := st.GetPerson(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Aliases, got.Aliases)
	assert.Equal(t, p.RelationshipToUser, got.RelationshipToUser)
	assert.Equal(t, p.ImportanceScore, got.ImportanceScore)
	assert.Equal(t, p.ExtractionStatus, got.ExtractionStatus)
	assert.Equal(t, p.MergedFromIDs, got.MergedFromIDs)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestSQLiteStore_ListPeopleExcludesStatus(t *testing.T) {
	st := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "a", ProjectID: "p1", Name: "A", ExtractionStatus: model.StatusConfirmed}))
	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "b", ProjectID: "p1", Name: "B", ExtractionStatus: model.StatusMerged}))

	active, err := st.ListPeople(ctx, "p1", model.StatusMerged)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
}

func TestSQLiteStore_UpdatePersonPatch(t *testing.T) {
	st := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, st.InsertPerson(ctx, &model.Person{ID: "a", ProjectID: "p1", Name: "A", ImportanceScore: 2}))

	err := st.UpdatePerson(ctx, "a", PersonPatch{
		Aliases:         Strings([]string{"Ace"}),
		ImportanceScore: Float(5),
	})
	require.NoError(t, err)

	got, err := st.GetPerson(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ace"}, got.Aliases)
	assert.Equal(t, 5.0, got.ImportanceScore)
	assert.Equal(t, "A", got.Name)

	err = st.UpdatePerson(ctx, "ghost", PersonPatch{Name: String("X")})
	var notFoundErr *model.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestSQLiteStore_AssociationReassignment(t *testing.T) {
	st := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, st.AddPhotoAssociation(ctx, model.PhotoAssociation{ID: "ph1", PersonID: "b", PhotoID: "photo-1"}))
	require.NoError(t, st.AddRelationship(ctx, model.Relationship{ID: "r1", FromPersonID: "b", ToPersonID: "c", RelationType: "parent_of"}))

	require.NoError(t, st.ReassignPhotoAssociation(ctx, "ph1", "a"))
	photos, err := st.ListPhotoAssociations(ctx, "a")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "photo-1", photos[0].PhotoID)

	require.NoError(t, st.ReassignRelationshipEndpoint(ctx, "r1", model.RoleFrom, "a"))
	rel, err := st.GetRelationship(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "a", rel.FromPersonID)
	assert.Equal(t, "c", rel.ToPersonID)

	err = st.ReassignPhotoAssociation(ctx, "ghost", "a")
	var notFoundErr *model.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestSQLiteStore_MergeLogRoundTrip(t *testing.T) {
	st := openTestDB(t)
	ctx := context.Background()

	log := &model.MergeLog{
		ID:                "log-1",
		ProjectID:         "p1",
		PrimaryPersonID:   "a",
		SecondaryPersonID: "b",
		Strategy:          model.StrategyKeepPrimary,
		Status:            model.MergeLogActive,
		CreatedAt:         time.Now().UTC(),
		Rollback: model.RollbackData{
			Person:              &model.Person{ID: "b", Name: "B", Aliases: []string{"Bee"}, ImportanceScore: 2},
			PhotoAssociationIDs: []string{"ph1"},
			Relationships: []model.RelationshipSnapshot{
				{RelationshipID: "r1", Role: model.RoleFrom, OriginalPersonID: "b"},
			},
			PrimaryAliases: []string{"Ace"},
		},
	}
	require.NoError(t, st.InsertMergeLog(ctx, log))

	got, err := st.GetMergeLog(ctx, "log-1")
	require.NoError(t, err)
	assert.Equal(t, model.MergeLogActive, got.Status)
	require.NotNil(t, got.Rollback.Person)
	assert.Equal(t, "B", got.Rollback.Person.Name)
	assert.Equal(t, []string{"ph1"}, got.Rollback.PhotoAssociationIDs)
	require.Len(t, got.Rollback.Relationships, 1)
	assert.Equal(t, model.RoleFrom, got.Rollback.Relationships[0].Role)
	assert.Equal(t, []string{"Ace"}, got.Rollback.PrimaryAliases)

	require.NoError(t, st.UpdateMergeLogStatus(ctx, "log-1", model.MergeLogUndone))
	got, err = st.GetMergeLog(ctx, "log-1")
	require.NoError(t, err)
	assert.Equal(t, model.MergeLogUndone, got.Status)

	_, err = st.GetMergeLog(ctx, "ghost")
	var notFoundErr *model.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
