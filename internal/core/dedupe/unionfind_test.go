package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeloom/lineage/internal/core/model"
)

func pair(a, b string) model.SimilarityPair {
	return model.SimilarityPair{PersonAID: a, PersonBID: b, Score: 0.9, Reason: model.ReasonExactAlias}
}

func TestGroupPairs_Transitive(t *testing.T) {
	// A~B and B~C only: A and C were never directly compared, but the
	// chain places all three in one group.
	groups := GroupPairs([]model.SimilarityPair{pair("A", "B"), pair("B", "C")})

	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, groups[0])
}

func TestGroupPairs_MultipleComponents(t *testing.T) {
	groups := GroupPairs([]model.SimilarityPair{
		pair("A", "B"),
		pair("C", "D"),
		pair("B", "E"),
	})

	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []string{"A", "B", "E"}, groups[0])
	assert.ElementsMatch(t, []string{"C", "D"}, groups[1])
}

func TestGroupPairs_Deterministic(t *testing.T) {
	pairs := []model.SimilarityPair{pair("X", "Y"), pair("A", "B"), pair("Y", "Z")}

	first := GroupPairs(pairs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GroupPairs(pairs))
	}
	// Components appear in first-seen order, members in appearance order.
	require.Len(t, first, 2)
	assert.Equal(t, []string{"X", "Y", "Z"}, first[0])
	assert.Equal(t, []string{"A", "B"}, first[1])
}

func TestGroupPairs_Empty(t *testing.T) {
	assert.Empty(t, GroupPairs(nil))
}

func TestBuildGroups(t *testing.T) {
	a := person("刘雪丽", "雪丽")
	b := person("刘雪丽")
	c := person("李四")
	a.ID, b.ID, c.ID = "a", "b", "c"
	a.ImportanceScore = 3

	ppl := people(a, b, c)
	pairs := DetectPairs(ppl, 0.7)
	groups := BuildGroups(ppl, pairs)

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "group-1", g.GroupID)
	assert.ElementsMatch(t, []string{"a", "b"}, g.PersonIDs)
	require.Len(t, g.Pairs, 1)
	assert.Equal(t, model.ReasonExactAlias, g.Pairs[0].Reason)
	require.Len(t, g.Details, 2)
	assert.Equal(t, "刘雪丽", g.Details[0].Name)
	assert.Equal(t, 3.0, g.Details[0].ImportanceScore)
}

func TestBuildGroups_SingletonNeverAppears(t *testing.T) {
	// A person with no similarity pairs must not show up in any group.
	a := person("刘雪丽", "雪丽")
	b := person("刘雪丽")
	loner := person("李四")
	a.ID, b.ID, loner.ID = "a", "b", "loner"

	ppl := people(a, b, loner)
	groups := BuildGroups(ppl, DetectPairs(ppl, 0.7))

	for _, g := range groups {
		assert.NotContains(t, g.PersonIDs, "loner")
		assert.GreaterOrEqual(t, len(g.PersonIDs), 2)
	}
}
