package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifeloom/lineage/internal/core/model"
)

func person(name string, aliases ...string) *model.Person {
	return &model.Person{ID: name, Name: name, Aliases: aliases}
}

func TestScore_ExactAlias(t *testing.T) {
	// Scenario: B's name matches one of A's aliases exactly.
	a := person("刘雪丽", "雪丽")
	b := person("刘雪丽")

	res := Score(a, b)
	assert.Equal(t, 0.95, res.Score)
	assert.Equal(t, model.ReasonExactAlias, res.Reason)
}

func TestScore_AliasContainment(t *testing.T) {
	// Scenario: B's name contains A's name with an honorific suffix.
	a := person("王大伟", "老王")
	b := person("王大伟先生")

	res := Score(a, b)
	assert.Equal(t, 0.88, res.Score)
	assert.Equal(t, model.ReasonAliasMatch, res.Reason)
}

func TestScore_ContainmentRequiresTwoRunes(t *testing.T) {
	// A single shared character must not fire the containment tier.
	a := person("王")
	b := person("王大伟")

	res := Score(a, b)
	assert.NotEqual(t, model.ReasonAliasMatch, res.Reason)
}

func TestScore_NameSimilar(t *testing.T) {
	a := person("Jonathan Smith")
	b := person("Jonathon Smith")

	res := Score(a, b)
	assert.Equal(t, model.ReasonNameSimilar, res.Reason)

	sim := editSimilarity(NormalizeAlias(a.Name), NormalizeAlias(b.Name))
	assert.Greater(t, sim, 0.80)
	assert.InDelta(t, sim*0.85, res.Score, 1e-9)
}

func TestScore_AliasIntersection(t *testing.T) {
	// Names differ too much, but each carries a near-identical alias.
	a := person("Margaret Chen", "Peggy")
	b := person("M. Chen-Rodriguez", "Pegy")

	res := Score(a, b)
	assert.Equal(t, model.ReasonAliasIntersection, res.Reason)
	assert.Equal(t, 0.75, res.Score)
}

func TestScore_NoMatch(t *testing.T) {
	a := person("张三")
	b := person("李四")

	res := Score(a, b)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, model.ReasonNoMatch, res.Reason)
}

func TestScore_TierPrecedence(t *testing.T) {
	// Identical names qualify for both the exact-alias tier and the
	// name-similarity tier; the stricter tier must win.
	a := person("Alice Smith")
	b := person("Alice Smith")

	res := Score(a, b)
	assert.Equal(t, model.ReasonExactAlias, res.Reason)
	assert.Equal(t, 0.95, res.Score)
}

func TestScore_Symmetric(t *testing.T) {
	pairs := [][2]*model.Person{
		{person("刘雪丽", "雪丽"), person("刘雪丽")},
		{person("王大伟", "老王"), person("王大伟先生")},
		{person("Jonathan Smith"), person("Jonathon Smith")},
		{person("张三"), person("李四")},
		{person("Margaret Chen", "Peggy"), person("M. Chen-Rodriguez", "Pegy")},
	}

	for _, pq := range pairs {
		ab := Score(pq[0], pq[1])
		ba := Score(pq[1], pq[0])
		assert.Equal(t, ab.Score, ba.Score, "%s vs %s", pq[0].Name, pq[1].Name)
		assert.Equal(t, ab.Reason, ba.Reason, "%s vs %s", pq[0].Name, pq[1].Name)
	}
}

func TestScore_NormalizedComparison(t *testing.T) {
	// Case and whitespace differences collapse before comparison.
	a := person("Alice Smith")
	b := person("alicesmith")

	res := Score(a, b)
	assert.Equal(t, model.ReasonExactAlias, res.Reason)
}
