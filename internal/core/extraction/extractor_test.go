package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeloom/lineage/internal/core/model"
)

func extract(t *testing.T, response string) []model.Person {
	t.Helper()
	extractor := NewExtractor(&MockLLMClient{Response: response}, "")
	people, err := extractor.ExtractPeople(context.Background(), "project-1", "some narrative")
	require.NoError(t, err)
	return people
}

func TestExtractPeople_ParsesOracleOutput(t *testing.T) {
	people := extract(t, `{
		"people": [
			{"name": "刘雪丽", "aliases": ["雪丽"], "relationship": "mother", "description": "Taught school.", "confidence": 0.9, "mentions": 3},
			{"name": "王大伟", "aliases": [], "relationship": "", "description": "", "confidence": 0.6, "mentions": 1}
		],
		"places": [], "times": [], "events": []
	}`)

	require.Len(t, people, 2)
	first := people[0]
	assert.Equal(t, "刘雪丽", first.Name)
	assert.Equal(t, []string{"雪丽"}, first.Aliases)
	assert.Equal(t, "mother", first.RelationshipToUser)
	assert.Equal(t, "Taught school.", first.BioSnippet)
	assert.Equal(t, 0.9, first.ConfidenceScore)
	assert.Equal(t, 3.0, first.ImportanceScore)
	assert.Equal(t, model.StatusPending, first.ExtractionStatus)
	assert.Equal(t, "project-1", first.ProjectID)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestExtractPeople_ToleratesFencedJSON(t *testing.T) {
	people := extract(t, "Here is the result:\n```json\n{\"people\": [{\"name\": \"Ana\", \"aliases\": [], \"relationship\": \"\", \"description\": \"\", \"confidence\": 0.8, \"mentions\": 2}], \"places\": [], \"times\": [], \"events\": []}\n```\n")

	require.Len(t, people, 1)
	assert.Equal(t, "Ana", people[0].Name)
}

func TestExtractPeople_SkipsNamelessEntries(t *testing.T) {
	people := extract(t, `{
		"people": [
			{"name": "", "aliases": ["ghost"], "confidence": 0.9, "mentions": 2},
			{"name": "   ", "aliases": [], "confidence": 0.9, "mentions": 2},
			{"name": "Real Person", "aliases": [], "confidence": 0.9, "mentions": 2}
		]
	}`)

	require.Len(t, people, 1)
	assert.Equal(t, "Real Person", people[0].Name)
}

func TestExtractPeople_ClampsNumericFields(t *testing.T) {
	people := extract(t, `{
		"people": [
			{"name": "A", "aliases": [], "confidence": 1.7, "mentions": 0},
			{"name": "B", "aliases": [], "confidence": -0.3, "mentions": -5}
		]
	}`)

	require.Len(t, people, 2)
	assert.Equal(t, 1.0, people[0].ConfidenceScore)
	assert.Equal(t, 1.0, people[0].ImportanceScore)
	assert.Equal(t, 0.0, people[1].ConfidenceScore)
	assert.Equal(t, 1.0, people[1].ImportanceScore)
}

func TestExtractPeople_DedupsAliasesAgainstName(t *testing.T) {
	people := extract(t, `{
		"people": [
			{"name": "刘雪丽", "aliases": ["刘雪丽", "雪丽", "雪 丽", ""], "confidence": 0.9, "mentions": 2}
		]
	}`)

	require.Len(t, people, 1)
	// The name itself, whitespace variants of kept aliases and blanks all
	// collapse away.
	assert.Equal(t, []string{"雪丽"}, people[0].Aliases)
}

func TestExtractPeople_EmptyPeopleIsValid(t *testing.T) {
	people := extract(t, `{"people": [], "places": [], "times": [], "events": []}`)
	assert.Empty(t, people)
}

func TestExtractPeople_PropagatesOracleError(t *testing.T) {
	oracleErr := errors.New("rate limited")
	extractor := NewExtractor(&MockLLMClient{Err: oracleErr}, "")

	_, err := extractor.ExtractPeople(context.Background(), "project-1", "text")
	require.ErrorIs(t, err, oracleErr)
}

func TestExtractPeople_MalformedJSON(t *testing.T) {
	extractor := NewExtractor(&MockLLMClient{Response: "not json at all"}, "")

	_, err := extractor.ExtractPeople(context.Background(), "project-1", "text")
	require.Error(t, err)
}

func TestExtractPeople_ContentSubstitutedIntoPrompt(t *testing.T) {
	mock := &MockLLMClient{Response: `{"people": []}`}
	extractor := NewExtractor(mock, "")

	_, err := extractor.ExtractPeople(context.Background(), "project-1", "my grandmother 刘雪丽")
	require.NoError(t, err)
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "my grandmother 刘雪丽")
}
