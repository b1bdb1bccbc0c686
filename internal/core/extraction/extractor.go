package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifeloom/lineage/internal/core/common"
	"github.com/lifeloom/lineage/internal/core/dedupe"
	"github.com/lifeloom/lineage/internal/core/model"
	"github.com/lifeloom/lineage/internal/llm"
)

const defaultPeoplePrompt = `You are extracting structured facts from a biography interview transcript.

<TEXT>
%s
</TEXT>

Instructions:
List every distinct person mentioned in the text. Return a JSON object with
keys "people", "places", "times" and "events". Each entry of "people" must
have "name" (string), "aliases" (list of alternate names/nicknames used in
the text), "relationship" (their relation to the narrator, or empty),
"description" (one sentence, or empty), "confidence" (float 0..1) and
"mentions" (how many times they are referred to).

Example JSON:
{
  "people": [
    {"name": "刘雪丽", "aliases": ["雪丽"], "relationship": "mother", "description": "", "confidence": 0.9, "mentions": 3}
  ],
  "places": [], "times": [], "events": []
}
`

// Extractor is the boundary to the entity-extraction oracle. Oracle output
// is untrusted and is validated field by field before any Person record is
// constructed; no optional field may leak downstream as an implicit zero.
type Extractor struct {
	LLM    llm.LLMClient
	Prompt string
}

func NewExtractor(llmClient llm.LLMClient, promptOverride string) *Extractor {
	prompt := promptOverride
	if prompt == "" {
		prompt = defaultPeoplePrompt
	}
	return &Extractor{
		LLM:    llmClient,
		Prompt: prompt,
	}
}

// ExtractPeople runs one block of narrative text through the oracle and
// returns validated, ready-to-store Person records. An oracle response with
// no people is a valid empty result, not an error.
func (e *Extractor) ExtractPeople(ctx context.Context, projectID, content string) ([]model.Person, error) {
	prompt := fmt.Sprintf(e.Prompt, content)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate extraction: %w", err)
	}

	payload, err := common.ParseJSON[model.ExtractionPayload](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}

	now := time.Now().UTC()
	people := make([]model.Person, 0, len(payload.People))
	for _, raw := range payload.People {
		p, ok := validate(raw)
		if !ok {
			continue
		}
		p.ID = uuid.New().String()
		p.ProjectID = projectID
		p.CreatedAt = now
		people = append(people, *p)
	}
	return people, nil
}

// validate converts one raw oracle entry into a Person, rejecting entries
// without a usable name and clamping out-of-range numeric fields.
func validate(raw model.ExtractedPerson) (*model.Person, bool) {
	if dedupe.NormalizeAlias(raw.Name) == "" {
		return nil, false
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	mentions := raw.Mentions
	if mentions < 1 {
		mentions = 1
	}

	seen := map[string]bool{dedupe.NormalizeAlias(raw.Name): true}
	aliases := make([]string, 0, len(raw.Aliases))
	for _, a := range raw.Aliases {
		k := dedupe.NormalizeAlias(a)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		aliases = append(aliases, a)
	}

	return &model.Person{
		Name:               raw.Name,
		Aliases:            aliases,
		RelationshipToUser: raw.Relationship,
		BioSnippet:         raw.Description,
		ImportanceScore:    float64(mentions),
		ConfidenceScore:    confidence,
		ExtractionStatus:   model.StatusPending,
	}, true
}
