package dedupe

import (
	"fmt"

	"github.com/lifeloom/lineage/internal/core/model"
)

// BuildGroups assembles the review payload: each transitive group with the
// pairs that link it and a summary of every member.
func BuildGroups(people []model.Person, pairs []model.SimilarityPair) []model.DuplicateGroup {
	byID := make(map[string]*model.Person, len(people))
	for i := range people {
		byID[people[i].ID] = &people[i]
	}

	memberSets := GroupPairs(pairs)
	groups := make([]model.DuplicateGroup, 0, len(memberSets))

	for i, ids := range memberSets {
		inGroup := make(map[string]bool, len(ids))
		for _, id := range ids {
			inGroup[id] = true
		}

		var groupPairs []model.SimilarityPair
		for _, p := range pairs {
			if inGroup[p.PersonAID] && inGroup[p.PersonBID] {
				groupPairs = append(groupPairs, p)
			}
		}

		details := make([]model.PersonSummary, 0, len(ids))
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				details = append(details, p.Summary())
			}
		}

		groups = append(groups, model.DuplicateGroup{
			GroupID:   fmt.Sprintf("group-%d", i+1),
			PersonIDs: ids,
			Pairs:     groupPairs,
			Details:   details,
		})
	}
	return groups
}
