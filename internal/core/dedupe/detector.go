package dedupe

import (
	"sort"

	"github.com/lifeloom/lineage/internal/core/model"
)

// DefaultThreshold is the minimum score for a pair to be surfaced for review.
const DefaultThreshold = 0.7

// DetectPairs scores every unordered pair (i < j) of non-merged people and
// keeps those at or above threshold. Already-absorbed records (status
// merged) are treated as nonexistent. O(n²) over one project's social
// graph, which stays small. The result is sorted descending by score with
// a stable sort, so ties keep their generation order and runs are
// reproducible for identical input ordering.
func DetectPairs(people []model.Person, threshold float64) []model.SimilarityPair {
	candidates := make([]*model.Person, 0, len(people))
	for i := range people {
		if people[i].ExtractionStatus == model.StatusMerged {
			continue
		}
		candidates = append(candidates, &people[i])
	}

	var pairs []model.SimilarityPair
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			res := Score(candidates[i], candidates[j])
			if res.Score >= threshold {
				pairs = append(pairs, model.SimilarityPair{
					PersonAID: candidates[i].ID,
					PersonBID: candidates[j].ID,
					Score:     res.Score,
					Reason:    res.Reason,
				})
			}
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Score > pairs[b].Score
	})
	return pairs
}
