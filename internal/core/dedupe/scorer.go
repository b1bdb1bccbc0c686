package dedupe

import (
	"strings"

	"github.com/lifeloom/lineage/internal/core/model"
)

// Cascade thresholds and tier scores. These are a compatibility contract:
// changing any of them changes which historical merges would have been
// suggested, so they must not drift between versions.
const (
	scoreExactAlias        = 0.95
	scoreAliasContainment  = 0.88
	nameSimilarityCutoff   = 0.80
	nameSimilarityWeight   = 0.85
	aliasSimilarityCutoff  = 0.75
	scoreAliasIntersection = 0.75
	minAliasLength         = 2
)

type SimilarityResult struct {
	Score  float64           `json:"score"`
	Reason model.MatchReason `json:"reason"`
}

// Score compares two person records through the four-tier cascade.
// Tiers are evaluated strictly in order and the first hit wins; the
// stricter tiers come first so a looser rule cannot shadow them.
// Symmetric: Score(a, b) == Score(b, a).
func Score(a, b *model.Person) SimilarityResult {
	aliasesA := aliasKeys(a)
	aliasesB := aliasKeys(b)

	// Tier 1: exact normalized alias equality.
	for _, ka := range aliasesA {
		for _, kb := range aliasesB {
			if ka == kb && ka != "" {
				return SimilarityResult{Score: scoreExactAlias, Reason: model.ReasonExactAlias}
			}
		}
	}

	// Tier 2: alias containment. Both sides must be at least two runes so a
	// single shared character cannot fire the tier.
	for _, ka := range aliasesA {
		for _, kb := range aliasesB {
			if runeLen(ka) < minAliasLength || runeLen(kb) < minAliasLength {
				continue
			}
			if strings.Contains(ka, kb) || strings.Contains(kb, ka) {
				return SimilarityResult{Score: scoreAliasContainment, Reason: model.ReasonAliasMatch}
			}
		}
	}

	// Tier 3: edit-distance similarity between the canonical names.
	nameSim := editSimilarity(NormalizeAlias(a.Name), NormalizeAlias(b.Name))
	if nameSim > nameSimilarityCutoff {
		return SimilarityResult{Score: nameSim * nameSimilarityWeight, Reason: model.ReasonNameSimilar}
	}

	// Tier 4: fuzzy intersection across the alias sets.
	for _, ka := range aliasesA {
		if runeLen(ka) < minAliasLength {
			continue
		}
		for _, kb := range aliasesB {
			if runeLen(kb) < minAliasLength {
				continue
			}
			if editSimilarity(ka, kb) > aliasSimilarityCutoff {
				return SimilarityResult{Score: scoreAliasIntersection, Reason: model.ReasonAliasIntersection}
			}
		}
	}

	return SimilarityResult{Score: 0, Reason: model.ReasonNoMatch}
}

// aliasKeys builds the normalized comparison universe for a person: the
// canonical name plus every alias, deduplicated, empty keys dropped.
func aliasKeys(p *model.Person) []string {
	seen := make(map[string]bool, len(p.Aliases)+1)
	keys := make([]string, 0, len(p.Aliases)+1)
	for _, raw := range append([]string{p.Name}, p.Aliases...) {
		k := NormalizeAlias(raw)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func runeLen(s string) int {
	return len([]rune(s))
}
