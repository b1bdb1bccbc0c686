package dedupe

import "github.com/lifeloom/lineage/internal/core/model"

// unionFind is a standard disjoint-set over person ids: find with path
// compression, union by rank.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
		u.rank[id] = 0
	}
}

func (u *unionFind) find(id string) string {
	if u.parent[id] != id {
		u.parent[id] = u.find(u.parent[id])
	}
	return u.parent[id]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// GroupPairs clusters pairwise matches into transitive equivalence classes.
// A chain A~B, B~C lands A and C in one group even if they never scored
// above threshold directly; that over-linking risk is accepted because the
// groups go to a human reviewer, not straight to a merge. Singleton
// components are dropped. Output order is deterministic: components appear
// in order of their first member's appearance in the pair list, members in
// appearance order.
func GroupPairs(pairs []model.SimilarityPair) [][]string {
	uf := newUnionFind()
	var order []string
	seen := make(map[string]bool)

	note := func(id string) {
		uf.add(id)
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	for _, p := range pairs {
		note(p.PersonAID)
		note(p.PersonBID)
		uf.union(p.PersonAID, p.PersonBID)
	}

	members := make(map[string][]string)
	var roots []string
	for _, id := range order {
		root := uf.find(id)
		if _, ok := members[root]; !ok {
			roots = append(roots, root)
		}
		members[root] = append(members[root], id)
	}

	var groups [][]string
	for _, root := range roots {
		if len(members[root]) >= 2 {
			groups = append(groups, members[root])
		}
	}
	return groups
}
