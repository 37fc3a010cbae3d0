package graph

import "sort"

// UnionFind is a disjoint-set forest over the dense vertex indices of a
// CouplingGraph, with path halving and union by size.
type UnionFind struct {
	parent []int
	size   []int
}

// NewUnionFind creates n singleton sets.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the representative of the set containing i.
func (uf *UnionFind) Find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// Union merges the sets containing a and b. Returns true if they were separate.
func (uf *UnionFind) Union(a, b int) bool {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return false
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return true
}

// Size returns the size of the set containing i.
func (uf *UnionFind) Size(i int) int {
	return uf.size[uf.Find(i)]
}

// Components returns the sets, each sorted, ordered by their smallest member.
func (uf *UnionFind) Components() [][]int {
	groups := make(map[int][]int)
	var roots []int
	for i := range uf.parent {
		r := uf.Find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], i)
	}
	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		members := groups[r]
		sort.Ints(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
