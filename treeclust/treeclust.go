// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package treeclust partitions the terminals
// of a phylogenetic tree
// into clusters,
// using a pairwise distance matrix
// and the topology of the tree:
// only groups that are neighbors in the tree
// can be merged,
// so clusters tend to be monophyletic.
package treeclust

import (
	"errors"
	"fmt"
	"slices"

	"github.com/js-arias/phyclust/dmatrix"
	"github.com/js-arias/phyclust/tree"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned
// when there are less than two strains to cluster.
var ErrInsufficientData = errors.New("insufficient data: at least 2 strains required")

// Linkage is the function used to score
// a candidate group of strains
// from its pairwise distances.
type Linkage int

// Valid linkage rules.
const (
	// Maximum pairwise distance within the group
	// (complete linkage).
	Max Linkage = iota

	// Sum of the pairwise distances within the group.
	Sum

	// Mean of the pairwise distances within the group.
	Avg
)

// ParseLinkage returns a linkage rule
// from a string.
func ParseLinkage(s string) (Linkage, error) {
	switch s {
	case "max":
		return Max, nil
	case "sum":
		return Sum, nil
	case "avg":
		return Avg, nil
	}
	return 0, fmt.Errorf("invalid linkage %q", s)
}

func (l Linkage) String() string {
	switch l {
	case Max:
		return "max"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	}
	return "unknown"
}

// score returns the linkage value
// of a group with the given number of strains,
// internal distance sum,
// and internal distance maximum.
func (l Linkage) score(size int, sum, max float64) float64 {
	switch l {
	case Max:
		return max
	case Sum:
		return sum
	case Avg:
		pairs := size * (size - 1) / 2
		if pairs == 0 {
			return 0
		}
		return sum / float64(pairs)
	}
	return 0
}

// A Clusterer partitions the strains
// of a distance matrix
// into groups guided by a tree.
type Clusterer struct {
	t    *tree.Tree
	m    *dmatrix.Matrix
	link Linkage

	// number of matrix strains
	// on the subtree of each tree node
	leaves []int

	// tree node of each matrix strain,
	// -1 if the strain is not in the tree
	nodes []int
}

// New creates a new clusterer
// for a distance matrix
// and a guide tree.
// Strains of the matrix
// that are not terminals of the tree
// are attached to the root,
// so they will join a cluster
// only at the latest merges.
func New(t *tree.Tree, m *dmatrix.Matrix, link Linkage) (*Clusterer, error) {
	if m.Len() < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, m.Len())
	}

	c := &Clusterer{
		t:      t,
		m:      m,
		link:   link,
		leaves: make([]int, t.Len()),
		nodes:  make([]int, m.Len()),
	}
	for i, tax := range m.Taxa() {
		c.nodes[i] = -1
		if !t.HasTerm(tax) {
			continue
		}
		id, _ := t.TermNode(tax)
		c.nodes[i] = id
		for ; id >= 0; id = t.Parent(id) {
			c.leaves[id]++
		}
	}
	return c, nil
}

// A group is a partial cluster
// during the agglomeration.
type group struct {
	// at is the tree node under which
	// the group is currently merging;
	// -1 when the group covers the whole tree
	at int

	// strains in the group,
	// as matrix indices,
	// sorted
	members []int

	// internal pairwise distance sum and maximum
	sum, max float64
}

// CutK returns a partition of the strains
// into exactly k clusters.
// Labels are integers in [0, k),
// numbered by first appearance
// in matrix order.
func (c *Clusterer) CutK(k int) ([]int, error) {
	n := c.m.Len()
	if k < 1 || k > n {
		return nil, fmt.Errorf("invalid cluster number %d: must be in [1, %d]", k, n)
	}

	groups := c.initGroups()
	for len(groups) > k {
		i, j, _ := c.bestMerge(groups)
		groups = c.merge(groups, i, j)
	}
	return c.labels(groups), nil
}

// CutThreshold returns a partition of the strains
// merging groups while the linkage value
// of the merged group
// does not exceed the threshold.
// If every merge exceeds the threshold
// each strain is its own cluster;
// if no merge does,
// all strains end in a single cluster.
func (c *Clusterer) CutThreshold(t float64) []int {
	groups := c.initGroups()
	for len(groups) > 1 {
		i, j, v := c.bestMerge(groups)
		if v > t {
			break
		}
		groups = c.merge(groups, i, j)
	}
	return c.labels(groups)
}

// AutoThreshold returns a clustering threshold
// from the empirical distribution
// of the distances in the matrix:
// the 90th percentile
// of the off-diagonal distances.
// The threshold is always positive:
// if the percentile is zero
// it falls back to the maximum distance,
// and to one
// if all distances are zero.
func (c *Clusterer) AutoThreshold() float64 {
	ds := c.m.OffDiag()
	slices.Sort(ds)
	t := stat.Quantile(0.90, stat.Empirical, ds, nil)
	if t > 0 {
		return t
	}
	if max := c.m.Max(); max > 0 {
		return max
	}
	return 1
}

// initGroups creates the starting singleton groups.
func (c *Clusterer) initGroups() []*group {
	groups := make([]*group, 0, c.m.Len())
	for i := 0; i < c.m.Len(); i++ {
		g := &group{
			at:      c.nodes[i],
			members: []int{i},
		}
		if g.at < 0 {
			// not in the tree
			g.at = c.t.Root()
		} else {
			g.at = c.climb(g.at, 1)
		}
		groups = append(groups, g)
	}
	return groups
}

// climb moves a group host node up the tree
// while the group covers
// every matrix strain of the host subtree.
// Groups never move above the root,
// so strains outside the tree
// can always join at the root.
func (c *Clusterer) climb(at, size int) int {
	for at != c.t.Root() && size == c.leaves[at] {
		at = c.t.Parent(at)
	}
	return at
}

// bestMerge returns the pair of groups
// with the smallest linkage value
// for the merged group,
// among the pairs that share a host node.
// Ties are broken by a fixed iteration order,
// so the clustering is deterministic.
func (c *Clusterer) bestMerge(groups []*group) (gi, gj int, val float64) {
	gi, gj = -1, -1
	for i := 1; i < len(groups); i++ {
		for j := 0; j < i; j++ {
			if groups[i].at != groups[j].at {
				continue
			}
			v := c.mergeScore(groups[i], groups[j])
			if gi < 0 || v < val {
				gi, gj, val = j, i, v
			}
		}
	}
	return gi, gj, val
}

// mergeScore returns the linkage value
// of the union of two groups.
func (c *Clusterer) mergeScore(a, b *group) float64 {
	sum, max := c.cross(a, b)
	sum += a.sum + b.sum
	if a.max > max {
		max = a.max
	}
	if b.max > max {
		max = b.max
	}
	return c.link.score(len(a.members)+len(b.members), sum, max)
}

// cross returns the sum and maximum
// of the distances between the members
// of two groups.
func (c *Clusterer) cross(a, b *group) (sum, max float64) {
	for _, i := range a.members {
		for _, j := range b.members {
			d := c.m.Dist(i, j)
			sum += d
			if d > max {
				max = d
			}
		}
	}
	return sum, max
}

// merge replaces groups i and j
// by their union.
func (c *Clusterer) merge(groups []*group, i, j int) []*group {
	a, b := groups[i], groups[j]
	sum, max := c.cross(a, b)
	sum += a.sum + b.sum
	if a.max > max {
		max = a.max
	}
	if b.max > max {
		max = b.max
	}

	members := make([]int, 0, len(a.members)+len(b.members))
	members = append(members, a.members...)
	members = append(members, b.members...)
	slices.Sort(members)

	ng := &group{
		at:      c.climb(a.at, len(members)),
		members: members,
		sum:     sum,
		max:     max,
	}

	merged := make([]*group, 0, len(groups)-1)
	for x, g := range groups {
		if x == i || x == j {
			continue
		}
		merged = append(merged, g)
	}
	return append(merged, ng)
}

// labels returns the cluster label
// of each strain in matrix order,
// numbering clusters by first appearance.
func (c *Clusterer) labels(groups []*group) []int {
	cluster := make([]int, c.m.Len())
	for gi, g := range groups {
		for _, i := range g.members {
			cluster[i] = gi
		}
	}

	labels := make([]int, len(cluster))
	ids := make(map[int]int, len(groups))
	for i, g := range cluster {
		l, ok := ids[g]
		if !ok {
			l = len(ids)
			ids[g] = l
		}
		labels[i] = l
	}
	return labels
}
