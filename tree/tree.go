// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree provides a rooted phylogenetic tree
// with branch lengths
// and named terminals.
package tree

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMissingLeaf is returned
// when a requested terminal is not in the tree.
var ErrMissingLeaf = errors.New("terminal not in tree")

// A Tree is a rooted phylogenetic tree.
// Nodes are stored in a slice
// and reference each other by index.
// Each node except the root
// has a branch length,
// the length of the edge to its parent.
//
// A tree is immutable after construction:
// all builders validate their input
// and the root-to-node length cache
// is computed once.
type Tree struct {
	name  string
	nodes []node
	terms map[string]int

	// length of the path from the root
	// to each node
	rootLen []float64
}

type node struct {
	parent   int
	children []int
	brLen    float64
	depth    int
	taxon    string
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Terms returns the name of all terminals
// in the tree,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	terms := make([]string, 0, len(t.terms))
	for tax := range t.terms {
		terms = append(terms, tax)
	}
	slices.Sort(terms)
	return terms
}

// HasTerm returns true
// if the given taxon is a terminal of the tree.
func (t *Tree) HasTerm(taxon string) bool {
	_, ok := t.terms[taxon]
	return ok
}

// NumTerms returns the number of terminals in the tree.
func (t *Tree) NumTerms() int {
	return len(t.terms)
}

// Root returns the id of the root node.
func (t *Tree) Root() int {
	return 0
}

// TermNode returns the node id of a terminal taxon,
// or false if the taxon is not in the tree.
func (t *Tree) TermNode(taxon string) (int, bool) {
	id, ok := t.terms[taxon]
	return id, ok
}

// Parent returns the id of the parent of a node.
// The parent of the root is -1.
func (t *Tree) Parent(id int) int {
	return t.nodes[id].parent
}

// Children returns the ids of the children of a node.
func (t *Tree) Children(id int) []int {
	return slices.Clone(t.nodes[id].children)
}

// IsTerm returns true if a node is a terminal.
func (t *Tree) IsTerm(id int) bool {
	return len(t.nodes[id].children) == 0
}

// Taxon returns the taxon name of a terminal node.
// Internal nodes have an empty name.
func (t *Tree) Taxon(id int) string {
	return t.nodes[id].taxon
}

// BrLen returns the length of the branch
// between a node and its parent.
// The root has a zero length branch.
func (t *Tree) BrLen(id int) float64 {
	return t.nodes[id].brLen
}

// RootLen returns the length of the path
// from the root to a node.
func (t *Tree) RootLen(id int) float64 {
	return t.rootLen[id]
}

// MaxRootLen returns the maximum length
// of a root-to-terminal path in the tree.
func (t *Tree) MaxRootLen() float64 {
	var max float64
	for id, n := range t.nodes {
		if len(n.children) > 0 {
			continue
		}
		if t.rootLen[id] > max {
			max = t.rootLen[id]
		}
	}
	return max
}

// addNode appends a node to the tree
// and returns its id.
func (t *Tree) addNode(parent int, brLen float64, taxon string) (int, error) {
	if brLen < 0 {
		return 0, fmt.Errorf("negative branch length %.6f", brLen)
	}
	id := len(t.nodes)
	n := node{
		parent: parent,
		brLen:  brLen,
		taxon:  taxon,
	}
	if parent >= 0 {
		n.depth = t.nodes[parent].depth + 1
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	t.nodes = append(t.nodes, n)

	if taxon != "" {
		if _, dup := t.terms[taxon]; dup {
			return 0, fmt.Errorf("terminal %q repeated", taxon)
		}
		t.terms[taxon] = id
	}
	return id, nil
}

// setRootLen fills the root-to-node length cache.
// Parents always precede their children
// in the node slice.
func (t *Tree) setRootLen() {
	t.rootLen = make([]float64, len(t.nodes))
	for id := 1; id < len(t.nodes); id++ {
		n := t.nodes[id]
		t.rootLen[id] = t.rootLen[n.parent] + n.brLen
	}
}

// lca returns the id of the lowest common ancestor
// of two nodes.
func (t *Tree) lca(a, b int) int {
	for t.nodes[a].depth > t.nodes[b].depth {
		a = t.nodes[a].parent
	}
	for t.nodes[b].depth > t.nodes[a].depth {
		b = t.nodes[b].parent
	}
	for a != b {
		a = t.nodes[a].parent
		b = t.nodes[b].parent
	}
	return a
}
