// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"github.com/js-arias/phyclust/dmatrix"
)

// Distances returns the patristic distance matrix
// for the given list of terminals:
// the distance between two terminals
// is the sum of the branch lengths
// along the path that connects them.
//
// If a terminal is not in the tree,
// or a pair distance can not be resolved,
// the distance is replaced
// by twice the maximum root-to-terminal path length
// of the tree,
// an upper bound of the tree diameter.
// The substitution is counted
// and the total is returned
// along the matrix,
// so the caller can decide
// if the amount of missing data is acceptable.
func (t *Tree) Distances(terms []string) (*dmatrix.Matrix, int, error) {
	m, err := dmatrix.New(terms)
	if err != nil {
		return nil, 0, err
	}

	fallback := 2 * t.MaxRootLen()
	var subs int
	for i := 1; i < len(terms); i++ {
		a, okA := t.terms[terms[i]]
		for j := 0; j < i; j++ {
			b, okB := t.terms[terms[j]]
			if !okA || !okB {
				m.Set(i, j, fallback)
				subs++
				continue
			}
			m.Set(i, j, t.patristic(a, b))
		}
	}
	return m, subs, nil
}

// Patristic returns the patristic distance
// between two terminals given by name.
// It returns ErrMissingLeaf
// if a terminal is not in the tree.
func (t *Tree) Patristic(a, b string) (float64, error) {
	na, ok := t.terms[a]
	if !ok {
		return 0, ErrMissingLeaf
	}
	nb, ok := t.terms[b]
	if !ok {
		return 0, ErrMissingLeaf
	}
	return t.patristic(na, nb), nil
}

// patristic returns the sum of branch lengths
// along the path between two nodes,
// using the cached root-to-node lengths
// and the lowest common ancestor of the pair.
func (t *Tree) patristic(a, b int) float64 {
	if a == b {
		return 0
	}
	p := t.lca(a, b)
	return t.rootLen[a] + t.rootLen[b] - 2*t.rootLen[p]
}
