// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"

	"github.com/js-arias/timetree"
)

// MillionYears is the scale factor
// used to transform the ages of a dated tree
// (in years)
// into branch lengths.
const MillionYears = 1_000_000

// FromTimeTree creates a tree
// from a dated tree,
// transforming node ages into branch lengths:
// the length of a branch is the time elapsed
// between a node and its parent,
// in million years.
func FromTimeTree(src *timetree.Tree) (*Tree, error) {
	t := &Tree{
		name:  src.Name(),
		terms: make(map[string]int),
	}

	if err := copyNode(t, src, src.Root(), -1); err != nil {
		return nil, fmt.Errorf("tree %q: %v", src.Name(), err)
	}
	if len(t.terms) == 0 {
		return nil, fmt.Errorf("tree %q: tree without terminals", src.Name())
	}
	t.setRootLen()
	return t, nil
}

func copyNode(t *Tree, src *timetree.Tree, id, parent int) error {
	var brLen float64
	if parent >= 0 {
		p := src.Parent(id)
		brLen = float64(src.Age(p)-src.Age(id)) / MillionYears
	}

	var taxon string
	if src.IsTerm(id) {
		taxon = src.Taxon(id)
	}
	nid, err := t.addNode(parent, brLen, taxon)
	if err != nil {
		return err
	}

	for _, c := range src.Children(id) {
		if err := copyNode(t, src, c, nid); err != nil {
			return err
		}
	}
	return nil
}
