// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dmatrix provides a pairwise distance matrix
// for a collection of named taxa.
package dmatrix

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrIndexMismatch is returned when two matrices
// that should share the same taxa
// in the same order
// do not.
var ErrIndexMismatch = errors.New("mismatched taxon ordering")

// A Matrix is a symmetric pairwise distance matrix
// over an ordered list of taxa.
// The diagonal is always zero
// and all distances are non-negative.
type Matrix struct {
	taxa []string
	ids  map[string]int
	d    *mat.SymDense
}

// New creates a new distance matrix
// for the given taxa,
// with all distances set to zero.
// Taxon names must be unique.
func New(taxa []string) (*Matrix, error) {
	ids := make(map[string]int, len(taxa))
	for i, tax := range taxa {
		if _, dup := ids[tax]; dup {
			return nil, fmt.Errorf("taxon %q repeated", tax)
		}
		ids[tax] = i
	}

	return &Matrix{
		taxa: append([]string(nil), taxa...),
		ids:  ids,
		d:    mat.NewSymDense(len(taxa), nil),
	}, nil
}

// Len returns the number of taxa in the matrix.
func (m *Matrix) Len() int {
	return len(m.taxa)
}

// Taxa returns the taxa of the matrix
// in matrix order.
func (m *Matrix) Taxa() []string {
	return append([]string(nil), m.taxa...)
}

// Set sets the distance between taxa i and j.
// Setting a diagonal element
// or a negative distance
// is ignored.
func (m *Matrix) Set(i, j int, d float64) {
	if i == j || d < 0 {
		return
	}
	m.d.SetSym(i, j, d)
}

// Dist returns the distance between taxa i and j.
func (m *Matrix) Dist(i, j int) float64 {
	return m.d.At(i, j)
}

// TaxDist returns the distance
// between two taxa given by name.
// It returns false if a taxon
// is not in the matrix.
func (m *Matrix) TaxDist(a, b string) (float64, bool) {
	i, ok := m.ids[a]
	if !ok {
		return 0, false
	}
	j, ok := m.ids[b]
	if !ok {
		return 0, false
	}
	return m.d.At(i, j), true
}

// Index returns the matrix index of a taxon,
// or false if the taxon is not in the matrix.
func (m *Matrix) Index(tax string) (int, bool) {
	i, ok := m.ids[tax]
	return i, ok
}

// Max returns the maximum distance in the matrix.
func (m *Matrix) Max() float64 {
	var max float64
	for i := 1; i < len(m.taxa); i++ {
		for j := 0; j < i; j++ {
			if d := m.d.At(i, j); d > max {
				max = d
			}
		}
	}
	return max
}

// OffDiag returns all off-diagonal distances,
// each unordered pair reported once.
func (m *Matrix) OffDiag() []float64 {
	n := len(m.taxa)
	ds := make([]float64, 0, n*(n-1)/2)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			ds = append(ds, m.d.At(i, j))
		}
	}
	return ds
}

// Fuse returns a new matrix
// in which each distance is the weighted mean
// of the distances in a and b:
// w*a + (1-w)*b.
// Use w = 0.5 for the plain average.
// Both matrices must have the same taxa
// in the same order.
func Fuse(a, b *Matrix, w float64) (*Matrix, error) {
	if len(a.taxa) != len(b.taxa) {
		return nil, fmt.Errorf("%w: %d and %d taxa", ErrIndexMismatch, len(a.taxa), len(b.taxa))
	}
	for i, tax := range a.taxa {
		if b.taxa[i] != tax {
			return nil, fmt.Errorf("%w: position %d: %q and %q", ErrIndexMismatch, i, tax, b.taxa[i])
		}
	}
	if w < 0 || w > 1 {
		return nil, fmt.Errorf("invalid weight %.6f", w)
	}

	f, err := New(a.taxa)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(a.taxa); i++ {
		for j := 0; j < i; j++ {
			f.Set(i, j, w*a.d.At(i, j)+(1-w)*b.d.At(i, j))
		}
	}
	return f, nil
}
