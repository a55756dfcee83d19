// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package traits provides a binary trait matrix
// for a collection of strains,
// and pairwise distances between the strains
// based on their traits.
package traits

import (
	"errors"
	"fmt"
	"slices"
)

// ErrShape is returned when the strains of a matrix
// do not match an expected strain list.
var ErrShape = errors.New("mismatched matrix shape")

// A Matrix is a binary matrix
// of strains (rows)
// by traits such as resistance phenotypes
// or gene presence-absence (columns).
// Values are restricted to 0 and 1;
// missing observations are stored as 0.
type Matrix struct {
	taxa     []string
	ids      map[string]int
	features []string
	obs      [][]byte
}

// New creates a new trait matrix
// with the given features
// and no strains.
func New(features []string) *Matrix {
	return &Matrix{
		ids:      make(map[string]int),
		features: slices.Clone(features),
	}
}

// Add adds a strain
// with its observed trait values.
// The number of values must be equal
// to the number of features in the matrix,
// and all values must be 0 or 1.
func (m *Matrix) Add(taxon string, obs []byte) error {
	if _, dup := m.ids[taxon]; dup {
		return fmt.Errorf("strain %q repeated", taxon)
	}
	if len(obs) != len(m.features) {
		return fmt.Errorf("%w: strain %q: got %d values, want %d", ErrShape, taxon, len(obs), len(m.features))
	}
	for i, v := range obs {
		if v != 0 && v != 1 {
			return fmt.Errorf("strain %q: trait %q: invalid value %d", taxon, m.features[i], v)
		}
	}

	m.ids[taxon] = len(m.taxa)
	m.taxa = append(m.taxa, taxon)
	m.obs = append(m.obs, slices.Clone(obs))
	return nil
}

// Len returns the number of strains in the matrix.
func (m *Matrix) Len() int {
	return len(m.taxa)
}

// Taxa returns the strains of the matrix
// in row order.
func (m *Matrix) Taxa() []string {
	return slices.Clone(m.taxa)
}

// Features returns the features of the matrix
// in column order.
func (m *Matrix) Features() []string {
	return slices.Clone(m.features)
}

// Obs returns the trait values of a strain.
func (m *Matrix) Obs(taxon string) []byte {
	i, ok := m.ids[taxon]
	if !ok {
		return nil
	}
	return slices.Clone(m.obs[i])
}

// HasTaxon returns true
// if the given strain is in the matrix.
func (m *Matrix) HasTaxon(taxon string) bool {
	_, ok := m.ids[taxon]
	return ok
}

// Reorder returns a new matrix
// with the strains in the given order.
// The strain list must contain
// exactly the strains of the matrix,
// otherwise it returns ErrShape.
// Use it to align the trait matrix
// with the terminals of a tree
// before fusing distance matrices.
func (m *Matrix) Reorder(taxa []string) (*Matrix, error) {
	if len(taxa) != len(m.taxa) {
		return nil, fmt.Errorf("%w: got %d strains, want %d", ErrShape, len(taxa), len(m.taxa))
	}

	nm := New(m.features)
	for _, tax := range taxa {
		i, ok := m.ids[tax]
		if !ok {
			return nil, fmt.Errorf("%w: strain %q not in matrix", ErrShape, tax)
		}
		if err := nm.Add(tax, m.obs[i]); err != nil {
			return nil, err
		}
	}
	return nm, nil
}

// Prevalence returns the frequency of each trait
// on each group of a partition of the strains.
// Strains without an assigned group are ignored.
// The returned map is indexed by group label,
// each value has one frequency per feature,
// in column order.
func (m *Matrix) Prevalence(groups map[string]int) map[int][]float64 {
	sum := make(map[int][]float64)
	size := make(map[int]int)
	for i, tax := range m.taxa {
		g, ok := groups[tax]
		if !ok {
			continue
		}
		s, ok := sum[g]
		if !ok {
			s = make([]float64, len(m.features))
			sum[g] = s
		}
		size[g]++
		for j, v := range m.obs[i] {
			s[j] += float64(v)
		}
	}

	for g, s := range sum {
		for j := range s {
			s[j] /= float64(size[g])
		}
	}
	return sum
}
