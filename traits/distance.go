// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package traits

import (
	"fmt"

	"github.com/js-arias/phyclust/dmatrix"
)

// Metric is a distance metric
// between two binary trait vectors.
type Metric int

// Valid metrics.
const (
	// One minus the size of the intersection
	// over the size of the union
	// of the traits present in the two strains.
	// The distance between two strains
	// without any trait is zero.
	Jaccard Metric = iota

	// Fraction of traits
	// in which the two strains disagree.
	Hamming
)

// ParseMetric returns a metric
// from a string.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "jaccard":
		return Jaccard, nil
	case "hamming":
		return Hamming, nil
	}
	return 0, fmt.Errorf("invalid metric %q", s)
}

func (m Metric) String() string {
	switch m {
	case Jaccard:
		return "jaccard"
	case Hamming:
		return "hamming"
	}
	return "unknown"
}

// dist returns the distance between two trait vectors.
func (m Metric) dist(a, b []byte) float64 {
	switch m {
	case Jaccard:
		var inter, union int
		for i, v := range a {
			if v == 1 || b[i] == 1 {
				union++
			}
			if v == 1 && b[i] == 1 {
				inter++
			}
		}
		if union == 0 {
			return 0
		}
		return 1 - float64(inter)/float64(union)
	case Hamming:
		if len(a) == 0 {
			return 0
		}
		var diff int
		for i, v := range a {
			if v != b[i] {
				diff++
			}
		}
		return float64(diff) / float64(len(a))
	}
	return 0
}

// Distances returns the pairwise distance matrix
// between the strains of the matrix
// using the given metric.
// Strains are in matrix row order.
func (m *Matrix) Distances(metric Metric) (*dmatrix.Matrix, error) {
	d, err := dmatrix.New(m.taxa)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(m.taxa); i++ {
		for j := 0; j < i; j++ {
			d.Set(i, j, metric.dist(m.obs[i], m.obs[j]))
		}
	}
	return d, nil
}
