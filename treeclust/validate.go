// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeclust

import (
	"math"

	"github.com/js-arias/phyclust/dmatrix"
)

// Validation is a set of internal validity indices
// for a clustering.
//
// Degenerate clusterings
// (a single cluster,
// or duplicated medoids)
// give NaN indices
// instead of an error,
// so the values can always be reported.
type Validation struct {
	// Ratio of the between-cluster
	// to the within-cluster dispersion,
	// scaled by the degrees of freedom
	// (a pseudo-F statistic).
	// Higher is better.
	PseudoF float64

	// Mean over clusters
	// of the worst similarity
	// with another cluster.
	// Lower is better.
	Similarity float64
}

// Validate scores a clustering
// of the strains of a distance matrix.
// Labels must be in matrix order.
func Validate(m *dmatrix.Matrix, labels []int) Validation {
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}

	return Validation{
		PseudoF:    pseudoF(m, groups),
		Similarity: similarity(m, groups),
	}
}

// medoid returns the member of a group
// with the minimum total distance
// to the other members,
// and that total distance.
func medoid(m *dmatrix.Matrix, members []int) (int, float64) {
	best := members[0]
	min := math.MaxFloat64
	for _, i := range members {
		var sum float64
		for _, j := range members {
			sum += m.Dist(i, j)
		}
		if sum < min {
			min = sum
			best = i
		}
	}
	return best, min
}

// medoidCost returns the minimum,
// over the members of a group,
// of the total distance
// from a member to all other members.
func medoidCost(m *dmatrix.Matrix, members []int) float64 {
	_, cost := medoid(m, members)
	return cost
}

// pseudoF returns a Calinski-Harabasz style index
// computed from distances to medoids:
// the between-cluster dispersion
// is the size-weighted distance
// from each cluster medoid
// to the medoid of all strains,
// and the within-cluster dispersion
// is the distance from each strain
// to its cluster medoid.
func pseudoF(m *dmatrix.Matrix, groups map[int][]int) float64 {
	k := len(groups)
	n := m.Len()
	if k < 2 || k >= n {
		return math.NaN()
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	g, _ := medoid(m, all)

	var between, within float64
	for _, members := range groups {
		md, _ := medoid(m, members)
		between += float64(len(members)) * m.Dist(md, g)
		for _, i := range members {
			within += m.Dist(i, md)
		}
	}
	if within == 0 {
		return math.NaN()
	}
	return (between / float64(k-1)) / (within / float64(n-k))
}

// similarity returns a Davies-Bouldin style index:
// the mean over clusters
// of the maximum,
// over the other clusters,
// of the sum of the two cluster diameters
// (mean distance to the medoid)
// divided by the distance between the two medoids.
func similarity(m *dmatrix.Matrix, groups map[int][]int) float64 {
	k := len(groups)
	if k < 2 {
		return math.NaN()
	}

	ids := make([]int, 0, k)
	for g := range groups {
		ids = append(ids, g)
	}

	med := make(map[int]int, k)
	spread := make(map[int]float64, k)
	for _, g := range ids {
		members := groups[g]
		md, cost := medoid(m, members)
		med[g] = md
		spread[g] = cost / float64(len(members))
	}

	var sum float64
	for _, g := range ids {
		worst := 0.0
		for _, h := range ids {
			if h == g {
				continue
			}
			d := m.Dist(med[g], med[h])
			if d == 0 {
				// duplicated medoids
				return math.NaN()
			}
			if s := (spread[g] + spread[h]) / d; s > worst {
				worst = s
			}
		}
		sum += worst
	}
	return sum / float64(k)
}
