// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeclust

import (
	"fmt"
)

// A KCurve is the dispersion curve
// over a range of candidate cluster numbers.
type KCurve struct {
	// K is the candidate cluster numbers,
	// in increasing order.
	K []int

	// Dispersion is the dispersion statistic
	// of the clustering at each candidate.
	Dispersion []float64

	// Labels is the cluster assignment
	// at each candidate,
	// in matrix order.
	Labels [][]int
}

// Curve clusters the strains
// for each cluster number in [kMin, kMax]
// and returns the dispersion curve:
// for each candidate,
// the sum over clusters
// of the minimum total distance
// from a member to all other members
// of its cluster
// (the medoid cost).
func (c *Clusterer) Curve(kMin, kMax int) (*KCurve, error) {
	n := c.m.Len()
	if kMin < 1 {
		kMin = 1
	}
	if kMax > n {
		kMax = n
	}
	if kMax < kMin {
		return nil, fmt.Errorf("invalid cluster range [%d, %d]", kMin, kMax)
	}

	kc := &KCurve{
		K:          make([]int, 0, kMax-kMin+1),
		Dispersion: make([]float64, 0, kMax-kMin+1),
		Labels:     make([][]int, 0, kMax-kMin+1),
	}
	for k := kMin; k <= kMax; k++ {
		labels, err := c.CutK(k)
		if err != nil {
			return nil, err
		}
		kc.K = append(kc.K, k)
		kc.Dispersion = append(kc.Dispersion, c.dispersion(labels))
		kc.Labels = append(kc.Labels, labels)
	}
	return kc, nil
}

// dispersion returns the sum over clusters
// of the medoid cost of the cluster.
func (c *Clusterer) dispersion(labels []int) float64 {
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}

	var sum float64
	for _, members := range groups {
		sum += medoidCost(c.m, members)
	}
	return sum
}

// kneeMargin is the minimum depth
// of the normalized difference curve
// for a knee to be reported.
const kneeMargin = 0.05

// Knee returns the cluster number
// at the knee of the dispersion curve:
// the candidate beyond which
// the dispersion gain flattens.
//
// The curve is normalized to the unit square
// and the knee is the candidate
// that minimizes the difference curve
// x + y
// (a straight line gives a constant difference of one,
// a convex decreasing curve dips below it).
// If the dip is smaller than the margin,
// there is no clear knee
// and it returns false.
func (kc *KCurve) Knee() (int, bool) {
	if len(kc.K) < 3 {
		return 0, false
	}

	x0 := float64(kc.K[0])
	xr := float64(kc.K[len(kc.K)-1]) - x0
	yMin, yMax := kc.Dispersion[0], kc.Dispersion[0]
	for _, y := range kc.Dispersion {
		if y < yMin {
			yMin = y
		}
		if y > yMax {
			yMax = y
		}
	}
	if yMax == yMin {
		return 0, false
	}

	best := -1
	min := 1.0
	for i := range kc.K {
		if i == 0 || i == len(kc.K)-1 {
			// an endpoint can not be a knee
			continue
		}
		x := (float64(kc.K[i]) - x0) / xr
		y := (kc.Dispersion[i] - yMin) / (yMax - yMin)
		if d := x + y; d < min {
			min = d
			best = i
		}
	}
	if best < 0 || 1-min < kneeMargin {
		return 0, false
	}
	return kc.K[best], true
}
