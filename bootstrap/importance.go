// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package bootstrap

import (
	"fmt"
	"math/rand"
)

// stumps is the number of randomized decision stumps
// fitted on each importance replicate.
const stumps = 100

// Importance returns b bootstrap estimates
// of the importance of each feature of x
// to predict the labels y.
//
// On each replicate the rows are resampled
// with replacement
// and an ensemble of randomized decision stumps
// is fitted to the resample:
// each stump picks a feature
// and a split point at random,
// and the importance of the feature
// is the variance of the labels
// explained by the split.
// Per-replicate importances are normalized
// to sum to one,
// so the result rows are comparable;
// percentile intervals can be derived
// with the CI method.
func Importance(x [][]float64, y []float64, b int, opt Options) (*Result, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("empty feature matrix")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("mismatched rows: %d features, %d labels", len(x), len(y))
	}
	if b < 1 {
		return nil, fmt.Errorf("invalid replicate number %d", b)
	}
	opt = opt.withDefaults()

	do := func(t task) reply {
		return importanceReplicate(t, x, y)
	}
	return collect(b, opt, do)
}

func importanceReplicate(t task, x [][]float64, y []float64) (r reply) {
	r.id = t.id
	defer func() {
		if p := recover(); p != nil {
			r.vals = nil
			r.err = fmt.Errorf("replicate %d: %v", t.id, p)
		}
	}()

	rng := rand.New(rand.NewSource(t.seed))
	n := len(x)
	rows := make([]int, n)
	for i := range rows {
		rows[i] = rng.Intn(n)
	}

	features := len(x[0])
	imp := make([]float64, features)
	for s := 0; s < stumps; s++ {
		f := rng.Intn(features)
		min, max := x[rows[0]][f], x[rows[0]][f]
		for _, i := range rows {
			v := x[i][f]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if min == max {
			continue
		}
		split := min + rng.Float64()*(max-min)
		imp[f] += varReduction(x, y, rows, f, split)
	}

	var sum float64
	for _, v := range imp {
		sum += v
	}
	if sum > 0 {
		for f := range imp {
			imp[f] /= sum
		}
	}
	r.vals = imp
	return r
}

// varReduction returns the reduction
// of the label variance
// from splitting the rows
// at the given feature value.
func varReduction(x [][]float64, y []float64, rows []int, f int, split float64) float64 {
	var nL, nR int
	var sL, sR, qL, qR float64
	for _, i := range rows {
		if x[i][f] < split {
			nL++
			sL += y[i]
			qL += y[i] * y[i]
			continue
		}
		nR++
		sR += y[i]
		qR += y[i] * y[i]
	}
	if nL == 0 || nR == 0 {
		return 0
	}

	n := float64(nL + nR)
	s := sL + sR
	q := qL + qR
	total := q/n - (s/n)*(s/n)
	left := qL/float64(nL) - (sL/float64(nL))*(sL/float64(nL))
	right := qR/float64(nR) - (sR/float64(nR))*(sR/float64(nR))

	red := total - (float64(nL)*left+float64(nR)*right)/n
	if red < 0 {
		return 0
	}
	return red
}
