// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package outlier flags atypical points
// of a low dimensional embedding
// with an ensemble of random partition trees
// (an isolation forest):
// points that are separated from the rest
// in few random partitions
// are scored as more anomalous.
package outlier

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// Options are the parameters of a detector.
type Options struct {
	// Number of random trees.
	// Defaults to 100.
	Trees int

	// Size of the subsample
	// used to build each tree.
	// Defaults to 256,
	// capped to the number of points.
	Sample int

	// Seed of the random number generator.
	Seed int64
}

func (o Options) withDefaults(n int) Options {
	if o.Trees == 0 {
		o.Trees = 100
	}
	if o.Sample == 0 {
		o.Sample = 256
	}
	if o.Sample > n {
		o.Sample = n
	}
	return o
}

// Detect returns a mask
// over the given points,
// marking the fraction c
// of the most anomalous ones.
// The contamination c must be
// greater than zero
// and smaller than one.
func Detect(points [][]float64, c float64, opt Options) ([]bool, error) {
	return Mask(Scores(points, opt), c)
}

// Mask returns a mask over the scored points,
// marking the fraction c
// with the highest scores.
func Mask(scores []float64, c float64) ([]bool, error) {
	if c <= 0 || c >= 1 {
		return nil, fmt.Errorf("invalid contamination %.6f: must be in (0, 1)", c)
	}

	n := len(scores)
	flag := int(math.Round(c * float64(n)))
	if flag > n {
		flag = n
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	slices.SortFunc(ids, func(a, b int) int {
		if scores[a] > scores[b] {
			return -1
		}
		if scores[a] < scores[b] {
			return 1
		}
		return a - b
	})

	mask := make([]bool, n)
	for _, i := range ids[:flag] {
		mask[i] = true
	}
	return mask, nil
}

// Scores returns the anomaly score
// of each point,
// in [0, 1],
// higher values for more anomalous points.
func Scores(points [][]float64, opt Options) []float64 {
	n := len(points)
	opt = opt.withDefaults(n)
	rng := rand.New(rand.NewSource(opt.Seed))

	depth := make([]float64, n)
	maxDepth := int(math.Ceil(math.Log2(float64(opt.Sample)))) + 1
	for it := 0; it < opt.Trees; it++ {
		sample := rng.Perm(n)[:opt.Sample]
		t := buildTree(points, sample, 0, maxDepth, rng)
		for i, p := range points {
			depth[i] += t.pathLen(p, 0)
		}
	}

	norm := avgPathLen(float64(opt.Sample))
	scores := make([]float64, n)
	for i := range scores {
		mean := depth[i] / float64(opt.Trees)
		scores[i] = math.Exp2(-mean / norm)
	}
	return scores
}

// A node is a node of a random partition tree.
type node struct {
	// number of points isolated at a leaf
	size int

	// split definition for internal nodes
	dim         int
	split       float64
	left, right *node
}

// buildTree partitions a subsample of points
// by a random dimension
// and a random split point,
// until the points are isolated
// or the depth limit is reached.
func buildTree(points [][]float64, ids []int, depth, maxDepth int, rng *rand.Rand) *node {
	if len(ids) <= 1 || depth >= maxDepth {
		return &node{size: len(ids)}
	}

	dims := len(points[0])
	dim := rng.Intn(dims)
	min, max := points[ids[0]][dim], points[ids[0]][dim]
	for _, i := range ids {
		v := points[i][dim]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return &node{size: len(ids)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right []int
	for _, i := range ids {
		if points[i][dim] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		dim:   dim,
		split: split,
		left:  buildTree(points, left, depth+1, maxDepth, rng),
		right: buildTree(points, right, depth+1, maxDepth, rng),
	}
}

// pathLen returns the partition depth of a point,
// adjusted by the expected depth
// of an unbuilt subtree.
func (nd *node) pathLen(p []float64, depth int) float64 {
	if nd.left == nil {
		return float64(depth) + avgPathLen(float64(nd.size))
	}
	if p[nd.dim] < nd.split {
		return nd.left.pathLen(p, depth+1)
	}
	return nd.right.pathLen(p, depth+1)
}

// euler is the Euler-Mascheroni constant.
const euler = 0.5772156649

// avgPathLen returns the expected path length
// of a search in a binary tree
// with the given number of points.
func avgPathLen(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+euler) - 2*(n-1)/n
}
