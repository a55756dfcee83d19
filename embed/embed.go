// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package embed projects a pairwise distance matrix
// into a low dimensional space
// for visualization and outlier scoring.
//
// The projection builds a weighted
// k-nearest-neighbor graph
// from the distance matrix
// and then optimizes the layout
// with a seeded stochastic gradient descent,
// attracting neighbors
// and repelling sampled non-neighbors.
// The embedding is deterministic
// for a given input and seed.
package embed

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/js-arias/phyclust/dmatrix"
)

// ErrInsufficientData is returned
// when there are too few strains to embed.
var ErrInsufficientData = errors.New("insufficient data: at least 3 strains required")

// Options are the parameters of an embedding.
type Options struct {
	// Output dimension,
	// 2 or 3.
	// Defaults to 2.
	Dims int

	// Number of nearest neighbors
	// used to build the graph.
	// Defaults to 15.
	// If there are less strains than neighbors
	// the count is reduced silently.
	Neighbors int

	// Minimum distance between points
	// in the output space.
	// Defaults to 0.1.
	MinDist float64

	// Number of optimization epochs.
	// Defaults to 200.
	Epochs int

	// Seed of the random number generator.
	Seed int64
}

func (o Options) withDefaults() Options {
	if o.Dims == 0 {
		o.Dims = 2
	}
	if o.Neighbors == 0 {
		o.Neighbors = 15
	}
	if o.MinDist == 0 {
		o.MinDist = 0.1
	}
	if o.Epochs == 0 {
		o.Epochs = 200
	}
	return o
}

// An Embedding is a low dimensional coordinate
// for each strain of a distance matrix.
type Embedding struct {
	taxa   []string
	dims   int
	coords [][]float64
}

// Taxa returns the strains of the embedding
// in matrix order.
func (e *Embedding) Taxa() []string {
	return slices.Clone(e.taxa)
}

// Dims returns the dimension of the embedding.
func (e *Embedding) Dims() int {
	return e.dims
}

// Coords returns the coordinates of a strain
// by its matrix index.
func (e *Embedding) Coords(i int) []float64 {
	return slices.Clone(e.coords[i])
}

// Len returns the number of strains.
func (e *Embedding) Len() int {
	return len(e.coords)
}

// an edge of the neighbor graph
type edge struct {
	i, j int
	w    float64
}

// New creates an embedding
// from a distance matrix.
func New(m *dmatrix.Matrix, opt Options) (*Embedding, error) {
	opt = opt.withDefaults()
	if opt.Dims != 2 && opt.Dims != 3 {
		return nil, fmt.Errorf("invalid dimension %d: must be 2 or 3", opt.Dims)
	}

	n := m.Len()
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, n)
	}
	kn := opt.Neighbors
	if kn >= n {
		kn = n - 1
	}

	edges := neighborGraph(m, kn)
	e := &Embedding{
		taxa:   m.Taxa(),
		dims:   opt.Dims,
		coords: make([][]float64, n),
	}

	rng := rand.New(rand.NewSource(opt.Seed))
	for i := range e.coords {
		c := make([]float64, opt.Dims)
		for d := range c {
			c[d] = rng.Float64()*20 - 10
		}
		e.coords[i] = c
	}

	e.optimize(edges, opt, rng)
	return e, nil
}

// neighborGraph builds the weighted
// k-nearest-neighbor graph
// of a distance matrix.
// The weight of the edge from i to j
// is exp(-(d-rho)/sigma)
// with rho the distance to the closest neighbor of i
// and sigma calibrated so the weights of i
// sum to log2(k).
// Weights in both directions are combined
// with the probabilistic union
// a + b - a*b.
func neighborGraph(m *dmatrix.Matrix, kn int) []edge {
	n := m.Len()
	w := make(map[[2]int]float64, n*kn)
	for i := 0; i < n; i++ {
		nb := nearest(m, i, kn)
		rho := m.Dist(i, nb[0])
		sigma := calibrate(m, i, nb, rho)
		for _, j := range nb {
			d := m.Dist(i, j) - rho
			if d < 0 {
				d = 0
			}
			v := 1.0
			if sigma > 0 {
				v = math.Exp(-d / sigma)
			}

			p := [2]int{i, j}
			if j < i {
				p = [2]int{j, i}
			}
			if o, ok := w[p]; ok {
				w[p] = o + v - o*v
			} else {
				w[p] = v
			}
		}
	}

	edges := make([]edge, 0, len(w))
	for p, v := range w {
		edges = append(edges, edge{i: p[0], j: p[1], w: v})
	}
	// map iteration is not deterministic
	slices.SortFunc(edges, func(a, b edge) int {
		if a.i != b.i {
			return a.i - b.i
		}
		return a.j - b.j
	})
	return edges
}

// nearest returns the k nearest neighbors
// of strain i,
// closest first.
func nearest(m *dmatrix.Matrix, i, kn int) []int {
	n := m.Len()
	ids := make([]int, 0, n-1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		ids = append(ids, j)
	}
	slices.SortFunc(ids, func(a, b int) int {
		da, db := m.Dist(i, a), m.Dist(i, b)
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		return a - b
	})
	return ids[:kn]
}

// calibrate searches the sigma value
// that makes the neighbor weights of strain i
// sum to log2 of the number of neighbors.
func calibrate(m *dmatrix.Matrix, i int, nb []int, rho float64) float64 {
	target := math.Log2(float64(len(nb)))

	lo, hi := 0.0, 1.0
	sum := func(sigma float64) float64 {
		var s float64
		for _, j := range nb {
			d := m.Dist(i, j) - rho
			if d < 0 {
				d = 0
			}
			s += math.Exp(-d / sigma)
		}
		return s
	}
	for sum(hi) < target {
		hi *= 2
		if hi > 1e6 {
			return hi
		}
	}
	for it := 0; it < 64; it++ {
		mid := (lo + hi) / 2
		if mid == lo || mid == hi {
			break
		}
		if sum(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// repulsionSamples is the number of random points
// pushed away from a point
// on each edge update.
const repulsionSamples = 5

// optimize moves the coordinates
// by stochastic gradient descent
// over the edges of the neighbor graph.
func (e *Embedding) optimize(edges []edge, opt Options, rng *rand.Rand) {
	n := len(e.coords)
	for ep := 0; ep < opt.Epochs; ep++ {
		alpha := 1 - float64(ep)/float64(opt.Epochs)
		for _, ed := range edges {
			if rng.Float64() > ed.w {
				continue
			}
			e.attract(ed.i, ed.j, alpha, opt.MinDist)
			for s := 0; s < repulsionSamples; s++ {
				e.repel(ed.i, rng.Intn(n), alpha, opt.MinDist)
			}
		}
	}
}

// attract moves two points towards each other.
func (e *Embedding) attract(i, j int, alpha, minDist float64) {
	d2 := e.sqDist(i, j)
	if d2 <= minDist*minDist {
		return
	}
	g := 2 * alpha * math.Sqrt(d2) / (1 + d2)
	e.move(i, j, g/math.Sqrt(d2))
}

// repel pushes a point away from another.
func (e *Embedding) repel(i, j int, alpha, minDist float64) {
	if i == j {
		return
	}
	d2 := e.sqDist(i, j)
	g := alpha / ((0.1 + d2) * (1 + d2))
	if d2 < 1e-8 {
		// coincident points:
		// push in an arbitrary axis
		e.coords[i][0] += alpha * minDist
		return
	}
	e.move(i, j, -g/math.Sqrt(d2))
}

// move displaces point i
// along the segment to point j
// by a fraction f of the distance,
// and point j in the opposite way.
func (e *Embedding) move(i, j int, f float64) {
	ci, cj := e.coords[i], e.coords[j]
	for d := range ci {
		delta := (cj[d] - ci[d]) * f
		if delta > 4 {
			delta = 4
		}
		if delta < -4 {
			delta = -4
		}
		ci[d] += delta
		cj[d] -= delta
	}
}

// sqDist returns the squared distance
// between two points of the embedding.
func (e *Embedding) sqDist(i, j int) float64 {
	var s float64
	for d := range e.coords[i] {
		v := e.coords[i][d] - e.coords[j][d]
		s += v * v
	}
	return s
}
