// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package outlier_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/js-arias/phyclust/outlier"
)

// plantedPoints returns a tight cloud of points
// around the origin,
// with a single point planted far away
// at the last position.
func plantedPoints(n int) [][]float64 {
	rng := rand.New(rand.NewSource(17))
	points := make([][]float64, 0, n+1)
	for i := 0; i < n; i++ {
		points = append(points, []float64{
			rng.NormFloat64(),
			rng.NormFloat64(),
		})
	}
	return append(points, []float64{50, 50})
}

func TestScores(t *testing.T) {
	points := plantedPoints(60)
	scores := outlier.Scores(points, outlier.Options{Seed: 43})

	if len(scores) != len(points) {
		t.Fatalf("scores: got %d, want %d", len(scores), len(points))
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("point %d: score %.6f out of range", i, s)
		}
	}

	// the planted point has the highest score
	far := len(points) - 1
	for i, s := range scores {
		if i == far {
			continue
		}
		if s >= scores[far] {
			t.Errorf("point %d: score %.6f is not below the planted point (%.6f)", i, s, scores[far])
		}
	}
}

func TestScoresDeterminism(t *testing.T) {
	points := plantedPoints(60)

	a := outlier.Scores(points, outlier.Options{Seed: 43})
	b := outlier.Scores(points, outlier.Options{Seed: 43})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("scores differ between runs with the same seed")
	}
}

func TestDetect(t *testing.T) {
	points := plantedPoints(60)

	// a contamination of 1/61 flags a single point
	mask, err := outlier.Detect(points, 1.0/61, outlier.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to detect outliers: %v", err)
	}
	if len(mask) != len(points) {
		t.Fatalf("mask: got %d, want %d", len(mask), len(points))
	}

	var flagged int
	for _, f := range mask {
		if f {
			flagged++
		}
	}
	if flagged != 1 {
		t.Errorf("flagged: got %d, want 1", flagged)
	}
	if !mask[len(points)-1] {
		t.Errorf("the planted point is not flagged")
	}
}

func TestMask(t *testing.T) {
	scores := []float64{0.4, 0.9, 0.3, 0.8, 0.1}

	mask, err := outlier.Mask(scores, 0.4)
	if err != nil {
		t.Fatalf("unable to mask scores: %v", err)
	}
	want := []bool{false, true, false, true, false}
	if !reflect.DeepEqual(mask, want) {
		t.Errorf("mask: got %v, want %v", mask, want)
	}

	// ties are broken by the smallest index
	tied := []float64{0.5, 0.5, 0.5}
	mask, err = outlier.Mask(tied, 0.34)
	if err != nil {
		t.Fatalf("unable to mask scores: %v", err)
	}
	if !reflect.DeepEqual(mask, []bool{true, false, false}) {
		t.Errorf("mask: got %v, want %v", mask, []bool{true, false, false})
	}
}

func TestMaskInvalid(t *testing.T) {
	scores := []float64{0.4, 0.9, 0.3}
	for _, c := range []float64{0, -0.5, 1, 1.5} {
		if _, err := outlier.Mask(scores, c); err == nil {
			t.Errorf("contamination %.2f: expecting error", c)
		}
	}
}
