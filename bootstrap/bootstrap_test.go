// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package bootstrap_test

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/js-arias/phyclust/bootstrap"
)

// testTable returns a data table
// with two columns,
// the first around 1
// and the second around 5.
func testTable(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	tab := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		tab = append(tab, []float64{
			1 + rng.NormFloat64()*0.1,
			5 + rng.NormFloat64()*0.5,
		})
	}
	return tab
}

func TestRun(t *testing.T) {
	tab := testTable(100, 17)

	r, err := bootstrap.Run(tab, 200, bootstrap.Mean, bootstrap.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to run bootstrap: %v", err)
	}
	if r.Completed != 200 {
		t.Errorf("completed: got %d, want 200", r.Completed)
	}
	if len(r.Rep) != 200 {
		t.Errorf("replicates: got %d, want 200", len(r.Rep))
	}
	if len(r.Failed) != 0 {
		t.Errorf("failed: got %d, want 0", len(r.Failed))
	}

	// the replicate means are near the table means
	want := bootstrap.Mean(tab)
	for _, rep := range r.Rep {
		if len(rep) != 2 {
			t.Fatalf("columns: got %d, want 2", len(rep))
		}
		for j, v := range rep {
			if math.Abs(v-want[j]) > 0.5 {
				t.Errorf("column %d: got %.6f, want a value near %.6f", j, v, want[j])
			}
		}
	}
}

func TestRunParallel(t *testing.T) {
	tab := testTable(100, 17)

	seq, err := bootstrap.Run(tab, 100, bootstrap.Mean, bootstrap.Options{Seed: 43, CPU: 1})
	if err != nil {
		t.Fatalf("unable to run bootstrap: %v", err)
	}
	par, err := bootstrap.Run(tab, 100, bootstrap.Mean, bootstrap.Options{Seed: 43, CPU: 4})
	if err != nil {
		t.Fatalf("unable to run bootstrap: %v", err)
	}

	// the replicates depend only on their seeds,
	// not on the goroutines that run them
	if !reflect.DeepEqual(seq.Rep, par.Rep) {
		t.Errorf("parallel replicates differ from the sequential run")
	}
}

func TestRunFailed(t *testing.T) {
	tab := testTable(50, 17)

	// a summary that panics on some resamples
	bad := func(rows [][]float64) []float64 {
		m := bootstrap.Mean(rows)
		if m[0] > 1 {
			panic("mean too large")
		}
		return m
	}

	r, err := bootstrap.Run(tab, 100, bad, bootstrap.Options{Seed: 43})
	if err != nil {
		if !errors.Is(err, bootstrap.ErrInsufficientReplicates) {
			t.Fatalf("got error %q, want %q", err, bootstrap.ErrInsufficientReplicates)
		}
	}
	if r.Completed+len(r.Failed) != 100 {
		t.Errorf("got %d completed and %d failed, want 100 in total", r.Completed, len(r.Failed))
	}
	if len(r.Rep) != r.Completed {
		t.Errorf("replicates: got %d, want %d", len(r.Rep), r.Completed)
	}

	// an impossible minimum
	always := func(rows [][]float64) []float64 {
		panic("always fails")
	}
	if _, err := bootstrap.Run(tab, 10, always, bootstrap.Options{Seed: 43, Min: 5}); !errors.Is(err, bootstrap.ErrInsufficientReplicates) {
		t.Errorf("got error %q, want %q", err, bootstrap.ErrInsufficientReplicates)
	}
}

func TestRunInvalid(t *testing.T) {
	if _, err := bootstrap.Run(nil, 10, bootstrap.Mean, bootstrap.Options{}); err == nil {
		t.Errorf("expecting error for an empty table")
	}
	tab := testTable(10, 17)
	if _, err := bootstrap.Run(tab, 0, bootstrap.Mean, bootstrap.Options{}); err == nil {
		t.Errorf("expecting error for zero replicates")
	}
}

func TestCI(t *testing.T) {
	tab := testTable(100, 17)

	r, err := bootstrap.Run(tab, 500, bootstrap.Mean, bootstrap.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to run bootstrap: %v", err)
	}
	low, up, err := r.CI(0.95)
	if err != nil {
		t.Fatalf("unable to compute interval: %v", err)
	}

	m := bootstrap.Mean(tab)
	for j := range m {
		if low[j] > up[j] {
			t.Errorf("column %d: interval [%.6f, %.6f] is reversed", j, low[j], up[j])
		}
		if m[j] < low[j] || m[j] > up[j] {
			t.Errorf("column %d: mean %.6f outside [%.6f, %.6f]", j, m[j], low[j], up[j])
		}
	}

	if _, _, err := r.CI(0); err == nil {
		t.Errorf("expecting error for an invalid level")
	}
	if _, _, err := r.CI(1.5); err == nil {
		t.Errorf("expecting error for an invalid level")
	}
}

// TestCICoverage checks that the percentile interval
// covers the population mean
// about as often as the confidence level says.
func TestCICoverage(t *testing.T) {
	const (
		trials = 50
		level  = 0.95
	)

	var covered int
	for trial := 0; trial < trials; trial++ {
		tab := testTable(100, int64(trial))
		r, err := bootstrap.Run(tab, 500, bootstrap.Mean, bootstrap.Options{Seed: int64(trial) * 1000})
		if err != nil {
			t.Fatalf("trial %d: unable to run bootstrap: %v", trial, err)
		}
		low, up, err := r.CI(level)
		if err != nil {
			t.Fatalf("trial %d: unable to compute interval: %v", trial, err)
		}
		if low[0] <= 1 && 1 <= up[0] {
			covered++
		}
	}

	// with 50 trials at the 95% level
	// less than 42 covered intervals
	// indicates a broken interval
	if covered < 42 {
		t.Errorf("covered: got %d of %d trials", covered, trials)
	}
}

func TestImportance(t *testing.T) {
	// the label is the first feature,
	// the second feature is noise
	rng := rand.New(rand.NewSource(17))
	n := 200
	x := make([][]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := float64(i % 2)
		x = append(x, []float64{v, rng.Float64()})
		y = append(y, v)
	}

	r, err := bootstrap.Importance(x, y, 100, bootstrap.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to run bootstrap: %v", err)
	}
	if r.Completed != 100 {
		t.Fatalf("completed: got %d, want 100", r.Completed)
	}

	for i, rep := range r.Rep {
		if len(rep) != 2 {
			t.Fatalf("replicate %d: got %d features, want 2", i, len(rep))
		}
		var sum float64
		for _, v := range rep {
			if v < 0 {
				t.Errorf("replicate %d: negative importance %v", i, rep)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-10 {
			t.Errorf("replicate %d: importances sum to %.6f, want 1", i, sum)
		}
		// the informative feature dominates
		if rep[0] <= rep[1] {
			t.Errorf("replicate %d: importance %v does not favor the informative feature", i, rep)
		}
	}
}

func TestImportanceInvalid(t *testing.T) {
	x := [][]float64{{1}, {2}}
	if _, err := bootstrap.Importance(x, []float64{1}, 10, bootstrap.Options{}); err == nil {
		t.Errorf("expecting error for mismatched rows")
	}
	if _, err := bootstrap.Importance(nil, nil, 10, bootstrap.Options{}); err == nil {
		t.Errorf("expecting error for an empty matrix")
	}
}
