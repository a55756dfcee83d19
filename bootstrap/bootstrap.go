// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package bootstrap estimates the sampling variability
// of a summary statistic
// by resampling a data table with replacement.
//
// Replicates are independent
// and run in parallel
// on a fixed set of goroutines.
// Each replicate is defined only by its own seed,
// so the results are identical
// regardless of the number of goroutines
// or their scheduling.
package bootstrap

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientReplicates is returned
// when too many replicates fail
// and less than the required minimum
// complete successfully.
var ErrInsufficientReplicates = errors.New("insufficient completed replicates")

// A Summary reduces a resampled table
// to a vector of statistics,
// for example the mean of each column.
// A summary must not retain or modify the rows.
type Summary func(rows [][]float64) []float64

// Mean is a summary
// that returns the mean of each column.
func Mean(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	m := make([]float64, len(rows[0]))
	for _, r := range rows {
		for j, v := range r {
			m[j] += v
		}
	}
	for j := range m {
		m[j] /= float64(len(rows))
	}
	return m
}

// Options are the parameters of a bootstrap run.
type Options struct {
	// Number of goroutines used for the replicates.
	// The default (zero) uses all available CPU.
	// Use 1 for a strictly sequential run;
	// the results are identical in both cases.
	CPU int

	// Seed of the random number generator.
	// Each replicate derives its own seed
	// from this value.
	Seed int64

	// Minimum number of completed replicates.
	// Defaults to 1.
	Min int
}

func (o Options) withDefaults() Options {
	if o.CPU == 0 {
		o.CPU = runtime.NumCPU()
	}
	if o.Min == 0 {
		o.Min = 1
	}
	return o
}

// A Result is the collection of replicate summaries
// of a bootstrap run.
type Result struct {
	// Rep has one row per completed replicate,
	// in replicate order.
	Rep [][]float64

	// Completed is the number of replicates
	// that finished successfully.
	Completed int

	// Failed lists the replicates that failed,
	// with the cause of the failure.
	Failed map[int]error
}

// A task is the immutable description
// of a single replicate.
type task struct {
	id   int
	seed int64
}

type reply struct {
	id   int
	vals []float64
	err  error
}

// Run resamples the rows of a table
// with replacement,
// b times,
// applies the summary to each resample,
// and returns the collected summaries.
//
// A failed replicate is dropped,
// not propagated:
// the result reports the completed count
// and the cause of each failure.
// If less than the minimum number of replicates
// complete,
// Run returns ErrInsufficientReplicates.
func Run(tab [][]float64, b int, sum Summary, opt Options) (*Result, error) {
	if len(tab) == 0 {
		return nil, fmt.Errorf("empty data table")
	}
	if b < 1 {
		return nil, fmt.Errorf("invalid replicate number %d", b)
	}
	opt = opt.withDefaults()

	do := func(t task) reply {
		return runReplicate(t, tab, sum)
	}
	return collect(b, opt, do)
}

// collect runs b tasks
// on the configured number of goroutines
// and gathers the replies
// in replicate order.
func collect(b int, opt Options, do func(task) reply) (*Result, error) {
	replies := make([]reply, b)

	if opt.CPU == 1 {
		for id := 0; id < b; id++ {
			replies[id] = do(task{id: id, seed: opt.Seed + int64(id)})
		}
	} else {
		tasks := make(chan task, opt.CPU*2)
		out := make(chan reply, opt.CPU*2)

		var wg sync.WaitGroup
		for w := 0; w < opt.CPU; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for t := range tasks {
					out <- do(t)
				}
			}()
		}
		go func() {
			for id := 0; id < b; id++ {
				tasks <- task{id: id, seed: opt.Seed + int64(id)}
			}
			close(tasks)
			wg.Wait()
			close(out)
		}()
		for r := range out {
			replies[r.id] = r
		}
	}

	res := &Result{
		Rep:    make([][]float64, 0, b),
		Failed: make(map[int]error),
	}
	for _, r := range replies {
		if r.err != nil {
			res.Failed[r.id] = r.err
			continue
		}
		res.Rep = append(res.Rep, r.vals)
		res.Completed++
	}
	if res.Completed < opt.Min {
		return res, fmt.Errorf("%w: got %d, want at least %d", ErrInsufficientReplicates, res.Completed, opt.Min)
	}
	return res, nil
}

// runReplicate resamples the table
// and applies the summary,
// converting a panic on the summary
// into a replicate failure.
func runReplicate(t task, tab [][]float64, sum Summary) (r reply) {
	r.id = t.id
	defer func() {
		if p := recover(); p != nil {
			r.vals = nil
			r.err = fmt.Errorf("replicate %d: %v", t.id, p)
		}
	}()

	rng := rand.New(rand.NewSource(t.seed))
	rows := make([][]float64, len(tab))
	for i := range rows {
		rows[i] = tab[rng.Intn(len(tab))]
	}

	v := sum(rows)
	if v == nil {
		r.err = fmt.Errorf("replicate %d: empty summary", t.id)
		return r
	}
	r.vals = v
	return r
}

// CI returns the percentile confidence interval
// of each column of the replicate summaries,
// at the given confidence level
// (for example 0.95).
func (r *Result) CI(level float64) (low, up []float64, err error) {
	if level <= 0 || level >= 1 {
		return nil, nil, fmt.Errorf("invalid confidence level %.6f", level)
	}
	if r.Completed == 0 {
		return nil, nil, fmt.Errorf("%w: got 0", ErrInsufficientReplicates)
	}

	cols := len(r.Rep[0])
	low = make([]float64, cols)
	up = make([]float64, cols)
	vals := make([]float64, 0, r.Completed)
	for j := 0; j < cols; j++ {
		vals = vals[:0]
		for _, rep := range r.Rep {
			vals = append(vals, rep[j])
		}
		slices.Sort(vals)
		low[j] = stat.Quantile((1-level)/2, stat.Empirical, vals, nil)
		up[j] = stat.Quantile((1+level)/2, stat.Empirical, vals, nil)
	}
	return low, up, nil
}
