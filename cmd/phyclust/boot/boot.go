// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package boot implements a command to attach
// bootstrap confidence intervals
// to the trait prevalences
// of the clusters of a PhyClust project.
package boot

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/bootstrap"
	"github.com/js-arias/phyclust/project"
	"github.com/js-arias/phyclust/traits"
)

var Command = &command.Command{
	Usage: `boot [--replicates <value>] [--level <value>]
	[--min <value>] [--cpu <value>] [--seed <value>]
	[--importance <file>] [-o|--output <file>]
	<project-file>`,
	Short: "bootstrap confidence intervals of trait prevalences",
	Long: `
Command boot estimates percentile confidence intervals for the trait
prevalence of each cluster of a PhyClust project, resampling the strains of
the cluster with replacement.

The argument of the command is the name of the project file. The project must
have a trait matrix and cluster assignments (see command cluster).

The flag --replicates sets the number of bootstrap replicates, 1000 by
default. The flag --level sets the confidence level, 0.95 by default. The
flag --min sets the minimum number of completed replicates; if more
replicates fail, the command fails. The flag --cpu sets the number of
parallel processes; the default uses all available processors, and the
results are the same for any value. The flag --seed sets the seed of the
random number generator.

The intervals will be written to the file defined with the flag --output, or
-o; by default "boot.tab". If the flag --importance is defined, bootstrap
estimates of the importance of each trait to predict the cluster of a
strain will be written to the indicated file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var replicates int
var level float64
var minRep int
var cpu int
var seed int64
var impFile string
var output string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&replicates, "replicates", 1000, "")
	c.Flags().Float64Var(&level, "level", 0.95, "")
	c.Flags().IntVar(&minRep, "min", 0, "")
	c.Flags().IntVar(&cpu, "cpu", 0, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&impFile, "importance", "", "")
	c.Flags().StringVar(&output, "output", "boot.tab", "")
	c.Flags().StringVar(&output, "o", "boot.tab", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	tm, err := p.Traits()
	if err != nil {
		return err
	}
	clusters, err := p.Clusters()
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "cluster\ttrait\tmean\tlow\tup\treplicates\n")
	for _, cl := range clusterList(clusters) {
		rows := clusterRows(tm, clusters, cl)
		if len(rows) == 0 {
			continue
		}
		res, err := bootstrap.Run(rows, replicates, bootstrap.Mean, bootstrap.Options{
			CPU:  cpu,
			Seed: seed + int64(cl),
			Min:  minRep,
		})
		if err != nil {
			return fmt.Errorf("cluster %d: %v", cl, err)
		}
		warnFailed(c, res)

		low, up, err := res.CI(level)
		if err != nil {
			return fmt.Errorf("cluster %d: %v", cl, err)
		}
		mean := bootstrap.Mean(rows)
		for j, ft := range tm.Features() {
			fmt.Fprintf(f, "%d\t%s\t%s\t%s\t%s\t%d\n", cl, ft,
				strconv.FormatFloat(mean[j], 'f', 6, 64),
				strconv.FormatFloat(low[j], 'f', 6, 64),
				strconv.FormatFloat(up[j], 'f', 6, 64),
				res.Completed)
		}
	}

	if impFile != "" {
		if err := writeImportance(c, tm, clusters); err != nil {
			return err
		}
	}
	return nil
}

func clusterList(clusters map[string]int) []int {
	seen := make(map[int]bool)
	var ls []int
	for _, cl := range clusters {
		if seen[cl] {
			continue
		}
		seen[cl] = true
		ls = append(ls, cl)
	}
	slices.Sort(ls)
	return ls
}

// clusterRows returns the trait vectors
// of the strains of a cluster.
func clusterRows(tm *traits.Matrix, clusters map[string]int, cl int) [][]float64 {
	var rows [][]float64
	for _, tax := range tm.Taxa() {
		if g, ok := clusters[tax]; !ok || g != cl {
			continue
		}
		obs := tm.Obs(tax)
		r := make([]float64, len(obs))
		for j, v := range obs {
			r[j] = float64(v)
		}
		rows = append(rows, r)
	}
	return rows
}

func warnFailed(c *command.Command, res *bootstrap.Result) {
	for id, err := range res.Failed {
		fmt.Fprintf(c.Stderr(), "# warning: replicate %d failed: %v\n", id, err)
	}
}

func writeImportance(c *command.Command, tm *traits.Matrix, clusters map[string]int) (err error) {
	var x [][]float64
	var y []float64
	for _, tax := range tm.Taxa() {
		cl, ok := clusters[tax]
		if !ok {
			continue
		}
		obs := tm.Obs(tax)
		r := make([]float64, len(obs))
		for j, v := range obs {
			r[j] = float64(v)
		}
		x = append(x, r)
		y = append(y, float64(cl))
	}

	res, err := bootstrap.Importance(x, y, replicates, bootstrap.Options{
		CPU:  cpu,
		Seed: seed,
		Min:  minRep,
	})
	if err != nil {
		return err
	}
	warnFailed(c, res)

	low, up, err := res.CI(level)
	if err != nil {
		return err
	}
	mean := bootstrap.Mean(res.Rep)

	f, err := os.Create(impFile)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	fmt.Fprintf(f, "trait\timportance\tlow\tup\treplicates\n")
	for j, ft := range tm.Features() {
		fmt.Fprintf(f, "%s\t%s\t%s\t%s\t%d\n", ft,
			strconv.FormatFloat(mean[j], 'f', 6, 64),
			strconv.FormatFloat(low[j], 'f', 6, 64),
			strconv.FormatFloat(up[j], 'f', 6, 64),
			res.Completed)
	}
	return nil
}
