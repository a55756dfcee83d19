// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package outliers implements a command to flag
// atypical strains of a PhyClust project.
package outliers

import (
	"fmt"
	"os"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/outlier"
	"github.com/js-arias/phyclust/project"
)

var Command = &command.Command{
	Usage: `outliers [--contamination <value>]
	[--trees <value>] [--seed <value>]
	[-o|--output <file>]
	<project-file>`,
	Short: "flag atypical strains",
	Long: `
Command outliers scores the strains of a PhyClust project by how atypical
their position is in the embedding, using an ensemble of random partition
trees: strains that are isolated in few random partitions are more
anomalous.

The argument of the command is the name of the project file. The project must
have embedding coordinates (see command embed).

The flag --contamination sets the expected fraction of outliers, a value
greater than 0 and smaller than 1; by default 0.05. The flag --trees sets
the number of random trees of the ensemble (100 by default). The flag --seed
sets the seed of the random number generator.

A table with the score and the flag of each strain will be written to the
file defined with the flag --output, or -o; by default "outliers.tab".
	`,
	SetFlags: setFlags,
	Run:      run,
}

var contamination float64
var numTrees int
var seed int64
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&contamination, "contamination", 0.05, "")
	c.Flags().IntVar(&numTrees, "trees", 100, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "outliers.tab", "")
	c.Flags().StringVar(&output, "o", "outliers.tab", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	e, err := p.Points()
	if err != nil {
		return err
	}

	points := make([][]float64, e.Len())
	for i := range points {
		points[i] = e.Coords(i)
	}

	opt := outlier.Options{
		Trees: numTrees,
		Seed:  seed,
	}
	scores := outlier.Scores(points, opt)
	mask, err := outlier.Mask(scores, contamination)
	if err != nil {
		return err
	}

	if err := writeOutliers(e.Taxa(), scores, mask); err != nil {
		return err
	}
	return nil
}

func writeOutliers(taxa []string, scores []float64, mask []bool) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	fmt.Fprintf(f, "strain\tscore\toutlier\n")
	for i, tax := range taxa {
		o := "false"
		if mask[i] {
			o = "true"
		}
		fmt.Fprintf(f, "%s\t%s\t%s\n", tax, strconv.FormatFloat(scores[i], 'f', 6, 64), o)
	}
	return nil
}
