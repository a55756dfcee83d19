// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dist implements a command to compute
// the fused distance matrix of a PhyClust project.
package dist

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/dmatrix"
	"github.com/js-arias/phyclust/project"
	"github.com/js-arias/phyclust/traits"
)

var Command = &command.Command{
	Usage: `dist [--metric <metric>] [--weight <value>]
	[--tree <tree-name>] [-o|--output <file>]
	<project-file>`,
	Short: "compute the fused distance matrix",
	Long: `
Command dist computes the pairwise distance matrix of the strains of a
PhyClust project, combining the patristic distances from the tree with the
trait distances from the binary trait matrix.

The argument of the command is the name of the project file.

The strains are the rows of the trait matrix. Strains that are not in the
tree receive a conservative fallback distance, twice the maximum
root-to-terminal path of the tree; if more than 5% of the pairs use the
fallback, a warning is printed.

The flag --metric sets the trait distance metric, "jaccard" (the default) or
"hamming". The flag --weight sets the weight of the tree distances in the
fusion, a value in [0, 1]; by default both matrices have the same weight
(0.5). The flag --tree selects a tree by name from a dated tree collection.

The resulting matrix will be stored in the file defined with the flag
--output, or -o; by default "distances.tab". The file will be added to the
project.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var metric string
var weight float64
var treeName string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&metric, "metric", "jaccard", "")
	c.Flags().Float64Var(&weight, "weight", 0.5, "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&output, "output", "distances.tab", "")
	c.Flags().StringVar(&output, "o", "distances.tab", "")
}

// maxFallback is the fraction of substituted pairs
// that triggers a warning.
const maxFallback = 0.05

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	mt, err := traits.ParseMetric(metric)
	if err != nil {
		return err
	}

	t, err := p.Tree(treeName)
	if err != nil {
		return err
	}
	tm, err := p.Traits()
	if err != nil {
		return err
	}

	taxa := tm.Taxa()
	treeD, subs, err := t.Distances(taxa)
	if err != nil {
		return err
	}
	pairs := len(taxa) * (len(taxa) - 1) / 2
	if pairs > 0 && float64(subs)/float64(pairs) > maxFallback {
		fmt.Fprintf(c.Stderr(), "# warning: %d of %d pairs use the fallback distance\n", subs, pairs)
	}

	traitD, err := tm.Distances(mt)
	if err != nil {
		return err
	}

	fused, err := dmatrix.Fuse(treeD, traitD, weight)
	if err != nil {
		return err
	}

	if err := writeMatrix(fused); err != nil {
		return err
	}
	p.Add(project.Distances, output)
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func writeMatrix(m *dmatrix.Matrix) (err error) {
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

	if err := m.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
