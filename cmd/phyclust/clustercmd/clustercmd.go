// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package clustercmd implements a command to partition
// the strains of a PhyClust project
// into tree-aware clusters.
package clustercmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/project"
	"github.com/js-arias/phyclust/traits"
	"github.com/js-arias/phyclust/treeclust"
)

var Command = &command.Command{
	Usage: `cluster [--k <value>] [--linkage <rule>]
	[--tree <tree-name>] [-o|--output <file>]
	[--prevalence <file>]
	<project-file>`,
	Short: "cluster the strains of a project",
	Long: `
Command cluster partitions the strains of a PhyClust project into clusters,
using the fused distance matrix and the topology of the tree: only groups
that are neighbors in the tree are joined, so clusters tend to be
monophyletic.

The argument of the command is the name of the project file. The project must
have a distance matrix (see command dist).

The flag --k sets the wanted number of clusters. If it is not defined, the
clustering will be cut at an automatic threshold, the 90th percentile of the
pairwise distances.

The flag --linkage sets the rule used to score a candidate cluster from its
pairwise distances: "max" (the default), "sum", or "avg".

The cluster assignments will be stored as a tab-delimited table in the file
defined with the flag --output, or -o; by default "clusters.tab". The file
will be added to the project. If the flag --prevalence is set, a per-cluster
trait prevalence table will be written to the indicated file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var kVal int
var linkage string
var treeName string
var output string
var prevFile string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&kVal, "k", 0, "")
	c.Flags().StringVar(&linkage, "linkage", "max", "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&output, "output", "clusters.tab", "")
	c.Flags().StringVar(&output, "o", "clusters.tab", "")
	c.Flags().StringVar(&prevFile, "prevalence", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	ln, err := treeclust.ParseLinkage(linkage)
	if err != nil {
		return err
	}

	t, err := p.Tree(treeName)
	if err != nil {
		return err
	}
	m, err := p.Distances()
	if err != nil {
		return err
	}

	cl, err := treeclust.New(t, m, ln)
	if err != nil {
		return err
	}

	var labels []int
	if kVal > 0 {
		labels, err = cl.CutK(kVal)
		if err != nil {
			return err
		}
	} else {
		th := cl.AutoThreshold()
		fmt.Fprintf(c.Stdout(), "# automatic threshold: %.6f\n", th)
		labels = cl.CutThreshold(th)
	}

	taxa := m.Taxa()
	if err := writeClusters(taxa, labels); err != nil {
		return err
	}
	p.Add(project.Clusters, output)
	if err := p.Write(); err != nil {
		return err
	}

	if prevFile != "" {
		tm, err := p.Traits()
		if err != nil {
			return err
		}
		groups := make(map[string]int, len(taxa))
		for i, tax := range taxa {
			groups[tax] = labels[i]
		}
		if err := writePrevalence(tm, groups); err != nil {
			return err
		}
	}
	return nil
}

func writeClusters(taxa []string, labels []int) (err error) {
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

	if err := project.WriteClusters(f, taxa, labels); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}

func writePrevalence(tm *traits.Matrix, groups map[string]int) (err error) {
	f, err := os.Create(prevFile)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	prev := tm.Prevalence(groups)
	cls := make([]int, 0, len(prev))
	for g := range prev {
		cls = append(cls, g)
	}
	slices.Sort(cls)

	fmt.Fprintf(f, "cluster")
	for _, ft := range tm.Features() {
		fmt.Fprintf(f, "\t%s", ft)
	}
	fmt.Fprintf(f, "\n")
	for _, g := range cls {
		fmt.Fprintf(f, "%d", g)
		for _, v := range prev[g] {
			fmt.Fprintf(f, "\t%s", strconv.FormatFloat(v, 'f', 6, 64))
		}
		fmt.Fprintf(f, "\n")
	}
	return nil
}
