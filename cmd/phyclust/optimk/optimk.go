// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package optimk implements a command to search
// the number of clusters
// for the strains of a PhyClust project.
package optimk

import (
	"fmt"
	"os"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/dmatrix"
	"github.com/js-arias/phyclust/project"
	"github.com/js-arias/phyclust/treeclust"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `optimk [--min <value>] [--max <value>]
	[--linkage <rule>] [--tree <tree-name>]
	[-o|--output <file>] [--plot <file>]
	<project-file>`,
	Short: "search the number of clusters",
	Long: `
Command optimk clusters the strains of a PhyClust project for each candidate
number of clusters in a range, computes the dispersion of each clustering,
and reports the knee of the dispersion curve, the candidate beyond which
adding more clusters gives little gain.

The argument of the command is the name of the project file. The project must
have a distance matrix (see command dist).

The flags --min and --max set the candidate range; by default from 1 to 10.
The flag --linkage sets the linkage rule (see command cluster).

A table with one row per candidate, with the dispersion and the validity
indices of the clustering, will be written to the file defined with the flag
--output, or -o; by default "optimk.tab". If the flag --plot is defined, a
plot of the dispersion curve will be saved as a PNG file.

If the curve has no clear knee, no candidate will be reported; pick the
number of clusters from the validity indices instead.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var kMin int
var kMax int
var linkage string
var treeName string
var output string
var plotFile string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&kMin, "min", 1, "")
	c.Flags().IntVar(&kMax, "max", 10, "")
	c.Flags().StringVar(&linkage, "linkage", "max", "")
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&output, "output", "optimk.tab", "")
	c.Flags().StringVar(&output, "o", "optimk.tab", "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
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
	kc, err := cl.Curve(kMin, kMax)
	if err != nil {
		return err
	}

	if err := writeCurve(m, kc); err != nil {
		return err
	}
	if plotFile != "" {
		if err := plotCurve(kc); err != nil {
			return err
		}
	}

	if k, ok := kc.Knee(); ok {
		fmt.Fprintf(c.Stdout(), "best k: %d\n", k)
		return nil
	}
	fmt.Fprintf(c.Stdout(), "best k: none\n")
	return nil
}

func writeCurve(m *dmatrix.Matrix, kc *treeclust.KCurve) (err error) {
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

	fmt.Fprintf(f, "k\tdispersion\tpseudo_f\tsimilarity\n")
	for i, k := range kc.K {
		v := treeclust.Validate(m, kc.Labels[i])
		fmt.Fprintf(f, "%d\t%s\t%s\t%s\n", k,
			strconv.FormatFloat(kc.Dispersion[i], 'f', 6, 64),
			strconv.FormatFloat(v.PseudoF, 'f', 6, 64),
			strconv.FormatFloat(v.Similarity, 'f', 6, 64))
	}
	return nil
}

func plotCurve(kc *treeclust.KCurve) error {
	pt := plot.New()
	pt.X.Label.Text = "clusters (k)"
	pt.Y.Label.Text = "dispersion"

	xy := make(plotter.XYs, len(kc.K))
	for i, k := range kc.K {
		xy[i].X = float64(k)
		xy[i].Y = kc.Dispersion[i]
	}
	ln, pts, err := plotter.NewLinePoints(xy)
	if err != nil {
		return err
	}
	pt.Add(ln, pts)

	if err := pt.Save(6*vg.Inch, 4*vg.Inch, plotFile); err != nil {
		return fmt.Errorf("while writing %q: %v", plotFile, err)
	}
	return nil
}
