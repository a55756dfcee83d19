// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package embedcmd implements a command to project
// the strains of a PhyClust project
// into a low dimensional space.
package embedcmd

import (
	"fmt"
	"os"

	"github.com/js-arias/blind"
	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/embed"
	"github.com/js-arias/phyclust/project"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var Command = &command.Command{
	Usage: `embed [--dims <value>] [--neighbors <value>]
	[--mindist <value>] [--seed <value>]
	[-o|--output <file>] [--plot <file>]
	<project-file>`,
	Short: "embed the strains in a low dimensional space",
	Long: `
Command embed projects the fused distance matrix of a PhyClust project into
a low dimensional space, for visualization and outlier scoring. The
projection preserves local neighborhoods: a weighted nearest neighbor graph
is built from the distances, and the layout is optimized to keep neighbors
close.

The argument of the command is the name of the project file. The project must
have a distance matrix (see command dist).

The flag --dims sets the output dimension, 2 (the default) or 3. The flag
--neighbors sets the number of nearest neighbors of the graph (15 by
default); if there are less strains than neighbors, the count is reduced.
The flag --mindist sets the minimum distance between points in the output.
The flag --seed sets the seed of the random number generator; runs with the
same input and seed produce the same embedding.

The coordinates will be stored in the file defined with the flag --output,
or -o; by default "points.tab". The file will be added to the project. If
the flag --plot is defined, a scatter plot of the first two dimensions will
be saved as a PNG file; if the project has cluster assignments, the points
will be colored by cluster.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var dims int
var neighbors int
var minDist float64
var seed int64
var output string
var plotFile string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&dims, "dims", 2, "")
	c.Flags().IntVar(&neighbors, "neighbors", 15, "")
	c.Flags().Float64Var(&minDist, "mindist", 0.1, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "points.tab", "")
	c.Flags().StringVar(&output, "o", "points.tab", "")
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

	m, err := p.Distances()
	if err != nil {
		return err
	}

	e, err := embed.New(m, embed.Options{
		Dims:      dims,
		Neighbors: neighbors,
		MinDist:   minDist,
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	if err := writePoints(e); err != nil {
		return err
	}
	p.Add(project.Points, output)
	if err := p.Write(); err != nil {
		return err
	}

	if plotFile != "" {
		// cluster colors are optional
		clusters, _ := p.Clusters()
		if err := plotPoints(e, clusters); err != nil {
			return err
		}
	}
	return nil
}

func writePoints(e *embed.Embedding) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		cErr := f.Close()
		if cErr != nil && err == nil {
			err = cErr
		}
	}()

	if err := e.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}

func plotPoints(e *embed.Embedding, clusters map[string]int) error {
	pt := plot.New()
	pt.X.Label.Text = "dim 1"
	pt.Y.Label.Text = "dim 2"

	numCl := 0
	for _, l := range clusters {
		if l >= numCl {
			numCl = l + 1
		}
	}

	taxa := e.Taxa()
	xy := make(plotter.XYs, len(taxa))
	for i := range taxa {
		c := e.Coords(i)
		xy[i].X = c[0]
		xy[i].Y = c[1]
	}
	sc, err := plotter.NewScatter(xy)
	if err != nil {
		return err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := plotter.DefaultGlyphStyle
		gs.Color = blind.Sequential(blind.Iridescent, 0.5)
		if numCl > 0 {
			if l, ok := clusters[taxa[i]]; ok {
				gs.Color = blind.Sequential(blind.Iridescent, (float64(l)+0.5)/float64(numCl))
			}
		}
		return gs
	}
	pt.Add(sc)

	if err := pt.Save(6*vg.Inch, 6*vg.Inch, plotFile); err != nil {
		return fmt.Errorf("while writing %q: %v", plotFile, err)
	}
	return nil
}
