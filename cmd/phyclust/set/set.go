// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package set implements a command to set
// the data files of a PhyClust project.
package set

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/project"
)

var Command = &command.Command{
	Usage: `set [--newick <tree-file>] [--trees <tree-file>]
	[--traits <trait-file>]
	<project-file>`,
	Short: "set the data files of a PhyClust project",
	Long: `
Command set adds data files to a PhyClust project, so other commands can
retrieve them by their dataset type.

The argument of the command is the name of the project file. If no project
file exists, a new project will be created.

The flag --newick sets a tree file in parenthetical (newick) format with
branch lengths. The flag --trees sets a collection of time calibrated trees in
the tab-delimited format used by PhyGeo; node ages will be transformed into
branch lengths in million years. If both files are defined, the newick file
takes precedence.

The flag --traits sets a binary trait matrix, a tab-delimited file with a
"strain" column and one column per trait, with values 0 or 1 (missing values
are read as 0).
	`,
	SetFlags: setFlags,
	Run:      run,
}

var newickFile string
var treesFile string
var traitsFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&newickFile, "newick", "", "")
	c.Flags().StringVar(&treesFile, "trees", "", "")
	c.Flags().StringVar(&traitsFile, "traits", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	if newickFile != "" {
		p.Add(project.Newick, newickFile)
	}
	if treesFile != "" {
		p.Add(project.Trees, treesFile)
	}
	if traitsFile != "" {
		p.Add(project.Traits, traitsFile)
	}

	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}
