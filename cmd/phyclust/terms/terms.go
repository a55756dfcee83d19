// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of strains in a PhyClust project.
package terms

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/project"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] [--traits] <project-file>",
	Short: "print a list of strains",
	Long: `
Command terms reads the tree of a PhyClust project and prints the name of its
terminals in the standard output.

The argument of the command is the name of the project file.

By default the terminals of the tree will be printed. If the flag --tree is
set, the named tree of a dated tree collection will be used. If the flag
--traits is set, the strains of the trait matrix will be printed instead.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var useTraits bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().BoolVar(&useTraits, "traits", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	var ls []string
	if useTraits {
		tm, err := p.Traits()
		if err != nil {
			return err
		}
		ls = tm.Taxa()
	} else {
		t, err := p.Tree(treeName)
		if err != nil {
			return err
		}
		ls = t.Terms()
	}

	for _, tax := range ls {
		fmt.Fprintf(c.Stdout(), "%s\n", tax)
	}
	return nil
}
