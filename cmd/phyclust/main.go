// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyClust is a tool for tree-aware clustering
// of bacterial strain collections.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyclust/cmd/phyclust/boot"
	"github.com/js-arias/phyclust/cmd/phyclust/clustercmd"
	"github.com/js-arias/phyclust/cmd/phyclust/dist"
	"github.com/js-arias/phyclust/cmd/phyclust/embedcmd"
	"github.com/js-arias/phyclust/cmd/phyclust/optimk"
	"github.com/js-arias/phyclust/cmd/phyclust/outliers"
	"github.com/js-arias/phyclust/cmd/phyclust/set"
	"github.com/js-arias/phyclust/cmd/phyclust/terms"
)

var app = &command.Command{
	Usage: "phyclust <command> [<argument>...]",
	Short: "a tool for tree-aware clustering of bacterial strains",
}

func init() {
	app.Add(set.Command)
	app.Add(terms.Command)
	app.Add(dist.Command)
	app.Add(clustercmd.Command)
	app.Add(optimk.Command)
	app.Add(embedcmd.Command)
	app.Add(outliers.Command)
	app.Add(boot.Command)
}

func main() {
	app.Main()
}
