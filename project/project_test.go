// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"os"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/phyclust/project"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Newick, "strains.nwk"},
		{project.Traits, "resistance.tab"},
		{project.Distances, "distances.tab"},
		{project.Clusters, "clusters.tab"},
		{project.Points, "points.tab"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	name := "tmp-project-for-test.tab"
	defer os.Remove(name)

	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}

var clustersBlob = `strain	cluster
st001	0
st002	0
st003	1
`

func TestReadClusters(t *testing.T) {
	c, err := project.ReadClusters(strings.NewReader(clustersBlob))
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}

	want := map[string]int{
		"st001": 0,
		"st002": 0,
		"st003": 1,
	}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("clusters: got %v, want %v", c, want)
	}
}

func TestWriteClusters(t *testing.T) {
	var b strings.Builder
	taxa := []string{"st001", "st002", "st003"}
	labels := []int{0, 0, 1}
	if err := project.WriteClusters(&b, taxa, labels); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	c, err := project.ReadClusters(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	for i, tax := range taxa {
		if c[tax] != labels[i] {
			t.Errorf("strain %s: got cluster %d, want %d", tax, c[tax], labels[i])
		}
	}
}
