// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/phyclust/dmatrix"
	"github.com/js-arias/phyclust/embed"
	"github.com/js-arias/phyclust/traits"
	"github.com/js-arias/phyclust/tree"
	"github.com/js-arias/timetree"
)

// Tree reads the tree of a project.
// A newick file takes precedence;
// otherwise the tree is read
// from a dated tree collection,
// picking the named tree
// (or the first tree,
// if no name is given)
// and transforming ages into branch lengths.
func (p *Project) Tree(name string) (*tree.Tree, error) {
	if nf := p.Path(Newick); nf != "" {
		f, err := os.Open(nf)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		t, err := tree.Newick(f, name)
		if err != nil {
			return nil, fmt.Errorf("while reading file %q: %v", nf, err)
		}
		return t, nil
	}

	tf := p.Path(Trees)
	if tf == "" {
		return nil, fmt.Errorf("tree not defined in project %q", p.name)
	}
	f, err := os.Open(tf)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", tf, err)
	}
	if name == "" {
		names := c.Names()
		if len(names) == 0 {
			return nil, fmt.Errorf("on file %q: no trees in file", tf)
		}
		name = names[0]
	}
	st := c.Tree(name)
	if st == nil {
		return nil, fmt.Errorf("on file %q: tree %q not in file", tf, name)
	}

	t, err := tree.FromTimeTree(st)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", tf, err)
	}
	return t, nil
}

// Traits reads the binary trait matrix
// of a project.
func (p *Project) Traits() (*traits.Matrix, error) {
	name := p.Path(Traits)
	if name == "" {
		return nil, fmt.Errorf("traits not defined in project %q", p.name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := traits.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return m, nil
}

// Distances reads the fused distance matrix
// of a project.
func (p *Project) Distances() (*dmatrix.Matrix, error) {
	name := p.Path(Distances)
	if name == "" {
		return nil, fmt.Errorf("distances not defined in project %q", p.name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := dmatrix.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return m, nil
}

// Points reads the embedding coordinates
// of a project.
func (p *Project) Points() (*embed.Embedding, error) {
	name := p.Path(Points)
	if name == "" {
		return nil, fmt.Errorf("points not defined in project %q", p.name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	e, err := embed.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return e, nil
}

// Clusters reads the strain-to-cluster assignments
// of a project.
func (p *Project) Clusters() (map[string]int, error) {
	name := p.Path(Clusters)
	if name == "" {
		return nil, fmt.Errorf("clusters not defined in project %q", p.name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := ReadClusters(f)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return c, nil
}

// ReadClusters reads a strain-to-cluster
// assignment table from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - strain, the strain identifier
//   - cluster, the cluster label
//
// Here is an example file:
//
//	strain	cluster
//	st001	0
//	st002	0
//	st003	1
func ReadClusters(r io.Reader) (map[string]int, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{"strain", "cluster"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	c := make(map[string]int)
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "strain"
		tax := strings.Join(strings.Fields(row[fields[f]]), " ")
		if tax == "" {
			continue
		}

		f = "cluster"
		l, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %q: %v", ln, f, row[fields[f]], err)
		}
		c[tax] = l
	}
	return c, nil
}

// WriteClusters writes a strain-to-cluster
// assignment table into a TSV file.
// Strains are written in the given order.
func WriteClusters(w io.Writer, taxa []string, labels []int) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write([]string{"strain", "cluster"}); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}
	for i, tax := range taxa {
		row := []string{
			tax,
			strconv.Itoa(labels[i]),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
