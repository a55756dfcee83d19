// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package embed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads embedding coordinates
// from a TSV file,
// with a "strain" field
// and "x", "y",
// and optionally "z" fields.
func ReadTSV(r io.Reader) (*Embedding, error) {
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
	for _, h := range []string{"strain", "x", "y"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}
	axes := []string{"x", "y"}
	if _, ok := fields["z"]; ok {
		axes = append(axes, "z")
	}

	e := &Embedding{
		dims: len(axes),
	}
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		tax := strings.Join(strings.Fields(row[fields["strain"]]), " ")
		if tax == "" {
			continue
		}
		c := make([]float64, 0, len(axes))
		for _, ax := range axes {
			v, err := strconv.ParseFloat(row[fields[ax]], 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, ax, err)
			}
			c = append(c, v)
		}
		e.taxa = append(e.taxa, tax)
		e.coords = append(e.coords, c)
	}
	if len(e.taxa) == 0 {
		return nil, fmt.Errorf("while reading data: empty file")
	}
	return e, nil
}

// TSV writes the embedding coordinates
// into a TSV file,
// one row per strain.
func (e *Embedding) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"strain", "x", "y"}
	if e.dims == 3 {
		header = append(header, "z")
	}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for i, tax := range e.taxa {
		row := make([]string, 0, e.dims+1)
		row = append(row, tax)
		for _, c := range e.coords[i] {
			row = append(row, strconv.FormatFloat(c, 'f', 6, 64))
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
