// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dmatrix

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ReadTSV reads a distance matrix from a TSV file.
//
// The TSV file must be a square table:
// a header with a "taxon" column
// followed by one column per taxon,
// and one row per taxon
// with the pairwise distances.
//
// Here is an example file:
//
//	taxon	strainA	strainB	strainC
//	strainA	0.000000	0.200000	0.300000
//	strainB	0.200000	0.000000	0.250000
//	strainC	0.300000	0.250000	0.000000
func ReadTSV(r io.Reader) (*Matrix, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	if len(head) < 2 || head[0] != "taxon" {
		return nil, fmt.Errorf("expecting field %q", "taxon")
	}

	m, err := New(head[1:])
	if err != nil {
		return nil, err
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		i, ok := m.ids[row[0]]
		if !ok {
			return nil, fmt.Errorf("on row %d: taxon %q not in header", ln, row[0])
		}
		for j, f := range row[1:] {
			d, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: taxon %q: %v", ln, row[0], err)
			}
			if i == j {
				if d != 0 {
					return nil, fmt.Errorf("on row %d: taxon %q: non-zero diagonal", ln, row[0])
				}
				continue
			}
			if d < 0 {
				return nil, fmt.Errorf("on row %d: taxon %q: negative distance", ln, row[0])
			}
			m.Set(i, j, d)
		}
	}
	return m, nil
}

// TSV writes a distance matrix into a TSV file.
func (m *Matrix) TSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# distance matrix\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	header := append([]string{"taxon"}, m.taxa...)
	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for i, tax := range m.taxa {
		row := make([]string, 0, len(m.taxa)+1)
		row = append(row, tax)
		for j := range m.taxa {
			row = append(row, strconv.FormatFloat(m.d.At(i, j), 'f', 6, 64))
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
