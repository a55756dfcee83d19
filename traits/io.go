// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package traits

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads a binary trait matrix
// from a TSV file.
//
// The TSV file must contain a "strain" field
// with the strain identifier;
// every other field is read as a binary trait
// with values 0 or 1.
// Empty cells,
// "?",
// and "na" values
// are stored as 0
// (i.e., missing observations mean absence).
//
// Here is an example file:
//
//	strain	ampicillin	tetracycline	blaTEM
//	st001	1	0	1
//	st002	0	0	0
//	st003	1	1	1
func ReadTSV(r io.Reader) (*Matrix, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	strain := -1
	var features []string
	var cols []int
	for i, h := range head {
		if strings.ToLower(h) == "strain" {
			strain = i
			continue
		}
		features = append(features, h)
		cols = append(cols, i)
	}
	if strain < 0 {
		return nil, fmt.Errorf("expecting field %q", "strain")
	}

	m := New(features)
	obs := make([]byte, len(features))
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		tax := strings.Join(strings.Fields(row[strain]), " ")
		if tax == "" {
			continue
		}

		for j, c := range cols {
			v := strings.ToLower(strings.TrimSpace(row[c]))
			if v == "" || v == "?" || v == "na" {
				obs[j] = 0
				continue
			}
			b, err := strconv.ParseUint(v, 10, 8)
			if err != nil || b > 1 {
				return nil, fmt.Errorf("on row %d: strain %q: trait %q: invalid value %q", ln, tax, features[j], row[c])
			}
			obs[j] = byte(b)
		}
		if err := m.Add(tax, obs); err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return m, nil
}

// TSV writes a trait matrix into a TSV file.
func (m *Matrix) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := append([]string{"strain"}, m.features...)
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for i, tax := range m.taxa {
		row := make([]string, 0, len(m.features)+1)
		row = append(row, tax)
		for _, v := range m.obs[i] {
			row = append(row, strconv.Itoa(int(v)))
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
