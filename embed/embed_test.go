// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package embed_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/phyclust/dmatrix"
	"github.com/js-arias/phyclust/embed"
)

// testMatrix returns a distance matrix
// with two well separated groups of strains.
func testMatrix(t testing.TB, n int) *dmatrix.Matrix {
	t.Helper()

	taxa := make([]string, 0, n)
	for i := 0; i < n; i++ {
		taxa = append(taxa, fmt.Sprintf("st%03d", i))
	}
	m, err := dmatrix.New(taxa)
	if err != nil {
		t.Fatalf("unable to create matrix: %v", err)
	}
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			d := 1.0
			if (i < n/2) == (j < n/2) {
				d = 0.1 + 0.01*float64(i-j)
			}
			m.Set(i, j, d)
		}
	}
	return m
}

func TestNew(t *testing.T) {
	m := testMatrix(t, 10)

	e, err := embed.New(m, embed.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}

	if e.Len() != m.Len() {
		t.Errorf("points: got %d, want %d", e.Len(), m.Len())
	}
	if e.Dims() != 2 {
		t.Errorf("dimension: got %d, want 2", e.Dims())
	}
	if got := e.Taxa(); !reflect.DeepEqual(got, m.Taxa()) {
		t.Errorf("strains: got %v, want %v", got, m.Taxa())
	}
	for i := 0; i < e.Len(); i++ {
		c := e.Coords(i)
		if len(c) != 2 {
			t.Fatalf("point %d: got %d coordinates, want 2", i, len(c))
		}
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("point %d: invalid coordinate %v", i, c)
			}
		}
	}
}

func TestNewThreeDims(t *testing.T) {
	m := testMatrix(t, 10)

	e, err := embed.New(m, embed.Options{Dims: 3, Seed: 43})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}
	if e.Dims() != 3 {
		t.Errorf("dimension: got %d, want 3", e.Dims())
	}
	if c := e.Coords(0); len(c) != 3 {
		t.Errorf("got %d coordinates, want 3", len(c))
	}
}

func TestNewDeterminism(t *testing.T) {
	m := testMatrix(t, 10)

	a, err := embed.New(m, embed.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}
	b, err := embed.New(m, embed.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		if !reflect.DeepEqual(a.Coords(i), b.Coords(i)) {
			t.Errorf("point %d: got %v, want %v", i, b.Coords(i), a.Coords(i))
		}
	}

	// a different seed gives a different layout
	o, err := embed.New(m, embed.Options{Seed: 44})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}
	same := true
	for i := 0; i < a.Len(); i++ {
		if !reflect.DeepEqual(a.Coords(i), o.Coords(i)) {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different seeds give the same layout")
	}
}

func TestNewSmall(t *testing.T) {
	// less strains than the default neighbor number
	m := testMatrix(t, 4)
	e, err := embed.New(m, embed.Options{Seed: 43})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}
	if e.Len() != 4 {
		t.Errorf("points: got %d, want 4", e.Len())
	}
}

func TestNewInvalid(t *testing.T) {
	m := testMatrix(t, 10)
	if _, err := embed.New(m, embed.Options{Dims: 4, Seed: 43}); err == nil {
		t.Errorf("expecting error for 4 dimensions")
	}

	s, err := dmatrix.New([]string{"st001", "st002"})
	if err != nil {
		t.Fatalf("unable to create matrix: %v", err)
	}
	if _, err := embed.New(s, embed.Options{Seed: 43}); !errors.Is(err, embed.ErrInsufficientData) {
		t.Errorf("got error %q, want %q", err, embed.ErrInsufficientData)
	}
}

func TestTSV(t *testing.T) {
	m := testMatrix(t, 6)
	e, err := embed.New(m, embed.Options{Dims: 3, Seed: 43})
	if err != nil {
		t.Fatalf("unable to embed: %v", err)
	}

	var buf bytes.Buffer
	if err := e.TSV(&buf); err != nil {
		t.Fatalf("unable to write data: %v", err)
	}
	r, err := embed.ReadTSV(&buf)
	if err != nil {
		t.Logf("input data:\n%s\n", buf.String())
		t.Fatalf("unable to read data: %v", err)
	}

	if !reflect.DeepEqual(r.Taxa(), e.Taxa()) {
		t.Errorf("strains: got %v, want %v", r.Taxa(), e.Taxa())
	}
	if r.Dims() != e.Dims() {
		t.Errorf("dimension: got %d, want %d", r.Dims(), e.Dims())
	}
	for i := 0; i < e.Len(); i++ {
		got, want := r.Coords(i), e.Coords(i)
		for d := range want {
			// coordinates are stored with six decimals
			if math.Abs(got[d]-want[d]) > 1e-5 {
				t.Errorf("point %d: got %v, want %v", i, got, want)
			}
		}
	}
}

func TestReadTSVInvalid(t *testing.T) {
	noStrain := "taxon\tx\ty\nst001\t0.1\t0.2\n"
	if _, err := embed.ReadTSV(strings.NewReader(noStrain)); err == nil {
		t.Errorf("expecting error for missing strain field")
	}

	badCoord := "strain\tx\ty\nst001\t0.1\tnope\n"
	if _, err := embed.ReadTSV(strings.NewReader(badCoord)); err == nil {
		t.Errorf("expecting error for invalid coordinate")
	}

	if _, err := embed.ReadTSV(strings.NewReader("strain\tx\ty\n")); err == nil {
		t.Errorf("expecting error for empty file")
	}
}
