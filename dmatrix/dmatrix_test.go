// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dmatrix_test

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/js-arias/phyclust/dmatrix"
)

func TestMatrix(t *testing.T) {
	taxa := []string{"st001", "st002", "st003"}
	m, err := dmatrix.New(taxa)
	if err != nil {
		t.Fatalf("unable to create matrix: %v", err)
	}

	m.Set(0, 1, 0.2)
	m.Set(2, 0, 0.3)
	m.Set(1, 2, 0.25)

	// ignored operations
	m.Set(1, 1, 10)
	m.Set(0, 1, -1)

	if got := m.Taxa(); !reflect.DeepEqual(got, taxa) {
		t.Errorf("taxa: got %v, want %v", got, taxa)
	}
	if m.Len() != 3 {
		t.Errorf("length: got %d, want %d", m.Len(), 3)
	}

	want := [][]float64{
		{0, 0.2, 0.3},
		{0.2, 0, 0.25},
		{0.3, 0.25, 0},
	}
	for i := range taxa {
		for j := range taxa {
			if d := m.Dist(i, j); d != want[i][j] {
				t.Errorf("distance %d-%d: got %.6f, want %.6f", i, j, d, want[i][j])
			}
		}
	}

	if d, ok := m.TaxDist("st001", "st003"); !ok || d != 0.3 {
		t.Errorf("distance st001-st003: got %.6f, want %.6f", d, 0.3)
	}
	if _, ok := m.TaxDist("st001", "not-there"); ok {
		t.Errorf("distance st001-not-there: unexpected value")
	}
	if max := m.Max(); max != 0.3 {
		t.Errorf("maximum: got %.6f, want %.6f", max, 0.3)
	}
	if off := m.OffDiag(); len(off) != 3 {
		t.Errorf("off-diagonal: got %d distances, want %d", len(off), 3)
	}
}

func TestNewRepeated(t *testing.T) {
	if _, err := dmatrix.New([]string{"st001", "st001"}); err == nil {
		t.Errorf("expecting error for repeated taxon")
	}
}

func TestFuse(t *testing.T) {
	taxa := []string{"st001", "st002", "st003"}

	a, _ := dmatrix.New(taxa)
	b, _ := dmatrix.New(taxa)
	for i := 1; i < len(taxa); i++ {
		for j := 0; j < i; j++ {
			a.Set(i, j, 0.2)
			b.Set(i, j, 0.4)
		}
	}

	f, err := dmatrix.Fuse(a, b, 0.5)
	if err != nil {
		t.Fatalf("unable to fuse matrices: %v", err)
	}
	for i := range taxa {
		for j := range taxa {
			want := 0.3
			if i == j {
				want = 0
			}
			if d := f.Dist(i, j); math.Abs(d-want) > 1e-10 {
				t.Errorf("distance %d-%d: got %.6f, want %.6f", i, j, d, want)
			}
		}
	}

	// weighted fusion
	w, err := dmatrix.Fuse(a, b, 0.75)
	if err != nil {
		t.Fatalf("unable to fuse matrices: %v", err)
	}
	if d := w.Dist(0, 1); math.Abs(d-0.25) > 1e-10 {
		t.Errorf("weighted distance: got %.6f, want %.6f", d, 0.25)
	}
}

func TestFuseMismatch(t *testing.T) {
	a, _ := dmatrix.New([]string{"st001", "st002"})
	b, _ := dmatrix.New([]string{"st002", "st001"})
	if _, err := dmatrix.Fuse(a, b, 0.5); !errors.Is(err, dmatrix.ErrIndexMismatch) {
		t.Errorf("got error %q, want %q", err, dmatrix.ErrIndexMismatch)
	}

	c, _ := dmatrix.New([]string{"st001", "st002", "st003"})
	if _, err := dmatrix.Fuse(a, c, 0.5); !errors.Is(err, dmatrix.ErrIndexMismatch) {
		t.Errorf("got error %q, want %q", err, dmatrix.ErrIndexMismatch)
	}
}

func TestTSV(t *testing.T) {
	taxa := []string{"st001", "st002", "st003"}
	m, _ := dmatrix.New(taxa)
	m.Set(0, 1, 0.2)
	m.Set(0, 2, 0.3)
	m.Set(1, 2, 0.25)

	var buf bytes.Buffer
	if err := m.TSV(&buf); err != nil {
		t.Fatalf("unable to write data: %v", err)
	}

	r, err := dmatrix.ReadTSV(&buf)
	if err != nil {
		t.Logf("input data:\n%s\n", buf.String())
		t.Fatalf("unable to read data: %v", err)
	}

	if got := r.Taxa(); !reflect.DeepEqual(got, taxa) {
		t.Errorf("taxa: got %v, want %v", got, taxa)
	}
	for i := range taxa {
		for j := range taxa {
			if r.Dist(i, j) != m.Dist(i, j) {
				t.Errorf("distance %d-%d: got %.6f, want %.6f", i, j, r.Dist(i, j), m.Dist(i, j))
			}
		}
	}
}
