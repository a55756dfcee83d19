// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeclust_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/phyclust/dmatrix"
	"github.com/js-arias/phyclust/tree"
	"github.com/js-arias/phyclust/treeclust"
)

// Three well separated groups of three strains,
// with the tree matching the groups.
const threeGroups = "(((a1:0.1,a2:0.1):0.1,a3:0.2):1,((b1:0.1,b2:0.1):0.1,b3:0.2):1,((c1:0.1,c2:0.1):0.1,c3:0.2):1);"

// groupMatrix returns a distance matrix
// with a small distance within groups
// and a large distance between groups.
// Strains of a group share the first letter
// of their name.
func groupMatrix(t testing.TB, taxa []string) *dmatrix.Matrix {
	t.Helper()

	m, err := dmatrix.New(taxa)
	if err != nil {
		t.Fatalf("unable to create matrix: %v", err)
	}
	for i := 1; i < len(taxa); i++ {
		for j := 0; j < i; j++ {
			d := 1.0
			if taxa[i][0] == taxa[j][0] {
				d = 0.1
			}
			m.Set(i, j, d)
		}
	}
	return m
}

func groupTree(t testing.TB) *tree.Tree {
	t.Helper()

	tr, err := tree.Newick(strings.NewReader(threeGroups), "groups")
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	return tr
}

func TestCutK(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}
	m := groupMatrix(t, taxa)

	for _, link := range []treeclust.Linkage{treeclust.Max, treeclust.Sum, treeclust.Avg} {
		cl, err := treeclust.New(tr, m, link)
		if err != nil {
			t.Fatalf("linkage %s: unable to create clusterer: %v", link, err)
		}

		for k := 1; k <= 9; k++ {
			labels, err := cl.CutK(k)
			if err != nil {
				t.Fatalf("linkage %s: k %d: unexpected error: %v", link, k, err)
			}
			if len(labels) != len(taxa) {
				t.Errorf("linkage %s: k %d: got %d labels, want %d", link, k, len(labels), len(taxa))
			}
			if g := distinct(labels); g != k {
				t.Errorf("linkage %s: k %d: got %d clusters", link, k, g)
			}
			for _, l := range labels {
				if l < 0 || l >= k {
					t.Errorf("linkage %s: k %d: label %d out of range", link, k, l)
				}
			}
		}

		// at k=3 the clusters are the three groups
		labels, err := cl.CutK(3)
		if err != nil {
			t.Fatalf("linkage %s: unexpected error: %v", link, err)
		}
		want := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
		if !reflect.DeepEqual(labels, want) {
			t.Errorf("linkage %s: got %v, want %v", link, labels, want)
		}
	}
}

func TestCutKDeterminism(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}
	first, err := cl.CutK(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for r := 0; r < 5; r++ {
		nc, err := treeclust.New(tr, m, treeclust.Max)
		if err != nil {
			t.Fatalf("unable to create clusterer: %v", err)
		}
		labels, err := nc.CutK(4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(labels, first) {
			t.Errorf("got %v, want %v", labels, first)
		}
	}
}

func TestCutKInvalid(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}
	if _, err := cl.CutK(0); err == nil {
		t.Errorf("expecting error for k = 0")
	}
	if _, err := cl.CutK(4); err == nil {
		t.Errorf("expecting error for k > n")
	}
}

func TestInsufficientData(t *testing.T) {
	tr := groupTree(t)
	m, err := dmatrix.New([]string{"a1"})
	if err != nil {
		t.Fatalf("unable to create matrix: %v", err)
	}
	if _, err := treeclust.New(tr, m, treeclust.Max); !errors.Is(err, treeclust.ErrInsufficientData) {
		t.Errorf("got error %q, want %q", err, treeclust.ErrInsufficientData)
	}
}

func TestCutThreshold(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}

	// distances within groups are 0.1,
	// between groups 1.0:
	// a cut at 0.5 recovers the groups
	labels := cl.CutThreshold(0.5)
	want := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("got %v, want %v", labels, want)
	}

	// a huge threshold merges everything
	labels = cl.CutThreshold(100)
	if g := distinct(labels); g != 1 {
		t.Errorf("got %d clusters, want 1", g)
	}

	// a tiny threshold keeps all strains apart
	labels = cl.CutThreshold(0.01)
	if g := distinct(labels); g != len(taxa) {
		t.Errorf("got %d clusters, want %d", g, len(taxa))
	}
}

func TestAutoThreshold(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}
	th := cl.AutoThreshold()
	if th <= 0 {
		t.Errorf("threshold: got %.6f, want a positive value", th)
	}
	if o := cl.AutoThreshold(); o != th {
		t.Errorf("threshold: got %.6f, want %.6f", o, th)
	}

	// an all-zero matrix still gives a positive threshold
	z, err := dmatrix.New(taxa)
	if err != nil {
		t.Fatalf("unable to create matrix: %v", err)
	}
	zc, err := treeclust.New(tr, z, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}
	if th := zc.AutoThreshold(); th <= 0 {
		t.Errorf("threshold: got %.6f, want a positive value", th)
	}
}

func TestOutsideTree(t *testing.T) {
	tr := groupTree(t)

	// x1 is not a terminal of the tree
	taxa := []string{"a1", "a2", "a3", "x1"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Avg)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}
	labels, err := cl.CutK(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 0, 0, 1}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("got %v, want %v", labels, want)
	}
}

func TestCurveKnee(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}
	kc, err := cl.Curve(1, 5)
	if err != nil {
		t.Fatalf("unable to compute curve: %v", err)
	}

	if want := []int{1, 2, 3, 4, 5}; !reflect.DeepEqual(kc.K, want) {
		t.Errorf("candidates: got %v, want %v", kc.K, want)
	}
	for i := 1; i < len(kc.Dispersion); i++ {
		if kc.Dispersion[i] > kc.Dispersion[i-1] {
			t.Errorf("dispersion increases from k %d to %d", kc.K[i-1], kc.K[i])
		}
	}

	// three well separated groups
	k, ok := kc.Knee()
	if !ok {
		t.Fatalf("expecting a knee")
	}
	if k != 3 {
		t.Errorf("knee: got %d, want 3", k)
	}
}

func TestKneeNone(t *testing.T) {
	// a straight line has no knee
	kc := &treeclust.KCurve{
		K:          []int{1, 2, 3, 4, 5},
		Dispersion: []float64{5, 4, 3, 2, 1},
	}
	if k, ok := kc.Knee(); ok {
		t.Errorf("got knee at %d, want none", k)
	}

	// a flat curve has no knee
	fc := &treeclust.KCurve{
		K:          []int{1, 2, 3},
		Dispersion: []float64{1, 1, 1},
	}
	if k, ok := fc.Knee(); ok {
		t.Errorf("got knee at %d, want none", k)
	}
}

func TestValidate(t *testing.T) {
	tr := groupTree(t)
	taxa := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}
	m := groupMatrix(t, taxa)

	cl, err := treeclust.New(tr, m, treeclust.Max)
	if err != nil {
		t.Fatalf("unable to create clusterer: %v", err)
	}

	good, err := cl.CutK(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad, err := cl.CutK(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vg := treeclust.Validate(m, good)
	vb := treeclust.Validate(m, bad)
	if math.IsNaN(vg.PseudoF) || math.IsNaN(vb.PseudoF) {
		t.Fatalf("unexpected NaN index")
	}
	if vg.PseudoF <= vb.PseudoF {
		t.Errorf("pseudo F: got %.6f for the true grouping, %.6f for a bad one", vg.PseudoF, vb.PseudoF)
	}
	if math.IsNaN(vg.Similarity) || math.IsNaN(vb.Similarity) {
		t.Fatalf("unexpected NaN index")
	}
	if vg.Similarity >= vb.Similarity {
		t.Errorf("similarity: got %.6f for the true grouping, %.6f for a bad one", vg.Similarity, vb.Similarity)
	}
}

func TestValidateDegenerate(t *testing.T) {
	taxa := []string{"a1", "a2", "a3"}
	m := groupMatrix(t, taxa)

	// a single cluster has no valid index
	v := treeclust.Validate(m, []int{0, 0, 0})
	if !math.IsNaN(v.PseudoF) {
		t.Errorf("pseudo F: got %.6f, want NaN", v.PseudoF)
	}
	if !math.IsNaN(v.Similarity) {
		t.Errorf("similarity: got %.6f, want NaN", v.Similarity)
	}

	// every strain in its own cluster
	v = treeclust.Validate(m, []int{0, 1, 2})
	if !math.IsNaN(v.PseudoF) {
		t.Errorf("pseudo F: got %.6f, want NaN", v.PseudoF)
	}
}

func distinct(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}
