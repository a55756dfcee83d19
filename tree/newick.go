// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Newick reads a tree in Newick
// (parenthetical) format,
// for example:
//
//	(A:0.1,(B:0.2,C:0.15):0.05,D:0.3);
//
// Branch lengths are optional on reading
// and default to zero.
// Internal node labels are ignored.
// The name is the name given to the tree.
func Newick(r io.Reader, name string) (*Tree, error) {
	br := bufio.NewReader(r)

	t := &Tree{
		name:  name,
		terms: make(map[string]int),
	}

	tok, err := peek(br)
	if err != nil {
		return nil, fmt.Errorf("newick tree %q: %v", name, err)
	}
	if tok != '(' {
		return nil, fmt.Errorf("newick tree %q: expecting %q", name, '(')
	}

	if _, err := readNode(br, t, -1); err != nil {
		return nil, fmt.Errorf("newick tree %q: %v", name, err)
	}

	tok, err = next(br)
	if err != nil {
		return nil, fmt.Errorf("newick tree %q: %v", name, err)
	}
	if tok != ';' {
		return nil, fmt.Errorf("newick tree %q: expecting %q", name, ';')
	}

	if len(t.terms) == 0 {
		return nil, fmt.Errorf("newick tree %q: tree without terminals", name)
	}
	t.setRootLen()
	return t, nil
}

// readNode reads a node
// (either an internal node
// or a terminal)
// with its branch length,
// and adds it to the tree.
func readNode(r *bufio.Reader, t *Tree, parent int) (int, error) {
	tok, err := peek(r)
	if err != nil {
		return 0, err
	}

	var taxon string
	var children bool
	if tok == '(' {
		children = true
	} else {
		taxon, err = readLabel(r)
		if err != nil {
			return 0, err
		}
		if taxon == "" {
			return 0, fmt.Errorf("expecting terminal name")
		}
	}

	// the node must be stored
	// before its children
	id, err := t.addNode(parent, 0, taxon)
	if err != nil {
		return 0, err
	}

	if children {
		next(r)
		for {
			if _, err := readNode(r, t, id); err != nil {
				return 0, err
			}
			tok, err := next(r)
			if err != nil {
				return 0, err
			}
			if tok == ',' {
				continue
			}
			if tok == ')' {
				break
			}
			return 0, fmt.Errorf("unexpected token %q", tok)
		}

		// ignore any internal node label
		if _, err := readLabel(r); err != nil {
			return 0, err
		}
	}

	tok, err = peek(r)
	if err != nil {
		return 0, err
	}
	if tok == ':' {
		next(r)
		brLen, err := readBrLen(r)
		if err != nil {
			return 0, err
		}
		if brLen < 0 {
			return 0, fmt.Errorf("terminal %q: negative branch length", taxon)
		}
		t.nodes[id].brLen = brLen
	}
	return id, nil
}

// readLabel reads a node label.
// An empty label is valid.
func readLabel(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(c) {
			continue
		}
		if strings.ContainsRune("(),:;", c) {
			r.UnreadRune()
			break
		}
		if c == '_' {
			c = ' '
		}
		b.WriteRune(c)
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}

// readBrLen reads a branch length.
func readBrLen(r *bufio.Reader) (float64, error) {
	var b strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if unicode.IsSpace(c) {
			continue
		}
		if strings.ContainsRune("(),:;", c) {
			r.UnreadRune()
			break
		}
		b.WriteRune(c)
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("branch length: %q: %v", b.String(), err)
	}
	return v, nil
}

// next reads the next non-space rune.
func next(r *bufio.Reader) (rune, error) {
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			return 0, err
		}
		if unicode.IsSpace(c) {
			continue
		}
		return c, nil
	}
}

// peek returns the next non-space rune
// without consuming it.
func peek(r *bufio.Reader) (rune, error) {
	c, err := next(r)
	if err != nil {
		return 0, err
	}
	r.UnreadRune()
	return c, nil
}
