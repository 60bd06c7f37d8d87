// Package genepred parses UCSC genePred-style transcript models and maps their
// exons onto genomic, transcript (p.) and coding (c./n.) coordinates.
package genepred

import (
	"fmt"
	"sort"
	"strings"
)

// Layout maps the semantic fields of a transcript line to column indices.
// A negative index marks a field the layout does not carry.
type Layout struct {
	Name       string
	Chrom      int
	Name1      int // transcript ID
	Name2      int // gene symbol
	Strand     int
	TxStart    int
	TxEnd      int
	CDSStart   int
	CDSEnd     int
	ExonCount  int
	ExonStarts int
	ExonEnds   int
}

// Genepred is the plain genePred table layout, as exported by the UCSC table
// browser (name2 is the optional extended column).
var Genepred = Layout{
	Name:       "genepred",
	Name1:      0,
	Chrom:      1,
	Strand:     2,
	TxStart:    3,
	TxEnd:      4,
	CDSStart:   5,
	CDSEnd:     6,
	ExonCount:  7,
	ExonStarts: 8,
	ExonEnds:   9,
	Name2:      10,
}

// RefGene is the UCSC refGene.txt layout, whose first column is the bin.
var RefGene = Layout{
	Name:       "refgene",
	Name1:      1,
	Chrom:      2,
	Strand:     3,
	TxStart:    4,
	TxEnd:      5,
	CDSStart:   6,
	CDSEnd:     7,
	ExonCount:  8,
	ExonStarts: 9,
	ExonEnds:   10,
	Name2:      12,
}

// RefFlat is the UCSC refFlat.txt layout: gene symbol first, then transcript.
var RefFlat = Layout{
	Name:       "refflat",
	Name2:      0,
	Name1:      1,
	Chrom:      2,
	Strand:     3,
	TxStart:    4,
	TxEnd:      5,
	CDSStart:   6,
	CDSEnd:     7,
	ExonCount:  8,
	ExonStarts: 9,
	ExonEnds:   10,
}

var layouts = map[string]Layout{
	Genepred.Name: Genepred,
	RefGene.Name:  RefGene,
	RefFlat.Name:  RefFlat,
}

// LayoutByName returns the named layout. Names are case-insensitive.
func LayoutByName(kind string) (Layout, error) {
	l, ok := layouts[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return Layout{}, fmt.Errorf("%w: unknown format %q (want one of %s)",
			ErrConfig, kind, strings.Join(Layouts(), ", "))
	}
	return l, nil
}

// Layouts returns the registered layout names in sorted order.
func Layouts() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the layout name.
func (l Layout) String() string {
	return l.Name
}
