package genepred

import (
	"fmt"
	"strconv"
	"strings"
)

// Region classifies an annotated offset.
type Region uint8

const (
	RegionUnknown Region = iota
	RegionUTR5
	RegionUTR3
	RegionCoding
	RegionNoncoding
)

// String returns the region name.
func (r Region) String() string {
	switch r {
	case RegionUTR5:
		return "5'UTR"
	case RegionUTR3:
		return "3'UTR"
	case RegionCoding:
		return "coding"
	case RegionNoncoding:
		return "noncoding"
	}
	return "unknown"
}

// prefix returns the notation prefix used when rendering offsets.
func (r Region) prefix() string {
	switch r {
	case RegionUTR5:
		return "-"
	case RegionUTR3:
		return "*"
	case RegionCoding:
		return "c."
	case RegionNoncoding:
		return "n."
	}
	return ""
}

// Offset is a position relative to the nearest edge of its region.
// N is 1-based: -1 is the base just before the start codon, c.1 the first
// coding base, *1 the base just after the stop codon.
type Offset struct {
	Region Region
	N      int64
}

// String renders the offset as -N, *N, c.N or n.N.
func (o Offset) String() string {
	if o.Region == RegionUnknown {
		return "."
	}
	return o.Region.prefix() + strconv.FormatInt(o.N, 10)
}

// IsZero reports whether the offset has not been computed.
func (o Offset) IsZero() bool {
	return o.Region == RegionUnknown
}

// ParseOffset parses the output of Offset.String.
func ParseOffset(s string) (Offset, error) {
	var (
		r    Region
		rest string
	)
	switch {
	case strings.HasPrefix(s, "c."):
		r, rest = RegionCoding, s[2:]
	case strings.HasPrefix(s, "n."):
		r, rest = RegionNoncoding, s[2:]
	case strings.HasPrefix(s, "-"):
		r, rest = RegionUTR5, s[1:]
	case strings.HasPrefix(s, "*"):
		r, rest = RegionUTR3, s[1:]
	default:
		return Offset{}, fmt.Errorf("parse offset %q: unknown region prefix", s)
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return Offset{}, fmt.Errorf("parse offset %q: invalid magnitude", s)
	}
	return Offset{Region: r, N: n}, nil
}
