package genepred

import "slices"

// Strand values.
const (
	StrandPlus  byte = '+'
	StrandMinus byte = '-'
)

// Record is one transcript model. Coordinates are 1-based and inclusive.
// Exons are kept in ascending genomic order regardless of strand.
type Record struct {
	Name     string // transcript ID, e.g. NM_000546.6
	Name2    string // gene symbol
	Chrom    string
	Strand   byte // '+' or '-'
	TxStart  int64
	TxEnd    int64
	CDSStart int64
	CDSEnd   int64
	Exons    []Exon

	parsed  bool
	located bool

	referenceLength int64
	forwardLength   int64
	backwardLength  int64
}

// Exon is one exon of a Record. TxStart/TxEnd and the offsets are set by Locate.
type Exon struct {
	Start int64 // genomic start (1-based)
	End   int64 // genomic end (1-based, inclusive)

	TxStart     int64 // transcript position of Start
	TxEnd       int64 // transcript position of End
	StartOffset Offset
	EndOffset   Offset
}

// Len returns the exon length in bases.
func (e Exon) Len() int64 {
	return e.End - e.Start + 1
}

// IsCoding reports whether the record has a coding region. Source lines mark
// non-coding transcripts with cdsStart == cdsEnd, which after the 0- to 1-based
// conversion leaves CDSStart one past CDSEnd. A one-base CDS has
// CDSStart == CDSEnd.
func (r *Record) IsCoding() bool {
	return r.CDSEnd >= r.CDSStart
}

// IsForwardStrand reports whether the transcript is on the plus strand.
func (r *Record) IsForwardStrand() bool {
	return r.Strand == StrandPlus
}

// IsReverseStrand reports whether the transcript is on the minus strand.
func (r *Record) IsReverseStrand() bool {
	return r.Strand == StrandMinus
}

// Parsed reports whether the record was populated by a Parser.
func (r *Record) Parsed() bool {
	return r.parsed
}

// Located reports whether Locate has run on the record.
func (r *Record) Located() bool {
	return r.located
}

// ReferenceLength returns the spliced transcript length. Zero before Locate.
func (r *Record) ReferenceLength() int64 {
	return r.referenceLength
}

// ForwardLength returns the 5'UTR length in transcript orientation.
func (r *Record) ForwardLength() int64 {
	return r.forwardLength
}

// BackwardLength returns the 3'UTR length in transcript orientation.
func (r *Record) BackwardLength() int64 {
	return r.backwardLength
}

// CodingLength returns the coding length in transcript coordinates, or the
// whole transcript length for non-coding records.
func (r *Record) CodingLength() int64 {
	return r.referenceLength - r.forwardLength - r.backwardLength
}

// ExonNumber returns the 1-based transcript-order number of the exon at
// genomic index i.
func (r *Record) ExonNumber(i int) int {
	if r.IsReverseStrand() {
		return len(r.Exons) - i
	}
	return i + 1
}

// OffsetAt returns the annotated offset of a transcript position. The record
// must be located and pos must lie in 1..ReferenceLength.
func (r *Record) OffsetAt(pos int64) (Offset, error) {
	if !r.located {
		return Offset{}, logicErrorf("offset of %s requested before locate", r.Name)
	}
	if pos < 1 || pos > r.referenceLength {
		return Offset{}, logicErrorf("transcript position %d outside 1..%d", pos, r.referenceLength)
	}
	return r.offsetAt(pos), nil
}

func (r *Record) offsetAt(pos int64) Offset {
	if !r.IsCoding() {
		return Offset{Region: RegionNoncoding, N: pos}
	}
	f := r.forwardLength
	c := r.CodingLength()
	switch {
	case pos <= f:
		return Offset{Region: RegionUTR5, N: f - pos + 1}
	case pos > f+c:
		return Offset{Region: RegionUTR3, N: pos - f - c}
	}
	return Offset{Region: RegionCoding, N: pos - f}
}

// FindExon returns the index of the exon containing the genomic position, or
// -1 when pos falls outside every exon.
func (r *Record) FindExon(pos int64) int {
	lo, hi := 0, len(r.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &r.Exons[mid]
		switch {
		case pos < e.Start:
			hi = mid - 1
		case pos > e.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// Contains reports whether pos lies within the transcript boundaries.
func (r *Record) Contains(pos int64) bool {
	return pos >= r.TxStart && pos <= r.TxEnd
}

// Clone returns a deep copy of the record, including located coordinates.
func (r *Record) Clone() (*Record, error) {
	if r == nil {
		return nil, logicErrorf("copy of a nil record")
	}
	c := *r
	c.Exons = slices.Clone(r.Exons)
	return &c, nil
}

// Reset clears the record so it can be populated again by Parser.ParseInto.
// The backing array of Exons is reused, so exons read from the record before
// the reset must not be retained.
func (r *Record) Reset() {
	*r = Record{Exons: r.Exons[:0]}
}
