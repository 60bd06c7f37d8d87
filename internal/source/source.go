// Package source provides line access to transcript annotation files,
// sequentially or through a positional index.
package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// LineSource yields raw text lines. ReadLine returns io.EOF at end of data.
type LineSource interface {
	ReadLine() (string, error)
	Rewind() error
	Close() error
}

// LineIterator walks the lines returned by an overlap query.
// Next returns io.EOF when the query is exhausted.
type LineIterator interface {
	Next() (string, error)
	Close() error
}

// IndexedSource is a LineSource with a prebuilt positional index.
type IndexedSource interface {
	LineSource
	// ResolveContig maps a contig name to its index id.
	ResolveContig(name string) (int, bool)
	// Contigs lists indexed contig names in index order.
	Contigs() []string
	// QueryOverlap iterates lines overlapping the 0-based half-open
	// interval [start, end) on contig id.
	QueryOverlap(id int, start, end int64) (LineIterator, error)
}

// Columns describes where an index finds positions in a line. Column
// numbers are 1-based, as in tabix. End 0 means the record spans one base.
type Columns struct {
	Name      int
	Begin     int
	End       int
	ZeroBased bool
	Meta      byte
	Delimiter byte
}

// ColumnsFor returns the index columns for a record layout. Transcript
// starts in every UCSC layout are 0-based.
func ColumnsFor(l genepred.Layout) Columns {
	return Columns{
		Name:      l.Chrom + 1,
		Begin:     l.TxStart + 1,
		End:       l.TxEnd + 1,
		ZeroBased: true,
		Meta:      '#',
		Delimiter: '\t',
	}
}

// span extracts the contig and 0-based half-open interval of a line.
func (c Columns) span(line string) (name string, start, end int64, err error) {
	delim := c.Delimiter
	if delim == 0 {
		delim = '\t'
	}
	fields := strings.Split(line, string(delim))
	need := max(c.Name, c.Begin, c.End)
	if len(fields) < need {
		return "", 0, 0, fmt.Errorf("line has %d columns, index needs %d", len(fields), need)
	}
	name = fields[c.Name-1]
	start, err = strconv.ParseInt(fields[c.Begin-1], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("parse begin column: %w", err)
	}
	if !c.ZeroBased {
		start--
	}
	end = start + 1
	if c.End > 0 {
		end, err = strconv.ParseInt(fields[c.End-1], 10, 64)
		if err != nil {
			return "", 0, 0, fmt.Errorf("parse end column: %w", err)
		}
	}
	return name, start, end, nil
}

// isMeta reports whether line carries no record: blank lines, lines starting
// with the meta character, and '/' comment lines.
func (c Columns) isMeta(line string) bool {
	return line == "" || line[0] == '/' || (c.Meta != 0 && line[0] == c.Meta)
}

func overlaps(aStart, aEnd, bStart, bEnd int64) bool {
	return aStart < bEnd && aEnd > bStart
}
