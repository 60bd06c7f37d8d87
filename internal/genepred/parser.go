package genepred

import (
	"strconv"
	"strings"
)

// DefaultDelimiter separates columns in UCSC tables.
const DefaultDelimiter = '\t'

// Parser converts lines into Records under a fixed Layout. A Parser holds no
// per-line state and may be shared between goroutines.
type Parser struct {
	layout    Layout
	delimiter string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithDelimiter sets the column delimiter.
func WithDelimiter(d byte) ParserOption {
	return func(p *Parser) {
		p.delimiter = string(d)
	}
}

// NewParser returns a parser for the given layout.
func NewParser(layout Layout, opts ...ParserOption) *Parser {
	p := &Parser{
		layout:    layout,
		delimiter: string(DefaultDelimiter),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout returns the parser's layout.
func (p *Parser) Layout() Layout {
	return p.layout
}

// Parse parses one line into a new Record.
func (p *Parser) Parse(line string) (*Record, error) {
	r := &Record{}
	if err := p.ParseInto(line, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ParseInto resets r and populates it from line. On error r is left reset.
func (p *Parser) ParseInto(line string, r *Record) error {
	r.Reset()
	fields := strings.Split(strings.TrimRight(line, "\r\n"), p.delimiter)
	col := func(i int) (string, bool) {
		if i < 0 || i >= len(fields) {
			return "", false
		}
		return fields[i], true
	}
	fail := func(reason string) error {
		r.Reset()
		return &LineError{Line: line, Reason: reason}
	}
	integer := func(field string, i int) (int64, error) {
		s, ok := col(i)
		if !ok {
			return 0, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fail("invalid " + field + " " + strconv.Quote(s))
		}
		return n, nil
	}

	chrom, ok := col(p.layout.Chrom)
	if !ok || chrom == "" {
		return fail("missing chrom column")
	}
	r.Chrom = chrom
	r.Name, _ = col(p.layout.Name1)
	r.Name2, _ = col(p.layout.Name2)

	strand, ok := col(p.layout.Strand)
	if !ok {
		return fail("missing strand column")
	}
	switch strand {
	case "+":
		r.Strand = StrandPlus
	case "-":
		r.Strand = StrandMinus
	default:
		return fail("unknown strand type " + strconv.Quote(strand))
	}

	var err error
	if r.TxStart, err = integer("txStart", p.layout.TxStart); err != nil {
		return err
	}
	r.TxStart++ // 0-based to 1-based

	if _, ok := col(p.layout.TxEnd); !ok {
		return fail("missing txEnd column")
	}
	if r.TxEnd, err = integer("txEnd", p.layout.TxEnd); err != nil {
		return err
	}
	if r.CDSStart, err = integer("cdsStart", p.layout.CDSStart); err != nil {
		return err
	}
	r.CDSStart++
	if r.CDSEnd, err = integer("cdsEnd", p.layout.CDSEnd); err != nil {
		return err
	}

	count, err := integer("exonCount", p.layout.ExonCount)
	if err != nil {
		return err
	}
	if count < 0 {
		return fail("negative exonCount")
	}

	starts, ok := col(p.layout.ExonStarts)
	if !ok {
		return fail("missing exonStarts column")
	}
	ends, ok := col(p.layout.ExonEnds)
	if !ok {
		return fail("missing exonEnds column")
	}

	if cap(r.Exons) < int(count) {
		r.Exons = make([]Exon, 0, count)
	}
	var (
		s, e   int64
		rs, re = starts, ends
	)
	for i := int64(0); i < count; i++ {
		if s, rs, ok = nextInt(rs); !ok {
			return fail("exonStarts holds fewer than exonCount entries")
		}
		if e, re, ok = nextInt(re); !ok {
			return fail("exonEnds holds fewer than exonCount entries")
		}
		if e < s+1 {
			return fail("exon end before exon start")
		}
		r.Exons = append(r.Exons, Exon{Start: s + 1, End: e})
	}

	r.parsed = true
	return nil
}

// nextInt reads one integer from a comma-separated list and returns the rest.
func nextInt(list string) (int64, string, bool) {
	if list == "" {
		return 0, "", false
	}
	tok, rest, _ := strings.Cut(list, ",")
	n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, rest, true
}
