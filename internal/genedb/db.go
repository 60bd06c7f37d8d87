// Package genedb retrieves transcript records from an annotation file by
// filtered scan, by gene or transcript name, and by genomic region.
package genedb

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/inodb/vibe-exon/internal/genepred"
	"github.com/inodb/vibe-exon/internal/namelist"
	"github.com/inodb/vibe-exon/internal/source"
)

// Options configures a DB. The zero value reads tab-delimited genePred
// lines without filters.
type Options struct {
	Layout    genepred.Layout
	Delimiter byte

	// Genes and Transcripts restrict Next and Scan. Nil accepts everything.
	Genes       *namelist.Set
	Transcripts *namelist.Set

	// SkipMalformed makes Next and Scan log and skip lines that fail to
	// parse instead of returning the error.
	SkipMalformed bool
}

func (o Options) layout() genepred.Layout {
	if o.Layout.Name == "" {
		return genepred.Genepred
	}
	return o.Layout
}

func (o Options) delimiter() byte {
	if o.Delimiter == 0 {
		return genepred.DefaultDelimiter
	}
	return o.Delimiter
}

// DB is a retrieval session over one line source. A DB keeps a read cursor
// and must not be used by more than one goroutine at a time.
type DB struct {
	src     source.LineSource
	indexed source.IndexedSource
	parser  *genepred.Parser
	opts    Options
	logger  *zap.Logger
}

// Open wraps src. If src implements source.IndexedSource, ByRegion is
// available.
func Open(src source.LineSource, opts Options) (*DB, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: missing data source", genepred.ErrConfig)
	}
	db := &DB{
		src:    src,
		parser: genepred.NewParser(opts.layout(), genepred.WithDelimiter(opts.delimiter())),
		opts:   opts,
		logger: zap.NewNop(),
	}
	if ix, ok := src.(source.IndexedSource); ok {
		db.indexed = ix
	}
	return db, nil
}

// OpenPath opens the file at path, using its tabix index when path+".tbi"
// exists.
func OpenPath(path string, opts Options) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: missing data source", genepred.ErrConfig)
	}
	if source.HasIndex(path) {
		src, err := source.OpenTabix(path)
		if err != nil {
			return nil, err
		}
		return Open(src, opts)
	}
	src, err := source.OpenText(path)
	if err != nil {
		return nil, err
	}
	return Open(src, opts)
}

// OpenMemory loads the whole file at path and indexes it in memory, for
// region queries on files without a tabix index.
func OpenMemory(path string, opts Options) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: missing data source", genepred.ErrConfig)
	}
	text, err := source.OpenText(path)
	if err != nil {
		return nil, err
	}
	cols := source.ColumnsFor(opts.layout())
	cols.Delimiter = opts.delimiter()
	mem, err := source.LoadMemory(text, cols)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return Open(mem, opts)
}

// SetLogger sets the logger for skipped lines and query diagnostics.
func (db *DB) SetLogger(l *zap.Logger) {
	db.logger = l
}

// Layout returns the column layout in use.
func (db *DB) Layout() genepred.Layout {
	return db.parser.Layout()
}

// Options returns the options in use, with the layout and delimiter
// defaults filled in.
func (db *DB) Options() Options {
	o := db.opts
	o.Layout = o.layout()
	o.Delimiter = o.delimiter()
	return o
}

// Indexed reports whether ByRegion is supported.
func (db *DB) Indexed() bool {
	return db.indexed != nil
}

// Close releases the underlying source.
func (db *DB) Close() error {
	return db.src.Close()
}

// Rewind moves the read cursor back to the first line.
func (db *DB) Rewind() error {
	return db.src.Rewind()
}

// nextLine returns the next data line, skipping blank and comment lines.
// It returns "", io.EOF at end of data.
func (db *DB) nextLine() (string, error) {
	for {
		line, err := db.src.ReadLine()
		if err != nil {
			return "", err
		}
		if line == "" || line[0] == '#' || line[0] == '/' {
			continue
		}
		return line, nil
	}
}

func (db *DB) accept(r *genepred.Record) bool {
	return db.opts.Genes.Contains(r.Name2) && db.opts.Transcripts.ContainsTranscript(r.Name)
}

// Next returns the next record accepted by the name filters, or nil, nil at
// end of data.
func (db *DB) Next() (*genepred.Record, error) {
	for {
		line, err := db.nextLine()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		r, err := db.parser.Parse(line)
		if err != nil {
			if db.opts.SkipMalformed && errors.Is(err, genepred.ErrMalformedLine) {
				db.logger.Warn("skipping malformed line", zap.Error(err))
				continue
			}
			return nil, err
		}
		if db.accept(r) {
			return r, nil
		}
	}
}

// Scan rewinds and returns every record accepted by the name filters, in
// file order.
func (db *DB) Scan() ([]*genepred.Record, error) {
	if err := db.Rewind(); err != nil {
		return nil, err
	}
	var out []*genepred.Record
	for {
		r, err := db.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			return out, nil
		}
		out = append(out, r)
	}
}
