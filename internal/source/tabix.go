package source

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/tabix"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// IndexSuffix is appended to a data path to find its tabix index.
const IndexSuffix = ".tbi"

// Tabix reads a BGZF-compressed file with a tabix index.
type Tabix struct {
	path   string
	file   *os.File
	bg     *bgzf.Reader
	reader *bufio.Reader
	index  *tabix.Index
	cols   Columns
	ids    map[string]int
	names  []string
}

// HasIndex reports whether path has a tabix index next to it.
func HasIndex(path string) bool {
	_, err := os.Stat(path + IndexSuffix)
	return err == nil
}

// OpenTabix opens a BGZF data file and its path+".tbi" index.
func OpenTabix(path string) (*Tabix, error) {
	idx, err := readIndex(path + IndexSuffix)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, genepred.NewIOError("open data file", path, err)
	}
	bg, err := bgzf.NewReader(file, 1)
	if err != nil {
		file.Close()
		return nil, genepred.NewIOError("open bgzf reader", path, err)
	}

	return &Tabix{
		path:   path,
		file:   file,
		bg:     bg,
		reader: bufio.NewReader(bg),
		index:  idx,
		cols: Columns{
			Name:      int(idx.NameColumn),
			Begin:     int(idx.BeginColumn),
			End:       int(idx.EndColumn),
			ZeroBased: idx.ZeroBased,
			Meta:      byte(idx.MetaChar),
			Delimiter: '\t',
		},
		ids:   idx.IDs(),
		names: idx.Names(),
	}, nil
}

func readIndex(path string) (*tabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, genepred.NewIOError("open index", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, genepred.NewIOError("open index", path, err)
	}
	defer gz.Close()

	idx, err := tabix.ReadFrom(gz)
	if err != nil {
		return nil, genepred.NewIOError("read index", path, err)
	}
	return idx, nil
}

// ReadLine returns the next line of the data file.
func (t *Tabix) ReadLine() (string, error) {
	return readLine(t.reader, t.path)
}

// Rewind seeks back to the first block.
func (t *Tabix) Rewind() error {
	if err := t.bg.Seek(bgzf.Offset{}); err != nil {
		return genepred.NewIOError("rewind", t.path, err)
	}
	t.reader.Reset(t.bg)
	return nil
}

// Close releases the reader and file.
func (t *Tabix) Close() error {
	err := t.bg.Close()
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Columns returns the column configuration stored in the index.
func (t *Tabix) Columns() Columns { return t.cols }

// ResolveContig returns the index id of a contig.
func (t *Tabix) ResolveContig(name string) (int, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Contigs returns contig names in index order.
func (t *Tabix) Contigs() []string {
	return append([]string(nil), t.names...)
}

// QueryOverlap reads the index chunks covering [start, end) and yields the
// lines that overlap it. The query uses its own file handle, so it does not
// disturb sequential reading.
func (t *Tabix) QueryOverlap(id int, start, end int64) (LineIterator, error) {
	if id < 0 || id >= len(t.names) {
		return nil, fmt.Errorf("%w: contig id %d out of range", genepred.ErrLogic, id)
	}
	name := t.names[id]
	chunks, err := t.index.Chunks(name, int(start), int(end))
	if err != nil {
		if errors.Is(err, index.ErrNoReference) || errors.Is(err, index.ErrInvalid) {
			return emptyIterator{}, nil
		}
		return nil, genepred.NewIOError("query index", t.path, err)
	}

	file, err := os.Open(t.path)
	if err != nil {
		return nil, genepred.NewIOError("open data file", t.path, err)
	}
	bg, err := bgzf.NewReader(file, 1)
	if err != nil {
		file.Close()
		return nil, genepred.NewIOError("open bgzf reader", t.path, err)
	}
	cr, err := index.NewChunkReader(bg, chunks)
	if err != nil {
		bg.Close()
		file.Close()
		return nil, genepred.NewIOError("read chunks", t.path, err)
	}

	return &overlapIterator{
		reader:  bufio.NewReader(cr),
		path:    t.path,
		cols:    t.cols,
		name:    name,
		start:   start,
		end:     end,
		closers: []io.Closer{cr, bg, file},
	}, nil
}

// overlapIterator filters lines from index chunks down to those that truly
// overlap the query; chunks cover whole bins.
type overlapIterator struct {
	reader  *bufio.Reader
	path    string
	cols    Columns
	name    string
	start   int64
	end     int64
	closers []io.Closer
}

func (it *overlapIterator) Next() (string, error) {
	for {
		line, err := readLine(it.reader, it.path)
		if err != nil {
			return "", err
		}
		if it.cols.isMeta(line) {
			continue
		}
		name, s, e, err := it.cols.span(line)
		if err != nil {
			return "", &genepred.LineError{Line: line, Reason: err.Error()}
		}
		if name != it.name {
			continue
		}
		if overlaps(s, e, it.start, it.end) {
			return line, nil
		}
	}
}

func (it *overlapIterator) Close() error {
	var first error
	for _, c := range it.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type emptyIterator struct{}

func (emptyIterator) Next() (string, error) { return "", io.EOF }
func (emptyIterator) Close() error          { return nil }
