package source

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/biogo/store/interval"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// Memory holds lines in memory and indexes them with one interval tree per
// contig. It serves tests and small annotation sets that ship without a
// tabix index.
type Memory struct {
	lines []string
	pos   int
	cols  Columns
	trees map[string]*interval.IntTree
	names []string
	ids   map[string]int
}

type lineInterval struct {
	start, end int
	idx        int
}

func (l lineInterval) Overlap(b interval.IntRange) bool { return l.start < b.End && l.end > b.Start }
func (l lineInterval) ID() uintptr                      { return uintptr(l.idx) }
func (l lineInterval) Range() interval.IntRange         { return interval.IntRange{Start: l.start, End: l.end} }

// NewMemory indexes lines using cols. Meta and empty lines are kept for
// sequential reads but not indexed.
func NewMemory(lines []string, cols Columns) (*Memory, error) {
	m := &Memory{
		lines: lines,
		cols:  cols,
		trees: make(map[string]*interval.IntTree),
		ids:   make(map[string]int),
	}
	for i, line := range lines {
		if cols.isMeta(line) {
			continue
		}
		name, start, end, err := cols.span(line)
		if err != nil {
			return nil, &genepred.LineError{Line: line, Reason: err.Error()}
		}
		t, ok := m.trees[name]
		if !ok {
			t = &interval.IntTree{}
			m.trees[name] = t
			m.ids[name] = len(m.names)
			m.names = append(m.names, name)
		}
		if err := t.Insert(lineInterval{start: int(start), end: int(end), idx: i}, true); err != nil {
			return nil, fmt.Errorf("index line %d: %w", i+1, err)
		}
	}
	for _, t := range m.trees {
		t.AdjustRanges()
	}
	return m, nil
}

// LoadMemory drains src and indexes its lines. src is closed afterwards.
func LoadMemory(src LineSource, cols Columns) (*Memory, error) {
	defer src.Close()
	var lines []string
	for {
		line, err := src.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return NewMemory(lines, cols)
}

// ReadLine returns the next stored line.
func (m *Memory) ReadLine() (string, error) {
	if m.pos >= len(m.lines) {
		return "", io.EOF
	}
	line := m.lines[m.pos]
	m.pos++
	return line, nil
}

// Rewind restarts at the first line.
func (m *Memory) Rewind() error {
	m.pos = 0
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// ResolveContig returns the id of a contig seen while indexing.
func (m *Memory) ResolveContig(name string) (int, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Contigs returns contig names in order of first appearance.
func (m *Memory) Contigs() []string {
	return append([]string(nil), m.names...)
}

// QueryOverlap returns lines overlapping [start, end) in their stored order.
func (m *Memory) QueryOverlap(id int, start, end int64) (LineIterator, error) {
	if id < 0 || id >= len(m.names) {
		return nil, fmt.Errorf("%w: contig id %d out of range", genepred.ErrLogic, id)
	}
	t := m.trees[m.names[id]]
	hits := t.Get(lineInterval{start: int(start), end: int(end)})
	idx := make([]int, 0, len(hits))
	for _, h := range hits {
		idx = append(idx, h.(lineInterval).idx)
	}
	sort.Ints(idx)

	lines := make([]string, len(idx))
	for i, j := range idx {
		lines[i] = m.lines[j]
	}
	return &sliceIterator{lines: lines}, nil
}

type sliceIterator struct {
	lines []string
	pos   int
}

func (it *sliceIterator) Next() (string, error) {
	if it.pos >= len(it.lines) {
		return "", io.EOF
	}
	line := it.lines[it.pos]
	it.pos++
	return line, nil
}

func (it *sliceIterator) Close() error { return nil }
