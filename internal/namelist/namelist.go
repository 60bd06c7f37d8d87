// Package namelist loads whitelists of gene symbols or transcript IDs.
package namelist

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// Set is an immutable set of names. A nil *Set means "no filter" and accepts
// every name; a non-nil empty Set accepts none.
type Set struct {
	names map[string]struct{}
}

// New returns a set holding the given names.
func New(names ...string) *Set {
	s := &Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// Load reads one name per line from path. Blank lines and lines starting with
// '#' or '/' are skipped. An empty path returns a nil Set.
func Load(path string) (*Set, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, genepred.NewIOError("open name list", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, genepred.NewIOError("open gzip name list", path, err)
		}
		defer gz.Close()
		r = gz
	}

	s, err := Read(r)
	if err != nil {
		return nil, genepred.NewIOError("read name list", path, err)
	}
	return s, nil
}

// Read builds a set from r using the same rules as Load.
func Read(r io.Reader) (*Set, error) {
	s := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || name[0] == '#' || name[0] == '/' {
			continue
		}
		s.names[name] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan name list: %w", err)
	}
	return s, nil
}

// Contains reports whether name is accepted. Matching is exact and
// case-sensitive.
func (s *Set) Contains(name string) bool {
	if s == nil {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// ContainsTranscript is Contains for versioned transcript IDs: an entry
// without a version accepts every version of the ID, while a versioned entry
// only accepts that exact version.
func (s *Set) ContainsTranscript(name string) bool {
	if s == nil {
		return true
	}
	if _, ok := s.names[name]; ok {
		return true
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		_, ok := s.names[name[:i]]
		return ok
	}
	return false
}

// Len returns the number of names.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Members returns the names in sorted order.
func (s *Set) Members() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Digest identifies the set's contents: two sets with the same members have
// the same digest. A nil Set has the empty digest, which no loaded set shares.
func (s *Set) Digest() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%d:%016x", len(s.names), xxh3.HashString(strings.Join(s.Members(), "\n")))
}
