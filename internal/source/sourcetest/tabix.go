// Package sourcetest writes small BGZF files with tabix indexes for tests.
package sourcetest

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// EOFBlock is the empty block that terminates every BGZF file.
var EOFBlock = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

const (
	// MaxPos bounds positions in files written by WriteTabix.
	MaxPos = 1 << 14

	// level-5 bin covering [0, MaxPos)
	firstLeafBin = 4681
	// format flag for 0-based half-open begin columns
	zeroBasedFlag = 0x10000
)

// WriteTabix compresses genePred data into a single BGZF block in a temporary
// directory and writes a matching path+".tbi". Every contig gets bin 4681
// with one chunk over the whole block, so positions must stay below MaxPos.
// The returned path names the data file.
func WriteTabix(t testing.TB, data string, zeroBased bool, contigs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genes.txt.gz")

	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf, 1)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.True(t, bytes.HasSuffix(buf.Bytes(), EOFBlock))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	dataEnd := uint64(buf.Len()-len(EOFBlock)) << 16

	var idx bytes.Buffer
	put := func(v any) {
		require.NoError(t, binary.Write(&idx, binary.LittleEndian, v))
	}
	names := strings.Join(contigs, "\x00") + "\x00"
	format := int32(0)
	if zeroBased {
		format |= zeroBasedFlag
	}
	l := genepred.Genepred

	idx.WriteString("TBI\x01")
	put(int32(len(contigs)))
	put(format)
	put(int32(l.Chrom + 1))
	put(int32(l.TxStart + 1))
	put(int32(l.TxEnd + 1))
	put(int32('#'))
	put(int32(0)) // skip
	put(int32(len(names)))
	idx.WriteString(names)
	for range contigs {
		put(int32(1)) // bins
		put(uint32(firstLeafBin))
		put(int32(1)) // chunks
		put(uint64(0))
		put(dataEnd)
		put(int32(1)) // linear index
		put(uint64(0))
	}
	put(uint64(0)) // unplaced records

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err = zw.Write(idx.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path+".tbi", gz.Bytes(), 0644))

	return path
}
