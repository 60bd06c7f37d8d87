package genedb

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/vibe-exon/internal/genepred"
	"github.com/inodb/vibe-exon/internal/namelist"
	"github.com/inodb/vibe-exon/internal/source"
	"github.com/inodb/vibe-exon/internal/source/sourcetest"
)

var fixture = []string{
	"# refseq subset",
	"NM_A.1\tchr1\t+\t100\t200\t110\t190\t1\t100,\t200,\tGENEA",
	"NM_A.2\tchr1\t+\t100\t210\t110\t190\t1\t100,\t210,\tGENEA",
	"",
	"NM_B.1\tchr1\t-\t150\t400\t160\t390\t2\t150,300,\t200,400,\tGENEB",
	"/ legacy comment",
	"NM_AB.1\tchr2\t+\t0\t50\t4\t45\t3\t0,20,40,\t10,30,50,\tGeneA",
	"NR_C.1\tchr2\t-\t100\t300\t300\t300\t2\t100,200,\t150,300,\tGENEC",
}

const badLine = "NM_BAD.1\tchr1\t?\t0\t10\t0\t10\t1\t0,\t10,\tBAD"

func openFixture(t *testing.T, lines []string, opts Options) *DB {
	t.Helper()
	mem, err := source.NewMemory(lines, source.ColumnsFor(genepred.Genepred))
	require.NoError(t, err)
	db, err := Open(mem, opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func names(recs []*genepred.Record) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestScan_Filters(t *testing.T) {
	tests := []struct {
		name        string
		genes       *namelist.Set
		transcripts *namelist.Set
		want        []string
	}{
		{"no filters", nil, nil, []string{"NM_A.1", "NM_A.2", "NM_B.1", "NM_AB.1", "NR_C.1"}},
		{"gene filter is case-sensitive", namelist.New("GENEA"), nil, []string{"NM_A.1", "NM_A.2"}},
		{"versionless transcript", nil, namelist.New("NM_A"), []string{"NM_A.1", "NM_A.2"}},
		{"versioned transcript", nil, namelist.New("NM_A.2", "NR_C.1"), []string{"NM_A.2", "NR_C.1"}},
		{"both filters must accept", namelist.New("GENEA"), namelist.New("NM_B"), nil},
		{"both filters agree", namelist.New("GENEB", "GENEC"), namelist.New("NR_C"), []string{"NR_C.1"}},
		{"empty gene set rejects all", namelist.New(), nil, nil},
		{"empty transcript set rejects all", nil, namelist.New(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openFixture(t, fixture, Options{Genes: tt.genes, Transcripts: tt.transcripts})
			recs, err := db.Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recs))
		})
	}
}

func TestNext_StreamsToEnd(t *testing.T) {
	db := openFixture(t, fixture, Options{Genes: namelist.New("GENEB")})

	r, err := db.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "NM_B.1", r.Name)
	assert.Equal(t, "GENEB", r.Name2)
	assert.True(t, r.Parsed())
	assert.False(t, r.Located())

	r, err = db.Next()
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = db.Next()
	require.NoError(t, err)
	assert.Nil(t, r, "end of data is sticky until rewind")

	require.NoError(t, db.Rewind())
	r, err = db.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "NM_B.1", r.Name)
}

func TestScan_RecordsAreOwned(t *testing.T) {
	db := openFixture(t, fixture, Options{})
	first, err := db.Scan()
	require.NoError(t, err)
	require.NoError(t, genepred.Locate(first[0]))

	second, err := db.Scan()
	require.NoError(t, err)
	assert.True(t, first[0].Located())
	assert.False(t, second[0].Located())
	assert.NotSame(t, first[0], second[0])
}

func TestByGene(t *testing.T) {
	db := openFixture(t, fixture, Options{Genes: namelist.New("GENEB")})

	recs, err := db.ByGene("genea")
	require.NoError(t, err)
	assert.Equal(t, []string{"NM_A.1", "NM_A.2", "NM_AB.1"}, names(recs), "case-insensitive, filters ignored")

	recs, err = db.ByGene("GENE")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestByTranscript(t *testing.T) {
	db := openFixture(t, fixture, Options{Transcripts: namelist.New()})

	tests := []struct {
		query string
		want  []string
	}{
		{"nm_a", []string{"NM_A.1", "NM_A.2"}},
		{"NM_A.2", []string{"NM_A.2"}},
		{"nm_a.1", []string{"NM_A.1"}},
		{"NM_A.3", nil},
		{"NM_AB", []string{"NM_AB.1"}},
		{"NM_", nil},
		{"NR_C", []string{"NR_C.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			recs, err := db.ByTranscript(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recs))
		})
	}
}

func TestLookup_FallsBackToTranscript(t *testing.T) {
	db := openFixture(t, fixture, Options{})

	recs, err := db.Lookup("GENEC")
	require.NoError(t, err)
	assert.Equal(t, []string{"NR_C.1"}, names(recs))

	recs, err = db.Lookup("NM_B")
	require.NoError(t, err)
	assert.Equal(t, []string{"NM_B.1"}, names(recs))

	recs, err = db.Lookup("nope")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestByRegion(t *testing.T) {
	db := openFixture(t, fixture, Options{Genes: namelist.New()})
	assert.True(t, db.Indexed())
	assert.Equal(t, []string{"chr1", "chr2"}, db.Contigs())

	tests := []struct {
		name       string
		chrom      string
		start, end int64
		want       []string
	}{
		{"all chr1", "chr1", 150, 160, []string{"NM_A.1", "NM_A.2", "NM_B.1"}},
		{"end is exclusive on records", "chr1", 200, 205, []string{"NM_A.2", "NM_B.1"}},
		{"other contig", "chr2", 0, 10, []string{"NM_AB.1"}},
		{"absent contig", "chr3", 0, 1000, nil},
		{"empty window", "chr1", 150, 150, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := db.ByRegion(tt.chrom, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recs))
			for _, r := range recs {
				assert.False(t, r.Located())
			}
		})
	}

	_, err := db.ByRegion("chr1", 10, 5)
	assert.ErrorIs(t, err, genepred.ErrLogic)
}

func TestByRegion_TabixFile(t *testing.T) {
	path := sourcetest.WriteTabix(t, strings.Join(fixture, "\n")+"\n", true, "chr1", "chr2")

	db, err := OpenPath(path, Options{Genes: namelist.New("GENEB")})
	require.NoError(t, err)
	defer db.Close()
	require.True(t, db.Indexed())
	assert.Equal(t, []string{"chr1", "chr2"}, db.Contigs())

	tests := []struct {
		name       string
		chrom      string
		start, end int64
		want       []string
	}{
		{"between records", "chr1", 400, 1000, nil},
		{"last base", "chr1", 399, 400, []string{"NM_B.1"}},
		{"end is exclusive on records", "chr1", 200, 205, []string{"NM_A.2", "NM_B.1"}},
		{"other contig", "chr2", 120, 130, []string{"NR_C.1"}},
		{"absent contig", "chrX", 0, 1000, nil},
		{"empty window", "chr1", 150, 150, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := db.ByRegion(tt.chrom, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recs))
		})
	}

	// region reads leave the sequential cursor alone
	recs, err := db.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"NM_B.1"}, names(recs))

	recs, err = db.ByGene("genea")
	require.NoError(t, err)
	assert.Equal(t, []string{"NM_A.1", "NM_A.2", "NM_AB.1"}, names(recs))
}

func TestByRegion_RequiresIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(fixture, "\n")+"\n"), 0644))

	db, err := OpenPath(path, Options{})
	require.NoError(t, err)
	defer db.Close()
	assert.False(t, db.Indexed())
	assert.Nil(t, db.Contigs())

	_, err = db.ByRegion("chr1", 0, 100)
	assert.ErrorIs(t, err, genepred.ErrConfig)

	recs, err := db.ByGene("GENEB")
	require.NoError(t, err)
	assert.Equal(t, []string{"NM_B.1"}, names(recs))

	mem, err := OpenMemory(path, Options{})
	require.NoError(t, err)
	defer mem.Close()
	recs, err = mem.ByRegion("chr2", 120, 130)
	require.NoError(t, err)
	assert.Equal(t, []string{"NR_C.1"}, names(recs))
}

func TestOpen_Config(t *testing.T) {
	_, err := OpenPath("", Options{})
	assert.ErrorIs(t, err, genepred.ErrConfig)

	_, err = Open(nil, Options{})
	assert.ErrorIs(t, err, genepred.ErrConfig)

	_, err = OpenPath(filepath.Join(t.TempDir(), "missing.txt"), Options{})
	assert.ErrorIs(t, err, genepred.ErrIO)

	db := openFixture(t, fixture, Options{})
	assert.Equal(t, "genepred", db.Layout().Name)
}

func TestOpen_RefFlatWithDelimiter(t *testing.T) {
	line := "TP53 NM_000546.6 chr17 - 100 300 110 290 2 100,200, 150,300,"
	mem, err := source.NewMemory([]string{line}, source.Columns{Name: 3, Begin: 5, End: 6, ZeroBased: true, Delimiter: ' '})
	require.NoError(t, err)
	db, err := Open(mem, Options{Layout: genepred.RefFlat, Delimiter: ' '})
	require.NoError(t, err)

	recs, err := db.ByGene("tp53")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "NM_000546.6", recs[0].Name)
	assert.Equal(t, "chr17", recs[0].Chrom)

	recs, err = db.ByRegion("chr17", 140, 160)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestMalformedLine(t *testing.T) {
	lines := append(append([]string{}, fixture[:3]...), badLine)
	lines = append(lines, fixture[3:]...)

	db := openFixture(t, lines, Options{})
	_, err := db.ByGene("GENEB")
	require.Error(t, err)
	var lineErr *genepred.LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, badLine, lineErr.Line)

	_, err = db.Scan()
	assert.ErrorIs(t, err, genepred.ErrMalformedLine)
}

func TestMalformedLine_Skip(t *testing.T) {
	lines := append(append([]string{}, fixture[:3]...), badLine)
	lines = append(lines, fixture[3:]...)

	core, logs := observer.New(zapcore.WarnLevel)
	db := openFixture(t, lines, Options{SkipMalformed: true})
	db.SetLogger(zap.New(core))

	recs, err := db.Scan()
	require.NoError(t, err)
	assert.Len(t, recs, 5)
	assert.Equal(t, 1, logs.FilterMessage("skipping malformed line").Len())

	_, err = db.ByGene("GENEB")
	assert.ErrorIs(t, err, genepred.ErrMalformedLine, "full-scan lookups never skip")
}
