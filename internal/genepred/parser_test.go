package genepred

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	singleExonLine = "NM_TEST.1\tchr1\t+\t100\t200\t110\t190\t1\t100,\t200,\tTEST"
	threeExonPlus  = "NM_3.2\tchr1\t+\t0\t50\t4\t45\t3\t0,20,40,\t10,30,50,\tG3"
	threeExonMinus = "NM_3.2\tchr1\t-\t0\t50\t4\t45\t3\t0,20,40,\t10,30,50,\tG3"
	noncodingMinus = "NR_1.1\tchr2\t-\t100\t300\t300\t300\t2\t100,200,\t150,300,\tNC"
)

func TestLayoutByName(t *testing.T) {
	for _, name := range []string{"genepred", "refgene", "refflat", "RefGene", " refFlat "} {
		l, err := LayoutByName(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, l.Name)
	}

	_, err := LayoutByName("bed12")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Equal(t, []string{"genepred", "refflat", "refgene"}, Layouts())
}

func TestParse_Genepred(t *testing.T) {
	p := NewParser(Genepred)
	r, err := p.Parse(threeExonPlus)
	require.NoError(t, err)

	assert.Equal(t, "NM_3.2", r.Name)
	assert.Equal(t, "G3", r.Name2)
	assert.Equal(t, "chr1", r.Chrom)
	assert.Equal(t, StrandPlus, r.Strand)
	assert.Equal(t, int64(1), r.TxStart, "txStart converted to 1-based")
	assert.Equal(t, int64(50), r.TxEnd)
	assert.Equal(t, int64(5), r.CDSStart, "cdsStart converted to 1-based")
	assert.Equal(t, int64(45), r.CDSEnd)
	require.Len(t, r.Exons, 3)
	assert.Equal(t, Exon{Start: 1, End: 10}, r.Exons[0])
	assert.Equal(t, Exon{Start: 21, End: 30}, r.Exons[1])
	assert.Equal(t, Exon{Start: 41, End: 50}, r.Exons[2])
	assert.True(t, r.Parsed())
	assert.False(t, r.Located())
	assert.True(t, r.IsCoding())
}

func TestParse_RefGeneAndRefFlat(t *testing.T) {
	refGene := "585\tNM_1.1\tchr1\t-\t0\t50\t4\t45\t3\t0,20,40,\t10,30,50,\t0\tGENE\tcmpl\tcmpl\t0,0,0,"
	r, err := NewParser(RefGene).Parse(refGene)
	require.NoError(t, err)
	assert.Equal(t, "NM_1.1", r.Name)
	assert.Equal(t, "GENE", r.Name2)
	assert.Equal(t, StrandMinus, r.Strand)
	assert.Len(t, r.Exons, 3)

	refFlat := "GENE\tNM_1.1\tchr1\t+\t0\t50\t4\t45\t3\t0,20,40,\t10,30,50,"
	r, err = NewParser(RefFlat).Parse(refFlat)
	require.NoError(t, err)
	assert.Equal(t, "NM_1.1", r.Name)
	assert.Equal(t, "GENE", r.Name2)
	assert.Equal(t, "chr1", r.Chrom)
}

func TestParse_Delimiter(t *testing.T) {
	line := "NM_1 chr1 + 0 10 0 10 1 0, 10, G"
	r, err := NewParser(Genepred, WithDelimiter(' ')).Parse(line)
	require.NoError(t, err)
	assert.Equal(t, "G", r.Name2)
	assert.Equal(t, []Exon{{Start: 1, End: 10}}, r.Exons)
}

func TestParse_OptionalColumnsDefault(t *testing.T) {
	// genePred without the extended name2 column
	r, err := NewParser(Genepred).Parse("NM_1\tchr1\t+\t0\t10\t0\t10\t1\t0,\t10,")
	require.NoError(t, err)
	assert.Empty(t, r.Name2)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing chrom", "NM_1"},
		{"missing strand", "NM_1\tchr1"},
		{"bad strand", "NM_1\tchr1\t.\t0\t10\t0\t10\t1\t0,\t10,\tG"},
		{"missing txEnd", "NM_1\tchr1\t+\t0"},
		{"bad integer", "NM_1\tchr1\t+\tzero\t10\t0\t10\t1\t0,\t10,\tG"},
		{"missing exon ends", "NM_1\tchr1\t+\t0\t10\t0\t10\t1\t0,"},
		{"missing exon starts", "NM_1\tchr1\t+\t0\t10\t0\t10\t1"},
		{"short exon list", "NM_1\tchr1\t+\t0\t10\t0\t10\t2\t0,\t10,\tG"},
		{"inverted exon", "NM_1\tchr1\t+\t0\t10\t0\t10\t1\t10,\t0,\tG"},
	}

	p := NewParser(Genepred)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := p.Parse(tt.line)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrMalformedLine))

			var le *LineError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.line, le.Line, "diagnostic keeps the raw line")
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	p := NewParser(Genepred)
	a, err := p.Parse(threeExonMinus)
	require.NoError(t, err)
	b, err := p.Parse(threeExonMinus)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseInto_Reuse(t *testing.T) {
	p := NewParser(Genepred)
	var r Record
	require.NoError(t, p.ParseInto(threeExonPlus, &r))
	require.NoError(t, Locate(&r))

	require.NoError(t, p.ParseInto(singleExonLine, &r))
	assert.False(t, r.Located(), "reset clears the located state")
	assert.Equal(t, "NM_TEST.1", r.Name)
	assert.Len(t, r.Exons, 1)

	require.Error(t, p.ParseInto("broken", &r))
	assert.False(t, r.Parsed())
}

func TestRecord_Clone(t *testing.T) {
	r, err := NewParser(Genepred).Parse(threeExonPlus)
	require.NoError(t, err)
	require.NoError(t, Locate(r))

	c, err := r.Clone()
	require.NoError(t, err)
	assert.Equal(t, r, c)
	c.Exons[0].Start = 99
	assert.Equal(t, int64(1), r.Exons[0].Start, "clone owns its exons")

	var nilRecord *Record
	_, err = nilRecord.Clone()
	assert.True(t, errors.Is(err, ErrLogic))
}

func TestRecord_FindExon(t *testing.T) {
	r, err := NewParser(Genepred).Parse(threeExonPlus)
	require.NoError(t, err)

	assert.Equal(t, 0, r.FindExon(1))
	assert.Equal(t, 0, r.FindExon(10))
	assert.Equal(t, -1, r.FindExon(15), "intronic")
	assert.Equal(t, 1, r.FindExon(25))
	assert.Equal(t, 2, r.FindExon(50))
	assert.Equal(t, -1, r.FindExon(51))
	assert.True(t, r.Contains(50))
	assert.False(t, r.Contains(0))
}
