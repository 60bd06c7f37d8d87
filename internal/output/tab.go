// Package output writes located transcript records as exon tables.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// Columns is the exon table header.
var Columns = []string{
	"#Chrom",
	"Start",
	"End",
	"Strand",
	"Gene",
	"Transcript",
	"Exon",
	"Start(p.)",
	"End(p.)",
	"Start(c.)",
	"End(c.)",
}

// TabWriter writes one tab-delimited row per exon.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(Columns, "\t") + "\n")
	return err
}

// Write writes the exons of a located record in genomic order. Start is
// written 0-based, End 1-based, as in BED.
func (tw *TabWriter) Write(r *genepred.Record) error {
	if !r.Located() {
		return fmt.Errorf("%w: write %s: record is not located", genepred.ErrLogic, r.Name)
	}
	for i, e := range r.Exons {
		values := []string{
			r.Chrom,
			strconv.FormatInt(e.Start-1, 10),
			strconv.FormatInt(e.End, 10),
			string(r.Strand),
			r.Name2,
			r.Name,
			"EX" + strconv.Itoa(r.ExonNumber(i)),
			strconv.FormatInt(e.TxStart, 10),
			strconv.FormatInt(e.TxEnd, 10),
			e.StartOffset.String(),
			e.EndOffset.String(),
		}
		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
