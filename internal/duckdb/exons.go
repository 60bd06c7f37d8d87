package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// ExonRow is one stored exon. Start is 0-based, End 1-based.
type ExonRow struct {
	Chrom       string
	Start       int64
	End         int64
	Strand      string
	Gene        string
	Transcript  string
	Exon        int
	TxStart     int64
	TxEnd       int64
	StartOffset genepred.Offset
	EndOffset   genepred.Offset
}

// exonKey is the primary key used to drop duplicate exons before writing.
type exonKey struct {
	transcript, chrom string
	start             int64
}

// ExonWriter appends exons of located records to the exons table in
// batches. Each (transcript, chrom, exon_start) key is written once over the
// writer's lifetime, so a repeat in a later batch is dropped instead of
// violating the primary key.
type ExonWriter struct {
	s    *Store
	seen map[exonKey]struct{}
}

// NewExonWriter returns a writer with no keys seen. Keys already stored in
// the table are not consulted; clear the table first.
func (s *Store) NewExonWriter() *ExonWriter {
	return &ExonWriter{s: s, seen: make(map[exonKey]struct{})}
}

// WriteRecords writes recs in a single batch with a fresh ExonWriter.
func (s *Store) WriteRecords(recs []*genepred.Record) error {
	return s.NewExonWriter().Write(recs)
}

// Write batch-inserts the exons of located records using the Appender API.
func (w *ExonWriter) Write(recs []*genepred.Record) error {
	if len(recs) == 0 {
		return nil
	}
	for _, r := range recs {
		if !r.Located() {
			return fmt.Errorf("%w: export %s: record is not located", genepred.ErrLogic, r.Name)
		}
	}

	conn, err := w.s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "exons")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range recs {
		for i, e := range r.Exons {
			k := exonKey{r.Name, r.Chrom, e.Start - 1}
			if _, ok := w.seen[k]; ok {
				continue
			}
			w.seen[k] = struct{}{}
			if err := appender.AppendRow(
				r.Chrom, e.Start-1, e.End, string(r.Strand), r.Name2, r.Name,
				int32(r.ExonNumber(i)), e.TxStart, e.TxEnd,
				e.StartOffset.String(), e.EndOffset.String(),
			); err != nil {
				return fmt.Errorf("append exon: %w", err)
			}
		}
	}

	return appender.Flush()
}

// ClearExons removes all stored exons.
func (s *Store) ClearExons() error {
	_, err := s.db.Exec("DELETE FROM exons")
	return err
}

// Count returns the number of stored exons.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM exons").Scan(&n); err != nil {
		return 0, fmt.Errorf("count exons: %w", err)
	}
	return n, nil
}

const exonColumns = `chrom, exon_start, exon_end, strand, gene, transcript,
	exon_number, tx_start, tx_end, start_offset, end_offset`

// ExonsByTranscript returns the exons of a transcript ID, compared exactly,
// in genomic order.
func (s *Store) ExonsByTranscript(name string) ([]ExonRow, error) {
	rows, err := s.db.Query(`SELECT `+exonColumns+` FROM exons
		WHERE transcript=? ORDER BY chrom, exon_start`, name)
	if err != nil {
		return nil, fmt.Errorf("query by transcript: %w", err)
	}
	defer rows.Close()

	return scanExonRows(rows)
}

// ExonsByGene returns the exons of every transcript of a gene symbol,
// ignoring case.
func (s *Store) ExonsByGene(name string) ([]ExonRow, error) {
	rows, err := s.db.Query(`SELECT `+exonColumns+` FROM exons
		WHERE lower(gene)=lower(?) ORDER BY transcript, chrom, exon_start`, name)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanExonRows(rows)
}

// scanExonRows scans rows into ExonRow slices.
func scanExonRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]ExonRow, error) {
	var out []ExonRow
	for rows.Next() {
		var e ExonRow
		var startOff, endOff string
		if err := rows.Scan(
			&e.Chrom, &e.Start, &e.End, &e.Strand, &e.Gene, &e.Transcript,
			&e.Exon, &e.TxStart, &e.TxEnd, &startOff, &endOff,
		); err != nil {
			return nil, fmt.Errorf("scan exon: %w", err)
		}
		var err error
		if e.StartOffset, err = genepred.ParseOffset(startOff); err != nil {
			return nil, fmt.Errorf("scan exon: %w", err)
		}
		if e.EndOffset, err = genepred.ParseOffset(endOff); err != nil {
			return nil, fmt.Errorf("scan exon: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exons: %w", err)
	}
	return out, nil
}
