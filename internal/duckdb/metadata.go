package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Selection describes how records were read from a file: the layout name,
// the column delimiter, and the digests of the gene and transcript lists
// (empty when no list was given).
type Selection struct {
	Layout      string
	Delimiter   string
	Genes       string
	Transcripts string
}

// SourceInfo describes an annotation file that was exported.
type SourceInfo struct {
	FileFingerprint
	Selection
	Records int64
}

// RecordSource stores provenance for an exported file, replacing any earlier
// entry for the same path.
func (s *Store) RecordSource(fp FileFingerprint, sel Selection, records int64) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources
		(path, size, mod_time, layout, records, delimiter, genes, transcripts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UTC(), sel.Layout, records,
		sel.Delimiter, sel.Genes, sel.Transcripts)
	if err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}

// Source returns the provenance stored for path.
func (s *Store) Source(path string) (SourceInfo, bool, error) {
	var info SourceInfo
	err := s.db.QueryRow(`SELECT path, size, mod_time, layout, records,
		coalesce(delimiter, ''), coalesce(genes, ''), coalesce(transcripts, '')
		FROM sources WHERE path=?`, path).Scan(
		&info.Path, &info.Size, &info.ModTime, &info.Layout, &info.Records,
		&info.Delimiter, &info.Genes, &info.Transcripts)
	if errors.Is(err, sql.ErrNoRows) {
		return SourceInfo{}, false, nil
	}
	if err != nil {
		return SourceInfo{}, false, fmt.Errorf("query source: %w", err)
	}
	return info, true, nil
}

// SourceCurrent reports whether the stored provenance matches both the file
// and the selection, so the export can be skipped.
func (s *Store) SourceCurrent(fp FileFingerprint, sel Selection) bool {
	info, ok, err := s.Source(fp.Path)
	if err != nil || !ok {
		return false
	}
	return info.Size == fp.Size &&
		info.ModTime.UTC().Equal(fp.ModTime.UTC().Truncate(time.Microsecond)) &&
		info.Selection == sel
}
