// Package duckdb exports located exon tables to DuckDB for ad hoc queries.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding exported exon rows.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS exons (
		chrom VARCHAR,
		exon_start BIGINT,
		exon_end BIGINT,
		strand VARCHAR,
		gene VARCHAR,
		transcript VARCHAR,
		exon_number INTEGER,
		tx_start BIGINT,
		tx_end BIGINT,
		start_offset VARCHAR,
		end_offset VARCHAR,
		PRIMARY KEY (transcript, chrom, exon_start)
	)`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sources (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time TIMESTAMP,
		layout VARCHAR,
		records BIGINT
	)`); err != nil {
		return err
	}
	// Databases written before filters were tracked lack these columns.
	for _, col := range []string{"delimiter", "genes", "transcripts"} {
		if _, err := s.db.Exec(`ALTER TABLE sources ADD COLUMN IF NOT EXISTS ` + col + ` VARCHAR`); err != nil {
			return err
		}
	}
	return nil
}
