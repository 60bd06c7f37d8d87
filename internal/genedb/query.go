package genedb

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-exon/internal/genepred"
)

// scanAll rewinds and returns every record matching keep. Name filters do
// not apply and malformed lines abort the scan.
func (db *DB) scanAll(keep func(*genepred.Record) bool) ([]*genepred.Record, error) {
	if err := db.Rewind(); err != nil {
		return nil, err
	}
	var out []*genepred.Record
	for {
		line, err := db.nextLine()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		r, err := db.parser.Parse(line)
		if err != nil {
			return nil, err
		}
		if keep(r) {
			out = append(out, r)
		}
	}
}

// ByGene returns every record whose gene symbol equals name, ignoring case.
func (db *DB) ByGene(name string) ([]*genepred.Record, error) {
	return db.scanAll(func(r *genepred.Record) bool {
		return strings.EqualFold(r.Name2, name)
	})
}

// ByTranscript returns every record for transcript name, ignoring case. A
// name with a version ("NM_000546.6") must match exactly; a name without
// one matches every version.
func (db *DB) ByTranscript(name string) ([]*genepred.Record, error) {
	if strings.Contains(name, ".") {
		return db.scanAll(func(r *genepred.Record) bool {
			return strings.EqualFold(r.Name, name)
		})
	}
	return db.scanAll(func(r *genepred.Record) bool {
		return strings.EqualFold(stripVersion(r.Name), name)
	})
}

// Lookup returns the records of gene name, falling back to transcript name
// when no gene matches.
func (db *DB) Lookup(name string) ([]*genepred.Record, error) {
	recs, err := db.ByGene(name)
	if err != nil || len(recs) > 0 {
		return recs, err
	}
	return db.ByTranscript(name)
}

func stripVersion(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// ByRegion returns the records overlapping the 0-based half-open interval
// [start, end) on chrom, in index order. A contig missing from the index
// yields no records. Records are parsed but not located.
func (db *DB) ByRegion(chrom string, start, end int64) ([]*genepred.Record, error) {
	if db.indexed == nil {
		return nil, fmt.Errorf("%w: data source has no positional index", genepred.ErrConfig)
	}
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: invalid region %s:%d-%d", genepred.ErrLogic, chrom, start, end)
	}
	if start == end {
		return nil, nil
	}
	id, ok := db.indexed.ResolveContig(chrom)
	if !ok {
		db.logger.Debug("contig not in index", zap.String("chrom", chrom))
		return nil, nil
	}

	it, err := db.indexed.QueryOverlap(id, start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []*genepred.Record
	for {
		line, err := it.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		r, err := db.parser.Parse(line)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
}

// Contigs lists the contigs of the positional index, or nil without one.
func (db *DB) Contigs() []string {
	if db.indexed == nil {
		return nil
	}
	return db.indexed.Contigs()
}
