package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-exon/internal/genedb"
)

func newRegionCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "region <chrom[:start[-end]]> [data]",
		Short: "Print exon coordinates for transcripts overlapping a region",
		Long: `Print the exon table for every transcript overlapping a genomic region.

Regions use 1-based inclusive coordinates, as in samtools: chr17:7,668,402-7,687,550.
The data file should be bgzip-compressed with a tabix index next to it
(tabix -0 -s 2 -b 4 -e 5 for genePred). Files without an index are loaded
and indexed in memory.`,
		Example: `  vibe-exon region chr17:7668402-7687550 refGene.sorted.txt.gz --format refgene
  vibe-exon region chr7`,
		Args: rangeArgs(1, 2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, "format", "delimiter", "assembly", "noheader", "workers")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			chrom, start, end, err := parseRegion(args[0])
			if err != nil {
				return usageError{err}
			}
			return runRegion(cmd, args[1:], chrom, start, end, outputFile)
		},
	}

	addDataFlags(cmd)
	cmd.Flags().Bool("noheader", false, "Do not print the header line")
	cmd.Flags().Int("workers", 0, "Locate workers (0 = number of CPUs)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runRegion(cmd *cobra.Command, args []string, chrom string, start, end int64, outputFile string) error {
	path, err := resolveDataPath(args)
	if err != nil {
		return err
	}
	opts, err := loadOptions(false)
	if err != nil {
		return err
	}

	db, err := genedb.OpenPath(path, opts)
	if err != nil {
		return err
	}
	if !db.Indexed() {
		db.Close()
		logger.Info("no tabix index, indexing in memory", zap.String("path", path))
		if db, err = genedb.OpenMemory(path, opts); err != nil {
			return err
		}
	}
	defer db.Close()
	db.SetLogger(logger)

	recs, err := db.ByRegion(chrom, start, end)
	if err != nil {
		return err
	}
	logger.Debug("region query",
		zap.String("chrom", chrom),
		zap.Int64("start", start),
		zap.Int64("end", end),
		zap.Int("records", len(recs)))

	return writeExons(cmd, recs, outputFile)
}

// maxRegionEnd is the largest position a tabix index can address.
const maxRegionEnd = 1 << 29

// parseRegion parses chrom, chrom:pos or chrom:start-end in 1-based
// inclusive coordinates, allowing thousands separators, and returns the
// 0-based half-open interval.
func parseRegion(s string) (chrom string, start, end int64, err error) {
	chrom, span, hasSpan := strings.Cut(s, ":")
	if chrom == "" {
		return "", 0, 0, fmt.Errorf("invalid region %q: missing contig", s)
	}
	if !hasSpan {
		return chrom, 0, maxRegionEnd, nil
	}

	span = strings.ReplaceAll(span, ",", "")
	from, to, hasEnd := strings.Cut(span, "-")
	first, err := strconv.ParseInt(from, 10, 64)
	if err != nil || first < 1 {
		return "", 0, 0, fmt.Errorf("invalid region %q: bad start", s)
	}
	last := first
	if hasEnd {
		if to == "" {
			last = maxRegionEnd
		} else if last, err = strconv.ParseInt(to, 10, 64); err != nil {
			return "", 0, 0, fmt.Errorf("invalid region %q: bad end", s)
		}
	}
	if last < first {
		return "", 0, 0, fmt.Errorf("invalid region %q: end before start", s)
	}
	return chrom, first - 1, last, nil
}
