package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-exon/internal/duckdb"
	"github.com/inodb/vibe-exon/internal/genedb"
	"github.com/inodb/vibe-exon/internal/genepred"
	"github.com/inodb/vibe-exon/internal/output"
)

// exportBatch is the number of records written per appender flush.
const exportBatch = 5000

func newExportCmd() *cobra.Command {
	var (
		dbPath        string
		force         bool
		skipMalformed bool
	)

	cmd := &cobra.Command{
		Use:   "export [data]",
		Short: "Store exon coordinates in a DuckDB database",
		Long: `Locate every record (restricted by --gene and --nm when given) and store one
row per exon in the exons table of a DuckDB database. The exon table is
replaced on each export. An export is skipped when the database already holds
the same file, unchanged and read with the same format and name lists, unless
--force is given.`,
		Example: `  vibe-exon export refGene.txt.gz --format refgene --db exons.duckdb
  duckdb exons.duckdb "SELECT * FROM exons WHERE gene='TP53'"`,
		Args: maxArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, "format", "delimiter", "assembly", "workers"); err != nil {
				return err
			}
			if err := bindFlag(cmd, "genes", "gene"); err != nil {
				return err
			}
			return bindFlag(cmd, "transcripts", "nm")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return usagef("--db is required")
			}
			return runExport(cmd, args, dbPath, force, skipMalformed)
		},
	}

	addDataFlags(cmd)
	cmd.Flags().String("gene", "", "File of gene symbols to keep, one per line")
	cmd.Flags().String("nm", "", "File of transcript IDs to keep, one per line")
	cmd.Flags().Int("workers", 0, "Locate workers (0 = number of CPUs)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database file")
	cmd.Flags().BoolVar(&force, "force", false, "Export even if the database is up to date")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Warn about and skip unparsable lines")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, dbPath string, force, skipMalformed bool) error {
	db, path, err := openDB(args, true, skipMalformed)
	if err != nil {
		return err
	}
	defer db.Close()

	fp, err := duckdb.StatFile(path)
	if err != nil {
		return genepred.NewIOError("stat data file", path, err)
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sel := selectionOf(db.Options())
	if !force && store.SourceCurrent(fp, sel) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date with %s\n", dbPath, path)
		return nil
	}

	recs, err := db.Scan()
	if err != nil {
		return err
	}
	if err := store.ClearExons(); err != nil {
		return fmt.Errorf("clear exons: %w", err)
	}

	w := store.NewExonWriter()
	batch := make([]*genepred.Record, 0, exportBatch)
	flush := func() error {
		if err := w.Write(batch); err != nil {
			return err
		}
		logger.Info("exported records", zap.Int("batch", len(batch)))
		batch = batch[:0]
		return nil
	}
	err = output.LocateAll(recs, viper.GetInt("workers"), func(r *genepred.Record) error {
		batch = append(batch, r)
		if len(batch) == exportBatch {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	if err := store.RecordSource(fp, sel, int64(len(recs))); err != nil {
		return err
	}
	n, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transcripts (%d exons) to %s\n", len(recs), n, dbPath)
	return nil
}

// selectionOf describes how db reads its file, for export provenance.
func selectionOf(o genedb.Options) duckdb.Selection {
	return duckdb.Selection{
		Layout:      o.Layout.Name,
		Delimiter:   string(rune(o.Delimiter)),
		Genes:       o.Genes.Digest(),
		Transcripts: o.Transcripts.Digest(),
	}
}
