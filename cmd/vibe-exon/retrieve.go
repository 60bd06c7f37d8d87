package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-exon/internal/genepred"
	"github.com/inodb/vibe-exon/internal/output"
)

func newRetrieveCmd() *cobra.Command {
	var (
		fast          string
		all           bool
		outputFile    string
		skipMalformed bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve [data]",
		Short: "Print exon coordinates for selected genes or transcripts",
		Long: `Print one row per exon with genomic, transcript and CDS-relative coordinates.

Records are selected by gene list (--gene), transcript list (--nm), or a single
gene or transcript name (--fast). A record must pass both lists when both are
given. The data file falls back to the data config key, the REFGENE
environment variable, and finally the file fetched by "vibe-exon download".`,
		Example: `  vibe-exon retrieve --gene genes.txt refGene.txt.gz --format refgene
  vibe-exon retrieve --nm transcripts.txt --noheader
  vibe-exon retrieve --fast TP53
  vibe-exon retrieve --all -o exons.tsv`,
		Args: maxArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, "format", "delimiter", "assembly", "noheader", "workers"); err != nil {
				return err
			}
			if err := bindFlag(cmd, "genes", "gene"); err != nil {
				return err
			}
			return bindFlag(cmd, "transcripts", "nm")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if fast == "" && !all && viper.GetString("genes") == "" && viper.GetString("transcripts") == "" {
				return usagef("one of --gene, --nm, --fast or --all is required")
			}
			return runRetrieve(cmd, args, fast, outputFile, skipMalformed)
		},
	}

	addDataFlags(cmd)
	cmd.Flags().String("gene", "", "File of gene symbols to keep, one per line")
	cmd.Flags().String("nm", "", "File of transcript IDs to keep, one per line")
	cmd.Flags().StringVar(&fast, "fast", "", "Single gene symbol or transcript ID (ignores --gene and --nm)")
	cmd.Flags().BoolVar(&all, "all", false, "Print every record")
	cmd.Flags().Bool("noheader", false, "Do not print the header line")
	cmd.Flags().Int("workers", 0, "Locate workers (0 = number of CPUs)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Warn about and skip unparsable lines")

	return cmd
}

func runRetrieve(cmd *cobra.Command, args []string, fast, outputFile string, skipMalformed bool) error {
	// --fast ignores the name lists.
	db, _, err := openDB(args, fast == "", skipMalformed)
	if err != nil {
		return err
	}
	defer db.Close()

	var recs []*genepred.Record
	if fast != "" {
		recs, err = db.Lookup(fast)
	} else {
		recs, err = db.Scan()
	}
	if err != nil {
		return err
	}
	logger.Debug("selected records", zap.Int("count", len(recs)))

	return writeExons(cmd, recs, outputFile)
}

// writeExons locates recs and writes the exon table to outputFile or the
// command's stdout.
func writeExons(cmd *cobra.Command, recs []*genepred.Record, outputFile string) error {
	var out io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := output.NewTabWriter(out)
	if !viper.GetBool("noheader") {
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := output.LocateAll(recs, viper.GetInt("workers"), w.Write); err != nil {
		return err
	}
	return w.Flush()
}
