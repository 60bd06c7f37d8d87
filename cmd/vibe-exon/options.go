package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-exon/internal/genedb"
	"github.com/inodb/vibe-exon/internal/genepred"
	"github.com/inodb/vibe-exon/internal/namelist"
)

// refGeneFile is the file name fetched by the download command.
const refGeneFile = "refGene.txt.gz"

// maxArgs is cobra.MaximumNArgs reporting a usage error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return usagef("accepts at most %d arg(s), received %d", n, len(args))
		}
		return nil
	}
}

// rangeArgs is cobra.RangeArgs reporting a usage error.
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return usagef("accepts between %d and %d arg(s), received %d", lo, hi, len(args))
		}
		return nil
	}
}

// addDataFlags registers the flags shared by every command that reads
// an annotation file.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "genepred", "Input layout: "+strings.Join(genepred.Layouts(), ", "))
	cmd.Flags().String("delimiter", `\t`, "Column delimiter (single character or \\t)")
	cmd.Flags().String("assembly", "hg38", "Assembly used to find downloaded data")
}

// bindFlags binds the named flags of cmd to viper keys of the same name.
// It runs per command so that commands sharing a key do not override each
// other's bindings.
func bindFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := bindFlag(cmd, name, name); err != nil {
			return err
		}
	}
	return nil
}

// bindFlag binds flag of cmd to a viper key.
func bindFlag(cmd *cobra.Command, key, flag string) error {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		return fmt.Errorf("bind flag %s: %w", flag, err)
	}
	return nil
}

// parseDelimiter accepts a single character, "tab" or the escape \t.
func parseDelimiter(s string) (byte, error) {
	switch s {
	case `\t`, "tab", "\t":
		return '\t', nil
	case "space":
		return ' ', nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", genepred.ErrConfig, s)
	}
	return s[0], nil
}

// resolveDataPath picks the annotation file: the positional argument, then
// the data config key or REFGENE environment variable, then the file left
// by the download command.
func resolveDataPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if p := viper.GetString("data"); p != "" {
		return p, nil
	}
	if dir := defaultDataDir(viper.GetString("assembly")); dir != "" {
		p := filepath.Join(dir, refGeneFile)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no data file given; pass a path, set REFGENE, or run vibe-exon download", genepred.ErrConfig)
}

// defaultDataDir returns ~/.vibe-exon/<assembly>.
func defaultDataDir(assembly string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configName, strings.ToLower(assembly))
}

// loadOptions builds database options from viper. Filters are loaded only
// when withFilters is set.
func loadOptions(withFilters bool) (genedb.Options, error) {
	layout, err := genepred.LayoutByName(viper.GetString("format"))
	if err != nil {
		return genedb.Options{}, err
	}
	delim, err := parseDelimiter(viper.GetString("delimiter"))
	if err != nil {
		return genedb.Options{}, err
	}
	opts := genedb.Options{Layout: layout, Delimiter: delim}
	if !withFilters {
		return opts, nil
	}

	if opts.Genes, err = loadFilter("genes"); err != nil {
		return genedb.Options{}, err
	}
	if opts.Transcripts, err = loadFilter("transcripts"); err != nil {
		return genedb.Options{}, err
	}
	return opts, nil
}

func loadFilter(key string) (*namelist.Set, error) {
	path := viper.GetString(key)
	set, err := namelist.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s list: %w", genepred.ErrConfig, key, err)
	}
	if set != nil {
		logger.Info("loaded name list",
			zap.String("kind", key),
			zap.String("path", path),
			zap.Int("entries", set.Len()))
	}
	return set, nil
}

// openDB opens the annotation file for a command.
func openDB(args []string, withFilters, skipMalformed bool) (*genedb.DB, string, error) {
	path, err := resolveDataPath(args)
	if err != nil {
		return nil, "", err
	}
	opts, err := loadOptions(withFilters)
	if err != nil {
		return nil, "", err
	}
	opts.SkipMalformed = skipMalformed
	db, err := genedb.OpenPath(path, opts)
	if err != nil {
		return nil, "", err
	}
	db.SetLogger(logger)
	logger.Debug("opened data source",
		zap.String("path", path),
		zap.String("layout", db.Layout().Name),
		zap.Bool("indexed", db.Indexed()))
	return db, path, nil
}
