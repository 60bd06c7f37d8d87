package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ucscBaseURL hosts per-assembly annotation tables.
const ucscBaseURL = "https://hgdownload.soe.ucsc.edu/goldenPath"

// refGeneURL returns the UCSC refGene table URL for an assembly.
func refGeneURL(assembly string) string {
	return fmt.Sprintf("%s/%s/database/%s", ucscBaseURL, assembly, refGeneFile)
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the UCSC refGene table",
		Long: `Download refGene.txt.gz for an assembly from UCSC into ~/.vibe-exon/<assembly>/.
Other commands use it when no data file is given. The table uses the refgene
layout.`,
		Example: `  vibe-exon download
  vibe-exon download --assembly hg19
  vibe-exon download --output /data/ucsc`,
		Args: maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, assembly, outputDir)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "hg38", "UCSC assembly name, e.g. hg38 or hg19")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.vibe-exon/)")

	return cmd
}

func runDownload(cmd *cobra.Command, assembly, outputDir string) error {
	assembly = strings.ToLower(assembly)
	destDir := defaultDataDir(assembly)
	if outputDir != "" {
		destDir = filepath.Join(outputDir, assembly)
	}
	if destDir == "" {
		return fmt.Errorf("cannot determine home directory; use --output")
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Downloading UCSC refGene for %s...\n", assembly)
	fmt.Fprintf(out, "Destination: %s\n\n", destDir)

	dest := filepath.Join(destDir, refGeneFile)
	if err := downloadFile(out, refGeneURL(assembly), dest); err != nil {
		return fmt.Errorf("download refGene: %w", err)
	}

	fmt.Fprintf(out, "\nDownload complete!\n")
	fmt.Fprintf(out, "To list exons, run:\n")
	fmt.Fprintf(out, "  vibe-exon retrieve --format refgene --fast TP53\n")
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(out io.Writer, url, destPath string) error {
	// Check if file already exists
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))
	logger.Debug("fetching", zap.String("url", url))

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       out,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
