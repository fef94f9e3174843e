// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperscraper/internal/export"
	"github.com/pdiddy/paperscraper/internal/pipeline"
	"github.com/pdiddy/paperscraper/internal/pubmed"
	"github.com/pdiddy/paperscraper/pkg/types"
)

// Output formats.
const (
	formatCSV   = "csv"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch QUERY",
	Short: "Search PubMed and list papers with non-academic authors",
	Long: `Fetch runs QUERY against PubMed, downloads every matching record, and keeps
the papers with at least one author affiliated with a company. The query is
passed to PubMed verbatim, so the full PubMed search syntax is available.

Without --file the papers are printed as a table. With --file the format
follows the extension (.csv, .json, .yaml) unless --format is given.

Examples:
  paperscraper fetch "CRISPR AND 2023[dp]"
  paperscraper fetch "immunotherapy" -f results.csv --columns all
  paperscraper fetch "mRNA vaccine" --custom-columns "PubmedID,Title,Company Affiliation(s)"`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	addFetchFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("file", "f", "", "write results to this file instead of stdout")
	f.String("format", "", "output format: csv, json, yaml or table")
	f.StringP("columns", "c", string(export.SetDefault), "column set: default, all or minimal")
	f.String("custom-columns", "", "comma-separated column list (overrides --columns)")
	f.BoolP("include-abstract", "a", false, "include the abstract")
	f.Bool("all", false, "keep every paper, not only those with non-academic authors")
	f.Bool("progress", true, "show fetch progress on stderr")
	f.Bool("no-progress", false, "hide fetch progress")
	f.Int("batch-size", 0, fmt.Sprintf("identifiers per fetch call, at most %d (default %d)", pubmed.MaxBatchSize, pubmed.DefaultBatchSize))
	f.Int("max-results", 0, fmt.Sprintf("maximum identifiers to fetch (default %d)", pubmed.DefaultMaxResults))
	f.Duration("timeout", 0, fmt.Sprintf("HTTP timeout per call (default %s)", pubmed.DefaultTimeout))
	f.String("api-key", "", "NCBI API key")
	f.String("email", "", "contact email sent to NCBI")
}

func runFetch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return fmt.Errorf("query is empty: provide a PubMed search query")
	}

	cfg, err := pubMedConfig(cmd, viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	exportCfg, format, file, err := exportOptions(cmd, viper.GetViper())
	if err != nil {
		return err
	}
	headers, err := export.HeadersFromConfig(exportCfg)
	if err != nil {
		return err
	}
	keepAll, _ := cmd.Flags().GetBool("all")
	showProgress, _ := cmd.Flags().GetBool("progress")
	if hide, _ := cmd.Flags().GetBool("no-progress"); hide {
		showProgress = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr := cmd.ErrOrStderr()
	opts := pipeline.Options{FilterNonAcademic: !keepAll}
	if showProgress {
		opts.Progress = progressPrinter(stderr)
	}

	res, err := pipeline.New(cfg).Run(ctx, query, opts)
	if showProgress {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrCancelled) {
			return fmt.Errorf("cancelled")
		}
		return err
	}

	reportErrors(stderr, res)

	if len(res.Papers) == 0 && !keepAll && res.Parsed > 0 {
		fmt.Fprintf(stderr, "No papers with non-academic authors among %d parsed. Use --all to list every paper.\n", res.Parsed)
	}

	if file == "" {
		return writePapers(cmd.OutOrStdout(), format, res.Papers, headers, exportCfg.IncludeAbstract)
	}
	err = export.WriteFileAtomic(file, func(w io.Writer) error {
		return writePapers(w, format, res.Papers, headers, exportCfg.IncludeAbstract)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	fmt.Fprintf(stderr, "Wrote %d papers to %s\n", len(res.Papers), file)
	return nil
}

// exportOptions resolves the export settings and the output format. The
// export section of the config file supplies defaults that flags override.
func exportOptions(cmd *cobra.Command, v *viper.Viper) (types.ExportConfig, string, string, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return types.ExportConfig{}, "", "", fmt.Errorf("decoding config: %w", err)
	}
	cfg := s.Export

	flags := cmd.Flags()
	if flags.Changed("columns") {
		cfg.ColumnSet, _ = flags.GetString("columns")
	}
	if flags.Changed("custom-columns") {
		custom, _ := flags.GetString("custom-columns")
		cfg.CustomColumns = export.SplitColumns(custom)
	}
	if flags.Changed("include-abstract") {
		cfg.IncludeAbstract, _ = flags.GetBool("include-abstract")
	}

	file, _ := flags.GetString("file")
	format, _ := flags.GetString("format")
	format, err := resolveFormat(format, file)
	return cfg, format, file, err
}

// resolveFormat picks the output format from the flag or the file extension.
func resolveFormat(format, file string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case formatCSV, formatJSON, formatYAML, formatTable:
		return format, nil
	case "yml":
		return formatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("invalid format %q: must be csv, json, yaml or table", format)
	}

	if file == "" {
		return formatTable, nil
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return formatCSV, nil
}

func writePapers(w io.Writer, format string, papers []*types.Paper, headers []string, includeAbstract bool) error {
	switch format {
	case formatCSV:
		return export.WriteCSV(w, papers, headers)
	case formatJSON:
		return export.WriteJSON(w, papers, includeAbstract)
	case formatYAML:
		return export.WriteYAML(w, papers, includeAbstract)
	default:
		export.WriteTable(w, papers, headers)
		return nil
	}
}

// progressPrinter rewrites a single status line on w.
func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(done, total int) {
		if total == 0 {
			fmt.Fprint(w, "\rNo matching records.")
			return
		}
		fmt.Fprintf(w, "\rFetched %d/%d records (%d%%)", done, total, done*100/total)
	}
}

// reportErrors summarizes fetch and parse failures on w.
func reportErrors(w io.Writer, res *pipeline.Result) {
	if !res.HasErrors() {
		return
	}
	fmt.Fprintf(w, "warning: %s\n", res.Summary())
	for _, fe := range res.FetchErrors {
		fmt.Fprintf(w, "  %v\n", fe)
	}
	const maxListed = 10
	for i, pe := range res.ParseErrors {
		if i == maxListed {
			fmt.Fprintf(w, "  ... and %d more parse errors\n", len(res.ParseErrors)-maxListed)
			break
		}
		fmt.Fprintf(w, "  %v\n", pe)
	}
}
