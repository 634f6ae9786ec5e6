package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"personal-data-assistant/pipeline"
	"personal-data-assistant/storage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest raw inputs and write processed artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := ingestOptions(cmd)
		manifest, err := runner.Ingest(opts)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d rows (%d rejected) into %s\n",
			manifest.Accepted+manifest.Rejected, manifest.Rejected, opts.OutDir)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze processed artifacts and write summary.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		path, _, err := runner.Analyze(input)
		if err != nil {
			return err
		}
		fmt.Printf("Summary written to %s\n", path)
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich summary.json using an exchange-rate API (with caching)",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		api, _ := cmd.Flags().GetString("api")
		if err := requireAPI(api); err != nil {
			return err
		}
		report, err := runner.Enrich(cmd.Context(), input, api, flagOr(cmd, "cache", cfg.CacheDir))
		if err != nil {
			return err
		}
		fmt.Printf("Enrichment source: %s\n", report.Enrichment.Source)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a Markdown report from summary.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		out := flagOr(cmd, "report", cfg.ReportPath)
		if err := runner.Report(filepath.Join(input, storage.SummaryFileName), out); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", out)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingest → analyze → (optional enrich) → report",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _ := cmd.Flags().GetString("api")
		if err := requireAPI(api); err != nil {
			return err
		}
		opts := pipeline.RunOptions{
			IngestOptions: ingestOptions(cmd),
			ReportPath:    flagOr(cmd, "report", cfg.ReportPath),
			API:           api,
			CacheDir:      flagOr(cmd, "cache", cfg.CacheDir),
		}
		if err := runner.Run(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Done. Artifacts → %s | Report → %s\n", opts.OutDir, opts.ReportPath)
		return nil
	},
}

func ingestOptions(cmd *cobra.Command) pipeline.IngestOptions {
	csvPath, _ := cmd.Flags().GetString("csv")
	notesPath, _ := cmd.Flags().GetString("notes")
	profile, _ := cmd.Flags().GetString("profile")
	return pipeline.IngestOptions{
		CSVPath:     csvPath,
		NotesPath:   notesPath,
		ProfilePath: profile,
		OutDir:      flagOr(cmd, "out", cfg.OutDir),
	}
}

func init() {
	for _, c := range []*cobra.Command{ingestCmd, runCmd} {
		c.Flags().String("csv", "", "Path to expenses.csv")
		c.Flags().String("notes", "", "Path to notes.txt")
		c.Flags().String("profile", "", "Optional profile.json")
		c.Flags().String("out", "data/processed", "Output directory for processed artifacts")
		_ = c.MarkFlagRequired("csv")
		_ = c.MarkFlagRequired("notes")
	}

	analyzeCmd.Flags().String("input", "", "Processed artifacts directory")
	_ = analyzeCmd.MarkFlagRequired("input")

	enrichCmd.Flags().String("input", "", "Processed artifacts directory")
	enrichCmd.Flags().String("api", "", "Which API to use (exchangerate)")
	enrichCmd.Flags().String("cache", "cache", "Cache directory for the file cache backend")
	_ = enrichCmd.MarkFlagRequired("input")
	_ = enrichCmd.MarkFlagRequired("api")

	reportCmd.Flags().String("input", "", "Processed artifacts directory")
	reportCmd.Flags().String("report", "reports/report.md", "Report output path")
	_ = reportCmd.MarkFlagRequired("input")

	runCmd.Flags().String("report", "reports/report.md", "Report output path")
	runCmd.Flags().String("api", "", "Optional enrichment API (exchangerate)")
	runCmd.Flags().String("cache", "cache", "Cache directory for the file cache backend")
}
