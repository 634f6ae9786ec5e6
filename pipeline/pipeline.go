// Package pipeline wires the file-based stages together: ingest, analyze,
// enrich and report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"personal-data-assistant/config"
	"personal-data-assistant/fx"
	"personal-data-assistant/models"
	"personal-data-assistant/services"
	"personal-data-assistant/storage"
	"personal-data-assistant/utils"
)

// APIExchangeRate is the only supported enrichment API.
const APIExchangeRate = "exchangerate"

// Runner executes pipeline stages against the filesystem.
type Runner struct {
	cfg    *config.Config
	logger *utils.Logger

	// newFetcher and openCache are replaced in tests.
	newFetcher func() services.RateFetcher
	openCache  func(cacheDir string) (storage.RateStore, error)
}

// New creates a Runner.
func New(cfg *config.Config, logger *utils.Logger) *Runner {
	r := &Runner{cfg: cfg, logger: logger}
	r.newFetcher = func() services.RateFetcher {
		return fx.NewClient(cfg.FXAPIURL, cfg.FXTimeout, cfg.FXMaxRetries, logger)
	}
	r.openCache = r.openConfiguredCache
	return r
}

// IngestOptions names the inputs of the ingest stage.
type IngestOptions struct {
	CSVPath     string
	NotesPath   string
	ProfilePath string
	OutDir      string
}

// Ingest validates the expense CSV, extracts the notes and writes the
// processed artifacts. Only unreadable inputs or unwritable outputs fail.
func (r *Runner) Ingest(opts IngestOptions) (*models.Manifest, error) {
	rows, err := storage.ReadRawRows(opts.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	lines, err := storage.ReadLines(opts.NotesPath)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	part := services.NewIngester(r.logger).Ingest(rows)

	writer, err := storage.NewCSVWriter(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if err := writer.WriteCleaned(part.Accepted); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if err := writer.WriteRejected(part.Rejected); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	notes := services.ExtractNotes(lines)
	notesPath := filepath.Join(opts.OutDir, storage.NotesFileName)
	if err := storage.WriteJSON(notesPath, notes); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	r.logger.Info("[ingest] Ingest notes: action_items=%d topics=%d",
		len(notes.ActionItems), len(notes.Topics))

	profile := storage.LoadProfile(opts.ProfilePath)
	if opts.ProfilePath != "" && len(profile) == 0 {
		r.logger.Warn("[ingest] Profile %s missing or unreadable, continuing without it", opts.ProfilePath)
	}

	manifest := &models.Manifest{
		RunID:         uuid.NewString(),
		CleanedCSV:    writer.CleanedPath(),
		RejectedCSV:   writer.RejectedPath(),
		NotesJSON:     notesPath,
		ProfileLoaded: len(profile) > 0,
		Accepted:      part.AcceptedCount(),
		Rejected:      part.RejectedCount(),
	}
	if err := storage.WriteJSON(filepath.Join(opts.OutDir, storage.ManifestFileName), manifest); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return manifest, nil
}

// Analyze aggregates the cleaned expenses in inputDir and writes
// summary.json there. It returns the summary path.
func (r *Runner) Analyze(inputDir string) (string, *models.Report, error) {
	expenses, err := storage.ReadExpenses(filepath.Join(inputDir, storage.CleanedFileName))
	if err != nil {
		return "", nil, fmt.Errorf("analyze: %w", err)
	}
	notes, err := storage.ReadNotes(filepath.Join(inputDir, storage.NotesFileName))
	if err != nil {
		return "", nil, fmt.Errorf("analyze: %w", err)
	}

	report := &models.Report{
		Expenses: services.NewAggregator(r.logger).Generate(expenses),
		Notes:    notes,
	}

	summaryPath := filepath.Join(inputDir, storage.SummaryFileName)
	if err := storage.WriteJSON(summaryPath, report); err != nil {
		return "", nil, fmt.Errorf("analyze: %w", err)
	}
	r.logger.Info("[analyze] Summary written to %s", summaryPath)
	return summaryPath, report, nil
}

// Enrich adds exchange-rate information to summary.json in place. Lookup
// failures are recorded in the summary; only file errors are returned.
func (r *Runner) Enrich(ctx context.Context, inputDir, api, cacheDir string) (*models.Report, error) {
	if api != APIExchangeRate {
		return nil, fmt.Errorf("enrich: unsupported api %q", api)
	}

	summaryPath := filepath.Join(inputDir, storage.SummaryFileName)
	report, err := storage.ReadReport(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	base, target := r.cfg.FXBase, r.cfg.FXTarget

	cache, err := r.openCache(cacheDir)
	if err != nil {
		r.logger.Error("[enrich] Rate cache unavailable: %v", err)
		services.MergeEnrichment(report, models.FailedLookup(), base, target)
	} else {
		defer cache.Close()
		enricher := services.NewRateEnricher(cache, r.newFetcher(), r.logger)
		enricher.Enrich(ctx, report, base, target)
	}

	if err := storage.WriteJSON(summaryPath, report); err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	r.logger.Info("[enrich] %s→%s source=%s", base, target, report.Enrichment.Source)
	return report, nil
}

// Report renders summary.json as Markdown at reportPath.
func (r *Runner) Report(summaryPath, reportPath string) error {
	report, err := storage.ReadReport(summaryPath)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(reportPath), 0755); err != nil {
		return fmt.Errorf("report: create dir: %w", err)
	}
	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", reportPath, err)
	}
	if err := services.RenderMarkdown(f, report); err != nil {
		_ = f.Close()
		return fmt.Errorf("report: render: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %q: %w", reportPath, err)
	}
	r.logger.Info("[report] Report written to %s", reportPath)
	return nil
}

// RunOptions names the inputs of a full run.
type RunOptions struct {
	IngestOptions
	ReportPath string
	API        string // empty skips enrichment
	CacheDir   string
}

// Run chains ingest → analyze → (optional) enrich → report.
func (r *Runner) Run(ctx context.Context, opts RunOptions) error {
	manifest, err := r.Ingest(opts.IngestOptions)
	if err != nil {
		return err
	}
	r.logger.Debug("[run] Run %s ingested %d/%d rows", manifest.RunID,
		manifest.Accepted, manifest.Accepted+manifest.Rejected)

	summaryPath, _, err := r.Analyze(opts.OutDir)
	if err != nil {
		return err
	}

	if opts.API != "" {
		if _, err := r.Enrich(ctx, opts.OutDir, opts.API, opts.CacheDir); err != nil {
			return err
		}
	}

	return r.Report(summaryPath, opts.ReportPath)
}

func (r *Runner) openConfiguredCache(cacheDir string) (storage.RateStore, error) {
	switch r.cfg.CacheBackend {
	case config.CachePostgres:
		return storage.NewPostgresRateCache(r.cfg.DSN())
	case config.CacheSQLite:
		return storage.NewSQLiteRateCache(r.cfg.SQLitePath)
	default:
		if cacheDir == "" {
			cacheDir = r.cfg.CacheDir
		}
		return storage.NewFileRateCache(cacheDir), nil
	}
}
