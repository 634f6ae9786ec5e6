package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"personal-data-assistant/models"
)

const (
	CleanedFileName  = "cleaned_expenses.csv"
	RejectedFileName = "rejected_rows.csv"
)

var (
	cleanedHeader  = []string{models.FieldDate, models.FieldAmount, models.FieldCategory, models.FieldDescription}
	rejectedHeader = []string{models.FieldDate, models.FieldAmount, models.FieldCategory, models.FieldDescription, models.FieldError}
)

// CSVWriter writes the cleaned and rejected expense files into one
// output directory.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

func (c *CSVWriter) CleanedPath() string  { return filepath.Join(c.dir, CleanedFileName) }
func (c *CSVWriter) RejectedPath() string { return filepath.Join(c.dir, RejectedFileName) }

// WriteCleaned writes the validated expenses, amounts with two decimals.
func (c *CSVWriter) WriteCleaned(expenses []models.ValidatedExpense) error {
	records := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		records = append(records, []string{
			e.Date,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category,
			e.Description,
		})
	}
	return writeCSVFile(c.CleanedPath(), cleanedHeader, records)
}

// WriteRejected writes the rejected rows with their original values and the
// rejection reason.
func (c *CSVWriter) WriteRejected(rows []models.RejectedRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Date, r.Amount, r.Category, r.Description, r.Error})
	}
	return writeCSVFile(c.RejectedPath(), rejectedHeader, records)
}

// writeCSVFile creates (or truncates) path and writes header plus records.
func writeCSVFile(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush %q: %w", path, err)
	}
	return f.Close()
}
