package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"personal-data-assistant/models"
)

const utf8BOM = "\ufeff"

// ReadRawRows reads an expense CSV into raw rows keyed by header name.
// Rows shorter than the header get empty strings for the missing cells;
// extra cells without a header are dropped.
func ReadRawRows(path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w: %w", path, ErrSourceUnavailable, err)
	}
	defer f.Close()

	rows, err := ParseRawRows(f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	return rows, nil
}

// ParseRawRows parses expense CSV data from r.
func ParseRawRows(r io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrSourceUnavailable, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows := make([]models.RawRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		if isEmptyRecord(record) {
			continue
		}

		row := make(models.RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadExpenses reads a cleaned_expenses.csv written by CSVWriter.
func ReadExpenses(path string) ([]models.ValidatedExpense, error) {
	rows, err := ReadRawRows(path)
	if err != nil {
		return nil, err
	}

	expenses := make([]models.ValidatedExpense, 0, len(rows))
	for i, row := range rows {
		amount, err := strconv.ParseFloat(strings.TrimSpace(row.Get(models.FieldAmount)), 64)
		if err != nil {
			return nil, fmt.Errorf("csv: %q line %d: bad amount: %w", path, i+2, err)
		}
		expenses = append(expenses, models.ValidatedExpense{
			Date:        row.Get(models.FieldDate),
			Amount:      amount,
			Category:    row.Get(models.FieldCategory),
			Description: row.Get(models.FieldDescription),
		})
	}
	return expenses, nil
}

// ReadLines reads a text file line by line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("notes: open %q: %w: %w", path, ErrSourceUnavailable, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("notes: read %q: %w: %w", path, ErrSourceUnavailable, err)
	}
	return lines, nil
}

func isEmptyRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}
