package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"personal-data-assistant/models"
)

const (
	minAmount = -100000
	maxAmount = 100000
)

// datePattern is a syntactic check only; month and day ranges are not verified.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Reason identifies which validation check rejected a row.
type Reason string

const (
	ReasonInvalidDate   Reason = "InvalidDate"
	ReasonNotNumeric    Reason = "NotNumeric"
	ReasonOutOfRange    Reason = "OutOfRange"
	ReasonEmptyCategory Reason = "EmptyCategory"
)

// RowError is returned by ValidateRow for a rejected row.
type RowError struct {
	Reason  Reason
	Message string
}

func (e *RowError) Error() string {
	return e.Message
}

// rowDraft carries the normalised fields between checks.
type rowDraft struct {
	raw     models.RawRow
	expense models.ValidatedExpense
}

type rowCheck func(d *rowDraft) *RowError

// rowChecks run in order; the first failure wins.
var rowChecks = []rowCheck{
	checkDate,
	checkAmount,
	checkCategory,
	normaliseDescription,
}

// ValidateRow validates and cleans a single expense row. It either returns a
// validated expense and a nil error, or a *RowError describing the first
// failed check.
func ValidateRow(row models.RawRow) (models.ValidatedExpense, error) {
	d := &rowDraft{raw: row}
	for _, check := range rowChecks {
		if err := check(d); err != nil {
			return models.ValidatedExpense{}, err
		}
	}
	return d.expense, nil
}

func checkDate(d *rowDraft) *RowError {
	date := strings.TrimSpace(d.raw.Get(models.FieldDate))
	if !datePattern.MatchString(date) {
		return &RowError{
			Reason:  ReasonInvalidDate,
			Message: "Invalid date format (expected YYYY-MM-DD)",
		}
	}
	d.expense.Date = date
	return nil
}

func checkAmount(d *rowDraft) *RowError {
	raw := strings.TrimSpace(d.raw.Get(models.FieldAmount))
	amount, err := strconv.ParseFloat(raw, 64)
	// ParseFloat also takes hex mantissas and digit separators; plain decimals only.
	if strings.ContainsAny(raw, "xX_") || (err != nil && !isRangeError(err)) {
		return &RowError{
			Reason:  ReasonNotNumeric,
			Message: fmt.Sprintf("Amount is not numeric: %q", raw),
		}
	}
	// NaN fails both comparisons and lands here too.
	if !(amount >= minAmount && amount <= maxAmount) {
		return &RowError{
			Reason:  ReasonOutOfRange,
			Message: "Amount out of range",
		}
	}
	d.expense.Amount = Round2(amount)
	return nil
}

func checkCategory(d *rowDraft) *RowError {
	category := strings.TrimSpace(d.raw.Get(models.FieldCategory))
	if category == "" {
		return &RowError{
			Reason:  ReasonEmptyCategory,
			Message: "Empty category",
		}
	}
	d.expense.Category = category
	return nil
}

func normaliseDescription(d *rowDraft) *RowError {
	d.expense.Description = strings.TrimSpace(d.raw.Get(models.FieldDescription))
	return nil
}

// isRangeError reports whether ParseFloat parsed a syntactically valid number
// that overflowed; the value is then ±Inf and belongs to the range check.
func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// Round2 rounds to 2 decimal places, halves away from zero.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
