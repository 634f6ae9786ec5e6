package models

import (
	"encoding/json"
	"fmt"
)

// Expense CSV column names.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldError       = "error"
)

// RawRow holds one unvalidated record straight from the expense CSV, keyed by
// header name. Columns other than the four expense fields are ignored.
type RawRow map[string]string

// Get returns the named field, or "" when the column is absent.
func (r RawRow) Get(field string) string {
	return r[field]
}

// ValidatedExpense is a row that passed every validation check.
type ValidatedExpense struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// RejectedRow keeps the original field values of a row that failed
// validation, together with the first failure reason.
type RejectedRow struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// NewRejectedRow copies the expense fields out of a raw row.
func NewRejectedRow(row RawRow, reason string) RejectedRow {
	return RejectedRow{
		Date:        row.Get(FieldDate),
		Amount:      row.Get(FieldAmount),
		Category:    row.Get(FieldCategory),
		Description: row.Get(FieldDescription),
		Error:       reason,
	}
}

// Partition is the result of running every raw row through validation.
type Partition struct {
	Accepted []ValidatedExpense
	Rejected []RejectedRow
}

func (p Partition) AcceptedCount() int { return len(p.Accepted) }
func (p Partition) RejectedCount() int { return len(p.Rejected) }

// CategoryTotal is one entry of the top-categories ranking. It is encoded as
// a two-element JSON array: ["Food", 60].
type CategoryTotal struct {
	Category string
	Total    float64
}

func (c CategoryTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Category, c.Total})
}

func (c *CategoryTotal) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("category total: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Category); err != nil {
		return fmt.Errorf("category total: name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Total); err != nil {
		return fmt.Errorf("category total: total: %w", err)
	}
	return nil
}

// AnomalyRuleMeanPlus2Std tags the mean + 2 * sample stdev threshold rule.
const AnomalyRuleMeanPlus2Std = "mean_plus_2std"

// AnomalyRule describes how anomalies were selected.
type AnomalyRule struct {
	Type      string  `json:"type"`
	Threshold float64 `json:"threshold"`
}

// ExpenseSummary holds the computed statistics over the validated expenses.
// AnomalyRule is nil when there were no expenses to derive a threshold from.
type ExpenseSummary struct {
	TotalSpend           float64            `json:"total_spend"`
	AverageAmount        float64            `json:"average_amount"`
	CountByCategory      map[string]int     `json:"count_by_category"`
	TotalByCategory      map[string]float64 `json:"total_by_category"`
	TopCategoriesByTotal []CategoryTotal    `json:"top_3_categories_by_total"`
	LargestTransactions  []ValidatedExpense `json:"largest_5_transactions"`
	AnomalyRule          *AnomalyRule       `json:"anomaly_rule,omitempty"`
	Anomalies            []ValidatedExpense `json:"anomalies"`
}
