package services

import (
	"math"
	"sort"

	"personal-data-assistant/models"
)

const (
	topCategoryCount    = 3
	largestExpenseCount = 5
	anomalyStdDevFactor = 2
)

// Aggregator computes expense statistics and reports a short digest.
type Aggregator struct {
	reporter Reporter
}

// NewAggregator creates an Aggregator. reporter may be nil.
func NewAggregator(reporter Reporter) *Aggregator {
	return &Aggregator{reporter: reporterOrNop(reporter)}
}

// Generate aggregates the expenses and reports the headline numbers.
func (a *Aggregator) Generate(expenses []models.ValidatedExpense) models.ExpenseSummary {
	s := Aggregate(expenses)
	if s.AnomalyRule == nil {
		a.reporter.Warn("[analyze] No validated expenses, summary is empty")
		return s
	}
	a.reporter.Info("[analyze] %d expenses, total=%.2f avg=%.2f, %d categories, %d anomalies (threshold %.2f)",
		len(expenses), s.TotalSpend, s.AverageAmount, len(s.CountByCategory),
		len(s.Anomalies), s.AnomalyRule.Threshold)
	return s
}

// Aggregate computes the expense summary. Sums are accumulated at full
// precision and rounded to 2 decimals only when surfaced.
func Aggregate(expenses []models.ValidatedExpense) models.ExpenseSummary {
	summary := models.ExpenseSummary{
		CountByCategory:      make(map[string]int),
		TotalByCategory:      make(map[string]float64),
		TopCategoriesByTotal: make([]models.CategoryTotal, 0),
		LargestTransactions:  make([]models.ValidatedExpense, 0),
		Anomalies:            make([]models.ValidatedExpense, 0),
	}

	if len(expenses) == 0 {
		return summary
	}

	// Categories in first-seen order so the ranking is stable on ties.
	var order []string
	totals := make(map[string]float64)
	var sum float64

	for _, e := range expenses {
		sum += e.Amount
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
		}
		totals[e.Category] += e.Amount
		summary.CountByCategory[e.Category]++
	}

	n := float64(len(expenses))
	mean := sum / n
	threshold := mean + anomalyStdDevFactor*sampleStdDev(expenses, mean)

	summary.TotalSpend = Round2(sum)
	summary.AverageAmount = Round2(mean)

	for cat, total := range totals {
		summary.TotalByCategory[cat] = Round2(total)
	}

	ranked := make([]models.CategoryTotal, 0, len(order))
	for _, cat := range order {
		ranked = append(ranked, models.CategoryTotal{Category: cat, Total: totals[cat]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if len(ranked) > topCategoryCount {
		ranked = ranked[:topCategoryCount]
	}
	for _, ct := range ranked {
		summary.TopCategoriesByTotal = append(summary.TopCategoriesByTotal,
			models.CategoryTotal{Category: ct.Category, Total: Round2(ct.Total)})
	}

	byAmount := make([]models.ValidatedExpense, len(expenses))
	copy(byAmount, expenses)
	sort.SliceStable(byAmount, func(i, j int) bool {
		return byAmount[i].Amount > byAmount[j].Amount
	})
	if len(byAmount) > largestExpenseCount {
		byAmount = byAmount[:largestExpenseCount]
	}
	summary.LargestTransactions = append(summary.LargestTransactions, byAmount...)

	summary.AnomalyRule = &models.AnomalyRule{
		Type:      models.AnomalyRuleMeanPlus2Std,
		Threshold: Round2(threshold),
	}
	for _, e := range expenses {
		if e.Amount > threshold {
			summary.Anomalies = append(summary.Anomalies, e)
		}
	}

	return summary
}

// sampleStdDev uses the n-1 denominator; a single value has stdev 0.
func sampleStdDev(expenses []models.ValidatedExpense, mean float64) float64 {
	if len(expenses) < 2 {
		return 0
	}
	var sq float64
	for _, e := range expenses {
		d := e.Amount - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(expenses)-1))
}
