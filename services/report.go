package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"personal-data-assistant/models"
)

// RenderMarkdown writes the report as Markdown.
func RenderMarkdown(w io.Writer, r *models.Report) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	ex := r.Expenses

	line("# Personal Data Assistant Report")
	line("")

	line("## Overview")
	line("- Total spend: **$%.2f**", ex.TotalSpend)
	line("- Average amount: **$%.2f**", ex.AverageAmount)
	line("- Transactions: %d", countTransactions(ex))
	if ex.AnomalyRule != nil {
		line("- Anomalies: %d (rule %s, threshold %.2f)",
			len(ex.Anomalies), ex.AnomalyRule.Type, ex.AnomalyRule.Threshold)
	}
	line("")

	line("## Top Categories")
	line("| Category | Total |")
	line("|---|---:|")
	for _, ct := range ex.TopCategoriesByTotal {
		line("| %s | %.2f |", escapeCell(ct.Category), ct.Total)
	}
	line("")

	line("## Largest Transactions")
	line("| Date | Category | Amount | Description |")
	line("|---|---|---:|---|")
	for _, e := range ex.LargestTransactions {
		line("| %s | %s | %.2f | %s |",
			e.Date, escapeCell(e.Category), e.Amount, escapeCell(e.Description))
	}
	line("")

	if len(ex.Anomalies) > 0 {
		line("## Anomalies")
		for _, e := range ex.Anomalies {
			line("- %s %s %.2f %s", e.Date, e.Category, e.Amount, e.Description)
		}
		line("")
	}

	line("## Notes: Action Items")
	if len(r.Notes.ActionItems) == 0 {
		line("_No action items found._")
	}
	for _, item := range r.Notes.ActionItems {
		line("- %s", item)
	}
	line("")

	line("## Notes: Topics")
	topics := sortedTopics(r.Notes.Topics)
	if len(topics) == 0 {
		line("_No topics found._")
	} else {
		line("| Topic | Count |")
		line("|---|---:|")
		for _, tc := range topics {
			line("| %s | %d |", escapeCell(tc.topic), tc.count)
		}
	}
	line("")

	line("## Enrichment")
	if en := r.Enrichment; en != nil {
		line("- Type: %s", en.Type)
		line("- Source: %s", en.Source)
		line("- Base/Target: %s→%s", en.Base, en.Target)
		if en.Rate != nil {
			line("- Rate: %g", *en.Rate)
		} else {
			line("- Rate: unavailable")
		}
	} else {
		line("_No enrichment performed._")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type topicCount struct {
	topic string
	count int
}

// sortedTopics orders topics by count descending, then by name.
func sortedTopics(topics map[string]int) []topicCount {
	out := make([]topicCount, 0, len(topics))
	for t, c := range topics {
		out = append(out, topicCount{t, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].topic < out[j].topic
	})
	return out
}

func countTransactions(s models.ExpenseSummary) int {
	n := 0
	for _, c := range s.CountByCategory {
		n += c
	}
	return n
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
