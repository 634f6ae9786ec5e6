package services

import "personal-data-assistant/models"

// Partition validates every row exactly once and splits the rows into
// accepted and rejected sets, preserving input order within each.
// Malformed rows are data: they never cause an error.
func Partition(rows []models.RawRow) models.Partition {
	p := models.Partition{
		Accepted: make([]models.ValidatedExpense, 0, len(rows)),
		Rejected: make([]models.RejectedRow, 0),
	}

	for _, row := range rows {
		expense, err := ValidateRow(row)
		if err != nil {
			p.Rejected = append(p.Rejected, models.NewRejectedRow(row, err.Error()))
			continue
		}
		p.Accepted = append(p.Accepted, expense)
	}

	return p
}

// Ingester runs the partitioner and reports what it did.
type Ingester struct {
	reporter Reporter
}

// NewIngester creates an Ingester. reporter may be nil.
func NewIngester(reporter Reporter) *Ingester {
	return &Ingester{reporter: reporterOrNop(reporter)}
}

// Ingest partitions the rows and reports the accepted/rejected counts.
func (i *Ingester) Ingest(rows []models.RawRow) models.Partition {
	p := Partition(rows)

	for idx, r := range p.Rejected {
		i.reporter.Debug("[ingest] Rejected row %d: %s", idx+1, r.Error)
	}
	i.reporter.Info("[ingest] Ingest CSV: cleaned=%d rejected=%d",
		p.AcceptedCount(), p.RejectedCount())
	if len(rows) > 0 && p.AcceptedCount() == 0 {
		i.reporter.Warn("[ingest] All %d rows were rejected", len(rows))
	}
	return p
}
