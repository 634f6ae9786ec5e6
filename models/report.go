package models

// NotesExtraction is what the notes extractor pulls out of free-text notes.
type NotesExtraction struct {
	ActionItems []string       `json:"action_items"`
	Topics      map[string]int `json:"topics"`
	TotalLines  int            `json:"total_lines"`
}

// Rate lookup provenance.
const (
	SourceCache  = "cache"
	SourceAPI    = "api"
	SourceFailed = "failed"
)

// EnrichmentExchangeRate is the only enrichment type produced today.
const EnrichmentExchangeRate = "exchange_rate"

// RateLookup is the outcome of an exchange-rate lookup. Rate is nil when the
// lookup failed.
type RateLookup struct {
	Rate   *float64
	Source string
}

// FailedLookup is the degraded result used whenever no rate could be found.
func FailedLookup() RateLookup {
	return RateLookup{Source: SourceFailed}
}

// Enrichment is the block merged into the summary after aggregation.
type Enrichment struct {
	Type   string   `json:"type"`
	Base   string   `json:"base"`
	Target string   `json:"target"`
	Rate   *float64 `json:"rate"`
	Source string   `json:"source"`
}

// Report is the summary.json document handed to the report renderer.
type Report struct {
	Expenses   ExpenseSummary  `json:"expenses"`
	Notes      NotesExtraction `json:"notes"`
	Enrichment *Enrichment     `json:"enrichment,omitempty"`
}

// Manifest describes the artifacts written by one ingest run.
type Manifest struct {
	RunID         string `json:"run_id"`
	CleanedCSV    string `json:"cleaned_csv"`
	RejectedCSV   string `json:"rejected_csv"`
	NotesJSON     string `json:"notes_json"`
	ProfileLoaded bool   `json:"profile_loaded"`
	Accepted      int    `json:"accepted"`
	Rejected      int    `json:"rejected"`
}
