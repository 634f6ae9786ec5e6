package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"personal-data-assistant/models"
	"personal-data-assistant/utils"
)

func TestPartitionScenario(t *testing.T) {
	rows := []models.RawRow{
		row("2024-01-01", "10", "Food", "lunch"),
		row("2024-01-02", "abc", "Food", "bad"),
	}

	p := Partition(rows)

	wantAccepted := []models.ValidatedExpense{
		{Date: "2024-01-01", Amount: 10.0, Category: "Food", Description: "lunch"},
	}
	if diff := cmp.Diff(wantAccepted, p.Accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
	if p.RejectedCount() != 1 {
		t.Fatalf("rejected: got %d, want 1", p.RejectedCount())
	}
	rej := p.Rejected[0]
	if rej.Date != "2024-01-02" || rej.Amount != "abc" || rej.Category != "Food" || rej.Description != "bad" {
		t.Errorf("rejected row should keep raw values, got %+v", rej)
	}
	if !strings.Contains(rej.Error, "not numeric") {
		t.Errorf("rejected error: got %q, want a not-numeric reason", rej.Error)
	}
}

func TestPartitionPreservesOrderAndRawValues(t *testing.T) {
	rows := []models.RawRow{
		row("2024-01-03", "3", "C", ""),
		row("bad", "1", "A", ""),
		row("2024-01-01", "1", "A", ""),
		{"date": " 2024-01-02 ", "amount": "x", "extra": "ignored"},
		row("2024-01-02", "2", "B", ""),
	}

	p := Partition(rows)

	if p.AcceptedCount()+p.RejectedCount() != len(rows) {
		t.Fatalf("every row must land in exactly one set")
	}
	gotDates := []string{}
	for _, e := range p.Accepted {
		gotDates = append(gotDates, e.Date)
	}
	if diff := cmp.Diff([]string{"2024-01-03", "2024-01-01", "2024-01-02"}, gotDates); diff != "" {
		t.Errorf("accepted order (-want +got):\n%s", diff)
	}

	want := models.RejectedRow{Date: " 2024-01-02 ", Amount: "x", Category: "", Description: "", Error: p.Rejected[1].Error}
	if p.Rejected[1] != want {
		t.Errorf("absent fields should be empty strings: got %+v", p.Rejected[1])
	}
	if p.Rejected[0].Date != "bad" {
		t.Errorf("rejected order: got %q first", p.Rejected[0].Date)
	}
}

func TestPartitionEmpty(t *testing.T) {
	p := Partition(nil)
	if p.AcceptedCount() != 0 || p.RejectedCount() != 0 {
		t.Errorf("expected empty partition, got %d/%d", p.AcceptedCount(), p.RejectedCount())
	}
	if p.Accepted == nil || p.Rejected == nil {
		t.Error("partition slices should be non-nil")
	}
}

func TestIngesterReportsCounts(t *testing.T) {
	var buf bytes.Buffer
	ing := NewIngester(utils.NewLoggerWithWriter(&buf))

	p := ing.Ingest([]models.RawRow{
		row("2024-01-01", "10", "Food", ""),
		row("2024-01-01", "", "Food", ""),
	})

	if p.AcceptedCount() != 1 || p.RejectedCount() != 1 {
		t.Fatalf("counts: got %d/%d, want 1/1", p.AcceptedCount(), p.RejectedCount())
	}
	if !strings.Contains(buf.String(), "cleaned=1 rejected=1") {
		t.Errorf("expected counts in log output, got: %s", buf.String())
	}
}

func TestIngesterNilReporter(t *testing.T) {
	p := NewIngester(nil).Ingest([]models.RawRow{row("x", "1", "A", "")})
	if p.RejectedCount() != 1 {
		t.Errorf("rejected: got %d, want 1", p.RejectedCount())
	}
}
