package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"personal-data-assistant/models"
	"personal-data-assistant/utils"
)

func expense(amount float64, category string) models.ValidatedExpense {
	return models.ValidatedExpense{Date: "2024-01-01", Amount: amount, Category: category}
}

func sampleExpenses() []models.ValidatedExpense {
	return []models.ValidatedExpense{
		{Date: "2024-01-01", Amount: 12.5, Category: "Food", Description: "lunch"},
		{Date: "2024-01-02", Amount: 900, Category: "Rent", Description: "january"},
		{Date: "2024-01-03", Amount: 30, Category: "Transport", Description: "train"},
		{Date: "2024-01-04", Amount: 7.25, Category: "Food", Description: "coffee"},
		{Date: "2024-01-05", Amount: 45, Category: "Fun", Description: "cinema"},
		{Date: "2024-01-06", Amount: 30, Category: "Transport", Description: "bus pass"},
		{Date: "2024-01-07", Amount: 20, Category: "food", Description: "lower-case"},
	}
}

func TestAggregateScenarioTotals(t *testing.T) {
	s := Aggregate([]models.ValidatedExpense{
		expense(10, "Food"), expense(20, "Food"), expense(30, "Food"),
	})

	if s.TotalSpend != 60.0 {
		t.Errorf("TotalSpend: got %.2f, want 60.00", s.TotalSpend)
	}
	if s.AverageAmount != 20.0 {
		t.Errorf("AverageAmount: got %.2f, want 20.00", s.AverageAmount)
	}
	if diff := cmp.Diff(map[string]int{"Food": 3}, s.CountByCategory); diff != "" {
		t.Errorf("CountByCategory (-want +got):\n%s", diff)
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)

	want := models.ExpenseSummary{
		CountByCategory:      map[string]int{},
		TotalByCategory:      map[string]float64{},
		TopCategoriesByTotal: []models.CategoryTotal{},
		LargestTransactions:  []models.ValidatedExpense{},
		Anomalies:            []models.ValidatedExpense{},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("empty summary (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	const wantJSON = `{"total_spend":0,"average_amount":0,"count_by_category":{},"total_by_category":{},` +
		`"top_3_categories_by_total":[],"largest_5_transactions":[],"anomalies":[]}`
	if string(data) != wantJSON {
		t.Errorf("empty summary JSON:\n got %s\nwant %s", data, wantJSON)
	}
}

func TestAggregateCategoryGrouping(t *testing.T) {
	s := Aggregate(sampleExpenses())

	wantCounts := map[string]int{"Food": 2, "Rent": 1, "Transport": 2, "Fun": 1, "food": 1}
	if diff := cmp.Diff(wantCounts, s.CountByCategory); diff != "" {
		t.Errorf("CountByCategory (-want +got):\n%s", diff)
	}
	wantTotals := map[string]float64{"Food": 19.75, "Rent": 900, "Transport": 60, "Fun": 45, "food": 20}
	if diff := cmp.Diff(wantTotals, s.TotalByCategory); diff != "" {
		t.Errorf("TotalByCategory (-want +got):\n%s", diff)
	}

	var n int
	for _, c := range s.CountByCategory {
		n += c
	}
	if n != len(sampleExpenses()) {
		t.Errorf("sum of counts: got %d, want %d", n, len(sampleExpenses()))
	}
}

func TestAggregateTopCategories(t *testing.T) {
	s := Aggregate(sampleExpenses())

	want := []models.CategoryTotal{
		{Category: "Rent", Total: 900},
		{Category: "Transport", Total: 60},
		{Category: "Fun", Total: 45},
	}
	if diff := cmp.Diff(want, s.TopCategoriesByTotal); diff != "" {
		t.Errorf("TopCategoriesByTotal (-want +got):\n%s", diff)
	}
}

func TestAggregateTopCategoriesTiesKeepFirstSeen(t *testing.T) {
	s := Aggregate([]models.ValidatedExpense{
		expense(5, "B"), expense(5, "A"), expense(10, "C"), expense(5, "D"),
	})

	want := []models.CategoryTotal{
		{Category: "C", Total: 10},
		{Category: "B", Total: 5},
		{Category: "A", Total: 5},
	}
	if diff := cmp.Diff(want, s.TopCategoriesByTotal); diff != "" {
		t.Errorf("TopCategoriesByTotal (-want +got):\n%s", diff)
	}
}

func TestAggregateTopCategoriesFewerThanThree(t *testing.T) {
	s := Aggregate([]models.ValidatedExpense{expense(1, "A"), expense(2, "B")})
	if len(s.TopCategoriesByTotal) != 2 {
		t.Fatalf("TopCategoriesByTotal len: got %d, want 2", len(s.TopCategoriesByTotal))
	}
	if s.TopCategoriesByTotal[0].Category != "B" {
		t.Errorf("TopCategoriesByTotal[0]: got %q, want B", s.TopCategoriesByTotal[0].Category)
	}
}

func TestAggregateLargestTransactions(t *testing.T) {
	s := Aggregate(sampleExpenses())

	got := []string{}
	for _, e := range s.LargestTransactions {
		got = append(got, e.Description)
	}
	// The two 30.00 transport rows keep their input order.
	want := []string{"january", "cinema", "train", "bus pass", "lower-case"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LargestTransactions (-want +got):\n%s", diff)
	}
}

func TestAggregateLargestFewerThanFive(t *testing.T) {
	s := Aggregate([]models.ValidatedExpense{expense(1, "A"), expense(3, "A")})
	if len(s.LargestTransactions) != 2 || s.LargestTransactions[0].Amount != 3 {
		t.Errorf("LargestTransactions: got %+v", s.LargestTransactions)
	}
}

func TestAggregateDoesNotReorderInput(t *testing.T) {
	in := sampleExpenses()
	_ = Aggregate(in)
	if diff := cmp.Diff(sampleExpenses(), in); diff != "" {
		t.Errorf("input was mutated (-want +got):\n%s", diff)
	}
}

func TestAggregateAnomalies(t *testing.T) {
	in := []models.ValidatedExpense{
		expense(10, "A"), expense(10, "A"), expense(10, "A"), expense(10, "A"),
		expense(10, "A"), expense(10, "A"), expense(10, "A"), expense(10, "A"),
		expense(10, "A"), expense(1000, "B"),
	}

	s := Aggregate(in)

	if s.AnomalyRule == nil {
		t.Fatal("AnomalyRule should be set for non-empty input")
	}
	if s.AnomalyRule.Type != models.AnomalyRuleMeanPlus2Std {
		t.Errorf("rule type: got %q", s.AnomalyRule.Type)
	}
	// mean = 109, sample stdev = 313.0655; threshold = 735.13
	if s.AnomalyRule.Threshold != 735.13 {
		t.Errorf("threshold: got %.4f, want 735.13", s.AnomalyRule.Threshold)
	}
	if len(s.Anomalies) != 1 || s.Anomalies[0].Amount != 1000 {
		t.Errorf("anomalies: got %+v", s.Anomalies)
	}
}

func TestAggregateSingleExpense(t *testing.T) {
	s := Aggregate([]models.ValidatedExpense{expense(42.42, "Solo")})

	if s.AnomalyRule == nil || s.AnomalyRule.Threshold != 42.42 {
		t.Errorf("threshold: got %+v, want 42.42", s.AnomalyRule)
	}
	if len(s.Anomalies) != 0 {
		t.Errorf("a single expense cannot be an anomaly, got %+v", s.Anomalies)
	}
	if s.TotalSpend != 42.42 || s.AverageAmount != 42.42 {
		t.Errorf("totals: got %.2f / %.2f", s.TotalSpend, s.AverageAmount)
	}
}

func TestAggregateRoundsOutput(t *testing.T) {
	s := Aggregate([]models.ValidatedExpense{expense(0.1, "A"), expense(0.2, "A"), expense(0.2, "B")})

	if s.TotalSpend != 0.5 {
		t.Errorf("TotalSpend: got %v, want 0.5", s.TotalSpend)
	}
	if s.TotalByCategory["A"] != 0.3 {
		t.Errorf("TotalByCategory[A]: got %v, want 0.3", s.TotalByCategory["A"])
	}
	if s.AverageAmount != 0.17 {
		t.Errorf("AverageAmount: got %v, want 0.17", s.AverageAmount)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	first, err := json.Marshal(Aggregate(sampleExpenses()))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Aggregate(sampleExpenses()))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("summaries differ:\n%s\n%s", first, second)
	}
}

func TestSummaryJSONShape(t *testing.T) {
	data, err := json.Marshal(Aggregate([]models.ValidatedExpense{expense(60, "Food")}))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{
		`"top_3_categories_by_total":[["Food",60]]`,
		`"anomaly_rule":{"type":"mean_plus_2std","threshold":60}`,
		`"largest_5_transactions":[{"date":"2024-01-01","amount":60,"category":"Food","description":""}]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary JSON missing %s\n got %s", want, s)
		}
	}

	var back models.ExpenseSummary
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.TopCategoriesByTotal[0] != (models.CategoryTotal{Category: "Food", Total: 60}) {
		t.Errorf("decoded top category: got %+v", back.TopCategoriesByTotal[0])
	}
}

func TestAggregatorGenerateLogs(t *testing.T) {
	var buf strings.Builder
	a := NewAggregator(utils.NewLoggerWithWriter(&buf))

	a.Generate(nil)
	if !strings.Contains(buf.String(), "summary is empty") {
		t.Errorf("expected empty-summary warning, got: %s", buf.String())
	}

	buf.Reset()
	a.Generate(sampleExpenses())
	if !strings.Contains(buf.String(), "7 expenses") {
		t.Errorf("expected digest line, got: %s", buf.String())
	}
}
