package handlers

import (
	"testing"
	"time"
)

// TestParseExpenseFilter checks query parameters map onto the filter.
func TestParseExpenseFilter(t *testing.T) {
	params := map[string]string{
		"category":   "Food",
		"group":      "Trip",
		"start_date": "2026-01-01",
		"end_date":   "2026-01-31",
	}

	filter, err := parseExpenseFilter(func(key string) string { return params[key] })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if filter.CategoryName != "Food" {
		t.Fatalf("unexpected category: %s", filter.CategoryName)
	}
	if filter.GroupName != "Trip" {
		t.Fatalf("unexpected group: %s", filter.GroupName)
	}
	if filter.StartDate == nil || filter.StartDate.Format(dateLayout) != "2026-01-01" {
		t.Fatalf("unexpected start date: %v", filter.StartDate)
	}
	if filter.EndDate == nil || filter.EndDate.Format(dateLayout) != "2026-01-31" {
		t.Fatalf("unexpected end date: %v", filter.EndDate)
	}
}

// TestParseExpenseFilterEmpty checks missing parameters leave no constraints.
func TestParseExpenseFilterEmpty(t *testing.T) {
	filter, err := parseExpenseFilter(func(string) string { return "" })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if filter.CategoryName != "" || filter.GroupName != "" {
		t.Fatalf("expected empty name filters, got %+v", filter)
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		t.Fatalf("expected nil date filters, got %+v", filter)
	}
}

// TestParseExpenseFilterInvalidDate checks malformed dates are rejected.
func TestParseExpenseFilterInvalidDate(t *testing.T) {
	params := map[string]string{"start_date": "01/02/2026"}

	if _, err := parseExpenseFilter(func(key string) string { return params[key] }); err == nil {
		t.Fatal("expected error for invalid start_date")
	}
}

// TestParseExpenseDate checks parsing and the today default.
func TestParseExpenseDate(t *testing.T) {
	date, errMsg := parseExpenseDate("2026-03-15")
	if errMsg != "" {
		t.Fatalf("expected no error, got %s", errMsg)
	}
	if date.Format(dateLayout) != "2026-03-15" {
		t.Fatalf("unexpected date: %s", date.Format(dateLayout))
	}

	today, errMsg := parseExpenseDate("")
	if errMsg != "" {
		t.Fatalf("expected no error, got %s", errMsg)
	}
	now := time.Now().UTC()
	if today.Year() != now.Year() || today.Month() != now.Month() {
		t.Fatalf("expected today's date, got %s", today.Format(dateLayout))
	}

	if _, errMsg := parseExpenseDate("15.03.2026"); errMsg == "" {
		t.Fatal("expected error for invalid date format")
	}
}

// TestParseSummaryAsOf checks the default lands on the UTC day and explicit
// dates parse.
func TestParseSummaryAsOf(t *testing.T) {
	asOf, errMsg := parseSummaryAsOf("")
	if errMsg != "" {
		t.Fatalf("expected no error, got %s", errMsg)
	}
	if asOf.Location() != time.UTC {
		t.Fatalf("expected UTC default, got %s", asOf.Location())
	}

	asOf, errMsg = parseSummaryAsOf("2026-02-28")
	if errMsg != "" {
		t.Fatalf("expected no error, got %s", errMsg)
	}
	if asOf.Format(dateLayout) != "2026-02-28" {
		t.Fatalf("unexpected as_of: %s", asOf.Format(dateLayout))
	}

	if _, errMsg := parseSummaryAsOf("28.02.2026"); errMsg == "" {
		t.Fatal("expected error for invalid as_of format")
	}
}
