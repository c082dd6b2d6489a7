package classify

import "testing"

// TestGroceryHint checks the grocery rule fires for grocery terms regardless
// of amount and stays silent otherwise.
func TestGroceryHint(t *testing.T) {
	for _, description := range []string{
		"Milk and curd from kirana store",
		"2kg atta",
		"paneer 500g",
		"SUPERMARKET run",
		"dal and rice",
	} {
		category, ok := GroceryHint(description)
		if !ok || category != "Food" {
			t.Fatalf("expected Food hint for %q, got %q (ok=%v)", description, category, ok)
		}
	}

	if category, ok := GroceryHint("uber to airport"); ok {
		t.Fatalf("expected no hint for transport description, got %q", category)
	}
}

// TestClassifyKeywords checks the fixed keyword tables.
func TestClassifyKeywords(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"milk and bread", "Food"},
		{"dinner at restaurant", "Food"},
		{"movie tickets", "Entertainment"},
		{"uber to office", "Transport"},
		{"new shirt from mall", "Shopping"},
		{"electricity for march", "Bills"},
		{"doctor consultation", "Healthcare"},
		{"college tuition", "Education"},
		{"hotel in goa", "Travel"},
		{"sofa furniture", "Home"},
		{"misc stuff", "Other"},
		{"", "Other"},
	}

	for _, tc := range cases {
		if got := ClassifyKeywords(tc.description, 0); got != tc.want {
			t.Fatalf("ClassifyKeywords(%q) = %q, want %q", tc.description, got, tc.want)
		}
	}
}

// TestClassifyKeywordsPriority checks that rule order decides when a
// description matches two keyword sets.
func TestClassifyKeywordsPriority(t *testing.T) {
	// "taxi" (Transport) is tested before "shopping" (Shopping).
	if got := ClassifyKeywords("taxi shopping", 0); got != "Transport" {
		t.Fatalf("expected Transport for 'taxi shopping', got %q", got)
	}

	// "party" (Entertainment) is tested before "bus" (Transport).
	if got := ClassifyKeywords("bus to the party", 0); got != "Entertainment" {
		t.Fatalf("expected Entertainment for 'bus to the party', got %q", got)
	}

	// The grocery rule overrides everything, including Transport words.
	if got := ClassifyKeywords("taxi to buy milk", 0); got != "Food" {
		t.Fatalf("expected Food for grocery override, got %q", got)
	}
}

// TestClassifyKeywordsIgnoresAmount checks the amount carries no signal.
func TestClassifyKeywordsIgnoresAmount(t *testing.T) {
	for _, amount := range []float64{0, 1, 99999.99} {
		if got := ClassifyKeywords("coffee beans", amount); got != "Food" {
			t.Fatalf("amount %v changed classification to %q", amount, got)
		}
	}
}

// TestCatalog checks the catalog names and membership test.
func TestCatalog(t *testing.T) {
	want := []string{
		"Food", "Entertainment", "Transport", "Shopping", "Bills",
		"Healthcare", "Education", "Travel", "Home", "Other",
	}

	names := CategoryNames()
	if len(names) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, names[i])
		}
	}

	if !IsCategoryName("Food") {
		t.Fatal("expected Food to be a catalog name")
	}
	if IsCategoryName("food") {
		t.Fatal("catalog names are case-sensitive")
	}
	if IsCategoryName("Groceries") {
		t.Fatal("Groceries is not a catalog name")
	}
}
