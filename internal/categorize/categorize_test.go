package categorize

import (
	"strings"
	"testing"

	"upilens/internal/core"
)

func TestCategorizeDefaults(t *testing.T) {
	c := NewDefault()
	cases := []struct{ desc, want string }{
		{"Swiggy Order", "Food"},
		{"ZOMATO", "Food"},
		{"swiggy instamart", "Food"}, // case-insensitive
		{"UBER INDIA", "Travel"},
		{"AMAZON PAY", "Shopping"},
		{"NETFLIX", "Bills"},
		{"PVR CINEMAS", "Entertainment"},
		{"APOLLO PHARMACY", "Health"},
	}
	for _, tc := range cases {
		if got := c.Categorize(tc.desc); got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.desc, tc.want, got)
		}
	}
}

func TestCategorizeShortKeywordWordBoundary(t *testing.T) {
	c := New(Ruleset{
		Rules:    []Rule{{Category: "Bills", Keywords: []string{"VI"}}},
		Fallback: "Other",
	})
	if got := c.Categorize("VI Recharge"); got != "Bills" {
		t.Errorf("whole word should match: %s", got)
	}
	if got := c.Categorize("SERVICE CHARGE"); got != "Other" {
		t.Errorf("substring should not match a short keyword: %s", got)
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	c := New(Ruleset{
		Rules: []Rule{
			{Category: "First", Keywords: []string{"STORE"}},
			{Category: "Second", Keywords: []string{"BOOKSTORE"}},
		},
		Fallback: "Other",
	})
	if got := c.Categorize("BOOKSTORE"); got != "First" {
		t.Errorf("rule order not respected: %s", got)
	}
}

func TestCategorizePersonalTransfers(t *testing.T) {
	c := NewDefault()
	cases := []struct{ desc, want string }{
		{"Rahul Kumar", PersonalTransfersCategory},
		{"Priya", PersonalTransfersCategory},
		{"UPI PAYMENT", core.FallbackCategory},    // generic term
		{"Rahul 98765", core.FallbackCategory},    // digits
		{"XYZ Corp", core.FallbackCategory},       // business designator
		{"Sharma Traders", core.FallbackCategory}, // business designator
		{"A B C D", core.FallbackCategory},        // too many words
		{"ZXCQ WVUT PLKM NHGF", core.FallbackCategory},
	}
	for _, tc := range cases {
		if got := c.Categorize(tc.desc); got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.desc, tc.want, got)
		}
	}
}

func TestCategorizeHeuristicDisabled(t *testing.T) {
	c := New(Ruleset{
		Rules:    []Rule{{Category: "Food", Keywords: []string{"SWIGGY"}}},
		Fallback: "Misc",
	})
	if got := c.Categorize("Rahul Kumar"); got != "Misc" {
		t.Errorf("heuristic should be off: %s", got)
	}
}

func TestApplyPreservesExistingCategories(t *testing.T) {
	c := NewDefault()
	txs := []core.Transaction{
		{Counterparty: "Swiggy Order"},
		{Counterparty: "Swiggy Order", Category: "Custom"},
	}
	out := c.Apply(txs)
	if out[0].Category != "Food" {
		t.Errorf("uncategorized: %s", out[0].Category)
	}
	if out[1].Category != "Custom" {
		t.Errorf("existing category overwritten: %s", out[1].Category)
	}
	if txs[0].Category != "" {
		t.Error("input slice mutated")
	}
}

func TestRulesetValidate(t *testing.T) {
	cases := []struct {
		name string
		rs   Ruleset
		ok   bool
	}{
		{"valid", Ruleset{Rules: []Rule{{Category: "Food", Keywords: []string{"SWIGGY"}}}}, true},
		{"empty category", Ruleset{Rules: []Rule{{Category: " ", Keywords: []string{"X"}}}}, false},
		{"duplicate category", Ruleset{Rules: []Rule{
			{Category: "Food", Keywords: []string{"A"}},
			{Category: "Food", Keywords: []string{"B"}},
		}}, false},
		{"no keywords", Ruleset{Rules: []Rule{{Category: "Food"}}}, false},
		{"blank keyword", Ruleset{Rules: []Rule{{Category: "Food", Keywords: []string{" "}}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rs.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaultRuleset(t *testing.T) {
	rs := DefaultRuleset()
	if len(rs.Rules) == 0 {
		t.Fatal("embedded rules empty")
	}
	if rs.Fallback != core.FallbackCategory {
		t.Fatalf("fallback: %s", rs.Fallback)
	}
	if !rs.PersonalTransfers {
		t.Fatal("personal transfers heuristic should default on")
	}
	cats := rs.Categories()
	last := cats[len(cats)-1]
	if last != core.FallbackCategory {
		t.Fatalf("fallback should close the category list: %s", last)
	}
	if !strings.Contains(strings.Join(cats, ","), PersonalTransfersCategory) {
		t.Fatal("personal transfers missing from category list")
	}
}
