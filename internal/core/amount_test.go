package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"450", "450", true},
		{"450.00", "450", true},
		{"₹450.00", "450", true},
		{"₹ 1,250.00", "1250", true},
		{"Rs. 99", "99", true},
		{"Rs 99.50", "99.5", true},
		{"INR 2,00,000", "200000", true},
		{"12,34", "12.34", true}, // decimal comma
		{"1,234", "1234", true},  // thousands separator
		{"1,234.56", "1234.56", true},
		{" 2.50 ", "2.5", true},
		{"-450", "", false},
		{"+450", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"abc", "", false},
		{"₹", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q unexpected error: %v", tc.in, err)
			}
			if got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestFormatINR(t *testing.T) {
	d, err := ParseAmount("1250")
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatINR(d); got != "₹1250.00" {
		t.Fatalf("expected ₹1250.00, got %s", got)
	}
}
