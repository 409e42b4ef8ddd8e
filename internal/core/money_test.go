package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"15000", "15000", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{".5", "0.5", true},
		{"5.", "5", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"abc", "", false},
		{"1e3", "", false},
		{"1.2.3", "", false},
		{"1,000.50", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(dec(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestAmountFromFloat(t *testing.T) {
	if _, err := AmountFromFloat(math.NaN()); err == nil {
		t.Fatalf("expected error for NaN")
	}
	if _, err := AmountFromFloat(math.Inf(1)); err == nil {
		t.Fatalf("expected error for +Inf")
	}
	if _, err := AmountFromFloat(0); err == nil {
		t.Fatalf("expected error for zero")
	}
	d, err := AmountFromFloat(12.5)
	if err != nil || !d.Equal(dec("12.5")) {
		t.Fatalf("expected 12.5, got %s (err=%v)", d, err)
	}
}
