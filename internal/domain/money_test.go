package domain

import (
	"testing"
)

func TestFormatGBP(t *testing.T) {
	cases := []struct {
		pence int64
		want  string
	}{
		{0, "£0.00"},
		{5, "£0.05"},
		{350, "£3.50"},
		{1750, "£17.50"},
		{123456, "£1234.56"},
		{-350, "-£3.50"},
	}
	for _, tc := range cases {
		if got := FormatGBP(tc.pence); got != tc.want {
			t.Fatalf("FormatGBP(%d) = %q, want %q", tc.pence, got, tc.want)
		}
	}
}

func TestParseGBP(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"3.50", 350},
		{"£3.50", 350},
		{" 12 ", 1200},
		{"0.5", 50},
		{"17.5", 1750},
		{"-1.25", -125},
	}
	for _, tc := range cases {
		got, err := ParseGBP(tc.input)
		if err != nil {
			t.Fatalf("ParseGBP(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseGBP(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseGBPRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "abc", "1.234", "1,50", "£"} {
		if _, err := ParseGBP(input); err == nil {
			t.Fatalf("ParseGBP(%q) expected error", input)
		}
	}
}

func TestCartTotalsAndCounts(t *testing.T) {
	cart := Cart{Items: []LineItem{
		{ID: "basil", Name: "Basil", UnitPrice: 350, Quantity: 5},
		{ID: "fern", Name: "Boston Fern", UnitPrice: 1200, Quantity: 1},
	}}
	if got := cart.Total(); got != 2950 {
		t.Fatalf("expected total 2950, got %d", got)
	}
	if got := cart.ItemCount(); got != 6 {
		t.Fatalf("expected item count 6, got %d", got)
	}
	if got := (Cart{}).Total(); got != 0 {
		t.Fatalf("expected empty cart total 0, got %d", got)
	}
}
