package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatNumberIntegers(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{100, "100"},
		{int64(0), "0"},
		{int64(-42), "-42"},
		{100.0, "100"},
		{float64(1), "1"},
	}
	for _, tt := range tests {
		got, err := FormatNumber(tt.in)
		if err != nil {
			t.Fatalf("FormatNumber(%v) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumberNeverScientific(t *testing.T) {
	values := []any{1e-8, 2.5e-7, 1e20, 0.000000123, "1e-8", "2.5E-7"}
	for _, v := range values {
		got, err := FormatNumber(v)
		if err != nil {
			t.Fatalf("FormatNumber(%v) error = %v", v, err)
		}
		if strings.ContainsAny(got, "eE") {
			t.Errorf("FormatNumber(%v) = %q, contains exponent", v, got)
		}
	}
}

func TestFormatNumberSmallFloat(t *testing.T) {
	got, err := FormatNumber(1e-8)
	if err != nil {
		t.Fatalf("FormatNumber(1e-8) error = %v", err)
	}
	if got != "0.00000001" {
		t.Errorf("FormatNumber(1e-8) = %q, want %q", got, "0.00000001")
	}
}

func TestFormatNumberTrailingZeros(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.50", "1.5"},
		{"1.500000", "1.5"},
		{"100.0", "100"},
		{"0.0", "0"},
		{"-0.0", "0"},
		{"-1.230", "-1.23"},
		{"123.456", "123.456"},
		{"0.00000001", "0.00000001"},
	}
	for _, tt := range tests {
		got, err := FormatNumber(tt.in)
		if err != nil {
			t.Fatalf("FormatNumber(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FormatNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumberDecimal(t *testing.T) {
	d := decimal.RequireFromString("50000.10")
	got, err := FormatNumber(d)
	if err != nil {
		t.Fatalf("FormatNumber(decimal) error = %v", err)
	}
	if got != "50000.1" {
		t.Errorf("FormatNumber(decimal) = %q, want %q", got, "50000.1")
	}
}

func TestFormatNumberMalformed(t *testing.T) {
	for _, in := range []any{"abc", "1.2.3", "", struct{}{}, true} {
		_, err := FormatNumber(in)
		if err == nil {
			t.Errorf("FormatNumber(%v) expected error", in)
			continue
		}
		if !errors.Is(err, ErrMalformedNumber) {
			t.Errorf("FormatNumber(%v) error = %v, want ErrMalformedNumber", in, err)
		}
	}
}
