package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1200", "1200", false},
		{"12.34", "12.34", false},
		{"12,34", "12.34", false},
		{"0.005", "0.005", false},
		{" 42 ", "42", false},
		{"", "", true},
		{"-5", "", true},
		{"+5", "", true},
		{"1.2.3", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("12.345")); got != "12.35" {
		t.Errorf("FormatAmount(12.345) = %q, want %q", got, "12.35")
	}
	if got := FormatAmount(decimal.NewFromInt(7)); got != "7.00" {
		t.Errorf("FormatAmount(7) = %q, want %q", got, "7.00")
	}
}
