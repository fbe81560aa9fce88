package core

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "500", 50000, false},
		{"one decimal", "12.3", 1230, false},
		{"two decimals", "12.34", 1234, false},
		{"leading dot", ".50", 50, false},
		{"trailing dot", "12.", 1200, false},
		{"whitespace trimmed", "  7.25  ", 725, false},
		{"three decimals rejected", "12.345", 0, true},
		{"non numeric", "abc", 0, true},
		{"mixed", "12a.50", 0, true},
		{"negative", "-5", 0, true},
		{"explicit plus", "+5", 0, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"empty", "", 0, true},
		{"only dot", ".", 0, true},
		{"double dot", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %d, expected error", tt.input, got.Cents)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got.Cents != tt.want {
				t.Errorf("ParseAmount(%q) = %d cents, want %d", tt.input, got.Cents, tt.want)
			}
		})
	}
}
