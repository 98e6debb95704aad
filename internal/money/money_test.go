package money

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"clp_thousands", 15000, "CLP", "$15.000"},
		{"clp_small", 500, "CLP", "$500"},
		{"clp_millions", 1234567, "CLP", "$1.234.567"},
		{"clp_rounds_decimals", 999.6, "CLP", "$1.000"},
		{"usd_cents", 12.5, "USD", "$12.50"},
		{"usd_thousands", 1234.56, "USD", "$1,234.56"},
		{"usd_whole", 7, "USD", "$7.00"},
		{"other_currency", 99.9, "EUR", "99.90 EUR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.amount, tt.currency); got != tt.want {
				t.Errorf("Format(%v, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}
