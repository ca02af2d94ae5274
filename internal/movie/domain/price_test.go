package domain

import "testing"

func TestParsePrice(t *testing.T) {
	valid := map[string]int64{
		"0":      0,
		"12":     1200,
		"12.5":   1250,
		"12.50":  1250,
		".99":    99,
		"999.99": 99999,
		"$3.10":  310,
		" 7. ":   700,
	}
	for in, want := range valid {
		got, ok := ParsePrice(in)
		if !ok || got != want {
			t.Fatalf("ParsePrice(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}

	for _, in := range []string{"", ".", "1000", "1000.00", "12.345", "-1", "abc", "1,50"} {
		if _, ok := ParsePrice(in); ok {
			t.Fatalf("ParsePrice(%q) should fail", in)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[int64]string{0: "0.00", 5: "0.05", 1250: "12.50", 99999: "999.99"}
	for in, want := range cases {
		if got := FormatPrice(in); got != want {
			t.Fatalf("FormatPrice(%d) = %q, want %q", in, got, want)
		}
	}
	if got := FormatCurrency(1250); got != "$12.50" {
		t.Fatalf("FormatCurrency = %q", got)
	}
}
