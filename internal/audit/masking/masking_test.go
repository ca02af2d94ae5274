package masking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"   ":           "",
		"123":           "****",
		"123456789012":  "****9012",
		" 123456789012": "****9012",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskSensitive(t *testing.T) {
	got := MaskSensitive(map[string]any{
		"credit_card_number": "123456789012",
		"city":               "Tulsa",
		"price_cents":        int64(1250),
		"nested": map[string]any{
			"password": "hunter22",
		},
		" ": "dropped",
	})
	want := map[string]any{
		"credit_card_number": "****9012",
		"city":               "Tulsa",
		"price_cents":        int64(1250),
		"nested": map[string]any{
			"password": "****er22",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MaskSensitive mismatch (-want +got):\n%s", diff)
	}
	if MaskSensitive(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
