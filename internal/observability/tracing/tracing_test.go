package tracing

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

type codedErr struct{ code string }

func (e codedErr) Error() string { return "card 4111111111111111 declined" }
func (e codedErr) Code() string  { return e.code }

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/movies/:id"),
		attribute.String("user.email", "a@b.c"),
		attribute.String("card_number", "4111"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("unexpected attributes %v", attrs)
	}
}

func TestSafeErrorHidesMessage(t *testing.T) {
	if SafeError(nil) != nil {
		t.Fatalf("expected nil")
	}
	if got := SafeError(codedErr{code: "payment_declined"}).Error(); got != "payment_declined" {
		t.Fatalf("expected code only, got %q", got)
	}
	if got := SafeError(errors.New("password=hunter2")).Error(); got != "internal_error" {
		t.Fatalf("expected generic error, got %q", got)
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}
