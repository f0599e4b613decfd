package tracing

import (
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsStatements(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/products"),
		attribute.String("db.statement", "SELECT * FROM customers"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
}

func TestSafeErrorTruncates(t *testing.T) {
	err := SafeError(errors.New(strings.Repeat("x", 1000)))
	if len(err.Error()) != maxErrorLength {
		t.Fatalf("expected %d chars, got %d", maxErrorLength, len(err.Error()))
	}
	if SafeError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatal("unexpected clamp result")
	}
}
