package validation

import (
	"regexp"
	"testing"
)

func TestInRange(t *testing.T) {
	t.Parallel()

	closed := Bounds{Min: 0.1, Max: 300}
	open := Bounds{Min: 0, Max: 50000, ExclusiveMin: true}

	tests := []struct {
		name   string
		value  float64
		bounds Bounds
		want   bool
	}{
		{name: "closed min inclusive", value: 0.1, bounds: closed, want: true},
		{name: "closed max inclusive", value: 300, bounds: closed, want: true},
		{name: "closed below", value: 0.09, bounds: closed, want: false},
		{name: "open min excluded", value: 0, bounds: open, want: false},
		{name: "open inside", value: 1, bounds: open, want: true},
		{name: "open above", value: 50000.5, bounds: open, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InRange(tt.value, tt.bounds); got != tt.want {
				t.Fatalf("InRange(%v, %s) = %v, want %v", tt.value, tt.bounds, got, tt.want)
			}
		})
	}
}

func TestBoundsString(t *testing.T) {
	t.Parallel()

	if got := (Bounds{Min: 0, Max: 10000, ExclusiveMin: true}).String(); got != "(0, 10000]" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Bounds{Min: 0.1, Max: 300}).String(); got != "[0.1, 300]" {
		t.Fatalf("String() = %q", got)
	}
}

func TestWithinTolerance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		actual    float64
		expected  float64
		tolerance float64
		want      bool
	}{
		{name: "exact", actual: 100, expected: 100, tolerance: 0.05, want: true},
		{name: "four percent", actual: 104, expected: 100, tolerance: 0.05, want: true},
		{name: "six percent", actual: 106, expected: 100, tolerance: 0.05, want: false},
		{name: "zero divisor skips", actual: 5, expected: 0, tolerance: 0.05, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := WithinTolerance(tt.actual, tt.expected, tt.tolerance); got != tt.want {
				t.Fatalf("WithinTolerance() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := RelativeDeviation(1, 0); ok {
		t.Fatal("RelativeDeviation() with zero expected should not be ok")
	}
}

func TestContactPredicates(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"buyer@acme.com", "first.last+tag@sub.example.org"} {
		if !IsEmail(s) {
			t.Fatalf("IsEmail(%q) = false", s)
		}
	}
	for _, s := range []string{"buyer@", "not an email", "a@b.c"} {
		if IsEmail(s) {
			t.Fatalf("IsEmail(%q) = true", s)
		}
	}

	if !IsPhone("+1 (555) 010-0100 x12") {
		t.Fatal("IsPhone() rejected a valid number")
	}
	if IsPhone("call me") {
		t.Fatal("IsPhone() accepted letters")
	}

	if MatchesPattern(nil, "anything") {
		t.Fatal("MatchesPattern(nil) should be false")
	}
	if !MatchesPattern(regexp.MustCompile(`^B-\d{6}$`), "B-000123") {
		t.Fatal("MatchesPattern() rejected a batch id")
	}
}
